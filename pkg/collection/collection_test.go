package collection

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/715d/shapedispatch/pkg/shape"
)

// recorder appends its id to a shared log whenever its area is calculated.
type recorder struct {
	id  int
	log *[]int
}

func (r *recorder) CalculateArea() {
	*r.log = append(*r.log, r.id)
}

// square is a second concrete shape used to exercise heterogeneous collections.
type square struct {
	side, area int
}

func (s *square) CalculateArea() {
	s.area = s.side * s.side
}

func TestDynamic_Calc(t *testing.T) {
	tri := shape.NewTriangle(5, 4)
	c := NewDynamic(&tri)

	c.Calc()

	require.Equal(t, 1, c.Len())
	first, ok := c.At(0).(*shape.Triangle)
	require.True(t, ok, "first element should be a *shape.Triangle")
	require.Equal(t, shape.Triangle{Base: 5, Height: 4, Area: 0}, *first)
	require.Same(t, &tri, first, "dynamic collection must mutate the shape it was given")
}

func TestStatic_Calc(t *testing.T) {
	c := NewStatic(shape.NewTriangle(5, 4))

	c.Calc()

	require.Equal(t, 1, c.Len())
	require.Equal(t, shape.Triangle{Base: 5, Height: 4, Area: 0}, *c.At(0))
}

func TestStaticMatchesDynamic(t *testing.T) {
	inputs := [][2]int{{5, 4}, {1, 1}, {10, 3}, {0, 0}, {7, 9}}

	static := NewStatic[shape.Triangle]()
	dynamic := NewDynamic()
	for _, in := range inputs {
		static.Shapes = append(static.Shapes, shape.NewTriangle(in[0], in[1]))
		tri := shape.NewTriangle(in[0], in[1])
		dynamic.Shapes = append(dynamic.Shapes, &tri)
	}

	static.Calc()
	dynamic.Calc()

	require.Equal(t, static.Len(), dynamic.Len())
	for i := range static.Len() {
		require.Equal(t, *static.At(i), *dynamic.At(i).(*shape.Triangle), "element %d", i)
	}
}

func TestDynamic_PreservesOrder(t *testing.T) {
	var log []int
	c := NewDynamic(
		&recorder{id: 1, log: &log},
		&recorder{id: 2, log: &log},
		&recorder{id: 3, log: &log},
		&recorder{id: 4, log: &log},
	)

	c.Calc()

	require.Equal(t, []int{1, 2, 3, 4}, log)
}

func TestStatic_PreservesOrder(t *testing.T) {
	var log []int
	c := NewStatic(
		recorder{id: 3, log: &log},
		recorder{id: 1, log: &log},
		recorder{id: 2, log: &log},
	)

	c.Calc()

	require.Equal(t, []int{3, 1, 2}, log)
}

func TestCalc_Idempotent(t *testing.T) {
	t.Run("dynamic", func(t *testing.T) {
		tri := shape.NewTriangle(5, 4)
		c := NewDynamic(&tri)
		c.Calc()
		first := tri.Area
		c.Calc()
		require.Equal(t, first, tri.Area)
	})

	t.Run("static", func(t *testing.T) {
		c := NewStatic(shape.NewTriangle(5, 4))
		c.Calc()
		first := c.At(0).Area
		c.Calc()
		require.Equal(t, first, c.At(0).Area)
	})
}

func TestDynamic_Heterogeneous(t *testing.T) {
	tri := shape.NewTriangle(6, 2)
	sq := &square{side: 3}
	c := NewDynamic(&tri, sq)

	c.Calc()

	require.Equal(t, 0, tri.Area)
	require.Equal(t, 9, sq.area)
	require.IsType(t, &shape.Triangle{}, c.At(0))
	require.IsType(t, &square{}, c.At(1))
}

func TestEmptyCollections(t *testing.T) {
	d := NewDynamic()
	s := NewStatic[shape.Triangle]()

	require.NotPanics(t, d.Calc)
	require.NotPanics(t, s.Calc)
	require.Zero(t, d.Len())
	require.Zero(t, s.Len())
}
