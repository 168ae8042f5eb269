package collection

import "github.com/715d/shapedispatch/pkg/shape"

// ShapePtr constrains PT to be a pointer to T that implements shape.Shape.
// CalculateArea mutates its receiver, so the method set lives on *T while the
// collection stores T by value.
type ShapePtr[T any] interface {
	*T
	shape.Shape
}

// Static is an ordered collection of shapes that all share the concrete type T.
// The CalculateArea implementation is selected by the type arguments, so no
// interface value is built for the elements.
type Static[T any, PT ShapePtr[T]] struct {
	Shapes []T
}

// NewStatic returns a collection holding shapes in the given order.
// PT is inferred from T:
//
//	c := collection.NewStatic(shape.NewTriangle(5, 4))
func NewStatic[T any, PT ShapePtr[T]](shapes ...T) *Static[T, PT] {
	return &Static[T, PT]{Shapes: shapes}
}

// Calc calls CalculateArea on every element in order, in place.
func (c *Static[T, PT]) Calc() {
	for i := range c.Shapes {
		PT(&c.Shapes[i]).CalculateArea()
	}
}

// Len returns the number of elements.
func (c *Static[T, PT]) Len() int {
	return len(c.Shapes)
}

// At returns a pointer to the element at index i.
func (c *Static[T, PT]) At(i int) *T {
	return &c.Shapes[i]
}
