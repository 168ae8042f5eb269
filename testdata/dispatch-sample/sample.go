package sample

type Shape interface {
	CalculateArea()
}

type Triangle struct {
	Base, Height, Area int
}

func (t *Triangle) CalculateArea() {
	t.Area = t.Base * t.Height / 2
}

func (t *Triangle) Perimeter() int {
	return 3 * t.Base
}

type Dynamic struct {
	Shapes []Shape
}

func (c *Dynamic) Calc() {
	for _, s := range c.Shapes {
		s.CalculateArea()
	}
}

type Static[T any, PT interface {
	*T
	Shape
}] struct {
	Shapes []T
}

func (c *Static[T, PT]) Calc() {
	for i := range c.Shapes {
		PT(&c.Shapes[i]).CalculateArea()
	}
}

func Direct() int {
	t := Triangle{Base: 5, Height: 4}
	t.CalculateArea()
	return t.Area + t.Perimeter()
}

func Run() (int, int) {
	static := &Static[Triangle, *Triangle]{Shapes: []Triangle{{Base: 5, Height: 4}}}
	static.Calc()

	tri := &Triangle{Base: 5, Height: 4}
	dynamic := &Dynamic{Shapes: []Shape{tri}}
	dynamic.Calc()

	return static.Shapes[0].Area, tri.Area
}
