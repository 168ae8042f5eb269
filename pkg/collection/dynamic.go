// Package collection holds ordered groups of shapes and runs the area
// calculation over them, either through an interface value per element
// (Dynamic) or through a type parameter fixed at compile time (Static).
package collection

import "github.com/715d/shapedispatch/pkg/shape"

// Dynamic is an ordered collection of shapes of any concrete type.
// Each element is reached only through the shape.Shape interface, so the
// CalculateArea implementation is looked up at run time.
type Dynamic struct {
	Shapes []shape.Shape
}

// NewDynamic returns a collection holding shapes in the given order.
func NewDynamic(shapes ...shape.Shape) *Dynamic {
	return &Dynamic{Shapes: shapes}
}

// Calc calls CalculateArea on every element in order.
func (c *Dynamic) Calc() {
	for _, s := range c.Shapes {
		s.CalculateArea()
	}
}

// Len returns the number of elements.
func (c *Dynamic) Len() int {
	return len(c.Shapes)
}

// At returns the element at index i.
func (c *Dynamic) At(i int) shape.Shape {
	return c.Shapes[i]
}
