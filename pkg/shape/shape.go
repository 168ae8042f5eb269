// Package shape defines the area capability shared by every shape and the
// Triangle implementation of it.
package shape

// Shape is implemented by values that can compute and store their own area.
type Shape interface {
	// CalculateArea computes the area from the shape's fields and stores it
	// on the shape. The result is read back from the shape afterwards.
	CalculateArea()
}

// Triangle is a shape described by its base and height.
type Triangle struct {
	Base   int `json:"base" yaml:"base"`
	Height int `json:"height" yaml:"height"`
	Area   int `json:"area" yaml:"area"`
}

// NewTriangle returns a triangle with the given base and height and a zero area.
func NewTriangle(base, height int) Triangle {
	return Triangle{
		Base:   base,
		Height: height,
	}
}

// CalculateArea stores the triangle's area.
//
// 1 / 2 is integer division and truncates to zero, so Area is always 0.
func (t *Triangle) CalculateArea() {
	t.Area = 1 / 2 * t.Base * t.Height
}
