package harness

import (
	"context"
	"fmt"
	"log/slog"
	goruntime "runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/715d/shapedispatch/pkg/collection"
	"github.com/715d/shapedispatch/pkg/shape"
)

// Result is the outcome of running one case.
type Result struct {
	Case *Case

	// StaticAreas and DynamicAreas hold each collection's areas in order.
	StaticAreas  []int
	DynamicAreas []int

	// StaticOrder and DynamicOrder hold the dimensions each collection
	// reports per index after Calc. Areas are all zero, so order is checked
	// on these.
	StaticOrder  []Dimensions
	DynamicOrder []Dimensions

	Success bool
	Message string
}

// Run executes a case against a fresh static and a fresh dynamic collection.
func Run(tc *Case) *Result {
	res := &Result{Case: tc}

	static := collection.NewStatic(tc.Shapes()...)
	for range tc.passes() {
		static.Calc()
	}
	for i := range static.Len() {
		tri := static.At(i)
		res.StaticAreas = append(res.StaticAreas, tri.Area)
		res.StaticOrder = append(res.StaticOrder, Dimensions{Base: tri.Base, Height: tri.Height})
	}

	dynamic := collection.NewDynamic()
	for _, tri := range tc.Shapes() {
		dynamic.Shapes = append(dynamic.Shapes, &tri)
	}
	for range tc.passes() {
		dynamic.Calc()
	}
	for i := range dynamic.Len() {
		tri := dynamic.At(i).(*shape.Triangle)
		res.DynamicAreas = append(res.DynamicAreas, tri.Area)
		res.DynamicOrder = append(res.DynamicOrder, Dimensions{Base: tri.Base, Height: tri.Height})
	}

	res.finish()
	return res
}

// finish compares the collected values with each other and with the case,
// then sets Success and Message.
func (res *Result) finish() {
	tc := res.Case
	var problems []string
	if !slices.Equal(res.StaticAreas, res.DynamicAreas) {
		problems = append(problems, fmt.Sprintf("static areas %v differ from dynamic areas %v", res.StaticAreas, res.DynamicAreas))
	}
	if !slices.Equal(res.StaticAreas, tc.ExpectedAreas) {
		problems = append(problems, fmt.Sprintf("expected areas %v, got %v", tc.ExpectedAreas, res.StaticAreas))
	}
	if !slices.Equal(res.StaticOrder, tc.Triangles) {
		problems = append(problems, fmt.Sprintf("static order %v, want %v", res.StaticOrder, tc.Triangles))
	}
	if !slices.Equal(res.DynamicOrder, tc.Triangles) {
		problems = append(problems, fmt.Sprintf("dynamic order %v, want %v", res.DynamicOrder, tc.Triangles))
	}

	res.Success = len(problems) == 0
	if res.Success {
		res.Message = fmt.Sprintf("%d triangles, %d passes", len(tc.Triangles), tc.passes())
	} else {
		res.Message = strings.Join(problems, "; ")
	}
	slog.Debug("case finished", "case", tc.Name, "success", res.Success, "msg", res.Message)
}

// RunAll runs cases concurrently, one goroutine per case, and returns the
// results in the order of cases. Every case owns its collections.
func RunAll(ctx context.Context, cases []*Case) ([]*Result, error) {
	results := make([]*Result, len(cases))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(goruntime.NumCPU())
	for idx, tc := range cases {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("case %s: %w", tc.Name, err)
			}
			results[idx] = Run(tc)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
