// Package workload runs the sample triangle through both collection kinds
// and reports what each one produced.
package workload

import (
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/715d/shapedispatch/internal/naming"
	"github.com/715d/shapedispatch/pkg/collection"
	"github.com/715d/shapedispatch/pkg/shape"
)

// Dispatch kinds reported for each collection.
const (
	DispatchStatic  = "static"
	DispatchDynamic = "dynamic"
)

// Sample dimensions of the triangle placed in every collection.
const (
	SampleBase   = 5
	SampleHeight = 4
)

// Entry describes one processed collection.
type Entry struct {
	Dispatch       string `json:"dispatch"`
	CollectionType string `json:"collection_type"`
	ElementType    string `json:"element_type"`
	Len            int    `json:"len"`
	// First is the first element after Calc; Debug is its %#v rendering.
	First any    `json:"first"`
	Debug string `json:"debug"`
}

// Report is the outcome of a single Run.
type Report struct {
	RunID   string  `json:"run_id"`
	Entries []Entry `json:"entries"`
	Stats   struct {
		Collections int           `json:"collections"`
		Shapes      int           `json:"shapes"`
		Duration    time.Duration `json:"duration"`
	} `json:"stats"`
}

// Run builds a static and a dynamic collection, each holding one sample
// triangle, calls Calc on both and returns them in that order.
func Run(names *naming.Cache) *Report {
	start := time.Now()
	r := &Report{RunID: uuid.NewString()}

	static := collection.NewStatic(shape.NewTriangle(SampleBase, SampleHeight))
	r.add(StaticEntry(names, static))

	tri := shape.NewTriangle(SampleBase, SampleHeight)
	dynamic := collection.NewDynamic(&tri)
	r.add(DynamicEntry(names, dynamic))

	r.Stats.Duration = time.Since(start)
	slog.Debug("workload completed", "run_id", r.RunID, "dur", r.Stats.Duration)
	return r
}

func (r *Report) add(e Entry) {
	r.Entries = append(r.Entries, e)
	r.Stats.Collections++
	r.Stats.Shapes += e.Len
}

// StaticEntry runs Calc on c and describes the result.
func StaticEntry[T any, PT collection.ShapePtr[T]](names *naming.Cache, c *collection.Static[T, PT]) Entry {
	c.Calc()
	e := Entry{
		Dispatch:       DispatchStatic,
		CollectionType: names.ValueName(c),
		Len:            c.Len(),
	}
	e.ElementType = names.ReflectName(reflect.TypeFor[T]())
	if c.Len() > 0 {
		e.First = *c.At(0)
		e.Debug = fmt.Sprintf("%#v", e.First)
	}
	slog.Debug("calculated areas", "dispatch", e.Dispatch, "type", e.CollectionType, "len", e.Len)
	return e
}

// DynamicEntry runs Calc on c and describes the result. ElementType is the
// concrete type of the first element, since the collection itself has none.
func DynamicEntry(names *naming.Cache, c *collection.Dynamic) Entry {
	c.Calc()
	e := Entry{
		Dispatch:       DispatchDynamic,
		CollectionType: names.ValueName(c),
		Len:            c.Len(),
	}
	if c.Len() > 0 {
		e.First = c.At(0)
		e.ElementType = names.ValueName(e.First)
		e.Debug = fmt.Sprintf("%#v", e.First)
	}
	slog.Debug("calculated areas", "dispatch", e.Dispatch, "type", e.CollectionType, "len", e.Len)
	return e
}
