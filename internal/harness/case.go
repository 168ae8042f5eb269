// Package harness checks yaml-described workloads against both collection
// kinds and verifies they agree with each other and with the expected areas.
package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/715d/shapedispatch/pkg/shape"
)

// caseFile is the file name that marks a directory as a test case.
const caseFile = "expected.yaml"

// Dimensions are the inputs for one triangle.
type Dimensions struct {
	Base   int `yaml:"base"`
	Height int `yaml:"height"`
}

// Case represents a single workload scenario.
type Case struct {
	// Name is the case directory relative to the testdata root.
	Name string `yaml:"-"`

	// Description is free text shown in failure messages.
	Description string `yaml:"description,omitempty"`

	// Triangles are inserted into each collection in this order.
	Triangles []Dimensions `yaml:"triangles"`

	// Passes is how many times Calc runs on each collection. Zero means once.
	Passes int `yaml:"passes,omitempty"`

	// ExpectedAreas lists the area of every triangle after the last pass.
	ExpectedAreas []int `yaml:"expected_areas"`
}

// Shapes returns fresh triangles for the case's dimensions.
func (c *Case) Shapes() []shape.Triangle {
	out := make([]shape.Triangle, 0, len(c.Triangles))
	for _, d := range c.Triangles {
		out = append(out, shape.NewTriangle(d.Base, d.Height))
	}
	return out
}

func (c *Case) passes() int {
	return max(c.Passes, 1)
}

// LoadCase reads dir/expected.yaml. The case name is dir relative to root,
// or the base name of dir when root is empty or unrelated.
func LoadCase(dir, root string) (*Case, error) {
	data, err := os.ReadFile(filepath.Join(dir, caseFile))
	if err != nil {
		return nil, fmt.Errorf("reading case: %w", err)
	}

	tc := &Case{}
	if err := yaml.Unmarshal(data, tc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Join(dir, caseFile), err)
	}
	if len(tc.ExpectedAreas) != len(tc.Triangles) {
		return nil, fmt.Errorf("%s: %d expected areas for %d triangles", dir, len(tc.ExpectedAreas), len(tc.Triangles))
	}

	tc.Name = filepath.Base(dir)
	if root != "" {
		if rel, err := filepath.Rel(root, dir); err == nil {
			tc.Name = rel
		}
	}
	return tc, nil
}

// DiscoverCases loads every immediate subdirectory of root that holds an
// expected.yaml, sorted by name.
func DiscoverCases(root string) ([]*Case, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading testdata root: %w", err)
	}

	var cases []*Case
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		if _, err := os.Stat(filepath.Join(dir, caseFile)); err != nil {
			continue
		}
		tc, err := LoadCase(dir, root)
		if err != nil {
			return nil, err
		}
		cases = append(cases, tc)
	}

	slices.SortFunc(cases, func(a, b *Case) int {
		return strings.Compare(a.Name, b.Name)
	})
	return cases, nil
}
