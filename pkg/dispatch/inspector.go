// Package dispatch reports how calls to a method are dispatched in a loaded
// Go program: through an interface value (dynamic), to a concrete function
// fixed at compile time (static), or through a type parameter inside an
// uninstantiated generic body (generic).
package dispatch

import (
	"fmt"
	"go/token"
	"go/types"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"

	"github.com/715d/shapedispatch/internal/naming"
)

// DefaultMethod is the method inspected when Options.Method is empty.
const DefaultMethod = "CalculateArea"

// Mode is how a call site reaches its callee.
type Mode string

const (
	ModeDynamic Mode = "dynamic"
	ModeStatic  Mode = "static"
	ModeGeneric Mode = "generic"
)

// CallSite is a single call of the inspected method.
type CallSite struct {
	Caller   string         `json:"caller"`
	Callee   string         `json:"callee"`
	Mode     Mode           `json:"mode"`
	Position token.Position `json:"position"`
}

// Options holds configuration options for the inspector.
type Options struct {
	Method string // Method name to look for. Defaults to DefaultMethod.
}

// Inspector classifies call sites using the SSA form of a program.
type Inspector struct {
	// program is the SSA program, built with generic instantiation
	program *ssa.Program

	// targets holds the import paths whose functions are inspected
	targets map[string]struct{}

	// ssaPkgs are the SSA packages built for the inspected packages
	ssaPkgs []*ssa.Package

	names *naming.Cache
	opts  Options
}

// NewInspector builds the SSA program for pkgs. Only functions declared in
// pkgs are inspected; their dependencies are built but not reported.
func NewInspector(pkgs []*packages.Package, opts Options) (*Inspector, error) {
	validPkgs := make([]*packages.Package, 0, len(pkgs))
	for _, pkg := range pkgs {
		if pkg == nil {
			continue
		}
		validPkgs = append(validPkgs, pkg)
	}
	if len(validPkgs) == 0 {
		return nil, fmt.Errorf("no valid packages provided")
	}

	if opts.Method == "" {
		opts.Method = DefaultMethod
	}

	in := &Inspector{
		targets: make(map[string]struct{}, len(validPkgs)),
		names:   naming.NewCache(),
		opts:    opts,
	}
	for _, pkg := range validPkgs {
		in.targets[pkg.PkgPath] = struct{}{}
	}

	// Instantiated generic bodies use concrete types, so calls through a
	// type parameter resolve to static callees there.
	in.program, in.ssaPkgs = ssautil.AllPackages(validPkgs, ssa.InstantiateGenerics)
	if in.program == nil {
		return nil, fmt.Errorf("SSA program construction failed")
	}
	in.program.Build()
	return in, nil
}

// CallSites returns every call of the inspected method made from the target
// packages, ordered by position.
func (in *Inspector) CallSites() []CallSite {
	var sites []CallSite
	for fn := range in.functions() {
		if !in.isTarget(fn) {
			continue
		}
		for _, b := range fn.Blocks {
			for _, instr := range b.Instrs {
				call, ok := instr.(ssa.CallInstruction)
				if !ok {
					continue
				}
				mode, callee, ok := in.classify(call.Common())
				if !ok {
					continue
				}
				sites = append(sites, CallSite{
					Caller:   in.funcName(fn),
					Callee:   callee,
					Mode:     mode,
					Position: in.program.Fset.Position(call.Pos()),
				})
			}
		}
	}

	slices.SortFunc(sites, compareSites)
	slog.Debug("inspected call sites", "method", in.opts.Method, "num", len(sites))
	return sites
}

// functions returns every function of the program plus the uninstantiated
// generic functions and methods of the inspected packages, which
// ssautil.AllFunctions does not always include.
func (in *Inspector) functions() map[*ssa.Function]bool {
	fns := ssautil.AllFunctions(in.program)
	for _, pkg := range in.ssaPkgs {
		if pkg == nil {
			continue
		}
		for _, member := range pkg.Members {
			switch m := member.(type) {
			case *ssa.Function:
				if m.TypeParams().Len() > 0 {
					fns[m] = true
				}
			case *ssa.Type:
				named, ok := m.Type().(*types.Named)
				if !ok || named.TypeParams().Len() == 0 {
					continue
				}
				for i := range named.NumMethods() {
					if fn := in.program.FuncValue(named.Method(i)); fn != nil {
						fns[fn] = true
					}
				}
			}
		}
	}
	return fns
}

// isTarget reports whether fn, or the generic function it instantiates, was
// declared in one of the inspected packages. Wrappers are skipped; generic
// instances are synthetic too but keep their origin.
func (in *Inspector) isTarget(fn *ssa.Function) bool {
	if fn.Synthetic != "" && fn.Origin() == nil {
		return false
	}
	origin := fn
	if o := fn.Origin(); o != nil {
		origin = o
	}
	if origin.Pkg == nil {
		return false
	}
	_, ok := in.targets[origin.Pkg.Pkg.Path()]
	return ok
}

// classify returns the dispatch mode and callee name of a call, or false if
// the call does not target the inspected method.
func (in *Inspector) classify(common *ssa.CallCommon) (Mode, string, bool) {
	if common.IsInvoke() {
		if common.Method.Name() != in.opts.Method {
			return "", "", false
		}
		recv := common.Value.Type()
		if _, ok := types.Unalias(recv).(*types.TypeParam); ok {
			return ModeGeneric, in.methodName(recv, common.Method.Name()), true
		}
		return ModeDynamic, in.methodName(recv, common.Method.Name()), true
	}

	callee := common.StaticCallee()
	if callee == nil || baseName(callee) != in.opts.Method {
		return "", "", false
	}
	recv := callee.Signature.Recv()
	if recv == nil {
		return "", "", false
	}
	return ModeStatic, in.methodName(recv.Type(), baseName(callee)), true
}

func (in *Inspector) funcName(fn *ssa.Function) string {
	if recv := fn.Signature.Recv(); recv != nil {
		return in.methodName(recv.Type(), baseName(fn))
	}
	origin := fn
	if o := fn.Origin(); o != nil {
		origin = o
	}
	return origin.Pkg.Pkg.Name() + "." + fn.Name()
}

// methodName renders "T.M", or "(*T).M" for pointer receivers.
func (in *Inspector) methodName(recv types.Type, name string) string {
	recvName := in.names.TypeName(recv)
	if _, ok := types.Unalias(recv).(*types.Pointer); ok {
		return "(" + recvName + ")." + name
	}
	return recvName + "." + name
}

// baseName is the function's declared name, without type arguments.
func baseName(fn *ssa.Function) string {
	if o := fn.Origin(); o != nil {
		return o.Name()
	}
	return fn.Name()
}

func compareSites(a, b CallSite) int {
	if c := strings.Compare(a.Position.Filename, b.Position.Filename); c != 0 {
		return c
	}
	if a.Position.Line != b.Position.Line {
		return a.Position.Line - b.Position.Line
	}
	if a.Position.Column != b.Position.Column {
		return a.Position.Column - b.Position.Column
	}
	return strings.Compare(a.Caller, b.Caller)
}
