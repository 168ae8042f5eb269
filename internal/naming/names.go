// Package naming renders short, package-qualified display names for types
// seen at run time (reflect) and at analysis time (go/types).
package naming

import (
	"go/types"
	"reflect"
	"regexp"
	"strings"

	"github.com/puzpuzpuz/xsync/v4"
)

var (
	// qualifiedPath matches an import-path qualified type name such as
	// "github.com/715d/shapedispatch/pkg/shape.Triangle" or "gopkg.in/yaml.v3.Node".
	qualifiedPath = regexp.MustCompile(`(?:[\w.~-]+/)+[\w.~-]+`)
	// majorVersion matches a "vN" module directory; gopkgSuffix a gopkg.in ".vN".
	majorVersion = regexp.MustCompile(`^v[0-9]+$`)
	gopkgSuffix  = regexp.MustCompile(`\.v[0-9]+$`)
)

// Cache memoizes display names. It is safe for concurrent use.
type Cache struct {
	typeCache    *xsync.Map[types.Type, string]
	reflectCache *xsync.Map[reflect.Type, string]
}

func NewCache() *Cache {
	return &Cache{
		typeCache:    xsync.NewMap[types.Type, string](),
		reflectCache: xsync.NewMap[reflect.Type, string](),
	}
}

// TypeName returns typ qualified by package name rather than import path,
// including type arguments of instantiated generics
// (e.g. "*collection.Static[shape.Triangle, *shape.Triangle]").
func (c *Cache) TypeName(typ types.Type) string {
	if typ == nil {
		return ""
	}
	name, ok := c.typeCache.Load(typ)
	if ok {
		return name
	}
	name = types.TypeString(typ, packageName)
	c.typeCache.Store(typ, name)
	return name
}

// ReflectName returns the package-qualified name of a run-time type, with
// import path directories stripped from the type and any type arguments.
func (c *Cache) ReflectName(typ reflect.Type) string {
	if typ == nil {
		return ""
	}
	name, ok := c.reflectCache.Load(typ)
	if ok {
		return name
	}
	name = qualifiedPath.ReplaceAllStringFunc(typ.String(), shortenPath)
	c.reflectCache.Store(typ, name)
	return name
}

// ValueName is ReflectName for the dynamic type of v.
func (c *Cache) ValueName(v any) string {
	return c.ReflectName(reflect.TypeOf(v))
}

func packageName(pkg *types.Package) string {
	return pkg.Name()
}

// shortenPath rewrites "<import path>.<Type>" to "<package>.<Type>", guessing
// the package name from the path the way the go command does for major
// version directories and gopkg.in suffixes.
func shortenPath(qualified string) string {
	dir, last := "", qualified
	if i := strings.LastIndexByte(qualified, '/'); i >= 0 {
		dir, last = qualified[:i], qualified[i+1:]
	}
	dot := strings.LastIndexByte(last, '.')
	if dot < 0 {
		return qualified
	}
	pkg, name := last[:dot], last[dot+1:]
	if majorVersion.MatchString(pkg) && dir != "" {
		pkg = dir[strings.LastIndexByte(dir, '/')+1:]
	}
	pkg = gopkgSuffix.ReplaceAllString(pkg, "")
	return pkg + "." + name
}
