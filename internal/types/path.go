package types

import "strings"

// SimplePath is a sequence of name segments, either rooted at the
// module tree or relative to a base type's synthetic namespace.
type SimplePath struct {
	Segments []string
}

// Child returns the path with name appended.
func (p SimplePath) Child(name string) SimplePath {
	segments := make([]string, len(p.Segments)+1)
	copy(segments, p.Segments)
	segments[len(p.Segments)] = name
	return SimplePath{Segments: segments}
}

// Parent returns the path with its last segment removed, and false if
// the path is already empty.
func (p SimplePath) Parent() (SimplePath, bool) {
	if len(p.Segments) == 0 {
		return SimplePath{}, false
	}
	return SimplePath{Segments: p.Segments[:len(p.Segments)-1]}, true
}

// TailName returns the last segment, if any.
func (p SimplePath) TailName() (string, bool) {
	if len(p.Segments) == 0 {
		return "", false
	}
	return p.Segments[len(p.Segments)-1], true
}

func (p SimplePath) IsEmpty() bool { return len(p.Segments) == 0 }

func (p SimplePath) String() string { return strings.Join(p.Segments, "::") }

// PathBaseType is a synthetic namespace root for a structural type
// (pointer, array, tuple, function): the thing a path like
// `<*T>::method` resolves against (spec §3 "path-base-type"). It is
// itself keyed by the *paths* of its component types so base types can
// be deduplicated the same way the types they describe are.
type PathBaseType struct {
	Kind PathBaseKind

	// Primitive
	PrimitiveName string

	// Pointer
	PointeeTypePath AbsolutePath
	Semantics       PointerSemantics

	// Array
	ItemTypePath AbsolutePath
	Length       *uint64

	// Tuple
	ItemTypePaths []AbsolutePath

	// Function
	ParameterTypePaths []AbsolutePath
	Variadic           bool
	ReturnTypePath      AbsolutePath
}

type PathBaseKind int

const (
	BaseKindPrimitive PathBaseKind = iota
	BaseKindPointer
	BaseKindArray
	BaseKindTuple
	BaseKindFunction
)

// key returns a string uniquely identifying this base type, used as
// the interning key in the namespace registry's path-base-type table.
func (b PathBaseType) key() string {
	var sb strings.Builder
	switch b.Kind {
	case BaseKindPrimitive:
		sb.WriteString("prim:")
		sb.WriteString(b.PrimitiveName)
	case BaseKindPointer:
		sb.WriteString("ptr:")
		if b.Semantics == Mutable {
			sb.WriteString("mut:")
		}
		sb.WriteString(b.PointeeTypePath.String())
	case BaseKindArray:
		sb.WriteString("arr:")
		if b.Length != nil {
			sb.WriteString(strings.TrimSpace(itoa(*b.Length)))
		}
		sb.WriteString(":")
		sb.WriteString(b.ItemTypePath.String())
	case BaseKindTuple:
		sb.WriteString("tuple:")
		for _, p := range b.ItemTypePaths {
			sb.WriteString(p.String())
			sb.WriteString(",")
		}
	case BaseKindFunction:
		sb.WriteString("fn:")
		for _, p := range b.ParameterTypePaths {
			sb.WriteString(p.String())
			sb.WriteString(",")
		}
		if b.Variadic {
			sb.WriteString("...")
		}
		sb.WriteString("->")
		sb.WriteString(b.ReturnTypePath.String())
	}
	return sb.String()
}

func itoa(n uint64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

func (b PathBaseType) String() string {
	switch b.Kind {
	case BaseKindPrimitive:
		return b.PrimitiveName
	case BaseKindPointer:
		if b.Semantics == Mutable {
			return "*mut " + b.PointeeTypePath.String()
		}
		return "*" + b.PointeeTypePath.String()
	case BaseKindArray:
		if b.Length != nil {
			return "[" + b.ItemTypePath.String() + "; " + itoa(*b.Length) + "]"
		}
		return "[" + b.ItemTypePath.String() + "]"
	case BaseKindTuple:
		parts := make([]string, len(b.ItemTypePaths))
		for i, p := range b.ItemTypePaths {
			parts[i] = p.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case BaseKindFunction:
		parts := make([]string, len(b.ParameterTypePaths))
		for i, p := range b.ParameterTypePaths {
			parts[i] = p.String()
		}
		args := strings.Join(parts, ", ")
		if b.Variadic {
			if args != "" {
				args += ", .."
			} else {
				args = ".."
			}
		}
		return "function(" + args + ") -> " + b.ReturnTypePath.String()
	default:
		return "<?>"
	}
}

// AbsolutePath is the canonical, cross-file identity of a namespace or
// named type: either rooted at the module tree (`::a::b::c`) or at a
// synthetic path-base-type (spec §3 "Absolute path").
type AbsolutePath struct {
	BaseType *PathBaseType
	Simple   SimplePath
}

// AtRoot returns the path for the module root namespace.
func AtRoot() AbsolutePath { return AbsolutePath{} }

// AtBaseType returns the path rooted at a structural base type.
func AtBaseType(base PathBaseType) AbsolutePath {
	return AbsolutePath{BaseType: &base}
}

// Child returns the path with name appended to its simple tail.
func (p AbsolutePath) Child(name string) AbsolutePath {
	return AbsolutePath{BaseType: p.BaseType, Simple: p.Simple.Child(name)}
}

func (p AbsolutePath) String() string {
	if p.BaseType != nil {
		if p.Simple.IsEmpty() {
			return p.BaseType.String()
		}
		return "<" + p.BaseType.String() + ">::" + p.Simple.String()
	}
	if p.Simple.IsEmpty() {
		return "::"
	}
	return "::" + p.Simple.String()
}

func (p AbsolutePath) baseKey() string {
	if p.BaseType == nil {
		return ""
	}
	return p.BaseType.key()
}
