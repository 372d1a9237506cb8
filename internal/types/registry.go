package types

import (
	"fmt"

	"github.com/korvus-lang/korvus/internal/target"
)

// typeEntry is one row of the type table: a handle's path, its
// representation, the namespace it owns (for `<T>::member` lookups),
// and its lazily computed layout.
type typeEntry struct {
	path      AbsolutePath
	repr      Repr
	namespace NamespaceHandle

	alignment *uint64
	size      *uint64

	// external marks a type as belonging to a package whose
	// elaboration already finished (see FinishPackage): the emitter
	// declares it rather than defines it. The elaborator does not read
	// this flag.
	external bool
}

// TypeRegistry interns every type reachable during compilation behind
// a stable Handle, and computes each type's layout once the fill pass
// has installed every member's representation (spec §4.1 "Type
// registry"). Primitive handles are reserved at fixed indices (see
// handle.go); every other type is created here, either as a named
// declaration (CreateNamedType) or as a structurally interned
// composite (InternPointer/InternArray/InternTuple/InternFunction).
type TypeRegistry struct {
	entries []typeEntry
	names   *NamespaceRegistry

	pointerIndex  map[string]Handle
	arrayIndex    map[string]Handle
	tupleIndex    map[string]Handle
	functionIndex map[string]Handle

	fillComplete bool
}

// NewTypeRegistry creates a registry pre-populated with the primitive
// types, each given an empty namespace rooted at its own base type
// path (so e.g. `i32::max_value()`-style associated items have
// somewhere to live).
func NewTypeRegistry(names *NamespaceRegistry) *TypeRegistry {
	r := &TypeRegistry{
		names:         names,
		pointerIndex:  make(map[string]Handle),
		arrayIndex:    make(map[string]Handle),
		tupleIndex:    make(map[string]Handle),
		functionIndex: make(map[string]Handle),
	}
	for h := Handle(0); h < numPrimitives; h++ {
		base := PathBaseType{Kind: BaseKindPrimitive, PrimitiveName: primitiveNames[h]}
		path := AtBaseType(base)
		r.entries = append(r.entries, typeEntry{
			path:      path,
			repr:      primitiveRepr(h),
			namespace: names.Create(path),
		})
	}
	return r
}

// Repr returns the current representation behind a handle. It may be
// UnresolvedRepr if handle was created by CreateNamedType and has not
// yet been completed by the fill pass.
func (r *TypeRegistry) Repr(h Handle) Repr { return r.entries[h].repr }

// Path returns a handle's canonical absolute path.
func (r *TypeRegistry) Path(h Handle) AbsolutePath { return r.entries[h].path }

// Namespace returns the namespace associated with a handle, used to
// resolve `<T>::member` paths and inherent items.
func (r *TypeRegistry) Namespace(h Handle) NamespaceHandle { return r.entries[h].namespace }

// CreateNamedType installs a fresh UnresolvedRepr handle at path, with
// its own namespace, so the outline pass can hand out a handle for a
// struct before its member layout is known (spec §4.2 "outline
// pass").
func (r *TypeRegistry) CreateNamedType(path AbsolutePath) Handle {
	handle := Handle(len(r.entries))
	r.entries = append(r.entries, typeEntry{
		path:      path,
		repr:      UnresolvedRepr{},
		namespace: r.names.Create(path),
	})
	return handle
}

// UpdateRepr replaces the representation behind an already-created
// handle, used by the fill pass to complete a named type declaration.
func (r *TypeRegistry) UpdateRepr(h Handle, repr Repr) {
	r.entries[h].repr = repr
}

func (r *TypeRegistry) internAt(key string, index map[string]Handle, base PathBaseType, repr Repr) Handle {
	if existing, ok := index[key]; ok {
		return existing
	}
	path := AtBaseType(base)
	handle := Handle(len(r.entries))
	r.entries = append(r.entries, typeEntry{
		path:      path,
		repr:      repr,
		namespace: r.names.Create(path),
	})
	index[key] = handle
	return handle
}

// InternPointer returns the (possibly shared) handle for `*T` or `*mut
// T`, deduplicated by (pointee, semantics).
func (r *TypeRegistry) InternPointer(pointee Handle, semantics PointerSemantics) Handle {
	semantics = semantics.Normalized()
	base := PathBaseType{Kind: BaseKindPointer, PointeeTypePath: r.Path(pointee), Semantics: semantics}
	return r.internAt(base.key(), r.pointerIndex, base, PointerRepr{Pointee: pointee, Semantics: semantics})
}

// InternArray returns the (possibly shared) handle for `[T; N]` (when
// length is non-nil) or the unsized slice type `[T]`.
func (r *TypeRegistry) InternArray(item Handle, length *uint64) Handle {
	base := PathBaseType{Kind: BaseKindArray, ItemTypePath: r.Path(item), Length: length}
	return r.internAt(base.key(), r.arrayIndex, base, ArrayRepr{Item: item, Length: length})
}

// InternTuple returns the (possibly shared) handle for a tuple type,
// deduplicated by its ordered item list.
func (r *TypeRegistry) InternTuple(items []Handle) Handle {
	paths := make([]AbsolutePath, len(items))
	for i, h := range items {
		paths[i] = r.Path(h)
	}
	base := PathBaseType{Kind: BaseKindTuple, ItemTypePaths: paths}
	itemsCopy := append([]Handle(nil), items...)
	return r.internAt(base.key(), r.tupleIndex, base, TupleRepr{Items: itemsCopy})
}

// InternFunction returns the (possibly shared) handle for a function
// type, deduplicated by its signature.
func (r *TypeRegistry) InternFunction(sig FunctionSignature) Handle {
	paramPaths := make([]AbsolutePath, len(sig.ParameterTypes))
	for i, h := range sig.ParameterTypes {
		paramPaths[i] = r.Path(h)
	}
	base := PathBaseType{
		Kind:               BaseKindFunction,
		ParameterTypePaths: paramPaths,
		Variadic:           sig.Variadic,
		ReturnTypePath:     r.Path(sig.ReturnType),
	}
	return r.internAt(base.key(), r.functionIndex, base, FunctionRepr{Signature: sig})
}

// ResolvePointerSizedIntegers replaces the ISize/USize placeholder
// representations with concrete Integer reprs sized to the
// compilation target, once that target is known (spec §4.1 "post-fill
// finalisation"). It must run before CalculateProperties.
func (r *TypeRegistry) ResolvePointerSizedIntegers(t target.Info) {
	for i := range r.entries {
		if psi, ok := r.entries[i].repr.(PointerSizedIntegerRepr); ok {
			r.entries[i].repr = IntegerRepr{SizeBytes: t.PointerSize(), Signed: psi.Signed}
		}
	}
}

// RecursiveTypeDefinitionError reports a type whose layout depends on
// itself with no indirection to break the cycle (spec §4.1 "recursive
// type definition").
type RecursiveTypeDefinitionError struct {
	Path AbsolutePath
}

func (e *RecursiveTypeDefinitionError) Error() string {
	return fmt.Sprintf("recursive type definition: %s", e.Path)
}

// layoutState tracks cycle detection while computing size/alignment.
type layoutState struct {
	onStack map[Handle]bool
}

// CalculateProperties computes the alignment and size of every
// completed type in a single pass, in dependency order, detecting
// self-referential layouts (a struct containing itself by value,
// directly or through a chain of other by-value members) as
// RecursiveTypeDefinitionError. It must run after every named type has
// been completed by the fill pass and after
// ResolvePointerSizedIntegers. Calling Alignment or Size before this
// has run is a programming error.
func (r *TypeRegistry) CalculateProperties(t target.Info) error {
	st := &layoutState{onStack: make(map[Handle]bool)}
	for h := range r.entries {
		if _, err := r.alignmentOf(Handle(h), t, st); err != nil {
			return err
		}
	}
	r.fillComplete = true
	return nil
}

// alignmentOf returns the alignment of h, computing (and caching) it
// and its size together, since every repr's alignment and size share
// the same traversal of its members.
func (r *TypeRegistry) alignmentOf(h Handle, t target.Info, st *layoutState) (uint64, error) {
	entry := &r.entries[h]
	if entry.alignment != nil {
		return *entry.alignment, nil
	}
	if st.onStack[h] {
		return 0, &RecursiveTypeDefinitionError{Path: entry.path}
	}
	st.onStack[h] = true
	defer delete(st.onStack, h)

	align, size, err := r.computeLayout(entry.repr, t, st)
	if err != nil {
		return 0, err
	}
	entry.alignment = &align
	entry.size = &size
	return align, nil
}

// computeLayout implements the per-repr alignment/size rules,
// transcribed from the original's `calculate_alignment` /
// `calculate_size` match arms. Reprs with no meaningful layout (Never,
// Void, Meta, opaque structures, function values) report alignment 1
// and size 0, and an unsized array reports its item's alignment and
// size 0; they are never instantiated by value, only pointed to.
func (r *TypeRegistry) computeLayout(repr Repr, t target.Info, st *layoutState) (alignment, size uint64, err error) {
	switch v := repr.(type) {
	case UnresolvedRepr:
		return 0, 0, fmt.Errorf("types: layout requested for an unresolved type")
	case MetaRepr, NeverRepr, VoidRepr, OpaqueStructureRepr, FunctionRepr:
		return 1, 0, nil
	case BooleanRepr:
		return 1, 1, nil
	case IntegerRepr:
		return v.SizeBytes, v.SizeBytes, nil
	case PointerSizedIntegerRepr:
		return 0, 0, fmt.Errorf("types: pointer-sized integer not yet resolved to target width")
	case Float32Repr:
		return 4, 4, nil
	case Float64Repr:
		return 8, 8, nil
	case PointerRepr:
		ps := t.PointerSize()
		return ps, ps, nil
	case ArrayRepr:
		itemAlign, err := r.alignmentOf(v.Item, t, st)
		if err != nil {
			return 0, 0, err
		}
		itemSize := *r.entries[v.Item].size
		if v.Length == nil {
			return itemAlign, 0, nil
		}
		return itemAlign, itemSize * *v.Length, nil
	case TupleRepr:
		return r.calculateAggregateSize(v.Items, t, st)
	case StructureRepr:
		members := make([]Handle, len(v.Members))
		for i, m := range v.Members {
			members[i] = m.Type
		}
		return r.calculateAggregateSize(members, t, st)
	default:
		return 0, 0, fmt.Errorf("types: unhandled repr %T", repr)
	}
}

// calculateAggregateSize lays out members sequentially, padding each
// one to its own alignment and padding the final size up to the
// aggregate's alignment, matching ordinary C struct layout rules (spec
// §4.1 "structure size").
func (r *TypeRegistry) calculateAggregateSize(members []Handle, t target.Info, st *layoutState) (alignment, size uint64, err error) {
	alignment = 1
	var offset uint64
	for _, member := range members {
		memberAlign, err := r.alignmentOf(member, t, st)
		if err != nil {
			return 0, 0, err
		}
		memberSize := *r.entries[member].size
		if memberAlign > alignment {
			alignment = memberAlign
		}
		offset = padTo(offset, memberAlign)
		offset += memberSize
	}
	size = padTo(offset, alignment)
	return alignment, size, nil
}

func padTo(offset, align uint64) uint64 {
	if align == 0 {
		return offset
	}
	remainder := offset % align
	if remainder == 0 {
		return offset
	}
	return offset + (align - remainder)
}

// Alignment returns the alignment of h in bytes. It panics if
// CalculateProperties has not yet run, since querying layout before
// the fill pass completes would observe a stale answer silently (spec
// §4.1 "layout queries require a completed registry").
func (r *TypeRegistry) Alignment(h Handle) (uint64, error) {
	if !r.fillComplete {
		panic("types: Alignment queried before CalculateProperties")
	}
	entry := &r.entries[h]
	if entry.alignment == nil {
		return 0, fmt.Errorf("types: %s has no defined alignment", entry.path)
	}
	return *entry.alignment, nil
}

// Size returns the size of h in bytes. See Alignment for preconditions.
func (r *TypeRegistry) Size(h Handle) (uint64, error) {
	if !r.fillComplete {
		panic("types: Size queried before CalculateProperties")
	}
	entry := &r.entries[h]
	if entry.size == nil {
		return 0, fmt.Errorf("types: %s has no defined size", entry.path)
	}
	return *entry.size, nil
}

// FinishPackage marks every type handle created so far as external:
// a later package importing this one may reference these handles but
// must never complete them in place, and the emitter declares rather
// than defines them (spec "SUPPLEMENTED FEATURES — external type
// marking"). Handles created by a later package are left untouched, so
// calling FinishPackage once per compiled package correctly partitions
// the handle space by origin.
func (r *TypeRegistry) FinishPackage() {
	for i := range r.entries {
		r.entries[i].external = true
	}
}

// IsExternal reports whether h was created by a package whose
// FinishPackage call has already run.
func (r *TypeRegistry) IsExternal(h Handle) bool {
	return r.entries[h].external
}
