// Package target describes the compilation target the core elaborator
// and lowerer size pointer-sized integers and pointers against.
package target

// Info carries the handful of target facts the core needs. It never
// grows debug-info or codegen-tuning fields; those belong to the
// (out of scope) emitter.
type Info struct {
	// PointerSizeBytes is the width of a pointer and of the
	// architecture's natural "usize"/"isize" integer.
	PointerSizeBytes uint64
	// Triple is the LLVM target triple passed through to the emitter
	// verbatim; the core never parses it.
	Triple string
}

// Default64 returns the target used when the driver is not given an
// explicit one: a generic 64-bit little-endian target.
func Default64() Info {
	return Info{
		PointerSizeBytes: 8,
		Triple:           "x86_64-unknown-linux-gnu",
	}
}

// PointerSize returns the pointer width in bytes.
func (i Info) PointerSize() uint64 {
	return i.PointerSizeBytes
}
