package native

import (
	"unsafe"

	"github.com/ebitengine/purego"
)

// NewCallback turns a Go function into a C function pointer. Arguments and the result
// must each fit in a uintptr. Callbacks are never freed, so create them once per process.
func NewCallback(fn any) uintptr {
	return purego.NewCallback(fn)
}

// CallPointer calls the C function at fn. Pointer arguments converted to uintptr stay
// alive until the call returns.
//
//go:uintptrescapes
func CallPointer(fn uintptr, args ...uintptr) uintptr {
	r1, _, _ := purego.SyscallN(fn, args...)
	return r1
}

// GoString copies a NUL-terminated C string.
func GoString(p unsafe.Pointer) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(p), n))
}
