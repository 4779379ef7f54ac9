package hotswap

import "unsafe"

// SetEntryArg replaces the argument passed to the entry function.
func SetEntryArg(r *Runner, arg func() unsafe.Pointer) {
	r.entryArg = arg
}
