//go:build windows

package native

import "golang.org/x/sys/windows"

func open(path string) (uintptr, error) {
	handle, err := windows.LoadLibrary(path)
	return uintptr(handle), err
}

func lookup(handle uintptr, symbol string) (uintptr, error) {
	return windows.GetProcAddress(windows.Handle(handle), symbol)
}

func closeHandle(handle uintptr) error {
	return windows.FreeLibrary(windows.Handle(handle))
}
