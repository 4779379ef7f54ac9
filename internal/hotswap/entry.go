package hotswap

import (
	"runtime"
	"unsafe"

	"go.trai.ch/hotswap/internal/native"
)

// EntryInfo is the table passed to the entry function of a library. Every field is a C
// function pointer:
//
//	uint32_t last_update_version(void);
//	bool     update_ready(void);
//	int      call_on_current(const char *symbol, void *arg); // 0 on success
//	void     set_update_callback(void (*cb)(uint32_t version));
//	bool     update(void);
//	void     set_asset_callback(void (*cb)(const UpdatedAsset *asset));
type EntryInfo struct {
	LastUpdateVersion uintptr
	UpdateReady       uintptr
	CallOnCurrent     uintptr
	SetUpdateCallback uintptr
	Update            uintptr
	SetAssetCallback  uintptr
}

// UpdatedAsset is the argument of the native asset callback. Neither string is NUL
// terminated and both are only valid during the callback.
type UpdatedAsset struct {
	Name    *byte
	NameLen uintptr
	Path    *byte
	PathLen uintptr
}

// EntryInfo returns the runtime's function table, creating the callbacks on first use.
func (r *Runtime) EntryInfo() *EntryInfo {
	r.entryOnce.Do(func() {
		r.entry = &EntryInfo{
			LastUpdateVersion: native.NewCallback(r.AppliedVersion),
			UpdateReady:       native.NewCallback(r.IsUpdateReady),
			CallOnCurrent:     native.NewCallback(r.callOnCurrent),
			SetUpdateCallback: native.NewCallback(r.setNativeUpdateCallback),
			Update:            native.NewCallback(r.Adopt),
			SetAssetCallback:  native.NewCallback(r.setNativeAssetCallback),
		}
	})
	return r.entry
}

func (r *Runtime) callOnCurrent(symbol, arg unsafe.Pointer) uintptr {
	name := native.GoString(symbol)
	if _, err := r.Call(name, arg); err != nil {
		r.logger.Error(err)
		return 1
	}
	return 0
}

func (r *Runtime) setNativeUpdateCallback(cb uintptr) {
	r.SetUpdateCallback(func(version uint32) {
		native.CallPointer(cb, uintptr(version))
	})
}

func (r *Runtime) setNativeAssetCallback(cb uintptr) {
	r.SetAssetCallback(func(name, path string) {
		nameBuf, pathBuf := []byte(name), []byte(path)
		asset := &UpdatedAsset{NameLen: uintptr(len(nameBuf)), PathLen: uintptr(len(pathBuf))}
		if len(nameBuf) > 0 {
			asset.Name = &nameBuf[0]
		}
		if len(pathBuf) > 0 {
			asset.Path = &pathBuf[0]
		}
		native.CallPointer(cb, uintptr(unsafe.Pointer(asset)))
		runtime.KeepAlive(nameBuf)
		runtime.KeepAlive(pathBuf)
	})
}
