package binfmt_test

import (
	"encoding/binary"
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/hotswap/internal/adapters/binfmt"
	"go.trai.ch/hotswap/internal/core/domain"
)

const (
	machoMagic32   = 0xfeedface
	machoFatMagic  = 0xcafebabe
	loadCmdDylib   = 0xc
	loadCmdWeak    = 0x80000018
	loadCmdReexp   = 0x8000001f
	loadCmdLazy    = 0x20
	loadCmdUpward  = 0x80000023
	dylibCmdHeader = 24
	machoHeader32  = 28
)

// thinMachO builds a minimal 32-bit little-endian Mach-O with one LC_LOAD_DYLIB per name.
func thinMachO(names ...string) []byte {
	return thinMachOCmd(loadCmdDylib, names...)
}

// thinMachOCmd is thinMachO with the load command kind chosen by the caller.
func thinMachOCmd(kind uint32, names ...string) []byte {
	var cmds []byte
	for _, name := range names {
		size := dylibCmdHeader + len(name) + 1
		if rem := size % 4; rem != 0 {
			size += 4 - rem
		}
		cmd := make([]byte, size)
		binary.LittleEndian.PutUint32(cmd[0:], kind)
		binary.LittleEndian.PutUint32(cmd[4:], uint32(size))
		binary.LittleEndian.PutUint32(cmd[8:], dylibCmdHeader)
		copy(cmd[dylibCmdHeader:], name)
		cmds = append(cmds, cmd...)
	}

	hdr := make([]byte, machoHeader32)
	binary.LittleEndian.PutUint32(hdr[0:], machoMagic32)
	binary.LittleEndian.PutUint32(hdr[4:], 7)  // CPU_TYPE_X86
	binary.LittleEndian.PutUint32(hdr[12:], 6) // MH_DYLIB
	binary.LittleEndian.PutUint32(hdr[16:], uint32(len(names)))
	binary.LittleEndian.PutUint32(hdr[20:], uint32(len(cmds)))
	return append(hdr, cmds...)
}

// fatMachO packs slices into a universal binary.
func fatMachO(slices ...[]byte) []byte {
	hdr := make([]byte, 8+20*len(slices))
	binary.BigEndian.PutUint32(hdr[0:], machoFatMagic)
	binary.BigEndian.PutUint32(hdr[4:], uint32(len(slices)))

	off := len(hdr)
	for i, s := range slices {
		entry := hdr[8+20*i:]
		binary.BigEndian.PutUint32(entry[8:], uint32(off))
		binary.BigEndian.PutUint32(entry[12:], uint32(len(s)))
		off += len(s)
	}

	body := hdr
	for _, s := range slices {
		body = append(body, s...)
	}
	return body
}

func TestReader_UnknownFormat(t *testing.T) {
	r := binfmt.NewReader()

	for _, data := range [][]byte{nil, []byte("plain text"), {0x00, 0x01}} {
		got, err := r.ReadImports(data)
		require.NoError(t, err)
		assert.Empty(t, got)
	}
}

func TestReader_MalformedRecognisedFormat(t *testing.T) {
	r := binfmt.NewReader()

	tests := map[string][]byte{
		"elf":  append([]byte("\x7fELF"), make([]byte, 60)...),
		"pe":   append([]byte("MZ"), make([]byte, 126)...),
		"fat":  fatMachO([]byte("garbage slice")),
		"thin": {0xce, 0xfa, 0xed, 0xfe, 0x00},
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := r.ReadImports(data)
			require.ErrorIs(t, err, domain.ErrMalformedBinary)
		})
	}
}

func TestReader_MachO(t *testing.T) {
	r := binfmt.NewReader()

	got, err := r.ReadImports(thinMachO("@rpath/libgame.dylib", "/usr/lib/libSystem.B.dylib", "@rpath/libgame.dylib"))
	require.NoError(t, err)
	assert.Equal(t, []string{"libSystem.B.dylib", "libgame.dylib"}, got)
}

func TestReader_MachODylibCommandKinds(t *testing.T) {
	r := binfmt.NewReader()

	tests := []struct {
		name string
		kind uint32
	}{
		{"load", loadCmdDylib},
		{"weak", loadCmdWeak},
		{"reexport", loadCmdReexp},
		{"lazy", loadCmdLazy},
		{"upward", loadCmdUpward},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ReadImports(thinMachOCmd(tt.kind, "@rpath/libdep.dylib"))
			require.NoError(t, err)
			assert.Equal(t, []string{"libdep.dylib"}, got)
		})
	}
}

func TestFatMachOHelper_Offsets(t *testing.T) {
	a, b := thinMachO("@rpath/liba.dylib"), thinMachO("@rpath/libb.dylib")
	data := fatMachO(a, b)

	for i, want := range [][]byte{a, b} {
		entry := data[8+20*i:]
		off := binary.BigEndian.Uint32(entry[8:])
		size := binary.BigEndian.Uint32(entry[12:])
		assert.Equal(t, want, data[off:off+size])
	}
}

func TestReader_FatMachOUnionSkipsBrokenSlices(t *testing.T) {
	r := binfmt.NewReader()

	data := fatMachO(
		thinMachO("@rpath/libstd.dylib"),
		[]byte("not a mach-o"),
		thinMachO("@rpath/libgame.dylib", "@rpath/libstd.dylib"),
	)

	got, err := r.ReadImports(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"libgame.dylib", "libstd.dylib"}, got)
}

func TestReader_RunningExecutable(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("ELF only")
	}
	exe, err := os.Executable()
	require.NoError(t, err)
	data, err := os.ReadFile(exe)
	require.NoError(t, err)

	got, err := binfmt.NewReader().ReadImports(data)
	require.NoError(t, err)
	for _, name := range got {
		assert.NotEmpty(t, name)
	}
}
