package binfmt

import (
	"bytes"
	"debug/macho"
	"encoding/binary"
	"errors"
	"path"
)

const (
	fatHeaderSize = 8
	fatArchSize   = 20
)

var errNoArchitecture = errors.New("no architecture of the universal binary could be parsed")

func isMachO(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	for _, bo := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		switch bo.Uint32(data) {
		case macho.Magic32, macho.Magic64:
			return true
		}
	}
	return false
}

func isFatMachO(data []byte) bool {
	return len(data) >= 4 && binary.BigEndian.Uint32(data) == macho.MagicFat
}

// Load commands that name a dylib the image links against.
const (
	loadDylib       macho.LoadCmd = 0xc
	loadWeakDylib   macho.LoadCmd = 0x80000018
	reexportDylib   macho.LoadCmd = 0x8000001f
	lazyLoadDylib   macho.LoadCmd = 0x20
	loadUpwardDylib macho.LoadCmd = 0x80000023
)

// dylibNameOffset is where dylib_command stores the offset of its name.
const dylibNameOffset = 8

var errDylibCommand = errors.New("dylib load command is truncated")

// readMachO returns the dylib load commands of a thin binary, reduced to base names.
func readMachO(data []byte) ([]string, error) {
	f, err := macho.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck // reader backed by memory

	var libs []string
	for _, l := range f.Loads {
		raw := l.Raw()
		if len(raw) < dylibNameOffset+4 {
			continue
		}
		switch macho.LoadCmd(f.ByteOrder.Uint32(raw)) {
		case loadDylib, loadWeakDylib, reexportDylib, lazyLoadDylib, loadUpwardDylib:
		default:
			continue
		}
		name, err := dylibName(raw, f.ByteOrder)
		if err != nil {
			return nil, err
		}
		libs = append(libs, path.Base(name))
	}
	return libs, nil
}

func dylibName(raw []byte, bo binary.ByteOrder) (string, error) {
	off := bo.Uint32(raw[dylibNameOffset:])
	if uint64(off) >= uint64(len(raw)) {
		return "", errDylibCommand
	}
	name := raw[off:]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	return string(name), nil
}

// readFatMachO returns the union of the imports of every architecture that parses.
// The header is walked by hand so that one broken slice does not hide the others.
func readFatMachO(data []byte) ([]string, error) {
	if len(data) < fatHeaderSize {
		return nil, errNoArchitecture
	}
	n := int(binary.BigEndian.Uint32(data[4:8]))

	var union []string
	parsed := 0
	for i := range n {
		off := fatHeaderSize + i*fatArchSize
		if off+fatArchSize > len(data) {
			break
		}
		arch := data[off : off+fatArchSize]
		start := uint64(binary.BigEndian.Uint32(arch[8:12]))
		size := uint64(binary.BigEndian.Uint32(arch[12:16]))
		if start+size > uint64(len(data)) {
			continue
		}
		libs, err := readMachO(data[start : start+size])
		if err != nil {
			continue
		}
		parsed++
		union = append(union, libs...)
	}

	if parsed == 0 {
		return nil, errNoArchitecture
	}
	return union, nil
}
