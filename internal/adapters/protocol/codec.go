// Package protocol encodes update protocol events in the protobuf wire format.
//
// Event fields:
//
//	1 kind          varint
//	2 id            varint
//	3 root_library  string
//	4 libraries     repeated Record
//	5 reason        string
//	6 name          string
//	7 local_path    string
//
// Record fields:
//
//	1 name          string
//	2 local_path    string
//	3 relative_path string
//	4 hash          bytes (32)
//	5 dependencies  repeated string
//
// Unknown fields are skipped so newer servers can add fields.
package protocol

import (
	"errors"
	"math"

	"go.trai.ch/hotswap/internal/core/domain"
	"go.trai.ch/zerr"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	fieldKind        protowire.Number = 1
	fieldID          protowire.Number = 2
	fieldRootLibrary protowire.Number = 3
	fieldLibraries   protowire.Number = 4
	fieldReason      protowire.Number = 5
	fieldName        protowire.Number = 6
	fieldLocalPath   protowire.Number = 7
)

const (
	recordName         protowire.Number = 1
	recordLocalPath    protowire.Number = 2
	recordRelativePath protowire.Number = 3
	recordHash         protowire.Number = 4
	recordDependencies protowire.Number = 5
)

// Marshal encodes ev as one frame.
func Marshal(ev domain.Event) []byte {
	b := protowire.AppendTag(nil, fieldKind, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(ev.Kind))
	if ev.ID != 0 {
		b = protowire.AppendTag(b, fieldID, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(ev.ID))
	}
	b = appendString(b, fieldRootLibrary, ev.RootLibrary)
	for _, rec := range ev.Libraries {
		b = protowire.AppendTag(b, fieldLibraries, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalRecord(rec))
	}
	b = appendString(b, fieldReason, ev.Reason)
	b = appendString(b, fieldName, ev.Name)
	b = appendString(b, fieldLocalPath, ev.LocalPath)
	return b
}

func marshalRecord(rec domain.HashedFileRecord) []byte {
	b := appendString(nil, recordName, rec.Name)
	b = appendString(b, recordLocalPath, rec.LocalPath)
	b = appendString(b, recordRelativePath, rec.RelativePath)
	b = protowire.AppendTag(b, recordHash, protowire.BytesType)
	b = protowire.AppendBytes(b, rec.Hash[:])
	for _, dep := range rec.Dependencies {
		b = protowire.AppendTag(b, recordDependencies, protowire.BytesType)
		b = protowire.AppendString(b, dep)
	}
	return b
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// Unmarshal decodes one frame.
func Unmarshal(data []byte) (domain.Event, error) {
	var ev domain.Event
	err := walk(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == fieldKind && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n >= 0 && v > math.MaxUint8 {
				return 0, zerr.With(zerr.Wrap(domain.ErrMalformedFrame, "event kind out of range"), "kind", v)
			}
			ev.Kind = domain.EventKind(v)
			return n, nil
		case num == fieldID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n >= 0 && v > math.MaxUint32 {
				return 0, zerr.With(zerr.Wrap(domain.ErrMalformedFrame, "build id out of range"), "id", v)
			}
			ev.ID = domain.BuildID(v)
			return n, nil
		case num == fieldRootLibrary && typ == protowire.BytesType:
			return consumeString(b, &ev.RootLibrary)
		case num == fieldLibraries && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			rec, err := unmarshalRecord(v)
			if err != nil {
				return 0, err
			}
			ev.Libraries = append(ev.Libraries, rec)
			return n, nil
		case num == fieldReason && typ == protowire.BytesType:
			return consumeString(b, &ev.Reason)
		case num == fieldName && typ == protowire.BytesType:
			return consumeString(b, &ev.Name)
		case num == fieldLocalPath && typ == protowire.BytesType:
			return consumeString(b, &ev.LocalPath)
		default:
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}
	})
	if err != nil {
		return domain.Event{}, err
	}
	if ev.Kind > domain.EventAssetUpdated {
		return domain.Event{}, zerr.With(zerr.Wrap(domain.ErrMalformedFrame, "unknown event kind"), "kind", uint8(ev.Kind))
	}
	return ev, nil
}

func unmarshalRecord(data []byte) (domain.HashedFileRecord, error) {
	var rec domain.HashedFileRecord
	err := walk(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == recordName && typ == protowire.BytesType:
			return consumeString(b, &rec.Name)
		case num == recordLocalPath && typ == protowire.BytesType:
			return consumeString(b, &rec.LocalPath)
		case num == recordRelativePath && typ == protowire.BytesType:
			return consumeString(b, &rec.RelativePath)
		case num == recordHash && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n >= 0 {
				if len(v) != domain.DigestSize {
					return 0, zerr.With(zerr.Wrap(domain.ErrMalformedFrame, "bad digest length"), "length", len(v))
				}
				copy(rec.Hash[:], v)
			}
			return n, nil
		case num == recordDependencies && typ == protowire.BytesType:
			var dep string
			n, err := consumeString(b, &dep)
			if n >= 0 {
				rec.Dependencies = append(rec.Dependencies, dep)
			}
			return n, err
		default:
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}
	})
	return rec, err
}

// walk calls field for every field of a message. field returns the number of bytes it
// consumed after the tag, or a negative protowire error code.
func walk(data []byte, field func(protowire.Number, protowire.Type, []byte) (int, error)) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return malformed(n)
		}
		data = data[n:]

		m, err := field(num, typ, data)
		if err != nil {
			return err
		}
		if m < 0 {
			return malformed(m)
		}
		data = data[m:]
	}
	return nil
}

func consumeString(b []byte, dst *string) (int, error) {
	v, n := protowire.ConsumeString(b)
	if n >= 0 {
		*dst = v
	}
	return n, nil
}

func malformed(code int) error {
	return errors.Join(domain.ErrMalformedFrame, protowire.ParseError(code))
}
