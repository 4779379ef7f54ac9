package protocol_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/hotswap/internal/adapters/protocol"
	"go.trai.ch/hotswap/internal/core/domain"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestCodec_BuildEnded(t *testing.T) {
	var digest domain.Digest
	for i := range digest {
		digest[i] = byte(i)
	}
	ev := domain.BuildEnded(7, "libgame.7.so", []domain.HashedFileRecord{
		{
			Name:         "libgame.7.so",
			LocalPath:    "/work/target/libgame.7.so",
			RelativePath: "./libgame.7.so",
			Hash:         digest,
			Dependencies: []string{"libstd.so"},
		},
		{Name: "libstd.so", LocalPath: "/rust/lib/libstd.so", RelativePath: "./libstd.so"},
	})

	got, err := protocol.Unmarshal(protocol.Marshal(ev))
	require.NoError(t, err)
	assert.Equal(t, ev, got)
}

func TestCodec_Variants(t *testing.T) {
	for _, ev := range []domain.Event{
		domain.KeepAlive(),
		domain.BuildStarted(1),
		domain.BuildFailed(2, "linker exited with 1"),
		domain.AssetUpdated("sprite.png", "/assets/sprite.png"),
	} {
		t.Run(ev.Kind.String(), func(t *testing.T) {
			got, err := protocol.Unmarshal(protocol.Marshal(ev))
			require.NoError(t, err)
			assert.Equal(t, ev, got)
		})
	}
}

func TestCodec_SkipsUnknownFields(t *testing.T) {
	frame := protocol.Marshal(domain.BuildStarted(3))
	frame = protowire.AppendTag(frame, 99, protowire.BytesType)
	frame = protowire.AppendString(frame, "from the future")

	got, err := protocol.Unmarshal(frame)
	require.NoError(t, err)
	assert.Equal(t, domain.BuildStarted(3), got)
}

func TestCodec_Malformed(t *testing.T) {
	tests := map[string][]byte{
		"truncated": protocol.Marshal(domain.BuildEnded(1, "libgame.1.so", nil))[:6],
		"bad kind":  protowire.AppendVarint(protowire.AppendTag(nil, 1, protowire.VarintType), 200),
		"bad tag":   {0xff},
		"wide kind": protowire.AppendVarint(protowire.AppendTag(nil, 1, protowire.VarintType), 256),
		"wide id":   protowire.AppendVarint(protowire.AppendTag(nil, 2, protowire.VarintType), 1<<32),
	}
	for name, frame := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := protocol.Unmarshal(frame)
			require.ErrorIs(t, err, domain.ErrMalformedFrame)
		})
	}
}
