package domain_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/hotswap/internal/core/domain"
)

func TestIncrementalRun_JSON(t *testing.T) {
	data, err := json.Marshal(domain.InitialRun())
	require.NoError(t, err)
	assert.JSONEq(t, `"InitialRun"`, string(data))

	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	data, err = json.Marshal(domain.Patch(3, ts, []string{"game.1", "game.2"}))
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"Patch":{"id":3,"timestamp":"2026-01-02T03:04:05Z","previous_versions":["game.1","game.2"]}}`,
		string(data))

	var got domain.IncrementalRun
	require.NoError(t, json.Unmarshal(data, &got))
	assert.False(t, got.Initial)
	assert.Equal(t, domain.BuildID(3), got.ID)
	assert.Equal(t, []string{"game.1", "game.2"}, got.PreviousVersions)
}

func TestPreviousVersions_Usable(t *testing.T) {
	dir := t.TempDir()
	kept := filepath.Join(dir, "libgame.1.so")
	require.NoError(t, os.WriteFile(kept, []byte("x"), 0o600))

	var pv domain.PreviousVersions
	pv.Add("game.1", kept)
	pv.Add("game.2", filepath.Join(dir, "libgame.2.so"))

	assert.Equal(t, 2, pv.Len())
	assert.Equal(t, []string{"game.1"}, pv.Usable())
}

func TestParseDigest(t *testing.T) {
	var d domain.Digest
	d[0] = 0xab
	got, err := domain.ParseDigest(d.String())
	require.NoError(t, err)
	assert.Equal(t, d, got)

	_, err = domain.ParseDigest("zz")
	assert.ErrorIs(t, err, domain.ErrHashMismatch)
}
