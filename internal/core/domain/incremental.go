package domain

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

// IncrementalRun tells the linker wrapper whether it may patch a previous build.
type IncrementalRun struct {
	Initial          bool
	ID               BuildID
	Timestamp        time.Time
	PreviousVersions []string
}

// InitialRun describes the first build of a session.
func InitialRun() IncrementalRun {
	return IncrementalRun{Initial: true}
}

// Patch describes a follow-up build that may reuse the named previous artifacts.
func Patch(id BuildID, ts time.Time, previous []string) IncrementalRun {
	return IncrementalRun{ID: id, Timestamp: ts, PreviousVersions: previous}
}

type patchJSON struct {
	ID               BuildID   `json:"id"`
	Timestamp        time.Time `json:"timestamp"`
	PreviousVersions []string  `json:"previous_versions"`
}

// MarshalJSON encodes the run as "InitialRun" or {"Patch": {...}}.
func (r IncrementalRun) MarshalJSON() ([]byte, error) {
	if r.Initial {
		return json.Marshal("InitialRun")
	}
	return json.Marshal(map[string]patchJSON{"Patch": {
		ID:               r.ID,
		Timestamp:        r.Timestamp,
		PreviousVersions: r.PreviousVersions,
	}})
}

// UnmarshalJSON decodes either encoding produced by MarshalJSON.
func (r *IncrementalRun) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = InitialRun()
		return nil
	}
	var p map[string]patchJSON
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	patch := p["Patch"]
	*r = Patch(patch.ID, patch.Timestamp, patch.PreviousVersions)
	return nil
}

// PreviousVersion is an artifact produced by an earlier build.
type PreviousVersion struct {
	Name string
	Path string
}

// PreviousVersions is the append-only history of artifacts used as incremental build hints.
type PreviousVersions struct {
	mu      sync.Mutex
	entries []PreviousVersion
}

// Add records an artifact.
func (p *PreviousVersions) Add(name, path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, PreviousVersion{Name: name, Path: path})
}

// Usable returns the names of recorded artifacts whose files still exist.
func (p *PreviousVersions) Usable() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, 0, len(p.entries))
	for _, e := range p.entries {
		if _, err := os.Stat(e.Path); err == nil {
			names = append(names, e.Name)
		}
	}
	return names
}

// Len returns the number of recorded artifacts.
func (p *PreviousVersions) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}
