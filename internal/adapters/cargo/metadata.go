package cargo

import (
	"encoding/json"
	"path/filepath"
	"slices"

	"go.trai.ch/hotswap/internal/core/domain"
	"go.trai.ch/zerr"
)

// metadata is the part of `cargo metadata --format-version 1` the compiler reads.
type metadata struct {
	Packages                []metadataPackage `json:"packages"`
	WorkspaceRoot           string            `json:"workspace_root"`
	WorkspaceDefaultMembers []string          `json:"workspace_default_members"`
	Resolve                 *struct {
		Root *string `json:"root"`
	} `json:"resolve"`
}

type metadataPackage struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	ManifestPath string           `json:"manifest_path"`
	DefaultRun   *string          `json:"default_run"`
	Targets      []metadataTarget `json:"targets"`
}

type metadataTarget struct {
	Name string   `json:"name"`
	Kind []string `json:"kind"`
}

func (t metadataTarget) isLib() bool {
	return slices.ContainsFunc(t.Kind, func(k string) bool {
		return k == "lib" || k == "rlib" || k == "dylib" || k == "cdylib"
	})
}

func (t metadataTarget) isBin() bool     { return slices.Contains(t.Kind, "bin") }
func (t metadataTarget) isExample() bool { return slices.Contains(t.Kind, "example") }

// artifact is the cargo target a build compiles.
type artifact struct {
	// Name is the cargo target name, without build id.
	Name string
	// ManifestPath is set when the selection requires a specific manifest.
	ManifestPath string
}

func parseMetadata(data []byte) (*metadata, error) {
	var meta metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, zerr.Wrap(err, "couldn't parse cargo metadata")
	}
	return &meta, nil
}

func (m *metadata) rootPackage() (metadataPackage, bool) {
	if m.Resolve != nil && m.Resolve.Root != nil {
		if pkg, ok := m.packageByID(*m.Resolve.Root); ok {
			return pkg, true
		}
	}
	if m.WorkspaceRoot != "" {
		manifest := filepath.Join(m.WorkspaceRoot, "Cargo.toml")
		for _, pkg := range m.Packages {
			if pkg.ManifestPath == manifest {
				return pkg, true
			}
		}
	}
	return metadataPackage{}, false
}

func (m *metadata) packageByID(id string) (metadataPackage, bool) {
	i := slices.IndexFunc(m.Packages, func(p metadataPackage) bool { return p.ID == id })
	if i < 0 {
		return metadataPackage{}, false
	}
	return m.Packages[i], true
}

// selectArtifact picks the cargo target matching selector.
func (m *metadata) selectArtifact(selector domain.Selector) (artifact, error) {
	notFound := func(reason string) error {
		return zerr.With(zerr.Wrap(domain.ErrArtifactNotFound, reason), "selector", selector.Name)
	}

	switch selector.Kind {
	case domain.SelectPackage:
		i := slices.IndexFunc(m.Packages, func(p metadataPackage) bool { return p.Name == selector.Name })
		if i < 0 {
			return artifact{}, notFound("no such package")
		}
		name, ok := packageTarget(m.Packages[i])
		if !ok {
			return artifact{}, notFound("package has no library or binary target")
		}
		return artifact{Name: name}, nil

	case domain.SelectExample:
		for _, pkg := range m.Packages {
			for _, t := range pkg.Targets {
				if t.isExample() && t.Name == selector.Name {
					return artifact{Name: t.Name, ManifestPath: pkg.ManifestPath}, nil
				}
			}
		}
		return artifact{}, notFound("no such example")

	default:
		pkg, ok := m.rootPackage()
		if !ok && len(m.WorkspaceDefaultMembers) == 1 {
			pkg, ok = m.packageByID(m.WorkspaceDefaultMembers[0])
		}
		if !ok {
			return artifact{}, notFound("no default package")
		}
		name, ok := packageTarget(pkg)
		if !ok {
			return artifact{}, notFound("default package has no library or binary target")
		}
		return artifact{Name: name}, nil
	}
}

// packageTarget prefers the library, then the default-run binary, then the first binary.
func packageTarget(pkg metadataPackage) (string, bool) {
	if i := slices.IndexFunc(pkg.Targets, metadataTarget.isLib); i >= 0 {
		return pkg.Targets[i].Name, true
	}
	if pkg.DefaultRun != nil {
		i := slices.IndexFunc(pkg.Targets, func(t metadataTarget) bool {
			return t.isBin() && t.Name == *pkg.DefaultRun
		})
		if i < 0 {
			return "", false
		}
		return pkg.Targets[i].Name, true
	}
	if i := slices.IndexFunc(pkg.Targets, metadataTarget.isBin); i >= 0 {
		return pkg.Targets[i].Name, true
	}
	return "", false
}
