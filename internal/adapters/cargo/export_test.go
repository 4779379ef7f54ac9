package cargo

import (
	"io"

	"go.trai.ch/hotswap/internal/core/domain"
	"go.trai.ch/hotswap/internal/core/ports"
)

type Progress = progress

func SelectArtifact(data []byte, selector domain.Selector) (name, manifest string, err error) {
	meta, err := parseMetadata(data)
	if err != nil {
		return "", "", err
	}
	art, err := meta.selectArtifact(selector)
	return art.Name, art.ManifestPath, err
}

func ReadMessages(r io.Reader) (Progress, error) {
	return readMessages(r, func(string) {})
}

func RustcArgs(inv ports.Invocation, manifestPath, linker string) []string {
	return rustcArgs(inv, manifestPath, linker)
}

func BuildEnv(inv ports.Invocation, tools Tools, root, packageName, outputFile string) (map[string]string, error) {
	return buildEnv(inv, tools, newLayout(root, inv.Target), packageName, outputFile)
}

func ResolveEnvironment(sysEnv []string, overrides map[string]string) []string {
	return resolveEnvironment(sysEnv, overrides)
}

func (c *Compiler) SetEnviron(environ func() []string) {
	c.environ = environ
}
