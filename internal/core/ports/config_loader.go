package ports

import "go.trai.ch/hotswap/internal/core/domain"

// ConfigLoader defines the interface for loading the project configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load finds the configuration starting at cwd and returns it with overrides applied.
	Load(cwd string) (*domain.Config, error)
	// Defaults returns the configuration of a directory without a configuration file,
	// with environment overrides applied.
	Defaults(cwd string) (*domain.Config, error)
}
