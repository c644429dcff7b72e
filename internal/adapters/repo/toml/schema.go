package toml

import "fmt"

const currentSchemaVersion = 1

type sessionFileSchema struct {
	Version        int                   `toml:"version"`
	Authorizations []authorizationSchema `toml:"authorizations"`
}

func (s *sessionFileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s sessionFileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported session schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type authorizationSchema struct {
	Cluster      string          `toml:"cluster"`
	Selected     string          `toml:"selected"`
	TokenRef     string          `toml:"token_ref"`
	AuthorizedAt string          `toml:"authorized_at,omitempty"`
	Accounts     []accountSchema `toml:"accounts"`
}

type accountSchema struct {
	Address string `toml:"address"`
	Label   string `toml:"label,omitempty"`
}
