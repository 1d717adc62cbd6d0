package kernel

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/mesh-intelligence/metakernel/pkg/types"
)

// ApplyEnv overrides fields of config with the METAKERNEL_* environment
// variables that are set. Unset variables leave the field alone.
func ApplyEnv(config types.Config) (types.Config, error) {
	if err := env.Parse(&config); err != nil {
		return config, fmt.Errorf("reading environment: %w", err)
	}
	return config, nil
}
