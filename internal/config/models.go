package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/secdocs/guidance-extractor/internal/core/domain"
)

type modelsFile struct {
	Models []domain.ModelConfig `yaml:"models"`
}

// LoadModels reads the backend roster. Exactly one model must carry the
// primary role; it is the one treated as ground truth during consensus
// merging.
func LoadModels(path string) ([]domain.ModelConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read models file: %w", err)
	}

	var file modelsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse models file: %w", err)
	}
	if len(file.Models) == 0 {
		return nil, fmt.Errorf("models file %s lists no models", path)
	}

	primaries := 0
	for i, m := range file.Models {
		if m.Name == "" {
			return nil, fmt.Errorf("model %d has no name", i)
		}
		if m.Endpoint == "" {
			return nil, fmt.Errorf("model %s has no endpoint", m.Name)
		}
		switch m.Role {
		case domain.RolePrimary:
			primaries++
		case domain.RoleValidation, domain.RoleCrossCheck:
		default:
			return nil, fmt.Errorf("model %s has unknown role %q", m.Name, m.Role)
		}
	}
	if primaries != 1 {
		return nil, fmt.Errorf("models file %s must declare exactly one primary model, found %d", path, primaries)
	}
	return file.Models, nil
}
