package catalog

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"skillgap-backend/internal/shared/telemetry"
)

//go:embed resources.yaml
var seedYAML []byte

// DefaultResources returns the built-in resource list.
func DefaultResources() ([]Resource, error) {
	return ParseResources(seedYAML)
}

// ParseResources decodes a YAML resource list.
func ParseResources(data []byte) ([]Resource, error) {
	var doc struct {
		Resources []Resource `yaml:"resources"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse resources: %w", err)
	}
	for i, r := range doc.Resources {
		if r.Skill == "" || r.Title == "" || r.URL == "" {
			return nil, fmt.Errorf("resource %d: skill, title and url are required", i)
		}
	}
	return doc.Resources, nil
}

// Seed inserts the built-in resources when the catalog is empty. It returns
// the number of inserted rows.
func Seed(ctx context.Context, repo Repo) (int, error) {
	n, err := repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count resources: %w", err)
	}
	if n > 0 {
		return 0, nil
	}
	resources, err := DefaultResources()
	if err != nil {
		return 0, err
	}
	if err := repo.Insert(ctx, resources); err != nil {
		return 0, fmt.Errorf("seed resources: %w", err)
	}
	telemetry.Info("catalog.seeded", map[string]any{"count": len(resources)})
	return len(resources), nil
}
