// Package seed provides the bundled GerustThuis project plan used when no
// snapshot has been saved yet.
package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/diogenes-ai-code/gtadmin/internal/models"
)

//go:embed seed.yaml
var seedYAML []byte

var (
	once    sync.Once
	dataset *models.Snapshot
	loadErr error
)

// Dataset returns a fresh deep copy of the seed project plan. Callers may
// mutate the result freely.
func Dataset() (*models.Snapshot, error) {
	once.Do(func() {
		dataset, loadErr = Parse(seedYAML)
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return dataset.Clone(), nil
}

// MustDataset is like Dataset but panics if the embedded seed is malformed.
func MustDataset() *models.Snapshot {
	s, err := Dataset()
	if err != nil {
		panic(err)
	}
	return s
}

// Parse decodes a YAML project plan into a snapshot. Field names follow the
// snapshot JSON keys, so the document is routed through encoding/json.
func Parse(data []byte) (*models.Snapshot, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert seed: %w", err)
	}

	var s models.Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to decode seed: %w", err)
	}
	if s.Project == nil {
		return nil, fmt.Errorf("seed has no project")
	}
	return &s, nil
}
