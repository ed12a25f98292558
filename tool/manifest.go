package tool

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is the YAML document shape consumed by LoadManifest. It lets a
// bootstrap process register tool metadata for discovery before handlers are
// bound in code:
//
//	tools:
//	  - id: echo
//	    name: Echo
//	    version: "1.0.0"
//	    description: Returns its message argument.
//	    schema:
//	      message: {type: string, required: true}
type Manifest struct {
	Tools []Metadata `yaml:"tools"`
}

// LoadManifest parses a YAML manifest document.
func LoadManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse tool manifest: %w", err)
	}
	for i, t := range m.Tools {
		if t.ToolID == "" {
			return nil, fmt.Errorf("tool manifest entry %d has no id", i)
		}
	}
	return &m, nil
}

// LoadManifestFile reads and parses a YAML manifest from path.
func LoadManifestFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tool manifest: %w", err)
	}
	return LoadManifest(data)
}

// Apply registers every manifest entry as metadata-only (no handler bound).
// Entries replace existing registrations, matching the bootstrap contract
// that manifests are the source of truth for discovery metadata.
func (m *Manifest) Apply(registry *Registry) error {
	for _, t := range m.Tools {
		if err := registry.Register(t, nil, true); err != nil {
			return err
		}
	}
	return nil
}
