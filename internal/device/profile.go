package device

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Encodings implemented by Emit.
const (
	EncodingTek4010    = "tek4010"
	EncodingTek4050R12 = "tek4050r12"
)

// Profile names a target device and how drawings are encoded for it.
type Profile struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Encoding    string `yaml:"encoding"`
	RecordSize  int    `yaml:"record_size,omitempty"` // tape record payload; 0 = default
}

// Catalog is an ordered set of device profiles.
type Catalog []Profile

// DefaultCatalog returns the built-in profiles.
func DefaultCatalog() Catalog {
	return Catalog{
		{
			Name:        "tek4010",
			Description: "Tektronix 4010-family terminal vector stream",
			Encoding:    EncodingTek4010,
		},
		{
			Name:        "tek4050r12",
			Description: "Tektronix 4050-series computer with the R12 fast graphics ROM pack",
			Encoding:    EncodingTek4050R12,
			RecordSize:  DefaultRecordSize,
		},
	}
}

// LoadCatalog reads extra profiles from a YAML file and appends them to the
// defaults, with file entries shadowing same-named built-ins.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var extra Catalog
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("device catalog %s: %w", path, err)
	}

	catalog := DefaultCatalog()
	for _, p := range extra {
		replaced := false
		for i := range catalog {
			if catalog[i].Name == p.Name {
				catalog[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			catalog = append(catalog, p)
		}
	}
	return catalog, nil
}

// Lookup finds a profile by name.
func (c Catalog) Lookup(name string) (Profile, error) {
	for _, p := range c {
		if p.Name == name {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("device: unknown profile %q", name)
}
