// Package corrections provides the manually curated coordinate overrides
// applied to the stored table after the join.
package corrections

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/couchcryptid/climate-normals-etl/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed corrections.yaml
var defaultList []byte

// Default returns the built-in correction list.
func Default() []domain.Correction {
	list, err := parse(defaultList)
	if err != nil {
		panic(fmt.Sprintf("embedded corrections: %v", err))
	}
	return list
}

// Load reads a correction list from path, or returns the built-in list when
// path is empty.
func Load(path string) ([]domain.Correction, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corrections: %w", err)
	}
	list, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse corrections %s: %w", path, err)
	}
	return list, nil
}

// parse decodes a YAML list and normalizes the station names so they can be
// matched by equality against stored rows.
func parse(data []byte) ([]domain.Correction, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var list []domain.Correction
	if err := dec.Decode(&list); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(list))
	for i := range list {
		name := domain.Normalize(list[i].Station)
		if name == "" {
			return nil, fmt.Errorf("entry %d: station is required", i)
		}
		if seen[name] {
			return nil, fmt.Errorf("entry %d: duplicate station %q", i, name)
		}
		if list[i].Lat < -90 || list[i].Lat > 90 || list[i].Lon < -180 || list[i].Lon > 180 {
			return nil, fmt.Errorf("entry %d: coordinates out of range for %q", i, name)
		}
		seen[name] = true
		list[i].Station = name
	}
	return list, nil
}
