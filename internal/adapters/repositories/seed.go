package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"parcel-service/internal/domain"
	"parcel-service/internal/ports"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadSeedFile reads parcels from a JSON or YAML file (chosen by extension).
// Every parcel must pass domain validation; the first failure aborts the load.
func LoadSeedFile(path string) ([]*domain.Parcel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed parcels: read %q: %w", path, err)
	}

	var data []map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("seed parcels: parse yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("seed parcels: parse json: %w", err)
		}
	}

	parcels := make([]*domain.Parcel, 0, len(data))
	for i, item := range data {
		delete(item, domain.FieldID)

		p := domain.ParcelFromFields(item)
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("seed parcels: item at index %d: %w", i+1, err)
		}
		parcels = append(parcels, p)
	}

	return parcels, nil
}

// SeedParcels inserts parcels in file order and returns how many were written.
func SeedParcels(ctx context.Context, store ports.ParcelStore, parcels []*domain.Parcel) (int, error) {
	for i, p := range parcels {
		if _, err := store.Create(ctx, p); err != nil {
			return i, fmt.Errorf("seed parcels: insert item %d: %w", i+1, err)
		}
	}
	return len(parcels), nil
}
