package catalog

import (
	"context"
	"fmt"
	"strings"
)

// Station is a physical location that can own assets.
type Station struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

// Validate checks station invariants.
func (s Station) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: station: empty name", ErrInvalidRecord)
	}
	return nil
}

// StationPatch carries the station fields an update replaces.
type StationPatch struct {
	Name     *string
	Location *string
}

// IsEmpty reports whether the patch names no field.
func (p StationPatch) IsEmpty() bool {
	return p.Name == nil && p.Location == nil
}

// Validate checks the patch.
func (p StationPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return fmt.Errorf("%w: station: empty name", ErrInvalidRecord)
	}
	return nil
}

// StationRepository manages station persistence. Get returns (nil, nil)
// when the id does not exist.
type StationRepository interface {
	Create(ctx context.Context, station Station) (int64, error)
	Get(ctx context.Context, id int64) (*Station, error)
	List(ctx context.Context) ([]Station, error)
	Update(ctx context.Context, id int64, patch StationPatch) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// AssetRepository manages assets of every variant. Get returns (nil, nil)
// when the id does not exist.
type AssetRepository interface {
	Create(ctx context.Context, asset Asset) (int64, error)
	Get(ctx context.Context, variant Variant, id int64) (*Asset, error)
	ListWithStationName(ctx context.Context, variant Variant) ([]AssetListing, error)
	Update(ctx context.Context, variant Variant, id int64, patch AssetPatch) (bool, error)
	Delete(ctx context.Context, variant Variant, id int64) (bool, error)
	CountsByStation(ctx context.Context) (AssetCounts, error)
	Totals(ctx context.Context) (AssetTotals, error)
}
