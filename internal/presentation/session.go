package presentation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"asset-catalog/internal/catalog/application"
	catalog "asset-catalog/internal/catalog/domain"
)

// Session is one operator's view state. It owns a lazily loaded station name
// lookup that is dropped on every station mutation issued through it.
type Session struct {
	invoker Invoker

	mu           sync.Mutex
	stationNames map[int64]string
}

// NewSession constructs a Session over invoker.
func NewSession(invoker Invoker) (*Session, error) {
	if invoker == nil {
		return nil, errors.New("presentation: nil invoker")
	}
	return &Session{invoker: invoker}, nil
}

func (s *Session) call(ctx context.Context, op string, out any, args ...any) (bool, error) {
	reply, err := s.invoker.Invoke(ctx, op, args...)
	if err != nil {
		return false, err
	}
	if reply.NotFound {
		return false, nil
	}
	if out != nil {
		if err := json.Unmarshal(reply.Result, out); err != nil {
			return false, fmt.Errorf("presentation: decode %s: %w", op, err)
		}
	}
	return true, nil
}

// Invalidate drops the station name lookup.
func (s *Session) Invalidate() {
	s.mu.Lock()
	s.stationNames = nil
	s.mu.Unlock()
}

// Stations lists stations and refreshes the lookup from the result.
func (s *Session) Stations(ctx context.Context) ([]catalog.Station, error) {
	var stations []catalog.Station
	if _, err := s.call(ctx, "listStations", &stations); err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(stations))
	for _, st := range stations {
		names[st.ID] = st.Name
	}
	s.mu.Lock()
	s.stationNames = names
	s.mu.Unlock()
	return stations, nil
}

// StationName resolves id through the lookup, loading it on first use. ok is
// false when the id is nil or names no existing station.
func (s *Session) StationName(ctx context.Context, id *int64) (name string, ok bool, err error) {
	if id == nil {
		return "", false, nil
	}
	s.mu.Lock()
	names := s.stationNames
	s.mu.Unlock()
	if names == nil {
		if _, err := s.Stations(ctx); err != nil {
			return "", false, err
		}
		s.mu.Lock()
		names = s.stationNames
		s.mu.Unlock()
	}
	name, ok = names[*id]
	return name, ok, nil
}

// DisplayStation renders a station reference, using the unknown marker for
// unset or dangling ids.
func (s *Session) DisplayStation(ctx context.Context, id *int64) (string, error) {
	name, ok, err := s.StationName(ctx, id)
	if err != nil {
		return "", err
	}
	if !ok {
		return catalog.UnknownStationName, nil
	}
	return name, nil
}

// SaveStation creates a station.
func (s *Session) SaveStation(ctx context.Context, name, location string) (int64, error) {
	defer s.Invalidate()
	var id int64
	_, err := s.call(ctx, "saveStation", &id, map[string]string{"name": name, "location": location})
	return id, err
}

// GetStation returns the station or nil when it does not exist.
func (s *Session) GetStation(ctx context.Context, id int64) (*catalog.Station, error) {
	var station catalog.Station
	found, err := s.call(ctx, "getStationById", &station, id)
	if err != nil || !found {
		return nil, err
	}
	return &station, nil
}

// UpdateStation patches a station.
func (s *Session) UpdateStation(ctx context.Context, id int64, fields map[string]any) (bool, error) {
	defer s.Invalidate()
	var ok bool
	_, err := s.call(ctx, "updateStation", &ok, id, fields)
	return ok, err
}

// DeleteStation removes a station.
func (s *Session) DeleteStation(ctx context.Context, id int64) (bool, error) {
	defer s.Invalidate()
	var ok bool
	_, err := s.call(ctx, "deleteStation", &ok, id)
	return ok, err
}

// SaveAsset submits a form record for the variant.
func (s *Session) SaveAsset(ctx context.Context, variant catalog.Variant, record map[string]any) (int64, error) {
	var id int64
	_, err := s.call(ctx, application.OperationName("save", variant, ""), &id, record)
	return id, err
}

// GetAsset returns the asset or nil when it does not exist.
func (s *Session) GetAsset(ctx context.Context, variant catalog.Variant, id int64) (*catalog.Asset, error) {
	var asset catalog.Asset
	found, err := s.call(ctx, application.OperationName("get", variant, "ById"), &asset, id)
	if err != nil || !found {
		return nil, err
	}
	return &asset, nil
}

// UpdateAsset submits changed fields for an asset.
func (s *Session) UpdateAsset(ctx context.Context, variant catalog.Variant, id int64, fields map[string]any) (bool, error) {
	var ok bool
	_, err := s.call(ctx, application.OperationName("update", variant, ""), &ok, id, fields)
	return ok, err
}

// DeleteAsset removes an asset.
func (s *Session) DeleteAsset(ctx context.Context, variant catalog.Variant, id int64) (bool, error) {
	var ok bool
	_, err := s.call(ctx, application.OperationName("delete", variant, ""), &ok, id)
	return ok, err
}

// LoadAssets fetches a fresh display copy of the variant's listing.
func (s *Session) LoadAssets(ctx context.Context, variant catalog.Variant) (*AssetView, error) {
	if _, err := variant.FieldSet(); err != nil {
		return nil, err
	}
	var listings []catalog.AssetListing
	if _, err := s.call(ctx, application.OperationName("list", variant, "WithStationName"), &listings); err != nil {
		return nil, err
	}
	return &AssetView{Variant: variant, items: listings}, nil
}

// Dashboard builds totals and chart series from the count operations.
func (s *Session) Dashboard(ctx context.Context) (catalog.Dashboard, error) {
	counts := catalog.NewAssetCounts()
	if _, err := s.call(ctx, "getAssetCountsByStation", &counts); err != nil {
		return catalog.Dashboard{}, err
	}
	totals := catalog.NewAssetTotals()
	if _, err := s.call(ctx, "getAssetTotals", &totals); err != nil {
		return catalog.Dashboard{}, err
	}
	return catalog.BuildDashboard(counts, totals), nil
}

// AssetView is a transient listing. Search and Sort return new slices and
// never change the loaded items.
type AssetView struct {
	Variant catalog.Variant
	items   []catalog.AssetListing
}

// Items returns a copy of the loaded listing.
func (v *AssetView) Items() []catalog.AssetListing {
	return append([]catalog.AssetListing(nil), v.items...)
}

// Len returns the number of loaded listings.
func (v *AssetView) Len() int { return len(v.items) }

// Search filters by a case-insensitive substring in column or in every
// column when column is "all".
func (v *AssetView) Search(column, term string) []catalog.AssetListing {
	return catalog.SearchListings(v.items, column, term)
}

// Sort orders the listing by field.
func (v *AssetView) Sort(field catalog.Field, order catalog.SortOrder) []catalog.AssetListing {
	return catalog.SortListings(v.items, field, order)
}
