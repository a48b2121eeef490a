package application

import (
	"context"
	"errors"
	"log"
	"time"

	"asset-catalog/internal/catalog/application/events"
	catalog "asset-catalog/internal/catalog/domain"
	"asset-catalog/internal/eventing"
	"asset-catalog/internal/observability/metrics"
)

// Service runs catalog operations against the store. Failures are logged and
// returned unchanged; successful mutations are published on the bus.
type Service struct {
	stations catalog.StationRepository
	assets   catalog.AssetRepository
	bus      eventing.Bus
	logger   *log.Logger
	now      func() time.Time
}

// Option configures the service.
type Option func(*Service)

// WithLogger sets the failure logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBus publishes change events to bus.
func WithBus(bus eventing.Bus) Option {
	return func(s *Service) {
		s.bus = bus
	}
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a catalog service.
func NewService(stations catalog.StationRepository, assets catalog.AssetRepository, opts ...Option) (*Service, error) {
	if stations == nil {
		return nil, errors.New("catalog service: nil station repo")
	}
	if assets == nil {
		return nil, errors.New("catalog service: nil asset repo")
	}
	s := &Service{
		stations: stations,
		assets:   assets,
		logger:   log.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SaveStation creates a station and returns its id.
func (s *Service) SaveStation(ctx context.Context, station catalog.Station) (id int64, err error) {
	defer s.observe("saveStation", time.Now(), &err)
	id, err = s.stations.Create(ctx, station)
	if err != nil {
		return 0, err
	}
	s.publishStation(ctx, id, events.ActionCreated)
	return id, nil
}

// GetStation returns the station or nil when it does not exist.
func (s *Service) GetStation(ctx context.Context, id int64) (*catalog.Station, error) {
	start := time.Now()
	station, err := s.stations.Get(ctx, id)
	s.observeLookup("getStationById", start, station != nil, err)
	return station, err
}

// ListStations returns every station.
func (s *Service) ListStations(ctx context.Context) (stations []catalog.Station, err error) {
	defer s.observe("listStations", time.Now(), &err)
	return s.stations.List(ctx)
}

// UpdateStation patches a station; false means the id does not exist.
func (s *Service) UpdateStation(ctx context.Context, id int64, patch catalog.StationPatch) (ok bool, err error) {
	defer s.observe("updateStation", time.Now(), &err)
	ok, err = s.stations.Update(ctx, id, patch)
	if err != nil {
		return false, err
	}
	if ok {
		s.publishStation(ctx, id, events.ActionUpdated)
	}
	return ok, nil
}

// DeleteStation removes a station without touching the assets it held.
func (s *Service) DeleteStation(ctx context.Context, id int64) (ok bool, err error) {
	defer s.observe("deleteStation", time.Now(), &err)
	ok, err = s.stations.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if ok {
		s.publishStation(ctx, id, events.ActionDeleted)
	}
	return ok, nil
}

// SaveAsset creates an asset in its variant's collection.
func (s *Service) SaveAsset(ctx context.Context, asset catalog.Asset) (id int64, err error) {
	defer s.observe(OperationName("save", asset.Variant, ""), time.Now(), &err)
	id, err = s.assets.Create(ctx, asset)
	if err != nil {
		return 0, err
	}
	s.publishAsset(ctx, asset.Variant, id, events.ActionCreated)
	return id, nil
}

// GetAsset returns the asset or nil when it does not exist.
func (s *Service) GetAsset(ctx context.Context, variant catalog.Variant, id int64) (*catalog.Asset, error) {
	start := time.Now()
	asset, err := s.assets.Get(ctx, variant, id)
	s.observeLookup(OperationName("get", variant, "ById"), start, asset != nil, err)
	return asset, err
}

// ListAssets returns every asset of the variant with its station name.
func (s *Service) ListAssets(ctx context.Context, variant catalog.Variant) (listings []catalog.AssetListing, err error) {
	defer s.observe(OperationName("list", variant, "WithStationName"), time.Now(), &err)
	return s.assets.ListWithStationName(ctx, variant)
}

// UpdateAsset patches an asset; false means the id does not exist.
func (s *Service) UpdateAsset(ctx context.Context, variant catalog.Variant, id int64, patch catalog.AssetPatch) (ok bool, err error) {
	defer s.observe(OperationName("update", variant, ""), time.Now(), &err)
	ok, err = s.assets.Update(ctx, variant, id, patch)
	if err != nil {
		return false, err
	}
	if ok {
		s.publishAsset(ctx, variant, id, events.ActionUpdated)
	}
	return ok, nil
}

// DeleteAsset removes an asset; false means the id does not exist.
func (s *Service) DeleteAsset(ctx context.Context, variant catalog.Variant, id int64) (ok bool, err error) {
	defer s.observe(OperationName("delete", variant, ""), time.Now(), &err)
	ok, err = s.assets.Delete(ctx, variant, id)
	if err != nil {
		return false, err
	}
	if ok {
		s.publishAsset(ctx, variant, id, events.ActionDeleted)
	}
	return ok, nil
}

// AssetCountsByStation counts assets per station for every variant.
func (s *Service) AssetCountsByStation(ctx context.Context) (counts catalog.AssetCounts, err error) {
	defer s.observe("getAssetCountsByStation", time.Now(), &err)
	return s.assets.CountsByStation(ctx)
}

// AssetTotals counts assets per variant.
func (s *Service) AssetTotals(ctx context.Context) (totals catalog.AssetTotals, err error) {
	defer s.observe("getAssetTotals", time.Now(), &err)
	return s.assets.Totals(ctx)
}

// Dashboard combines totals and per-station counts into chart series.
func (s *Service) Dashboard(ctx context.Context) (catalog.Dashboard, error) {
	counts, err := s.AssetCountsByStation(ctx)
	if err != nil {
		return catalog.Dashboard{}, err
	}
	totals, err := s.AssetTotals(ctx)
	if err != nil {
		return catalog.Dashboard{}, err
	}
	return catalog.BuildDashboard(counts, totals), nil
}

// OperationName builds names like saveFurniture or getVehicleById.
func OperationName(prefix string, variant catalog.Variant, suffix string) string {
	fs, err := variant.FieldSet()
	if err != nil {
		return prefix + "Unknown" + suffix
	}
	return prefix + fs.OpName + suffix
}

func (s *Service) observe(op string, start time.Time, errp *error) {
	result := metrics.ResultSuccess
	if errp != nil && *errp != nil {
		result = metrics.ResultError
		s.logger.Printf("catalog: %s: %v", op, *errp)
	}
	metrics.ObserveOperation(op, result, time.Since(start))
}

// observeLookup records a by-id read; a missing record counts as not_found.
func (s *Service) observeLookup(op string, start time.Time, found bool, err error) {
	if err == nil && !found {
		metrics.ObserveOperation(op, metrics.ResultNotFound, time.Since(start))
		return
	}
	s.observe(op, start, &err)
}

func (s *Service) publishAsset(ctx context.Context, variant catalog.Variant, id int64, action string) {
	s.publish(ctx, events.NameAssetUpdated, events.AssetChanged{
		Variant:    variant,
		ID:         id,
		Action:     action,
		OccurredAt: s.now().UTC(),
	})
}

func (s *Service) publishStation(ctx context.Context, id int64, action string) {
	s.publish(ctx, events.NameStationUpdated, events.StationChanged{
		ID:         id,
		Action:     action,
		OccurredAt: s.now().UTC(),
	})
}

// publish never fails the mutation that triggered it.
func (s *Service) publish(ctx context.Context, name string, event any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Printf("catalog: publish %s: %v", name, err)
		return
	}
	metrics.IncEventPublished(name)
}
