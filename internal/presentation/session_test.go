package presentation

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"asset-catalog/internal/catalog/application"
	catalog "asset-catalog/internal/catalog/domain"
	"asset-catalog/internal/catalog/infrastructure/sqlstore"
	cataloghttp "asset-catalog/internal/catalog/interfaces/http"
	"asset-catalog/internal/catalog/interfaces/ops"
)

type countingInvoker struct {
	next Invoker

	mu    sync.Mutex
	calls map[string]int
}

func (c *countingInvoker) Invoke(ctx context.Context, op string, args ...any) (Reply, error) {
	c.mu.Lock()
	c.calls[op]++
	c.mu.Unlock()
	return c.next.Invoke(ctx, op, args...)
}

func (c *countingInvoker) count(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[op]
}

func newRegistry(t *testing.T) *ops.Registry {
	t.Helper()
	store, err := sqlstore.Open(context.Background(), sqlstore.DialectSQLite, filepath.Join(t.TempDir(), "catalog.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	svc, err := application.NewService(store.Stations(), store.Assets())
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	registry, err := ops.NewRegistry(svc)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return registry
}

func newLocalSession(t *testing.T) (*Session, *countingInvoker) {
	t.Helper()
	local, err := NewLocalInvoker(newRegistry(t))
	if err != nil {
		t.Fatalf("invoker: %v", err)
	}
	counter := &countingInvoker{next: local, calls: make(map[string]int)}
	session, err := NewSession(counter)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	return session, counter
}

func TestSessionStationLookupIsCachedAndInvalidated(t *testing.T) {
	ctx := context.Background()
	session, counter := newLocalSession(t)

	hq, err := session.SaveStation(ctx, "HQ", "Main St")
	if err != nil {
		t.Fatalf("save station: %v", err)
	}
	for i := 0; i < 3; i++ {
		name, err := session.DisplayStation(ctx, &hq)
		if err != nil {
			t.Fatalf("display: %v", err)
		}
		if name != "HQ" {
			t.Fatalf("expected HQ, got %q", name)
		}
	}
	if got := counter.count("listStations"); got != 1 {
		t.Fatalf("expected one station load, got %d", got)
	}

	if ok, err := session.UpdateStation(ctx, hq, map[string]any{"name": "Depot"}); err != nil || !ok {
		t.Fatalf("update station: ok=%v err=%v", ok, err)
	}
	name, err := session.DisplayStation(ctx, &hq)
	if err != nil {
		t.Fatalf("display: %v", err)
	}
	if name != "Depot" {
		t.Fatalf("expected renamed station, got %q", name)
	}
	if got := counter.count("listStations"); got != 2 {
		t.Fatalf("expected reload after update, got %d loads", got)
	}

	if ok, err := session.DeleteStation(ctx, hq); err != nil || !ok {
		t.Fatalf("delete station: ok=%v err=%v", ok, err)
	}
	name, err = session.DisplayStation(ctx, &hq)
	if err != nil {
		t.Fatalf("display: %v", err)
	}
	if name != catalog.UnknownStationName {
		t.Fatalf("expected unknown marker for deleted station, got %q", name)
	}
	if name, _ := session.DisplayStation(ctx, nil); name != catalog.UnknownStationName {
		t.Fatalf("expected unknown marker for unset station, got %q", name)
	}
}

func TestSessionAssetLifecycle(t *testing.T) {
	ctx := context.Background()
	session, _ := newLocalSession(t)

	hq, err := session.SaveStation(ctx, "HQ", "")
	if err != nil {
		t.Fatalf("save station: %v", err)
	}
	id, err := session.SaveAsset(ctx, catalog.VariantVehicle, map[string]any{
		"type":       "Truck",
		"name":       "Unit 7",
		"number":     "7",
		"price":      "",
		"station_id": hq,
	})
	if err != nil {
		t.Fatalf("save asset: %v", err)
	}

	asset, err := session.GetAsset(ctx, catalog.VariantVehicle, id)
	if err != nil {
		t.Fatalf("get asset: %v", err)
	}
	if asset == nil || asset.Name != "Unit 7" || asset.Number != "7" || !asset.Price.IsZero() {
		t.Fatalf("unexpected asset %+v", asset)
	}

	if ok, err := session.UpdateAsset(ctx, catalog.VariantVehicle, id, map[string]any{"price": "500"}); err != nil || !ok {
		t.Fatalf("update asset: ok=%v err=%v", ok, err)
	}
	asset, err = session.GetAsset(ctx, catalog.VariantVehicle, id)
	if err != nil {
		t.Fatalf("get asset: %v", err)
	}
	if asset.Price.String() != "500" {
		t.Fatalf("expected price 500, got %s", asset.Price)
	}

	if ok, err := session.DeleteAsset(ctx, catalog.VariantVehicle, id); err != nil || !ok {
		t.Fatalf("delete asset: ok=%v err=%v", ok, err)
	}
	asset, err = session.GetAsset(ctx, catalog.VariantVehicle, id)
	if err != nil {
		t.Fatalf("get asset: %v", err)
	}
	if asset != nil {
		t.Fatalf("expected nil asset after delete, got %+v", asset)
	}
	if ok, err := session.DeleteAsset(ctx, catalog.VariantVehicle, id); err != nil || ok {
		t.Fatalf("expected false deleting missing asset: ok=%v err=%v", ok, err)
	}
}

func TestAssetViewSearchAndSortDoNotMutate(t *testing.T) {
	ctx := context.Background()
	session, _ := newLocalSession(t)

	for _, number := range []string{"10", "9", "100"} {
		if _, err := session.SaveAsset(ctx, catalog.VariantFurniture, map[string]any{"type": "Desk " + number, "number": number}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	view, err := session.LoadAssets(ctx, catalog.VariantFurniture)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if view.Len() != 3 {
		t.Fatalf("expected 3 listings, got %d", view.Len())
	}
	before := view.Items()

	sorted := view.Sort(catalog.FieldNumber, catalog.SortAsc)
	var numbers []string
	for _, item := range sorted {
		numbers = append(numbers, item.Number)
	}
	if len(numbers) != 3 || numbers[0] != "9" || numbers[1] != "10" || numbers[2] != "100" {
		t.Fatalf("unexpected numeric sort %v", numbers)
	}

	found := view.Search(catalog.SearchAll, "desk 10")
	if len(found) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(found))
	}

	after := view.Items()
	for i := range before {
		if before[i].ID != after[i].ID {
			t.Fatalf("view order changed at %d", i)
		}
	}
	for _, item := range after {
		if item.DisplayStation() != catalog.UnknownStationName {
			t.Fatalf("expected unknown station, got %q", item.DisplayStation())
		}
	}
}

func TestSessionDashboard(t *testing.T) {
	ctx := context.Background()
	session, _ := newLocalSession(t)

	a, err := session.SaveStation(ctx, "A", "")
	if err != nil {
		t.Fatalf("station: %v", err)
	}
	b, err := session.SaveStation(ctx, "B", "")
	if err != nil {
		t.Fatalf("station: %v", err)
	}
	for _, station := range []int64{a, a, b} {
		if _, err := session.SaveAsset(ctx, catalog.VariantOther, map[string]any{"name": "Ladder", "station_id": station}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	if _, err := session.SaveAsset(ctx, catalog.VariantOther, map[string]any{"name": "Loose"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	dashboard, err := session.Dashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dashboard.Totals.Total != 4 || dashboard.Totals.ByVariant[catalog.VariantOther] != 4 {
		t.Fatalf("unexpected totals %+v", dashboard.Totals)
	}
	if len(dashboard.Stations) != 2 || dashboard.Stations[0] != "A" || dashboard.Stations[1] != "B" {
		t.Fatalf("unexpected stations %v", dashboard.Stations)
	}
}

func TestHTTPInvokerMapsErrorKinds(t *testing.T) {
	ctx := context.Background()
	server := httptest.NewServer(cataloghttp.NewOpsHandler(newRegistry(t), nil))
	defer server.Close()

	invoker, err := NewHTTPInvoker(server.URL, server.Client())
	if err != nil {
		t.Fatalf("invoker: %v", err)
	}
	session, err := NewSession(invoker)
	if err != nil {
		t.Fatalf("session: %v", err)
	}

	hq, err := session.SaveStation(ctx, "HQ", "")
	if err != nil {
		t.Fatalf("save station: %v", err)
	}
	if _, err := session.SaveStation(ctx, "HQ", ""); !errors.Is(err, catalog.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
	missing := hq + 100
	if _, err := session.SaveAsset(ctx, catalog.VariantFurniture, map[string]any{"station_id": missing}); !errors.Is(err, catalog.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation for dangling station, got %v", err)
	}
	if _, err := session.SaveAsset(ctx, catalog.VariantFurniture, map[string]any{"price": "abc"}); !errors.Is(err, catalog.ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
	if _, err := invoker.Invoke(ctx, "launchRocket"); !errors.Is(err, ops.ErrUnknownOperation) {
		t.Fatalf("expected ErrUnknownOperation, got %v", err)
	}

	station, err := session.GetStation(ctx, hq)
	if err != nil || station == nil || station.Name != "HQ" {
		t.Fatalf("get station: %+v err=%v", station, err)
	}
	station, err = session.GetStation(ctx, missing)
	if err != nil || station != nil {
		t.Fatalf("expected nil station, got %+v err=%v", station, err)
	}
}

func TestNotify(t *testing.T) {
	if n := Notify("Save station", nil); n.Level != LevelSuccess || n.Message != "Save station succeeded" {
		t.Fatalf("unexpected success notification %+v", n)
	}
	remote := &ops.RemoteError{Kind: ops.KindConstraintViolation, Message: "unique"}
	n := Notify("Save station", remote)
	if n.Level != LevelError {
		t.Fatalf("expected error level, got %q", n.Level)
	}
	if n.Message != "Save station failed: the station name is already taken or the selected station does not exist" {
		t.Fatalf("unexpected message %q", n.Message)
	}
}
