package ops

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"asset-catalog/internal/catalog/application"
	catalog "asset-catalog/internal/catalog/domain"
	"asset-catalog/internal/catalog/infrastructure/sqlstore"
)

func newTestRegistry(t *testing.T) *Registry {
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
	reg, err := NewRegistry(svc)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return reg
}

func args(values ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(values))
	for i, v := range values {
		out[i] = json.RawMessage(v)
	}
	return out
}

func invoke(t *testing.T, reg *Registry, name string, values ...string) Result {
	t.Helper()
	res, err := reg.Invoke(context.Background(), name, args(values...))
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	return res
}

func TestRegistryNames(t *testing.T) {
	reg := newTestRegistry(t)
	names := map[string]bool{}
	for _, n := range reg.Names() {
		names[n] = true
	}
	for _, want := range []string{
		"saveFurniture", "getFurnitureById", "listFurnitureWithStationName", "updateFurniture", "deleteFurniture",
		"saveVehicle", "getVehicleById", "listVehicleWithStationName", "updateVehicle", "deleteVehicle",
		"saveOfficeEquipment", "getOfficeEquipmentById", "listOfficeEquipmentWithStationName", "updateOfficeEquipment", "deleteOfficeEquipment",
		"saveOther", "getOtherById", "listOtherWithStationName", "updateOther", "deleteOther",
		"saveStation", "listStations", "getStationById", "updateStation", "deleteStation",
		"getAssetCountsByStation", "getAssetTotals",
	} {
		if !names[want] {
			t.Fatalf("operation %s not registered", want)
		}
	}
}

func TestRegistryAssetLifecycle(t *testing.T) {
	reg := newTestRegistry(t)

	stationID := invoke(t, reg, "saveStation", `{"name":"HQ","location":"Main St"}`).Value.(int64)
	id := invoke(t, reg, "saveVehicle", `{"type":"Van","name":"Van 1","number":"12","price":"1500.25","purchase_date":"2023-04-01","condition":"Good","employee_name":"Ada","station_id":"`+jsonInt(stationID)+`"}`).Value.(int64)

	got := invoke(t, reg, "getVehicleById", jsonInt(id))
	asset := got.Value.(*catalog.Asset)
	if got.NotFound || asset.Number != "12" || asset.Name != "Van 1" || *asset.StationID != stationID {
		t.Fatalf("unexpected vehicle: %+v", got)
	}

	if ok := invoke(t, reg, "updateVehicle", jsonInt(id), `{"price":500}`).Value.(bool); !ok {
		t.Fatalf("expected update success")
	}
	asset = invoke(t, reg, "getVehicleById", jsonInt(id)).Value.(*catalog.Asset)
	if asset.Price.String() != "500" || asset.Condition != "Good" {
		t.Fatalf("unexpected update result: %+v", asset)
	}
	if ok := invoke(t, reg, "updateVehicle", "999", `{"price":500}`).Value.(bool); ok {
		t.Fatalf("update of missing id must report false")
	}

	listings := invoke(t, reg, "getVehiclesWithStationNames").Value.([]catalog.AssetListing)
	if len(listings) != 1 || listings[0].DisplayStation() != "HQ" {
		t.Fatalf("unexpected listings: %+v", listings)
	}

	if ok := invoke(t, reg, "deleteVehicle", jsonInt(id)).Value.(bool); !ok {
		t.Fatalf("expected delete success")
	}
	if res := invoke(t, reg, "getVehicleById", jsonInt(id)); !res.NotFound || res.Value != nil {
		t.Fatalf("expected not found, got %+v", res)
	}
}

func TestRegistryErrors(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	if _, err := reg.Invoke(ctx, "launchRocket", nil); !errors.Is(err, ErrUnknownOperation) || Kind(err) != KindUnknownOperation {
		t.Fatalf("expected unknown operation, got %v", err)
	}
	if _, err := reg.Invoke(ctx, "getFurnitureById", nil); !errors.Is(err, ErrInvalidArgs) || Kind(err) != KindInvalidRecord {
		t.Fatalf("expected invalid args, got %v", err)
	}
	_, err := reg.Invoke(ctx, "saveFurniture", args(`{"type":"Desk","station_id":42}`))
	if !errors.Is(err, catalog.ErrConstraintViolation) || Kind(err) != KindConstraintViolation {
		t.Fatalf("expected constraint violation, got %v", err)
	}
	invoke(t, reg, "saveStation", `{"name":"HQ"}`)
	if _, err := reg.Invoke(ctx, "saveStation", args(`{"name":"HQ"}`)); Kind(err) != KindConstraintViolation {
		t.Fatalf("expected duplicate name violation, got %v", err)
	}
	if _, err := reg.Invoke(ctx, "saveOther", args(`{"type":"misc"}`)); Kind(err) != KindInvalidRecord {
		t.Fatalf("expected invalid record, got %v", err)
	}
}

func TestRegistryGetNonPositiveIDIsNotFound(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	for _, op := range []string{"getVehicleById", "getFurnitureById", "getStationById"} {
		for _, id := range []string{`0`, `-3`, `"0"`} {
			res, err := reg.Invoke(ctx, op, args(id))
			if err != nil {
				t.Fatalf("%s(%s): %v", op, id, err)
			}
			if !res.NotFound || res.Value != nil {
				t.Fatalf("%s(%s): expected not found, got %+v", op, id, res)
			}
		}
	}
	if _, err := reg.Invoke(ctx, "getVehicleById", args(`"abc"`)); !errors.Is(err, catalog.ErrInvalidRecord) {
		t.Fatalf("expected invalid record for non-numeric id, got %v", err)
	}
	if _, err := reg.Invoke(ctx, "getStationById", args(`null`)); !errors.Is(err, ErrInvalidArgs) {
		t.Fatalf("expected invalid args for missing id, got %v", err)
	}
	if _, err := reg.Invoke(ctx, "deleteVehicle", args(`0`)); !errors.Is(err, catalog.ErrInvalidRecord) {
		t.Fatalf("mutations keep rejecting non-positive ids, got %v", err)
	}
}

func TestRegistryCounts(t *testing.T) {
	reg := newTestRegistry(t)
	a := invoke(t, reg, "saveStation", `{"name":"A"}`).Value.(int64)
	b := invoke(t, reg, "saveStation", `{"name":"B"}`).Value.(int64)
	for i := 0; i < 3; i++ {
		invoke(t, reg, "saveFurniture", `{"type":"Desk","station_id":`+jsonInt(a)+`}`)
	}
	for i := 0; i < 2; i++ {
		invoke(t, reg, "saveFurniture", `{"type":"Chair","station_id":`+jsonInt(b)+`}`)
	}

	counts := invoke(t, reg, "getAssetCountsByStation").Value.(catalog.AssetCounts)
	data, err := json.Marshal(counts)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"furniture":[{"station_name":"A","count":3},{"station_name":"B","count":2}],"office_equipment":[],"other":[],"vehicle":[]}`
	if string(data) != want {
		t.Fatalf("unexpected counts:\n got %s\nwant %s", data, want)
	}
}

func jsonInt(v int64) string {
	data, _ := json.Marshal(v)
	return string(data)
}
