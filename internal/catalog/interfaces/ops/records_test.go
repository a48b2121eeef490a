package ops

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	catalog "asset-catalog/internal/catalog/domain"
)

func TestDecodeAssetCoercesFormValues(t *testing.T) {
	asset, err := DecodeAsset(catalog.VariantOfficeEquipment, json.RawMessage(`{
		"id": 5,
		"station_name": "ignored",
		"type": "Printer",
		"name": "LaserJet",
		"number": 301,
		"price": "",
		"purchase_date": "",
		"station_id": ""
	}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if asset.ID != 0 || asset.Number != "301" || !asset.Price.IsZero() || !asset.PurchaseDate.IsZero() || asset.StationID != nil {
		t.Fatalf("unexpected asset: %+v", asset)
	}
}

func TestDecodeAssetRejects(t *testing.T) {
	cases := []struct {
		variant catalog.Variant
		record  string
	}{
		{catalog.VariantFurniture, `{"name":"chair"}`},
		{catalog.VariantOther, `{"type":"misc"}`},
		{catalog.VariantVehicle, `{"number":"KA-01"}`},
		{catalog.VariantFurniture, `{"price":"abc"}`},
		{catalog.VariantFurniture, `{"purchase_date":"yesterday"}`},
		{catalog.VariantFurniture, `{"station_id":"x"}`},
		{catalog.VariantFurniture, `{"colour":"red"}`},
		{catalog.VariantFurniture, `[1,2]`},
		{catalog.VariantFurniture, `{"type":"` + strings.Repeat("x", 201) + `"}`},
	}
	for _, tc := range cases {
		if _, err := DecodeAsset(tc.variant, json.RawMessage(tc.record)); !errors.Is(err, catalog.ErrInvalidRecord) {
			t.Fatalf("%s %s: expected ErrInvalidRecord, got %v", tc.variant, tc.record, err)
		}
	}
}

func TestDecodeAssetPatch(t *testing.T) {
	patch, err := DecodeAssetPatch(catalog.VariantVehicle, json.RawMessage(`{"number":" 7 ","station_id":null}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if patch.Number == nil || *patch.Number != "7" || !patch.ClearStation || patch.Price != nil || patch.Type != nil {
		t.Fatalf("unexpected patch: %+v", patch)
	}

	patch, err = DecodeAssetPatch(catalog.VariantFurniture, json.RawMessage(`{"station_id":"3"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if patch.StationID == nil || *patch.StationID != 3 || patch.ClearStation {
		t.Fatalf("unexpected patch: %+v", patch)
	}

	if _, err := DecodeAssetPatch(catalog.VariantFurniture, json.RawMessage(`{"name":"x"}`)); !errors.Is(err, catalog.ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
}

func TestDecodeStation(t *testing.T) {
	station, err := DecodeStation(json.RawMessage(`{"name":"  HQ ","location":"Main St"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if station.Name != "HQ" || station.Location != "Main St" {
		t.Fatalf("unexpected station: %+v", station)
	}
	for _, raw := range []string{`{"name":""}`, `{"location":"x"}`, `{"name":"a","city":"b"}`} {
		if _, err := DecodeStation(json.RawMessage(raw)); !errors.Is(err, catalog.ErrInvalidRecord) {
			t.Fatalf("%s: expected ErrInvalidRecord, got %v", raw, err)
		}
	}

	patch, err := DecodeStationPatch(json.RawMessage(`{"location":"Harbor"}`))
	if err != nil || patch.Name != nil || patch.Location == nil || *patch.Location != "Harbor" {
		t.Fatalf("unexpected patch: %+v %v", patch, err)
	}
	if _, err := DecodeStationPatch(json.RawMessage(`{"name":" "}`)); !errors.Is(err, catalog.ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
}

func TestRemoteErrorMatchesSentinel(t *testing.T) {
	err := error(&RemoteError{Kind: KindConstraintViolation, Message: "duplicate"})
	if !errors.Is(err, catalog.ErrConstraintViolation) {
		t.Fatalf("remote error must match its sentinel")
	}
	if errors.Is(&RemoteError{Kind: KindInternal}, catalog.ErrConstraintViolation) {
		t.Fatalf("internal must not match")
	}
}
