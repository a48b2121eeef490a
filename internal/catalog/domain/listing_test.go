package catalog

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func sampleListings() []AssetListing {
	return []AssetListing{
		{Asset: Asset{ID: 1, Variant: VariantFurniture, Type: "Desk", Number: "10", Price: decimal.RequireFromString("250"), EmployeeName: "Ada"}, StationName: "HQ", StationKnown: true},
		{Asset: Asset{ID: 2, Variant: VariantFurniture, Type: "Chair", Number: "9", Price: decimal.RequireFromString("75.5"), EmployeeName: "Grace"}},
		{Asset: Asset{ID: 3, Variant: VariantFurniture, Type: "Cabinet", Number: "100", Price: decimal.RequireFromString("1000"), EmployeeName: "Linus"}, StationName: "Depot", StationKnown: true},
	}
}

func ids(items []AssetListing) []int64 {
	out := make([]int64, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func TestSearchListings(t *testing.T) {
	items := sampleListings()

	if got := ids(SearchListings(items, "type", "CHA")); !reflect.DeepEqual(got, []int64{2}) {
		t.Fatalf("column search: %v", got)
	}
	if got := ids(SearchListings(items, SearchAll, "depot")); !reflect.DeepEqual(got, []int64{3}) {
		t.Fatalf("all search by station: %v", got)
	}
	if got := ids(SearchListings(items, SearchAll, "unknown")); !reflect.DeepEqual(got, []int64{2}) {
		t.Fatalf("unknown station marker should be searchable: %v", got)
	}
	if got := SearchListings(items, "type", ""); len(got) != 3 {
		t.Fatalf("empty term keeps all, got %d", len(got))
	}
}

func TestSortListings(t *testing.T) {
	items := sampleListings()

	if got := ids(SortListings(items, FieldNumber, SortAsc)); !reflect.DeepEqual(got, []int64{2, 1, 3}) {
		t.Fatalf("numeric number sort: %v", got)
	}
	if got := ids(SortListings(items, FieldPrice, SortDesc)); !reflect.DeepEqual(got, []int64{3, 1, 2}) {
		t.Fatalf("price desc: %v", got)
	}
	if got := ids(SortListings(items, FieldType, SortAsc)); !reflect.DeepEqual(got, []int64{3, 2, 1}) {
		t.Fatalf("text sort: %v", got)
	}
	if items[0].ID != 1 {
		t.Fatalf("input must not be reordered")
	}
	if ParseSortOrder("DESC") != SortDesc || ParseSortOrder("") != SortAsc {
		t.Fatalf("sort order parsing")
	}
}

func TestBuildDashboard(t *testing.T) {
	counts := NewAssetCounts()
	counts[VariantFurniture] = []StationCount{{StationName: "A", Count: 3}, {StationName: "B", Count: 2}}
	counts[VariantOther] = []StationCount{{StationName: "C", Count: 1}, {StationName: "A", Count: 4}}
	totals := NewAssetTotals()
	totals.Add(VariantFurniture, 6)
	totals.Add(VariantOther, 5)

	dash := BuildDashboard(counts, totals)
	if !reflect.DeepEqual(dash.Stations, []string{"A", "B", "C"}) {
		t.Fatalf("stations: %v", dash.Stations)
	}
	if len(dash.Series) != 4 {
		t.Fatalf("expected four series, got %d", len(dash.Series))
	}
	if !reflect.DeepEqual(dash.Series[0].Data, []int64{3, 2, 0}) {
		t.Fatalf("furniture data: %v", dash.Series[0].Data)
	}
	if !reflect.DeepEqual(dash.Series[3].Data, []int64{4, 0, 1}) {
		t.Fatalf("other data: %v", dash.Series[3].Data)
	}
	if dash.Series[1].Label != "Vehicles" {
		t.Fatalf("unexpected label %q", dash.Series[1].Label)
	}
	if dash.Totals.Total != 11 {
		t.Fatalf("total mismatch: %d", dash.Totals.Total)
	}

	empty := BuildDashboard(NewAssetCounts(), NewAssetTotals())
	if empty.Stations == nil || len(empty.Stations) != 0 {
		t.Fatalf("expected empty station list")
	}
}
