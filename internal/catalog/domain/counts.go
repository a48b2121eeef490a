package catalog

// StationCount is the number of assets of one variant held by a station.
type StationCount struct {
	StationName string `json:"station_name"`
	Count       int64  `json:"count"`
}

// AssetCounts maps every variant to its per-station counts.
type AssetCounts map[Variant][]StationCount

// NewAssetCounts returns counts with an empty list for every variant.
func NewAssetCounts() AssetCounts {
	counts := make(AssetCounts, len(variantOrder))
	for _, v := range variantOrder {
		counts[v] = []StationCount{}
	}
	return counts
}

// AssetTotals holds per-variant totals, including assets without a station.
type AssetTotals struct {
	ByVariant map[Variant]int64 `json:"by_variant"`
	Total     int64             `json:"total"`
}

// NewAssetTotals returns zero totals for every variant.
func NewAssetTotals() AssetTotals {
	totals := AssetTotals{ByVariant: make(map[Variant]int64, len(variantOrder))}
	for _, v := range variantOrder {
		totals.ByVariant[v] = 0
	}
	return totals
}

// Add records n assets for the variant.
func (t *AssetTotals) Add(variant Variant, n int64) {
	if t.ByVariant == nil {
		t.ByVariant = make(map[Variant]int64)
	}
	t.ByVariant[variant] += n
	t.Total += n
}

// ChartSeries is one stacked-bar dataset of the dashboard.
type ChartSeries struct {
	Variant Variant `json:"variant"`
	Label   string  `json:"label"`
	Color   string  `json:"color"`
	Data    []int64 `json:"data"`
}

// Dashboard aggregates totals and the per-station chart.
type Dashboard struct {
	Totals   AssetTotals   `json:"totals"`
	Stations []string      `json:"stations"`
	Series   []ChartSeries `json:"series"`
}

// BuildDashboard lays out station labels in first-seen order across the
// variants and aligns every variant's counts to them, filling gaps with 0.
func BuildDashboard(counts AssetCounts, totals AssetTotals) Dashboard {
	var stations []string
	seen := make(map[string]int)
	for _, v := range variantOrder {
		for _, c := range counts[v] {
			if _, ok := seen[c.StationName]; ok {
				continue
			}
			seen[c.StationName] = len(stations)
			stations = append(stations, c.StationName)
		}
	}

	series := make([]ChartSeries, 0, len(variantOrder))
	for _, v := range variantOrder {
		fs := fieldSets[v]
		data := make([]int64, len(stations))
		for _, c := range counts[v] {
			data[seen[c.StationName]] = c.Count
		}
		series = append(series, ChartSeries{
			Variant: v,
			Label:   fs.Label,
			Color:   fs.ChartColor,
			Data:    data,
		})
	}
	if stations == nil {
		stations = []string{}
	}
	return Dashboard{Totals: totals, Stations: stations, Series: series}
}
