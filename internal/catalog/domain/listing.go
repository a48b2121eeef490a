package catalog

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// SearchAll matches a term against every column of a listing.
const SearchAll = "all"

// SortOrder is the direction of a listing sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder defaults to ascending.
func ParseSortOrder(value string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(value), string(SortDesc)) {
		return SortDesc
	}
	return SortAsc
}

// ColumnValue returns the display text of a listing column.
func (l AssetListing) ColumnValue(field Field) string {
	switch field {
	case FieldID:
		return strconv.FormatInt(l.ID, 10)
	case FieldType:
		return l.Type
	case FieldName:
		return l.Name
	case FieldNumber:
		return l.Number
	case FieldPrice:
		return l.Price.String()
	case FieldStationID:
		if l.StationID == nil {
			return ""
		}
		return strconv.FormatInt(*l.StationID, 10)
	case FieldStationName:
		return l.DisplayStation()
	case FieldPurchaseDate:
		return l.PurchaseDate.String()
	case FieldCondition:
		return l.Condition
	case FieldEmployeeName:
		return l.EmployeeName
	default:
		return ""
	}
}

func (l AssetListing) searchColumns() []Field {
	fs, err := l.Variant.FieldSet()
	if err != nil {
		return nil
	}
	return append([]Field{FieldID}, append(fs.Fields(), FieldStationName)...)
}

// SearchListings keeps the listings whose column contains term, ignoring
// case. Column SearchAll matches any column; an empty term keeps everything.
// The input slice is not modified.
func SearchListings(items []AssetListing, column, term string) []AssetListing {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]AssetListing, 0, len(items))
	for _, item := range items {
		if term == "" || item.matches(column, term) {
			out = append(out, item)
		}
	}
	return out
}

func (l AssetListing) matches(column, term string) bool {
	if column == "" || column == SearchAll {
		for _, field := range l.searchColumns() {
			if strings.Contains(strings.ToLower(l.ColumnValue(field)), term) {
				return true
			}
		}
		return false
	}
	return strings.Contains(strings.ToLower(l.ColumnValue(Field(column))), term)
}

func numericField(field Field) bool {
	return field == FieldNumber || field == FieldPrice || field == FieldID || field == FieldStationID
}

// SortListings returns a sorted copy. Number, price and id compare
// numerically, unparsable values ranking above every number; other fields
// compare as text.
func SortListings(items []AssetListing, field Field, order SortOrder) []AssetListing {
	out := make([]AssetListing, len(items))
	copy(out, items)
	less := func(i, j int) bool {
		a, b := out[i].ColumnValue(field), out[j].ColumnValue(field)
		cmp := 0
		if numericField(field) {
			cmp = compareNumeric(a, b)
		} else {
			cmp = strings.Compare(a, b)
		}
		if order == SortDesc {
			return cmp > 0
		}
		return cmp < 0
	}
	sort.SliceStable(out, less)
	return out
}

func compareNumeric(a, b string) int {
	fa, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
	fb, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
	okA := errA == nil && !math.IsNaN(fa)
	okB := errB == nil && !math.IsNaN(fb)
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return 1
	case !okB:
		return -1
	case fa < fb:
		return -1
	case fa > fb:
		return 1
	default:
		return 0
	}
}
