package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// UnknownStationName marks an asset whose station is unset or no longer exists.
const UnknownStationName = "Unknown Station"

// Asset is a record of any variant. Type and Name are only meaningful for
// variants whose FieldSet carries them.
type Asset struct {
	ID           int64
	Variant      Variant
	Type         string
	Name         string
	Number       string
	Price        decimal.Decimal
	PurchaseDate Date
	Condition    string
	EmployeeName string
	StationID    *int64
}

// Validate checks the record against its variant descriptor.
func (a Asset) Validate() error {
	fs, err := a.Variant.FieldSet()
	if err != nil {
		return err
	}
	if !fs.HasType && a.Type != "" {
		return fmt.Errorf("%w: %s has no type", ErrInvalidRecord, a.Variant)
	}
	if !fs.HasName && a.Name != "" {
		return fmt.Errorf("%w: %s has no name", ErrInvalidRecord, a.Variant)
	}
	if _, err := NumberArg(fs, a.Number); err != nil {
		return err
	}
	return nil
}

// NumberArg converts the number attribute into the value stored for the
// variant: int64 (or nil when empty) for integer variants, the string otherwise.
func NumberArg(fs FieldSet, number string) (any, error) {
	if fs.Number != NumberInteger {
		return number, nil
	}
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(number, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s number must be an integer, got %q", ErrInvalidRecord, fs.Variant, number)
	}
	return n, nil
}

func (a Asset) record(fs FieldSet) map[string]any {
	out := map[string]any{
		"id":            a.ID,
		"variant":       a.Variant,
		"price":         a.Price,
		"purchase_date": a.PurchaseDate,
		"condition":     a.Condition,
		"employee_name": a.EmployeeName,
		"station_id":    a.StationID,
	}
	if fs.HasType {
		out["type"] = a.Type
	}
	if fs.HasName {
		out["name"] = a.Name
	}
	if n, err := NumberArg(fs, a.Number); err == nil {
		out["number"] = n
	} else {
		out["number"] = a.Number
	}
	return out
}

// MarshalJSON emits only the fields the variant carries; integer numbers are
// encoded as JSON numbers.
func (a Asset) MarshalJSON() ([]byte, error) {
	fs, err := a.Variant.FieldSet()
	if err != nil {
		return nil, err
	}
	return json.Marshal(a.record(fs))
}

type assetJSON struct {
	ID           int64           `json:"id"`
	Variant      Variant         `json:"variant"`
	Type         string          `json:"type"`
	Name         string          `json:"name"`
	Number       json.RawMessage `json:"number"`
	Price        decimal.Decimal `json:"price"`
	PurchaseDate Date            `json:"purchase_date"`
	Condition    string          `json:"condition"`
	EmployeeName string          `json:"employee_name"`
	StationID    *int64          `json:"station_id"`
}

// UnmarshalJSON reads records produced by MarshalJSON.
func (a *Asset) UnmarshalJSON(data []byte) error {
	var aux assetJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	number, err := rawNumber(aux.Number)
	if err != nil {
		return err
	}
	*a = Asset{
		ID:           aux.ID,
		Variant:      aux.Variant,
		Type:         aux.Type,
		Name:         aux.Name,
		Number:       number,
		Price:        aux.Price,
		PurchaseDate: aux.PurchaseDate,
		Condition:    aux.Condition,
		EmployeeName: aux.EmployeeName,
		StationID:    aux.StationID,
	}
	return nil
}

func rawNumber(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("%w: number must be a string or number", ErrInvalidRecord)
	}
	return n.String(), nil
}

// AssetPatch carries the fields an update replaces. Nil fields are left
// unchanged; ClearStation sets station_id to NULL.
type AssetPatch struct {
	Type         *string
	Name         *string
	Number       *string
	Price        *decimal.Decimal
	PurchaseDate *Date
	Condition    *string
	EmployeeName *string
	StationID    *int64
	ClearStation bool
}

// IsEmpty reports whether the patch names no field.
func (p AssetPatch) IsEmpty() bool {
	return p.Type == nil &&
		p.Name == nil &&
		p.Number == nil &&
		p.Price == nil &&
		p.PurchaseDate == nil &&
		p.Condition == nil &&
		p.EmployeeName == nil &&
		p.StationID == nil &&
		!p.ClearStation
}

// Validate checks the patch against the variant descriptor.
func (p AssetPatch) Validate(fs FieldSet) error {
	if p.Type != nil && !fs.HasType {
		return fmt.Errorf("%w: %s has no type", ErrInvalidRecord, fs.Variant)
	}
	if p.Name != nil && !fs.HasName {
		return fmt.Errorf("%w: %s has no name", ErrInvalidRecord, fs.Variant)
	}
	if p.StationID != nil && p.ClearStation {
		return fmt.Errorf("%w: station_id both set and cleared", ErrInvalidRecord)
	}
	if p.Number != nil {
		if _, err := NumberArg(fs, *p.Number); err != nil {
			return err
		}
	}
	return nil
}

// AssetListing is an asset joined with its station's name.
type AssetListing struct {
	Asset
	StationName  string
	StationKnown bool
}

// DisplayStation returns the station name or the unknown marker.
func (l AssetListing) DisplayStation() string {
	if !l.StationKnown || l.StationName == "" {
		return UnknownStationName
	}
	return l.StationName
}

// MarshalJSON adds station_name and station_known to the asset record.
func (l AssetListing) MarshalJSON() ([]byte, error) {
	fs, err := l.Variant.FieldSet()
	if err != nil {
		return nil, err
	}
	out := l.record(fs)
	out["station_name"] = l.DisplayStation()
	out["station_known"] = l.StationKnown
	return json.Marshal(out)
}

// UnmarshalJSON reads records produced by MarshalJSON.
func (l *AssetListing) UnmarshalJSON(data []byte) error {
	var asset Asset
	if err := asset.UnmarshalJSON(data); err != nil {
		return err
	}
	var aux struct {
		StationName  string `json:"station_name"`
		StationKnown bool   `json:"station_known"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*l = AssetListing{Asset: asset, StationName: aux.StationName, StationKnown: aux.StationKnown}
	return nil
}
