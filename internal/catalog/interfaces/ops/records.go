package ops

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	catalog "asset-catalog/internal/catalog/domain"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// Fields that appear in listing records and are accepted but ignored on write.
var readOnlyFields = map[string]bool{
	"id":            true,
	"variant":       true,
	"station_name":  true,
	"station_known": true,
}

type stationInput struct {
	Name     string `validate:"required,max=200"`
	Location string `validate:"max=500"`
}

type assetText struct {
	Type         string `validate:"max=200"`
	Name         string `validate:"max=200"`
	Number       string `validate:"max=100"`
	Condition    string `validate:"max=200"`
	EmployeeName string `validate:"max=200"`
}

func checkStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", catalog.ErrInvalidRecord, err)
	}
	return nil
}

func decodeObject(raw json.RawMessage) (map[string]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return map[string]json.RawMessage{}, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: record must be an object", catalog.ErrInvalidRecord)
	}
	return fields, nil
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || string(raw) == "null"
}

// text reads a string, number or null. Form inputs submit numbers as strings.
func text(field string, raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if isNull(raw) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("%w: %s: %v", catalog.ErrInvalidRecord, field, err)
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("%w: %s must be a string or number", catalog.ErrInvalidRecord, field)
	}
	return n.String(), nil
}

// decodeID reads a positive integer id given as a number or numeric string.
func decodeID(raw json.RawMessage) (int64, error) {
	id, err := optionalID("id", raw)
	if err != nil {
		return 0, err
	}
	if id == nil {
		return 0, fmt.Errorf("%w: id is required", ErrInvalidArgs)
	}
	return *id, nil
}

// decodeLookupID reads the id of a by-id read. A non-positive id names no
// record, so ok is false rather than an error.
func decodeLookupID(raw json.RawMessage) (id int64, ok bool, err error) {
	value, err := text("id", raw)
	if err != nil {
		return 0, false, err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false, fmt.Errorf("%w: id is required", ErrInvalidArgs)
	}
	id, err = strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: id must be an integer, got %q", catalog.ErrInvalidRecord, value)
	}
	return id, id > 0, nil
}

func optionalID(field string, raw json.RawMessage) (*int64, error) {
	value, err := text(field, raw)
	if err != nil {
		return nil, err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: %s must be a positive integer, got %q", catalog.ErrInvalidRecord, field, value)
	}
	return &id, nil
}

func price(raw json.RawMessage) (decimal.Decimal, error) {
	value, err := text("price", raw)
	if err != nil {
		return decimal.Zero, err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: price %q is not a decimal", catalog.ErrInvalidRecord, value)
	}
	return d, nil
}

func date(raw json.RawMessage) (catalog.Date, error) {
	value, err := text("purchase_date", raw)
	if err != nil {
		return catalog.Date{}, err
	}
	return catalog.ParseDate(value)
}

// checkFields rejects keys the variant does not carry.
func checkFields(fs catalog.FieldSet, fields map[string]json.RawMessage) error {
	for key := range fields {
		if readOnlyFields[key] {
			continue
		}
		if !fs.Has(catalog.Field(key)) {
			return fmt.Errorf("%w: %s has no field %q", catalog.ErrInvalidRecord, fs.Variant, key)
		}
	}
	return nil
}

// DecodeAsset coerces a form-style record into an asset of the variant.
func DecodeAsset(variant catalog.Variant, raw json.RawMessage) (catalog.Asset, error) {
	fs, err := variant.FieldSet()
	if err != nil {
		return catalog.Asset{}, err
	}
	fields, err := decodeObject(raw)
	if err != nil {
		return catalog.Asset{}, err
	}
	if err := checkFields(fs, fields); err != nil {
		return catalog.Asset{}, err
	}

	asset := catalog.Asset{Variant: variant}
	var txt assetText
	strs := []struct {
		field catalog.Field
		dst   *string
	}{
		{catalog.FieldType, &txt.Type},
		{catalog.FieldName, &txt.Name},
		{catalog.FieldNumber, &txt.Number},
		{catalog.FieldCondition, &txt.Condition},
		{catalog.FieldEmployeeName, &txt.EmployeeName},
	}
	for _, s := range strs {
		if *s.dst, err = text(string(s.field), fields[string(s.field)]); err != nil {
			return catalog.Asset{}, err
		}
	}
	if err := checkStruct(txt); err != nil {
		return catalog.Asset{}, err
	}
	asset.Type = txt.Type
	asset.Name = txt.Name
	asset.Number = strings.TrimSpace(txt.Number)
	asset.Condition = txt.Condition
	asset.EmployeeName = txt.EmployeeName

	if asset.Price, err = price(fields["price"]); err != nil {
		return catalog.Asset{}, err
	}
	if asset.PurchaseDate, err = date(fields["purchase_date"]); err != nil {
		return catalog.Asset{}, err
	}
	if asset.StationID, err = optionalID("station_id", fields["station_id"]); err != nil {
		return catalog.Asset{}, err
	}
	if err := asset.Validate(); err != nil {
		return catalog.Asset{}, err
	}
	return asset, nil
}

// DecodeAssetPatch coerces a partial record. Only present keys are patched;
// a null or empty station_id clears the station.
func DecodeAssetPatch(variant catalog.Variant, raw json.RawMessage) (catalog.AssetPatch, error) {
	fs, err := variant.FieldSet()
	if err != nil {
		return catalog.AssetPatch{}, err
	}
	fields, err := decodeObject(raw)
	if err != nil {
		return catalog.AssetPatch{}, err
	}
	if err := checkFields(fs, fields); err != nil {
		return catalog.AssetPatch{}, err
	}

	var patch catalog.AssetPatch
	var txt assetText
	strs := []struct {
		field catalog.Field
		dst   **string
		check *string
	}{
		{catalog.FieldType, &patch.Type, &txt.Type},
		{catalog.FieldName, &patch.Name, &txt.Name},
		{catalog.FieldNumber, &patch.Number, &txt.Number},
		{catalog.FieldCondition, &patch.Condition, &txt.Condition},
		{catalog.FieldEmployeeName, &patch.EmployeeName, &txt.EmployeeName},
	}
	for _, s := range strs {
		value, ok := fields[string(s.field)]
		if !ok {
			continue
		}
		v, err := text(string(s.field), value)
		if err != nil {
			return catalog.AssetPatch{}, err
		}
		if s.field == catalog.FieldNumber {
			v = strings.TrimSpace(v)
		}
		*s.check = v
		*s.dst = &v
	}
	if err := checkStruct(txt); err != nil {
		return catalog.AssetPatch{}, err
	}

	if value, ok := fields["price"]; ok {
		p, err := price(value)
		if err != nil {
			return catalog.AssetPatch{}, err
		}
		patch.Price = &p
	}
	if value, ok := fields["purchase_date"]; ok {
		d, err := date(value)
		if err != nil {
			return catalog.AssetPatch{}, err
		}
		patch.PurchaseDate = &d
	}
	if value, ok := fields["station_id"]; ok {
		id, err := optionalID("station_id", value)
		if err != nil {
			return catalog.AssetPatch{}, err
		}
		patch.StationID = id
		patch.ClearStation = id == nil
	}
	if err := patch.Validate(fs); err != nil {
		return catalog.AssetPatch{}, err
	}
	return patch, nil
}

// DecodeStation reads {name, location}.
func DecodeStation(raw json.RawMessage) (catalog.Station, error) {
	fields, err := decodeObject(raw)
	if err != nil {
		return catalog.Station{}, err
	}
	var in stationInput
	for key, value := range fields {
		switch key {
		case "name":
			in.Name, err = text(key, value)
		case "location":
			in.Location, err = text(key, value)
		case "id":
		default:
			err = fmt.Errorf("%w: station has no field %q", catalog.ErrInvalidRecord, key)
		}
		if err != nil {
			return catalog.Station{}, err
		}
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := checkStruct(in); err != nil {
		return catalog.Station{}, err
	}
	return catalog.Station{Name: in.Name, Location: in.Location}, nil
}

// DecodeStationPatch reads a partial {name, location}.
func DecodeStationPatch(raw json.RawMessage) (catalog.StationPatch, error) {
	fields, err := decodeObject(raw)
	if err != nil {
		return catalog.StationPatch{}, err
	}
	var patch catalog.StationPatch
	for key, value := range fields {
		v, err := text(key, value)
		if err != nil {
			return catalog.StationPatch{}, err
		}
		switch key {
		case "name":
			v = strings.TrimSpace(v)
			patch.Name = &v
		case "location":
			patch.Location = &v
		case "id":
		default:
			return catalog.StationPatch{}, fmt.Errorf("%w: station has no field %q", catalog.ErrInvalidRecord, key)
		}
	}
	check := stationInput{Name: "-"}
	if patch.Name != nil {
		check.Name = *patch.Name
	}
	if patch.Location != nil {
		check.Location = *patch.Location
	}
	if err := checkStruct(check); err != nil {
		return catalog.StationPatch{}, err
	}
	return patch, nil
}
