package catalog

import (
	"fmt"
	"strings"
)

// Variant identifies one of the asset collections.
type Variant string

const (
	VariantFurniture       Variant = "furniture"
	VariantVehicle         Variant = "vehicle"
	VariantOfficeEquipment Variant = "office_equipment"
	VariantOther           Variant = "other"
)

// Field names an asset attribute as it appears in records and columns.
type Field string

const (
	FieldID           Field = "id"
	FieldType         Field = "type"
	FieldName         Field = "name"
	FieldNumber       Field = "number"
	FieldPrice        Field = "price"
	FieldStationID    Field = "station_id"
	FieldPurchaseDate Field = "purchase_date"
	FieldCondition    Field = "condition"
	FieldEmployeeName Field = "employee_name"
	FieldStationName  Field = "station_name"
)

// NumberKind describes how a variant stores its number attribute.
type NumberKind int

const (
	NumberText NumberKind = iota
	NumberInteger
)

// FieldSet is the per-variant descriptor: table, operation naming and which
// optional attributes the variant carries.
type FieldSet struct {
	Variant    Variant
	Table      string
	OpName     string
	Label      string
	ChartColor string
	HasType    bool
	HasName    bool
	Number     NumberKind
	// OrderByID makes listings come back in ascending id order.
	OrderByID bool
}

var variantOrder = []Variant{
	VariantFurniture,
	VariantVehicle,
	VariantOfficeEquipment,
	VariantOther,
}

var fieldSets = map[Variant]FieldSet{
	VariantFurniture: {
		Variant:    VariantFurniture,
		Table:      "furniture",
		OpName:     "Furniture",
		Label:      "Furniture",
		ChartColor: "#D1495B",
		HasType:    true,
		Number:     NumberText,
	},
	VariantVehicle: {
		Variant:    VariantVehicle,
		Table:      "vehicle",
		OpName:     "Vehicle",
		Label:      "Vehicles",
		ChartColor: "#30638E",
		HasType:    true,
		HasName:    true,
		Number:     NumberInteger,
		OrderByID:  true,
	},
	VariantOfficeEquipment: {
		Variant:    VariantOfficeEquipment,
		Table:      "office_equipment",
		OpName:     "OfficeEquipment",
		Label:      "Office Equipment",
		ChartColor: "#EDAE49",
		HasType:    true,
		HasName:    true,
		Number:     NumberText,
	},
	VariantOther: {
		Variant:    VariantOther,
		Table:      "other",
		OpName:     "Other",
		Label:      "Other Assets",
		ChartColor: "#00798C",
		HasName:    true,
		Number:     NumberText,
	},
}

// Variants returns every variant in display order.
func Variants() []Variant {
	out := make([]Variant, len(variantOrder))
	copy(out, variantOrder)
	return out
}

// ParseVariant accepts the table form ("office_equipment") or the operation
// form ("OfficeEquipment").
func ParseVariant(value string) (Variant, error) {
	trimmed := strings.TrimSpace(value)
	for _, v := range variantOrder {
		fs := fieldSets[v]
		if strings.EqualFold(trimmed, string(v)) || strings.EqualFold(trimmed, fs.OpName) {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVariant, value)
}

// FieldSet returns the descriptor for the variant.
func (v Variant) FieldSet() (FieldSet, error) {
	fs, ok := fieldSets[v]
	if !ok {
		return FieldSet{}, fmt.Errorf("%w: %q", ErrUnknownVariant, string(v))
	}
	return fs, nil
}

// Valid reports whether v is a known variant.
func (v Variant) Valid() bool {
	_, ok := fieldSets[v]
	return ok
}

// Fields lists the record fields of the variant in form order.
func (fs FieldSet) Fields() []Field {
	fields := make([]Field, 0, 8)
	if fs.HasType {
		fields = append(fields, FieldType)
	}
	if fs.HasName {
		fields = append(fields, FieldName)
	}
	return append(fields,
		FieldNumber,
		FieldPrice,
		FieldStationID,
		FieldPurchaseDate,
		FieldCondition,
		FieldEmployeeName,
	)
}

// Has reports whether the variant carries the field.
func (fs FieldSet) Has(field Field) bool {
	switch field {
	case FieldType:
		return fs.HasType
	case FieldName:
		return fs.HasName
	case FieldID, FieldNumber, FieldPrice, FieldStationID, FieldPurchaseDate, FieldCondition, FieldEmployeeName:
		return true
	default:
		return false
	}
}

// FieldLabel returns the column header used in listings and exports.
func FieldLabel(field Field) string {
	switch field {
	case FieldStationID, FieldStationName:
		return "Station"
	case FieldID:
		return "ID"
	}
	text := strings.ReplaceAll(string(field), "_", " ")
	if text == "" {
		return text
	}
	return strings.ToUpper(text[:1]) + text[1:]
}
