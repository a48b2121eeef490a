package http

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	catalog "asset-catalog/internal/catalog/domain"
)

// ExportColumns lists the exported columns of a variant. The station is
// rendered by name.
func ExportColumns(fs catalog.FieldSet) []catalog.Field {
	columns := []catalog.Field{catalog.FieldID}
	for _, field := range fs.Fields() {
		if field == catalog.FieldStationID {
			field = catalog.FieldStationName
		}
		columns = append(columns, field)
	}
	return columns
}

// ExportTitle returns the document title, e.g. "UAS Vehicle List".
func ExportTitle(fs catalog.FieldSet) string {
	return fmt.Sprintf("UAS %s List", fs.OpName)
}

// ExportFileName returns the default download name for ext.
func ExportFileName(fs catalog.FieldSet, ext string) string {
	return fmt.Sprintf("UAS_%s_List.%s", fs.OpName, ext)
}

func headerRow(columns []catalog.Field) []string {
	row := make([]string, len(columns))
	for i, col := range columns {
		row[i] = catalog.FieldLabel(col)
	}
	return row
}

func valueRow(columns []catalog.Field, listing catalog.AssetListing) []string {
	row := make([]string, len(columns))
	for i, col := range columns {
		row[i] = listing.ColumnValue(col)
	}
	return row
}

// BuildAssetListPDF renders a paged table of listings.
func BuildAssetListPDF(fs catalog.FieldSet, listings []catalog.AssetListing) ([]byte, error) {
	columns := ExportColumns(fs)
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.SetFont("Arial", "", 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, ExportTitle(fs))
	pdf.Ln(12)

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	width := (pageWidth - left - right) / float64(len(columns))

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		for _, label := range headerRow(columns) {
			pdf.CellFormat(width, 7, label, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}
	header()
	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, listing := range listings {
		if pdf.GetY()+6 > pageHeight-bottom-12 {
			pdf.AddPage()
			header()
		}
		for i, value := range valueRow(columns, listing) {
			align := "L"
			if columns[i] == catalog.FieldID || columns[i] == catalog.FieldPrice {
				align = "R"
			}
			pdf.CellFormat(width, 6, truncate(pdf, value, width-2), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func truncate(pdf *gofpdf.Fpdf, value string, width float64) string {
	if pdf.GetStringWidth(value) <= width {
		return value
	}
	runes := []rune(value)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

// BuildAssetListXLSX renders listings as a single sheet workbook.
func BuildAssetListXLSX(fs catalog.FieldSet, listings []catalog.AssetListing) ([]byte, error) {
	columns := ExportColumns(fs)
	f := excelize.NewFile()
	defer f.Close()
	sheet := fs.OpName
	f.SetSheetName("Sheet1", sheet)

	_ = f.SetCellValue(sheet, "A1", ExportTitle(fs))
	for i, label := range headerRow(columns) {
		cell, err := excelize.CoordinatesToCellName(i+1, 3)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(sheet, cell, label)
	}
	for r, listing := range listings {
		for c, col := range columns {
			cell, err := excelize.CoordinatesToCellName(c+1, r+4)
			if err != nil {
				return nil, err
			}
			_ = f.SetCellValue(sheet, cell, xlsxValue(col, listing))
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func xlsxValue(col catalog.Field, listing catalog.AssetListing) any {
	switch col {
	case catalog.FieldID:
		return listing.ID
	case catalog.FieldPrice:
		value, _ := listing.Price.Float64()
		return value
	default:
		return listing.ColumnValue(col)
	}
}

// WriteAssetListCSV writes a header row and one row per listing.
func WriteAssetListCSV(w io.Writer, fs catalog.FieldSet, listings []catalog.AssetListing) error {
	columns := ExportColumns(fs)
	writer := csv.NewWriter(w)
	header := headerRow(columns)
	for i := range header {
		header[i] = strings.ToLower(strings.ReplaceAll(header[i], " ", "_"))
	}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, listing := range listings {
		if err := writer.Write(valueRow(columns, listing)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
