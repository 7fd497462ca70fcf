// Package export writes overlay analysis results to spreadsheet workbooks.
package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/digitize-cli/internal/overlay"
)

// WriteOverlayWorkbook writes an intersection result to an XLSX workbook with
// one sheet of per-pair aggregates, one of raw intersections, and one of
// excluded features.
func WriteOverlayWorkbook(path string, result *overlay.Result) error {
	f := xlsx.NewFile()

	agg, err := f.AddSheet("Aggregates")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}
	addHeader(agg, "Category A", "Category B", "Total Area", "Intersections")
	for _, a := range result.Aggregates {
		row := agg.AddRow()
		row.AddCell().SetString(a.CategoryA)
		row.AddCell().SetString(a.CategoryB)
		row.AddCell().SetFloat(a.TotalArea)
		row.AddCell().SetInt(a.Count)
	}

	raw, err := f.AddSheet("Intersections")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}
	addHeader(raw, "Feature A", "Feature B", "Category A", "Category B", "Area")
	for _, ix := range result.Intersections {
		row := raw.AddRow()
		row.AddCell().SetString(ix.FeatureA)
		row.AddCell().SetString(ix.FeatureB)
		row.AddCell().SetString(ix.CategoryA)
		row.AddCell().SetString(ix.CategoryB)
		row.AddCell().SetFloat(ix.Area)
	}

	if len(result.Excluded) > 0 {
		exc, err := f.AddSheet("Excluded")
		if err != nil {
			return eris.Wrap(err, "export: add sheet")
		}
		addHeader(exc, "Layer", "Feature", "Category", "Reason")
		for _, e := range result.Excluded {
			row := exc.AddRow()
			row.AddCell().SetString(e.Layer)
			row.AddCell().SetString(e.FeatureID)
			row.AddCell().SetString(e.Category)
			row.AddCell().SetString(e.Reason)
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

// WritePointMatchWorkbook writes point-join matches to an XLSX workbook.
func WritePointMatchWorkbook(path string, matches []overlay.PointMatch) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Points")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}
	addHeader(sheet, "Point", "Longitude", "Latitude", "Matched", "Feature", "Speed Category")
	for _, m := range matches {
		row := sheet.AddRow()
		row.AddCell().SetString(m.Point.ID)
		row.AddCell().SetFloat(m.Point.X)
		row.AddCell().SetFloat(m.Point.Y)
		row.AddCell().SetBool(m.Matched)
		row.AddCell().SetString(m.FeatureID)
		row.AddCell().SetString(m.Category)
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

func addHeader(sheet *xlsx.Sheet, names ...string) {
	row := sheet.AddRow()
	for _, n := range names {
		row.AddCell().SetString(n)
	}
}
