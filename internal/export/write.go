package export

import (
	"fmt"
	"os"

	goparquet "github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"
)

// WriteXLSX writes the flattened rows as an Excel workbook, the format the
// finance office consumes.
func WriteXLSX(path string, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "GRD"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	if err := f.SetSheetRow(sheet, "A1", &Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []any{
			r.EpisodeNumber, r.PatientID, r.PatientName,
			r.AdmissionDate, r.DischargeDate, r.PlanLabel, r.DRGCode,
			floatCell(r.GRDWeight), floatCell(r.StayDays), floatCell(r.DelayDays),
			r.Tramo, floatCell(r.BaseTariff), floatCell(r.DemoraPayment),
			r.OutlierPayment, r.ATDetalle, r.ATEntries, r.ATTotal,
			r.Documentacion, floatCell(r.FinalAmount), r.Estado,
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// WriteParquet writes the flattened rows as Parquet for analytics use.
func WriteParquet(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := goparquet.NewGenericWriter[Row](f)
	if _, err := w.Write(rows); err != nil {
		w.Close()
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}

// floatCell keeps nulls as empty cells instead of zeroes.
func floatCell(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
