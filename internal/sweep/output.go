package sweep

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"
)

var inputHeaders = []string{"Frequency [GHz]", "S11 [dB]", "Bandwidth [GHz]"}

var resultHeaders = []string{"Patch Length [mm]", "Patch Width [mm]", "Feedline Width [mm]", "Achievable Bandwidth [GHz]"}

// SaveToXLSX writes Summary, Results and Failures sheets.
func SaveToXLSX(filename string, variant string, report *Report) error {
	f, err := buildWorkbook(variant, report)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(filename)
}

// WriteXLSX streams the workbook to w.
func WriteXLSX(w io.Writer, variant string, report *Report) error {
	f, err := buildWorkbook(variant, report)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func buildWorkbook(variant string, report *Report) (*excelize.File, error) {
	f := excelize.NewFile()

	// Summary
	summary := "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, err
	}

	total := report.Total()
	var okRatio, ngRatio float64
	if total > 0 {
		okRatio = float64(len(report.Rows)) / float64(total)
		ngRatio = float64(len(report.Failures)) / float64(total)
	}

	cells := [][]any{
		{"Variant", variant, ""},
		{"Type", "Count", "Ratio"},
		{"OK", len(report.Rows), okRatio},
		{"NG", len(report.Failures), ngRatio},
		{"ALL", total, 1.0},
	}
	for i, row := range cells {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summary, cell, &row); err != nil {
			return nil, err
		}
	}

	// Results
	results := "Results"
	if _, err := f.NewSheet(results); err != nil {
		return nil, err
	}
	header := append(append([]any{"No"}, toAny(inputHeaders)...), toAny(resultHeaders)...)
	if err := f.SetSheetRow(results, "A1", &header); err != nil {
		return nil, err
	}
	for i, r := range report.Rows {
		row := []any{
			i + 1,
			r.Input.FrequencyGHz, r.Input.S11dB, r.Input.BandwidthGHz,
			r.Result.PatchLengthMM, r.Result.PatchWidthMM, r.Result.FeedWidthMM, r.Result.AchievableBandwidthGHz,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(results, cell, &row); err != nil {
			return nil, err
		}
	}

	// Failures
	failures := "Failures"
	if _, err := f.NewSheet(failures); err != nil {
		return nil, err
	}
	header = append(append([]any{"No"}, toAny(inputHeaders)...), "Stage", "Reason")
	if err := f.SetSheetRow(failures, "A1", &header); err != nil {
		return nil, err
	}
	for i, fl := range report.Failures {
		row := []any{i + 1, fl.Input.FrequencyGHz, fl.Input.S11dB, fl.Input.BandwidthGHz, fl.Stage, fl.Reason}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(failures, cell, &row); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// SaveToTSV writes the successful rows as tab separated values with 4
// decimal places. An empty filename writes nothing.
func SaveToTSV(filename string, report *Report) error {
	if filename == "" {
		return nil
	}

	fp, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer fp.Close()

	w := csv.NewWriter(fp)
	w.Comma = '\t'

	header := append(append([]string{}, inputHeaders...), resultHeaders...)
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range report.Rows {
		values := []float64{
			r.Input.FrequencyGHz, r.Input.S11dB, r.Input.BandwidthGHz,
			r.Result.PatchLengthMM, r.Result.PatchWidthMM, r.Result.FeedWidthMM, r.Result.AchievableBandwidthGHz,
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = fmt.Sprintf("%.4f", v)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func toAny(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
