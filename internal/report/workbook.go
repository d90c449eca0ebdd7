package report

import (
	"io"

	"github.com/xuri/excelize/v2"

	"gopower/domain/power"
	"gopower/internal/errors"
)

const (
	curveSheet   = "Power Curve"
	summarySheet = "Summary"
)

// CurveWorkbook builds a workbook with the power curve on one sheet and the
// design inputs (plus the solved sample size, when given) on another.
// The caller owns the returned file and must Close it.
func CurveWorkbook(pair power.ProportionPair, alpha float64, points []power.CurvePoint, solved *power.SampleSizeResult) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", curveSheet); err != nil {
		f.Close()
		return nil, errors.RenderError("workbook", err)
	}
	if err := writeRows(f, curveSheet, curveRows(points)); err != nil {
		f.Close()
		return nil, errors.RenderError("workbook", err)
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		f.Close()
		return nil, errors.RenderError("workbook", err)
	}
	if err := writeRows(f, summarySheet, summaryRows(pair, alpha, solved)); err != nil {
		f.Close()
		return nil, errors.RenderError("workbook", err)
	}

	if idx, err := f.GetSheetIndex(curveSheet); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}
	return f, nil
}

// WriteCurveWorkbook saves the power curve workbook to path
func WriteCurveWorkbook(path string, pair power.ProportionPair, alpha float64, points []power.CurvePoint, solved *power.SampleSizeResult) error {
	f, err := CurveWorkbook(pair, alpha, points, solved)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return errors.RenderError(path, err)
	}
	return nil
}

// StreamCurveWorkbook writes the power curve workbook to w
func StreamCurveWorkbook(w io.Writer, pair power.ProportionPair, alpha float64, points []power.CurvePoint, solved *power.SampleSizeResult) error {
	f, err := CurveWorkbook(pair, alpha, points, solved)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return errors.RenderError("workbook", err)
	}
	return nil
}

func curveRows(points []power.CurvePoint) [][]interface{} {
	rows := make([][]interface{}, 0, len(points)+1)
	rows = append(rows, []interface{}{"n_per_group", "power"})
	for _, pt := range points {
		rows = append(rows, []interface{}{pt.N, pt.Power})
	}
	return rows
}

func summaryRows(pair power.ProportionPair, alpha float64, solved *power.SampleSizeResult) [][]interface{} {
	rows := [][]interface{}{
		{"parameter", "value"},
		{"p_null", pair.Null},
		{"p_alt", pair.Alt},
		{"difference", pair.Difference()},
		{"alpha", alpha},
	}
	if solved != nil {
		rows = append(rows,
			[]interface{}{"beta", solved.Rates.Beta},
			[]interface{}{"required_n_per_group", solved.N},
			[]interface{}{"exact_n", solved.Exact},
			[]interface{}{"achieved_power", solved.Achieved},
		)
	}
	return rows
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}
