package reports

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet  = "Summary"
	maxSheetName  = 31
	labelColWidth = 24
)

// ExportWorkbook writes a summary sheet plus one sheet per rendered chart.
// Chart sheets hold the labels in column A and one column per dataset;
// missing points are left blank.
func ExportWorkbook(s Snapshot) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	rows := [][]interface{}{
		{"Sales Dashboard Snapshot", s.TakenAt.Format("2006-01-02 15:04:05 MST")},
		{},
		{"Filter", "Value"},
		{"Period Type", s.Filters.PeriodType},
		{"Start Date", s.Filters.StartDate},
		{"End Date", s.Filters.EndDate},
		{"Forecast Start", s.Filters.ForecastStart},
		{"Region", s.Filters.Region},
		{},
		{"Metric", "Value", "Detail", "Error"},
		{"Total Sales", s.Cards.TotalSales.Value, s.Cards.TotalSales.Subtext, s.Cards.TotalSales.Error},
		{"Average Order Value", s.Cards.AvgOrderValue.Value, s.Cards.AvgOrderValue.Subtext, s.Cards.AvgOrderValue.Error},
		{"New Customers", s.Cards.NewCustomers.Value, s.Cards.NewCustomers.Subtext, s.Cards.NewCustomers.Error},
		{"Conversion Rate", s.Cards.ConversionRate.Value, s.Cards.ConversionRate.Subtext, s.Cards.ConversionRate.Error},
	}
	if err := writeRows(f, summarySheet, rows); err != nil {
		return nil, err
	}
	for _, cell := range []string{"A1", "A3", "B3", "A10", "B10", "C10", "D10"} {
		if err := f.SetCellStyle(summarySheet, cell, cell, bold); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(summarySheet, "A", "D", labelColWidth); err != nil {
		return nil, err
	}

	for _, st := range s.Rendered() {
		sheet := sheetName(st.ChartID)
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("failed to add sheet %s: %w", sheet, err)
		}
		cfg := st.Config

		header := []interface{}{"Label"}
		for _, ds := range cfg.Data.Datasets {
			header = append(header, ds.Label)
		}
		rows := [][]interface{}{
			{chartTitle(st), string(statusKind(st))},
			header,
		}
		for i, label := range cfg.Data.Labels {
			row := []interface{}{label}
			for _, ds := range cfg.Data.Datasets {
				if i < len(ds.Data) && ds.Data[i] != nil {
					row = append(row, *ds.Data[i])
				} else {
					row = append(row, nil)
				}
			}
			rows = append(rows, row)
		}
		if err := writeRows(f, sheet, rows); err != nil {
			return nil, err
		}
		last, err := excelize.CoordinatesToCellName(len(header), 2)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, "A", "A", labelColWidth); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

// sheetName trims a chart id to a valid worksheet name
func sheetName(chartID string) string {
	name := strings.TrimSuffix(chartID, "Chart")
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	return name
}
