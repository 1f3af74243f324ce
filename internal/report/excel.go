package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	queueSheet   = "Rescue Queue"
	aidSheet     = "Aid"
)

type ExcelGenerator struct{}

func NewExcelGenerator() *ExcelGenerator {
	return &ExcelGenerator{}
}

func (g *ExcelGenerator) Generate(d Dashboard) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("error naming summary sheet: %w", err)
	}
	g.writeSummary(file, d)

	for _, name := range []string{queueSheet, aidSheet} {
		if _, err := file.NewSheet(name); err != nil {
			return nil, fmt.Errorf("error creating sheet %q: %w", name, err)
		}
	}
	g.writeQueue(file, d)
	g.writeAid(file, d)

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *ExcelGenerator) writeSummary(file *excelize.File, d Dashboard) {
	set := func(cell string, value any) {
		_ = file.SetCellValue(summarySheet, cell, value)
	}

	set("A1", "Generated")
	set("B1", formatDateTime(d.GeneratedAt))

	for i, line := range summaryLines(d.Stats) {
		row := 3 + i
		set(fmt.Sprintf("A%d", row), line.label)
		set(fmt.Sprintf("B%d", row), line.value)
	}

	_ = file.SetColWidth(summarySheet, "A", "A", 28)
	_ = file.SetColWidth(summarySheet, "B", "B", 18)
}

func (g *ExcelGenerator) writeQueue(file *excelize.File, d Dashboard) {
	writeHeader(file, queueSheet, []string{"Rank", "Priority", "Survey", "Location", "Critical", "Trapped", "Injured", "Status", "Trust", "Submitted"})

	for i, r := range d.Queue {
		row := 2 + i
		s := r.Survey
		values := []any{r.Rank, r.Priority, s.SurveyID, s.DigiPin, s.Critical, s.Trapped, s.Injured, string(s.LocationStatus), string(s.TrustStatus), formatDateTime(s.Timestamp)}
		writeRow(file, queueSheet, row, values)
	}

	_ = file.SetColWidth(queueSheet, "C", "D", 22)
	_ = file.SetColWidth(queueSheet, "J", "J", 18)
}

func (g *ExcelGenerator) writeAid(file *excelize.File, d Dashboard) {
	writeHeader(file, aidSheet, []string{"Aid", "Location", "Type", "Quantity", "Status", "Officer", "Submitted"})

	for i, a := range d.Aid {
		values := []any{a.AidID, a.DigiPin, a.AidType, a.Quantity, verifiedLabel(a.Verified), a.OfficerName, formatDateTime(a.Timestamp)}
		writeRow(file, aidSheet, 2+i, values)
	}

	_ = file.SetColWidth(aidSheet, "A", "C", 22)
	_ = file.SetColWidth(aidSheet, "F", "G", 18)
}

func writeHeader(file *excelize.File, sheet string, headers []string) {
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = file.SetCellValue(sheet, cell, header)
	}
}

func writeRow(file *excelize.File, sheet string, row int, values []any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = file.SetCellValue(sheet, cell, v)
	}
}
