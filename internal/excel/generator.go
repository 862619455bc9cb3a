package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/konelease/leasing-workflow/internal/model"
)

// Generator builds the admin pipeline workbook: one summary sheet plus one
// sheet per application status that has entries.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(report model.PipelineReport) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Summary"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, report); err != nil {
		return nil, err
	}

	for _, group := range report.Groups {
		sheetName := sheetNameFor(group.Status)
		if _, err := file.NewSheet(sheetName); err != nil {
			return nil, err
		}
		if err := g.writeGroup(file, sheetName, group); err != nil {
			return nil, err
		}
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, report model.PipelineReport) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Generated at")
	set("B1", report.GeneratedAt.Format("2006-01-02 15:04"))
	set("A2", "Total applications")
	set("B2", report.Total)

	set("A4", "Status")
	set("B4", "Count")
	row := 5
	for _, group := range report.Groups {
		set(fmt.Sprintf("A%d", row), string(group.Status))
		set(fmt.Sprintf("B%d", row), len(group.Applications))
		row++
	}
	return nil
}

func (g *Generator) writeGroup(file *excelize.File, sheet string, group model.PipelineGroup) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Reference")
	set("B1", "Company")
	set("C1", "Type")
	set("D1", "Equipment price")
	set("E1", "Created")

	for i, app := range group.Applications {
		row := i + 2
		set(fmt.Sprintf("A%d", row), app.ReferenceNumber)
		set(fmt.Sprintf("B%d", row), app.CompanyName)
		set(fmt.Sprintf("C%d", row), string(app.ApplicationType))
		set(fmt.Sprintf("D%d", row), app.EquipmentPrice)
		set(fmt.Sprintf("E%d", row), app.CreatedAt.Format("2006-01-02"))
	}
	return nil
}

// sheetNameFor keeps sheet names inside the 31 character xlsx limit.
func sheetNameFor(status model.ApplicationStatus) string {
	name := string(status)
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}
