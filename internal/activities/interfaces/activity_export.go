package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	activities "machinehealth-cloud/internal/activities/domain"
)

const exportDateLayout = "2006-01-02 15:04"

// BuildActivityPDF renders the maintenance board as a PDF report.
func BuildActivityPDF(pending []activities.PendingActivity, completed []activities.CompletedActivity, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Corrective Activity Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generatedAt.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Pending: %d", len(pending)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Completed: %d", len(completed)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(55, 6, "Parameter", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Condition", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Identified", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Last Seen", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 6, "Count", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Responsible", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Target", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, item := range pending {
		pdf.CellFormat(55, 6, item.ParameterName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, string(item.Condition), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, item.DateOfIdentification.Format(exportDateLayout), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, item.LatestOccurrence.Format(exportDateLayout), "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", item.NumberOfOccurrences), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, item.ResponsiblePerson, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, formatOptionalDate(item.TargetDateOfCompletion), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(55, 6, "Parameter", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Condition", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Identified", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Completed", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 6, "Count", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Responsible", "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 6, "Measure", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, item := range completed {
		pdf.CellFormat(55, 6, item.ParameterName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, string(item.Condition), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, item.DateOfIdentification.Format(exportDateLayout), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, item.ActualDateOfCompletion.Format(exportDateLayout), "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", item.NumberOfOccurrences), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, item.ResponsiblePerson, "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 6, item.CorrectiveMeasurement, "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildActivityXLSX renders the maintenance board as an XLSX workbook
// with one sheet per lifecycle state.
func BuildActivityXLSX(pending []activities.PendingActivity, completed []activities.CompletedActivity, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	pendingSheet := "pending"
	completedSheet := "completed"
	f.SetSheetName("Sheet1", pendingSheet)
	f.NewSheet(completedSheet)

	pendingHeader := []string{"Parameter", "Condition", "Identified", "Last Seen", "Occurrences",
		"Recent Value", "Responsible", "Priority", "Target", "Measure", "Spare", "Support"}
	for i, title := range pendingHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(pendingSheet, cell, title)
	}
	for i, item := range pending {
		row := i + 2
		values := []any{item.ParameterName, string(item.Condition),
			item.DateOfIdentification.Format(exportDateLayout), item.LatestOccurrence.Format(exportDateLayout),
			item.NumberOfOccurrences, item.RecentValue, item.ResponsiblePerson, item.Priority,
			formatOptionalDate(item.TargetDateOfCompletion), item.CorrectiveMeasurement,
			item.SpareRequired, item.SupportNeeded}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(pendingSheet, cell, value)
		}
	}

	completedHeader := []string{"Parameter", "Condition", "Identified", "Completed", "Occurrences",
		"Recent Value", "Responsible", "Priority", "Measure", "Spare", "Support"}
	for i, title := range completedHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(completedSheet, cell, title)
	}
	for i, item := range completed {
		row := i + 2
		values := []any{item.ParameterName, string(item.Condition),
			item.DateOfIdentification.Format(exportDateLayout), item.ActualDateOfCompletion.Format(exportDateLayout),
			item.NumberOfOccurrences, item.RecentValue, item.ResponsiblePerson, item.Priority,
			item.CorrectiveMeasurement, item.SpareRequired, item.SupportNeeded}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(completedSheet, cell, value)
		}
	}

	_ = f.SetCellValue(pendingSheet, "N1", "Generated")
	_ = f.SetCellValue(pendingSheet, "N2", generatedAt.Format(time.RFC3339))

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatOptionalDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
