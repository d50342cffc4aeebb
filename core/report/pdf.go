package report

import (
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/hydradancer/hostctl/data"
)

var colWidths = map[string]float64{"T": 35, "O": 40, "R": 35, "D": 15, "B": 20, "N": 120}
var rowHeight = 6.5

// GeneratePDF writes the session records as a PDF report.
func GeneratePDF(records []data.TransferRecord, fn string) error {
	pdf := newReport()
	pdf = header(pdf)
	pdf = table(pdf, records)

	if pdf.Err() {
		return fmt.Errorf("failed creating PDF report: %v", pdf.Error())
	}

	return pdf.OutputFileAndClose(fn)
}

func newReport() *gofpdf.Fpdf {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Times", "B", 20)
	pdf.SetTextColor(255, 24, 0)
	pdf.Cell(40, 10, "HydraDancer session report")
	pdf.SetTextColor(0, 0, 255)
	pdf.Ln(12)
	pdf.SetFont("Times", "B", 15)
	pdf.Cell(40, 7, time.Now().Format("Mon Jan 2, 2006"))
	pdf.Ln(20)
	pdf.SetTextColor(0, 0, 0)
	return pdf
}

func header(pdf *gofpdf.Fpdf) *gofpdf.Fpdf {
	pdf.SetFont("Times", "B", 12)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(colWidths["T"], rowHeight, "TIME", "1", 0, "", true, 0, "")
	pdf.CellFormat(colWidths["O"], rowHeight, "OPERATION", "1", 0, "", true, 0, "")
	pdf.CellFormat(colWidths["R"], rowHeight, "ROLE", "1", 0, "", true, 0, "")
	pdf.CellFormat(colWidths["D"], rowHeight, "DIR", "1", 0, "", true, 0, "")
	pdf.CellFormat(colWidths["B"], rowHeight, "BYTES", "1", 0, "", true, 0, "")
	pdf.CellFormat(colWidths["N"], rowHeight, "NOTE", "1", 0, "", true, 0, "")
	return pdf
}

func table(pdf *gofpdf.Fpdf, records []data.TransferRecord) *gofpdf.Fpdf {
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetFillColor(255, 255, 255)
	pdf.Ln(-1)

	for _, record := range records {
		pdf.SetTextColor(75, 177, 24)
		pdf.CellFormat(colWidths["T"], rowHeight, record.Time.Format("Jan _2 15:04:05"), "1", 0, "L", true, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(colWidths["O"], rowHeight, record.Operation, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths["R"], rowHeight, record.Role, "1", 0, "L", false, 0, "")
		if record.Direction == data.DirIn {
			pdf.SetTextColor(0, 255, 0)
		} else {
			pdf.SetTextColor(255, 24, 0)
		}
		pdf.CellFormat(colWidths["D"], rowHeight, string(record.Direction), "1", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(colWidths["B"], rowHeight, fmt.Sprintf("%d", record.Length), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths["N"], rowHeight, record.Note, "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	return pdf
}
