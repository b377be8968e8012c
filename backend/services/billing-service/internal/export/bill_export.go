package export

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"greenvolt/backend/services/billing-service/internal/billing"
)

// Supported export formats.
const (
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

// ErrUnsupportedFormat is returned for an unknown export format.
var ErrUnsupportedFormat = errors.New("export: unsupported format")

// Document is a rendered bill.
type Document struct {
	ContentType string
	Filename    string
	Body        []byte
}

// Render renders bill in the requested format.
func Render(format string, bill billing.HourlyBill) (*Document, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	base := fmt.Sprintf("bill-%d-%s-%s", bill.UserID, bill.StartDate, bill.EndDate)

	switch format {
	case FormatPDF, "":
		body, err := BuildBillPDF(bill)
		if err != nil {
			return nil, err
		}
		return &Document{ContentType: "application/pdf", Filename: base + ".pdf", Body: body}, nil
	case FormatXLSX:
		body, err := BuildBillXLSX(bill)
		if err != nil {
			return nil, err
		}
		return &Document{
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Filename:    base + ".xlsx",
			Body:        body,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// BuildBillPDF renders the daily and hourly breakdown of a bill.
func BuildBillPDF(bill billing.HourlyBill) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "GreenVolt Energy Bill")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Customer: %d", bill.UserID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s to %s", bill.StartDate, bill.EndDate))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", time.Now().UTC().Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.Cell(0, 6, fmt.Sprintf("Total Energy (kWh): %.2f", bill.TotalKWh))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Cost: %.2f", bill.TotalCost))
	pdf.Ln(5)
	if bill.MissingRateHours > 0 {
		pdf.Cell(0, 6, fmt.Sprintf("Hours without a price (billed at 0): %d", bill.MissingRateHours))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(40, 6, "Day", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Energy (kWh)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Cost", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, d := range bill.DailyBreakdown {
		pdf.CellFormat(40, 6, d.Date, "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 6, fmt.Sprintf("%.2f", d.KWh), "1", 0, "R", false, 0, "")
		pdf.CellFormat(50, 6, fmt.Sprintf("%.2f", d.Cost), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	if len(bill.HourlyBreakdown) > 0 {
		pdf.AddPage()
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(50, 6, "Hour (UTC)", "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, "Energy (kWh)", "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, "Cost", "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, "Priced", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
		for _, h := range bill.HourlyBreakdown {
			priced := "yes"
			if h.RateMissing {
				priced = "no"
			}
			pdf.CellFormat(50, 6, h.HourStart.Format("2006-01-02 15:04"), "1", 0, "C", false, 0, "")
			pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", h.KWh), "1", 0, "R", false, 0, "")
			pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", h.Cost), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 6, priced, "1", 0, "C", false, 0, "")
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildBillXLSX renders a summary sheet plus daily and hourly sheets.
func BuildBillXLSX(bill billing.HourlyBill) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	summary, daily, hourly := "summary", "daily", "hourly"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(daily); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(hourly); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summary, "A1", "GreenVolt Energy Bill")
	_ = f.SetCellValue(summary, "A3", "Customer")
	_ = f.SetCellValue(summary, "B3", bill.UserID)
	_ = f.SetCellValue(summary, "A4", "Start")
	_ = f.SetCellValue(summary, "B4", bill.StartDate)
	_ = f.SetCellValue(summary, "A5", "End")
	_ = f.SetCellValue(summary, "B5", bill.EndDate)
	_ = f.SetCellValue(summary, "A6", "Total Energy (kWh)")
	_ = f.SetCellValue(summary, "B6", bill.TotalKWh)
	_ = f.SetCellValue(summary, "A7", "Total Cost")
	_ = f.SetCellValue(summary, "B7", bill.TotalCost)
	_ = f.SetCellValue(summary, "A8", "Missing Rate Hours")
	_ = f.SetCellValue(summary, "B8", bill.MissingRateHours)

	_ = f.SetCellValue(daily, "A1", "Day")
	_ = f.SetCellValue(daily, "B1", "Energy (kWh)")
	_ = f.SetCellValue(daily, "C1", "Cost")
	for i, d := range bill.DailyBreakdown {
		row := i + 2
		_ = f.SetCellValue(daily, fmt.Sprintf("A%d", row), d.Date)
		_ = f.SetCellValue(daily, fmt.Sprintf("B%d", row), d.KWh)
		_ = f.SetCellValue(daily, fmt.Sprintf("C%d", row), d.Cost)
	}

	_ = f.SetCellValue(hourly, "A1", "Hour (UTC)")
	_ = f.SetCellValue(hourly, "B1", "Energy (kWh)")
	_ = f.SetCellValue(hourly, "C1", "Cost")
	_ = f.SetCellValue(hourly, "D1", "Rate Missing")
	for i, h := range bill.HourlyBreakdown {
		row := i + 2
		_ = f.SetCellValue(hourly, fmt.Sprintf("A%d", row), h.HourStart.Format("2006-01-02 15:04"))
		_ = f.SetCellValue(hourly, fmt.Sprintf("B%d", row), h.KWh)
		_ = f.SetCellValue(hourly, fmt.Sprintf("C%d", row), h.Cost)
		_ = f.SetCellValue(hourly, fmt.Sprintf("D%d", row), h.RateMissing)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
