package receipt

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"
)

// PDF renders an A4 document. Long orders flow onto further pages, each
// carrying a page counter in the footer.
func PDF(s Summary) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AliasNbPages("{nb}")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 5, fmt.Sprintf("Order %s - page %d/{nb}", s.OrderNumber, pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Order #%s", s.OrderNumber)), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	if s.PlacedAt != "" {
		pdf.CellFormat(0, 5, tr("Placed: "+s.PlacedAt), "", 1, "C", false, 0, "")
	}

	pdf.Ln(3)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, "Customer", "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, tr(s.CustomerName), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, tr("Phone: "+s.CustomerPhone), "", 1, "L", false, 0, "")
	if s.CustomerEmail != "" {
		pdf.CellFormat(0, 5, tr("Email: "+s.CustomerEmail), "", 1, "L", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, "Pickup", "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, tr(s.StopName), "", 1, "L", false, 0, "")
	if s.StopAddress != "" {
		pdf.MultiCell(0, 4, tr(s.StopAddress), "", "L", false)
	}
	when := s.PickupDate + " " + s.PickupTime
	if s.Weekday != "" {
		when = s.Weekday + " " + when
	}
	pdf.CellFormat(0, 5, tr(when), "", 1, "L", false, 0, "")

	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(120, 6, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(20, 6, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(0, 6, "Subtotal", "B", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	for _, line := range s.Lines {
		pdf.CellFormat(120, 5, tr(fmt.Sprintf("%s (%s)", line.Name, line.UnitPrice)), "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 5, fmt.Sprintf("%d", line.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(0, 5, tr(line.Subtotal), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 6, tr("Total: "+s.Total), "T", 1, "R", false, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
