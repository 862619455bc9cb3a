package pdf

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/konelease/leasing-workflow/internal/model"
)

// Generator renders the printable equipment lease contract.
type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

func (g *Generator) Render(contract model.Contract, app model.Application) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "EQUIPMENT LEASE CONTRACT", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Contract no. %s", contract.ContractNumber), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Application %s", app.ReferenceNumber), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	g.addPartyBlock(pdf, "Lessor", contract.Lessor)
	pdf.Ln(2)
	g.addPartyBlock(pdf, "Lessee", contract.Lessee)
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Lease object", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.MultiCell(0, 6, app.EquipmentDescription, "", "L", false)
	if app.EquipmentSupplier != "" {
		pdf.CellFormat(0, 6, fmt.Sprintf("Supplier: %s", app.EquipmentSupplier), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Rent and fees", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)

	headers := []string{"Item", "Amount"}
	colWidths := []float64{110, 60}
	g.drawTableRow(pdf, headers, colWidths, true)
	rows := [][]string{
		{"Monthly rent", formatAmount(contract.MonthlyRent)},
		{"Lease period", fmt.Sprintf("%d months", contract.LeasePeriodMonths)},
		{"Advance payment", formatAmount(contract.AdvancePayment)},
		{"Financed amount", formatAmount(app.FinancedAmount(contract.AdvancePayment))},
		{"Residual value", formatAmount(contract.ResidualValue)},
		{"Processing fee", formatAmount(contract.ProcessingFee)},
		{"Arrangement fee", formatAmount(contract.ArrangementFee)},
	}
	for _, row := range rows {
		g.drawTableRow(pdf, row, colWidths, false)
	}
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Signatures", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	if contract.SignedAt != nil {
		place := contract.SignaturePlace
		if place == "" {
			place = "-"
		}
		pdf.CellFormat(0, 6, fmt.Sprintf("Signed by %s at %s on %s",
			contract.SignerName, place, formatDate(*contract.SignedAt)), "", 1, "L", false, 0, "")
	} else {
		pdf.CellFormat(0, 6, "Lessee signature: ______________________________", "", 1, "L", false, 0, "")
		pdf.Ln(2)
		pdf.CellFormat(0, 6, "Lessor signature: ______________________________", "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) addPartyBlock(pdf *gofpdf.Fpdf, label string, party model.Party) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, label, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, party.CompanyName, "", 1, "L", false, 0, "")
	if party.BusinessID != "" {
		pdf.CellFormat(0, 6, fmt.Sprintf("Business ID: %s", party.BusinessID), "", 1, "L", false, 0, "")
	}
	address := joinNonEmpty([]string{party.StreetAddress, party.PostalCode, party.City}, ", ")
	if address != "" {
		pdf.CellFormat(0, 6, address, "", 1, "L", false, 0, "")
	}
	contact := joinNonEmpty([]string{party.ContactPerson, party.Email, party.Phone}, " / ")
	if contact != "" {
		pdf.CellFormat(0, 6, contact, "", 1, "L", false, 0, "")
	}
}

func (g *Generator) drawTableRow(pdf *gofpdf.Fpdf, cells []string, widths []float64, header bool) {
	if header {
		pdf.SetFont(g.fontName, "B", 10)
	} else {
		pdf.SetFont(g.fontName, "", 10)
	}
	for i, cell := range cells {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, cell, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func formatAmount(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64) + " EUR"
}

func formatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

func joinNonEmpty(parts []string, sep string) string {
	kept := parts[:0]
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, sep)
}
