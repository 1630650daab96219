// Package receipt renders a finalized sale into the printable AGRONORTE
// receipt PDF handed to the customer. The document is non-fiscal.
package receipt

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"agronorte-pos/internal/models"
)

const (
	margin = 15.0

	headerHeight = 35.0
	footerHeight = 15.0
)

// Filename returns the suggested download name for a sale's receipt.
func Filename(sale models.Sale) string {
	return fmt.Sprintf("recibo_venda_%d.pdf", sale.DisplaySequence)
}

// Render produces the receipt PDF for a finalized sale: green store header,
// address block, numbered title, item table, total, payment method and the
// non-fiscal footer.
func Render(sale models.Sale) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(true, footerHeight+10)
	pdf.AddPage()

	pageWidth, pageHeight := pdf.GetPageSize()

	// Store header band.
	pdf.SetFillColor(76, 175, 80)
	pdf.Rect(0, 0, pageWidth, headerHeight, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(0, 12)
	pdf.CellFormat(pageWidth, 8, "AGRONORTE", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(0, 23)
	pdf.CellFormat(pageWidth, 6, tr("MATERIAIS DE PESCA | RAÇÕES | PÁSSAROS E AQUARISMO"), "", 1, "C", false, 0, "")

	// Store address block.
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(margin, headerHeight+8)
	pdf.CellFormat(0, 4, "Rua Araras 100 Centro", "", 1, "L", false, 0, "")
	pdf.SetX(margin)
	pdf.CellFormat(0, 4, "Tel: 3252-6819", "", 1, "L", false, 0, "")
	pdf.Ln(8)

	// Title and sale date.
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 7, fmt.Sprintf("RECIBO DE VENDA - VENDA #%d", sale.DisplaySequence), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Data: "+sale.Timestamp.Local().Format("02/01/2006 15:04:05"), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	if sale.CustomerName != "" {
		pdf.SetX(margin)
		pdf.CellFormat(0, 6, tr("Cliente: "+sale.CustomerName), "", 1, "L", false, 0, "")
		pdf.Ln(2)
	}

	renderItemTable(pdf, tr, sale, pageWidth)

	// Total, right aligned under the table.
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetX(margin)
	pdf.CellFormat(pageWidth-2*margin, 7, "TOTAL: R$ "+FormatCurrency(sale.Total), "", 1, "R", false, 0, "")
	pdf.Ln(4)

	payment := sale.PaymentMethod
	if payment == "" {
		payment = "Dinheiro"
	}
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetX(margin)
	pdf.CellFormat(0, 6, tr("Forma de Pagamento: "+payment), "", 1, "L", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(0, 6, tr("Obrigado pela preferência! Volte sempre!"), "", 1, "C", false, 0, "")

	// Footer band.
	pdf.SetFillColor(76, 175, 80)
	pdf.Rect(0, pageHeight-footerHeight, pageWidth, footerHeight, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetXY(0, pageHeight-10)
	pdf.CellFormat(pageWidth, 5, tr("Documento não fiscal"), "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render receipt: %w", err)
	}
	return buf.Bytes(), nil
}

func renderItemTable(pdf *fpdf.Fpdf, tr func(string) string, sale models.Sale, pageWidth float64) {
	tableWidth := pageWidth - 2*margin
	colProduct := tableWidth - 30 - 35 - 35

	// Header row.
	pdf.SetFillColor(76, 175, 80)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetX(margin)
	pdf.CellFormat(colProduct, 8, "Produto", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 8, "Qtd", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 8, tr("Preço Unit."), "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 8, "Subtotal", "1", 1, "R", true, 0, "")

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 9)
	for _, item := range sale.Items {
		qty := item.Quantity.String() + " " + item.QuantityUnit.Label()
		pdf.SetX(margin)
		pdf.CellFormat(colProduct, 7, tr(item.ProductName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, qty, "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 7, "R$ "+FormatCurrency(item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, "R$ "+FormatCurrency(item.Subtotal), "1", 1, "R", false, 0, "")
	}
}

// FormatCurrency renders a decimal amount the Brazilian way: thousands
// separated by dots, cents by a comma (1234.5 -> "1.234,50").
func FormatCurrency(d decimal.Decimal) string {
	fixed := d.StringFixed(2)

	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	parts := strings.SplitN(fixed, ".", 2)
	intPart, fracPart := parts[0], parts[1]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	out := b.String() + "," + fracPart
	if neg {
		out = "-" + out
	}
	return out
}
