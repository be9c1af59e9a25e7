package utils

import (
	"bytes"
	"fmt"
	"os"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"

	"shop_back_end/internal/models"
)

// GenerateSepaQR génère un QR SEPA (EPC) en PNG, prêt à insérer dans le PDF
func GenerateSepaQR(iban, bic, name, ref string, amount float64) ([]byte, error) {
	// format EPC basique
	sepa := fmt.Sprintf(`BCD
001
1
SCT
%s
%s
%s
EUR%.2f
%s`, bic, name, iban, amount, ref)

	return qrcode.Encode(sepa, qrcode.Medium, 256)
}

// RenderInvoicePDF produit la facture PDF d'une commande.
// Le rendu est une fonction pure des données de la commande : la date de
// création du document est figée sur celle de la commande pour que deux
// générations successives donnent exactement les mêmes octets.
func RenderInvoicePDF(order models.Order, buyerEmail string) ([]byte, error) {
	iban := os.Getenv("COMPANY_IBAN")
	if iban == "" {
		iban = "BE12345678901234"
	}
	bic := os.Getenv("COMPANY_BIC")
	if bic == "" {
		bic = "KREDBEBB"
	}
	companyName := os.Getenv("COMPANY_NAME")
	if companyName == "" {
		companyName = "Shop SRL"
	}

	ref := fmt.Sprintf("FACT-%d", order.ID)
	qrPNG, err := GenerateSepaQR(iban, bic, companyName, ref, order.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("erreur QR SEPA: %v", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(order.CreatedAt)
	pdf.AddPage()
	// les polices core attendent du cp1252, pas de l'UTF-8
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// En-tête
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "INVOICE")
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 5, fmt.Sprintf("Order ID: %d", order.ID))
	pdf.Ln(5)
	pdf.Cell(0, 5, fmt.Sprintf("Reference: %s", order.Reference))
	pdf.Ln(5)
	pdf.Cell(0, 5, fmt.Sprintf("Date: %s", order.CreatedAt.UTC().Format("2006-01-02 15:04:05")))
	pdf.Ln(5)
	pdf.Cell(0, 5, tr(fmt.Sprintf("Customer: %s", buyerEmail)))
	pdf.Ln(10)

	// Tableau des lignes
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(90, 7, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(20, 7, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, "Unit Price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, it := range order.Items {
		// tronquer par runes, jamais au milieu d'un caractère multi-octets
		name := []rune(it.NameSnapshot)
		if len(name) > 40 {
			name = name[:40]
		}
		pdf.CellFormat(90, 6, tr(string(name)), "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", it.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%s %.2f", order.Currency, it.UnitPrice), "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%s %.2f", order.Currency, it.Subtotal), "", 1, "R", false, 0, "")
	}

	// Total
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(190, 8, fmt.Sprintf("Total: %s %.2f", order.Currency, order.TotalAmount), "T", 1, "R", false, 0, "")

	// QR de paiement SEPA
	pdf.Ln(6)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("sepa-qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("sepa-qr", 10, pdf.GetY(), 35, 35, false, opts, 0, "")
	pdf.SetXY(50, pdf.GetY()+14)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 5, fmt.Sprintf("Scan to pay by SEPA transfer (ref %s)", ref))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
