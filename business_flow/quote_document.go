package businessflow

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/amirphl/printshop/config"
	"github.com/amirphl/printshop/models"
	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

const (
	quoteQRImage    = "quote-qr"
	quoteFontFamily = "QuoteSans"
)

// QuoteDocument renders one quote version as a customer-facing PDF.
func (f *QuoteLifecycleFlowImpl) QuoteDocument(ctx context.Context, quoteID uint) (string, []byte, error) {
	quote, err := f.quoteRepo.ByID(ctx, quoteID)
	if err != nil {
		return "", nil, writeError("QUOTE_DOCUMENT_FAILED", "Failed to load quote", err)
	}
	if quote == nil {
		return "", nil, nil
	}
	items, err := f.itemRepo.ListByQuote(ctx, quote.ID)
	if err != nil {
		return "", nil, writeError("QUOTE_DOCUMENT_FAILED", "Failed to load quote items", err)
	}

	unitIDs := make([]uint, 0, len(items))
	for _, it := range items {
		unitIDs = append(unitIDs, it.ProductUnitID)
	}
	labels := map[uint]string{}
	if len(unitIDs) > 0 {
		units, err := f.unitRepo.ByIDsWithProduct(ctx, unitIDs)
		if err != nil && !degradedRead("quote document units", err) {
			return "", nil, err
		}
		for _, u := range units {
			labels[u.ID] = unitLabel(u)
		}
	}

	data, err := renderQuotePDF(quote, items, labels, f.document)
	if err != nil {
		return "", nil, NewBusinessError("QUOTE_DOCUMENT_FAILED", "Failed to render quote document", err)
	}
	filename := fmt.Sprintf("quote_%s_v%d.pdf", quote.UUID.String(), quote.Version)
	return filename, data, nil
}

// documentFont selects the font family and the text encoding it needs.
type documentFont struct {
	family string
	text   func(string) string
}

// setupFont registers the configured UTF-8 font. Without one the core Arial
// font is used and text is folded into Windows-1252.
func setupFont(pdf *gofpdf.Fpdf, cfg config.DocumentConfig) documentFont {
	if cfg.FontPath == "" {
		return documentFont{family: "Arial", text: latin1Text}
	}
	bold := cfg.BoldFontPath
	if bold == "" {
		bold = cfg.FontPath
	}
	pdf.AddUTF8Font(quoteFontFamily, "", cfg.FontPath)
	pdf.AddUTF8Font(quoteFontFamily, "B", bold)
	pdf.AddUTF8Font(quoteFontFamily, "I", cfg.FontPath)
	return documentFont{family: quoteFontFamily, text: func(s string) string { return s }}
}

// latin1Text encodes s for the core PDF fonts. Accented letters outside the
// code page lose their marks; anything else becomes '?'.
func latin1Text(s string) string {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if b, ok := charmap.Windows1252.EncodeRune(r); ok {
			out = append(out, b)
			continue
		}
		base := []rune(norm.NFD.String(string(r)))[0]
		if b, ok := charmap.Windows1252.EncodeRune(base); ok && base != r {
			out = append(out, b)
			continue
		}
		out = append(out, '?')
	}
	return string(out)
}

func renderQuotePDF(quote *models.Quote, items []*models.QuoteItem, labels map[uint]string, docCfg config.DocumentConfig) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	font := setupFont(pdf, docCfg)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	pdf.AddPage()
	pdf.SetMargins(10, 10, 10)

	// QR code carrying the quote reference, top right
	qr, err := qrcode.Encode(quoteReference(quote), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	pdf.RegisterImageOptionsReader(quoteQRImage, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qr))
	pdf.ImageOptions(quoteQRImage, 170, 8, 30, 30, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	// Header
	pdf.SetFont(font.family, "B", 18)
	pdf.Cell(150, 10, "QUOTE")
	pdf.Ln(12)

	pdf.SetFont(font.family, "", 10)
	pdf.Cell(95, 6, fmt.Sprintf("Quote: %s", quote.UUID.String()))
	pdf.Cell(95, 6, fmt.Sprintf("Version: %d", quote.Version))
	pdf.Ln(6)
	pdf.Cell(95, 6, fmt.Sprintf("Status: %s", statusLabel(quote.Status)))
	pdf.Cell(95, 6, fmt.Sprintf("Date: %s", quote.CreatedAt.Format("02-Jan-2006")))
	pdf.Ln(16)

	// Items
	pdf.SetFont(font.family, "B", 11)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(80, 8, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 8, "Days", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 8, "Unit Price", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 8, "Subtotal", "1", 1, "C", true, 0, "")

	pdf.SetFont(font.family, "", 10)
	for _, it := range items {
		label := labels[it.ProductUnitID]
		if label == "" {
			label = fmt.Sprintf("Unit %d", it.ProductUnitID)
		}
		days, unitPrice, subtotal := "-", "-", "-"
		if it.DeliveryDays != nil {
			days = fmt.Sprintf("%d", *it.DeliveryDays)
		}
		if it.CustomerPrice != nil {
			unitPrice = fmt.Sprintf("%.2f", *it.CustomerPrice)
			subtotal = fmt.Sprintf("%.2f", *it.CustomerPrice*float64(it.Quantity))
		}
		pdf.CellFormat(80, 8, font.text(label), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprintf("%d", it.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 8, days, "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 8, unitPrice, "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, subtotal, "1", 1, "R", false, 0, "")
	}

	pdf.Ln(5)
	pdf.SetFont(font.family, "B", 11)
	pdf.Cell(155, 8, "Total")
	pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", quote.FinalValue), "1", 1, "R", false, 0, "")

	if quote.Notes != nil && *quote.Notes != "" {
		pdf.Ln(8)
		pdf.SetFont(font.family, "", 10)
		pdf.MultiCell(190, 6, font.text(*quote.Notes), "", "", false)
	}
	if quote.Status == models.QuoteStatusRejected && quote.RejectionReason != nil {
		pdf.Ln(4)
		pdf.SetFont(font.family, "I", 10)
		pdf.MultiCell(190, 6, font.text("Rejected: "+*quote.RejectionReason), "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// quoteReference is the payload of the document's QR code
func quoteReference(quote *models.Quote) string {
	return fmt.Sprintf("quote:%s:v%d", quote.UUID.String(), quote.Version)
}

// statusLabel turns "in_production" into "In Production"
func statusLabel(status models.QuoteStatus) string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(status), "_", " "))
}
