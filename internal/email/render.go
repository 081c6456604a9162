package email

import (
	"fmt"
	"time"

	"github.com/osteele/liquid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ─── INPUT TYPES ─────────────────────────────────────────────────────────────

// Summary is the receipt header as shown to the customer.
type Summary struct {
	ReceiptID  int64
	OrderID    string
	TotalCents int64
	CreatedAt  time.Time
}

// Line is one product row of the receipt table.
type Line struct {
	ProductName    string
	Quantity       int32
	UnitPriceCents int64
}

// Content is the rendered subject and bodies, without addressing.
type Content struct {
	Subject string
	HTML    string
	Text    string
}

// ─── RENDERER ────────────────────────────────────────────────────────────────

// RendererConfig controls presentation only.
type RendererConfig struct {
	ShopName       string         // e.g. "StrideShop"
	Locale         string         // BCP 47, e.g. "es-ES"; unsupported values fall back to Spanish
	Location       *time.Location // time zone for the receipt date; nil means UTC
	CurrencySymbol string         // prefixed to every amount, e.g. "$"
}

// Renderer turns a Summary and its Lines into a receipt email. It is
// stateless after construction: the same input always renders the same bytes,
// so it is safe to share between goroutines.
type Renderer struct {
	cfg     RendererConfig
	copy    catalog
	printer *message.Printer
	html    *liquid.Template
	text    *liquid.Template
}

// NewRenderer parses the templates once. An error means a template is broken,
// which is a programming error rather than a runtime condition.
func NewRenderer(cfg RendererConfig) (*Renderer, error) {
	if cfg.ShopName == "" {
		cfg.ShopName = "StrideShop"
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		tag = language.Spanish
	}

	engine := liquid.NewEngine()

	html, err := engine.ParseString(receiptHTMLTemplate)
	if err != nil {
		return nil, fmt.Errorf("email: parse html template: %w", err)
	}
	text, err := engine.ParseString(receiptTextTemplate)
	if err != nil {
		return nil, fmt.Errorf("email: parse text template: %w", err)
	}

	return &Renderer{
		cfg:     cfg,
		copy:    catalogFor(tag),
		printer: message.NewPrinter(tag),
		html:    html,
		text:    text,
	}, nil
}

// Render produces the receipt email. Subtotals are computed for display only;
// quantities and prices are not re-validated.
func (r *Renderer) Render(s Summary, lines []Line) (Content, error) {
	created := s.CreatedAt.In(r.cfg.Location)

	rows := make([]map[string]any, len(lines))
	for i, l := range lines {
		rows[i] = map[string]any{
			"name":       l.ProductName,
			"quantity":   r.printer.Sprintf("%d", l.Quantity),
			"unit_price": r.money(l.UnitPriceCents),
			"subtotal":   r.money(int64(l.Quantity) * l.UnitPriceCents),
		}
	}

	bindings := liquid.Bindings{
		"shop":       r.cfg.ShopName,
		"receipt_id": fmt.Sprintf("%d", s.ReceiptID),
		"order_id":   s.OrderID,
		"date":       r.copy.formatDate(created),
		"total":      r.money(s.TotalCents),
		"year":       fmt.Sprintf("%d", created.Year()),
		"items":      rows,
		"t":          r.copy.strings(),
	}

	html, err := r.html.RenderString(bindings)
	if err != nil {
		return Content{}, fmt.Errorf("email: render html: %w", err)
	}
	text, err := r.text.RenderString(bindings)
	if err != nil {
		return Content{}, fmt.Errorf("email: render text: %w", err)
	}

	return Content{
		Subject: fmt.Sprintf(r.copy.Subject, s.ReceiptID),
		HTML:    html,
		Text:    text,
	}, nil
}

// money formats cents with exactly two decimals using the locale's
// separators.
func (r *Renderer) money(cents int64) string {
	return r.cfg.CurrencySymbol + r.printer.Sprintf("%.2f", float64(cents)/100)
}
