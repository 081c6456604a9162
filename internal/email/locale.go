package email

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// catalog holds the customer-facing copy for one language.
type catalog struct {
	Subject   string // takes the receipt id
	Heading   string
	Greeting  string
	Intro     string
	Order     string
	Receipt   string
	Date      string
	Details   string
	Product   string
	Quantity  string
	UnitPrice string
	Subtotal  string
	Total     string
	Questions string
	Automated string
	Rights    string

	months     [12]string
	dateLayout func(d time.Time, month string) string
}

// strings exposes the copy to the templates as t.<key>.
func (c catalog) strings() map[string]string {
	return map[string]string{
		"heading":    c.Heading,
		"greeting":   c.Greeting,
		"intro":      c.Intro,
		"order":      c.Order,
		"receipt":    c.Receipt,
		"date":       c.Date,
		"details":    c.Details,
		"product":    c.Product,
		"quantity":   c.Quantity,
		"unit_price": c.UnitPrice,
		"subtotal":   c.Subtotal,
		"total":      c.Total,
		"questions":  c.Questions,
		"automated":  c.Automated,
		"rights":     c.Rights,
	}
}

func (c catalog) formatDate(t time.Time) string {
	return c.dateLayout(t, c.months[t.Month()-1])
}

var spanish = catalog{
	Subject:   "Recibo de Compra #%d",
	Heading:   "¡Gracias por tu compra!",
	Greeting:  "Hola,",
	Intro:     "Tu pedido ha sido procesado exitosamente. A continuación encontrarás los detalles de tu compra.",
	Order:     "Pedido",
	Receipt:   "Recibo",
	Date:      "Fecha",
	Details:   "Detalle de Productos",
	Product:   "Producto",
	Quantity:  "Cantidad",
	UnitPrice: "Precio Unit.",
	Subtotal:  "Subtotal",
	Total:     "Total",
	Questions: "Si tienes alguna pregunta sobre tu pedido, no dudes en contactarnos.",
	Automated: "Este es un email automático, por favor no respondas a este mensaje.",
	Rights:    "Todos los derechos reservados.",
	months: [12]string{
		"enero", "febrero", "marzo", "abril", "mayo", "junio",
		"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
	},
	// 14 de octubre de 2026, 10:30
	dateLayout: func(d time.Time, month string) string {
		return fmt.Sprintf("%d de %s de %d, %02d:%02d", d.Day(), month, d.Year(), d.Hour(), d.Minute())
	},
}

var english = catalog{
	Subject:   "Purchase Receipt #%d",
	Heading:   "Thank you for your purchase!",
	Greeting:  "Hello,",
	Intro:     "Your order has been processed successfully. You will find the details of your purchase below.",
	Order:     "Order",
	Receipt:   "Receipt",
	Date:      "Date",
	Details:   "Order Details",
	Product:   "Product",
	Quantity:  "Quantity",
	UnitPrice: "Unit Price",
	Subtotal:  "Subtotal",
	Total:     "Total",
	Questions: "If you have any questions about your order, please contact us.",
	Automated: "This is an automated email, please do not reply to this message.",
	Rights:    "All rights reserved.",
	months: [12]string{
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	},
	// October 14, 2026, 10:30
	dateLayout: func(d time.Time, month string) string {
		return fmt.Sprintf("%s %d, %d, %02d:%02d", month, d.Day(), d.Year(), d.Hour(), d.Minute())
	},
}

// Spanish first: it is the fallback for unmatched locales.
var supported = []language.Tag{language.Spanish, language.English}

var catalogs = []catalog{spanish, english}

var matcher = language.NewMatcher(supported)

func catalogFor(tag language.Tag) catalog {
	_, idx, _ := matcher.Match(tag)
	return catalogs[idx]
}
