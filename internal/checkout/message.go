package checkout

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/cucharaita/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

const whatsAppURL = "https://api.whatsapp.com/send"

// Message renders the order text sent to the bakery.
func Message(o domain.Order, depositPercent int) string {
	var b strings.Builder

	b.WriteString("Hola Cucharaita, saludos. \n\n")
	fmt.Fprintf(&b, "Pedido: *%s*\n\n", o.Code)
	b.WriteString("Listado de productos:\n")

	for _, l := range o.Lines {
		fmt.Fprintf(&b, "● %s x%d: *%s€*\n", l.Name, l.Quantity, l.LineTotal.StringFixed(2))
		for _, g := range l.Selection {
			writeGroup(&b, g)
		}
	}

	fmt.Fprintf(&b, "\n*Subtotal: %s €*", o.Subtotal.StringFixed(2))
	if o.Discount.IsPositive() {
		fmt.Fprintf(&b, "\n*Descuento (%s): -%s €*", o.CouponCode, o.Discount.StringFixed(2))
	}
	fmt.Fprintf(&b, "\n*Total a pagar: %s €*", o.Total.StringFixed(2))
	fmt.Fprintf(&b, "\n*Señal (%d%%): %s €*", depositPercent, o.Deposit.StringFixed(2))
	fmt.Fprintf(&b, "\n*Resto a la entrega (%d%%): %s €*", 100-depositPercent, o.Remainder.StringFixed(2))

	b.WriteString("\n\nDatos de entrega:")
	fmt.Fprintf(&b, "\nNombre: %s", o.Delivery.Name)
	fmt.Fprintf(&b, "\nFecha: %s", o.Delivery.Date.Format("02/01/2006"))
	fmt.Fprintf(&b, "\nDirección: %s", o.Delivery.Address)

	return b.String()
}

// writeGroup prints one line per distinct option, folding repeats into xN.
func writeGroup(b *strings.Builder, g domain.GroupSelection) {
	type folded struct {
		name  string
		count int
		price decimal.Decimal
	}
	var order []int64
	byID := map[int64]*folded{}
	for _, o := range g.Options {
		f, ok := byID[o.OptionID]
		if !ok {
			f = &folded{name: o.Name, price: decimal.Zero}
			byID[o.OptionID] = f
			order = append(order, o.OptionID)
		}
		f.count++
		f.price = f.price.Add(o.AddPrice)
	}

	parts := make([]string, 0, len(order))
	for _, id := range order {
		f := byID[id]
		s := f.name
		if f.count > 1 {
			s += fmt.Sprintf(" x%d", f.count)
		}
		if f.price.IsPositive() {
			s += fmt.Sprintf(" (+%s€)", f.price.StringFixed(2))
		}
		parts = append(parts, s)
	}
	fmt.Fprintf(b, "   %s: %s\n", g.GroupName, strings.Join(parts, ", "))
}

// Link builds the WhatsApp deep link carrying the message.
func Link(phone, text string) string {
	phone = strings.TrimPrefix(strings.TrimSpace(phone), "+")
	return whatsAppURL + "?phone=" + phone + "&text=" + encodeURIComponent(text)
}

// encodeURIComponent escapes like the browser function of the same name,
// which leaves !'()* alone and writes spaces as %20.
func encodeURIComponent(s string) string {
	escaped := url.QueryEscape(s)
	return componentReplacer.Replace(escaped)
}

var componentReplacer = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)
