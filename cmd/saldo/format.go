package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// moneyFormatter renders amounts for the terminal in the configured
// currency and locale.
type moneyFormatter struct {
	unit    currency.Unit
	printer *message.Printer
}

func newMoneyFormatter(code, locale string) (*moneyFormatter, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("parse currency %q: %w", code, err)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	return &moneyFormatter{unit: unit, printer: message.NewPrinter(tag)}, nil
}

func (f *moneyFormatter) Money(d decimal.Decimal) string {
	return f.printer.Sprint(currency.Symbol(f.unit.Amount(d.InexactFloat64())))
}

func (f *moneyFormatter) Percent(d decimal.Decimal) string {
	return f.printer.Sprintf("%.1f%%", d.InexactFloat64())
}
