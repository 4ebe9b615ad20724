package catalog

import (
	"context"
	"strconv"
	"strings"
)

// Product is a construction-material entry as consumed by the DevizElite app.
// Field order is the serialized key order.
type Product struct {
	ID       string `json:"id"`
	NameFR   string `json:"nameFR"`
	NameEN   string `json:"nameEN"`
	Category string `json:"category"`
	Country  string `json:"country"`
	Price    Price  `json:"price"`
	Unit     string `json:"unit"`
}

// Price always encodes with a fractional part, e.g. 100.0.
type Price float64

func (p Price) MarshalJSON() ([]byte, error) {
	s := strconv.FormatFloat(float64(p), 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return []byte(s), nil
}

// Seed returns the literal record sequence. Each call returns a new slice.
func Seed() []Product {
	return []Product{
		{
			ID:       "fr-EX",
			NameFR:   "Exemple INIES",
			NameEN:   "Example INIES",
			Category: "Gros œuvre",
			Country:  "FR",
			Price:    100.0,
			Unit:     "u",
		},
	}
}

// Provider is a source of product records.
type Provider interface {
	Name() string
	Products(ctx context.Context) ([]Product, error)
}

// StaticProvider serves the literal seed records.
// TODO: add INIES (FDES) and TOTEM providers once API access is available.
type StaticProvider struct{}

func (StaticProvider) Name() string { return "static" }

func (StaticProvider) Products(context.Context) ([]Product, error) { return Seed(), nil }
