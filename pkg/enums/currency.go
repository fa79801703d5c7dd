package enums

import "fmt"

// Currency is the ISO-4217 code orders are denominated in.
type Currency string

const (
	CurrencyVND Currency = "VND"
	CurrencyUSD Currency = "USD"
)

func (c Currency) String() string {
	return string(c)
}

func (c Currency) IsValid() bool {
	switch c {
	case CurrencyVND, CurrencyUSD:
		return true
	default:
		return false
	}
}

func ParseCurrency(v string) (Currency, error) {
	c := Currency(v)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid currency %q", v)
	}
	return c, nil
}
