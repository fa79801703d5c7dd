package enums

import "fmt"

// CartStatus marks whether a cart is still open for edits.
type CartStatus string

const (
	CartStatusActive    CartStatus = "active"
	CartStatusConverted CartStatus = "converted"
	CartStatusAbandoned CartStatus = "abandoned"
)

func (s CartStatus) String() string {
	return string(s)
}

func (s CartStatus) IsValid() bool {
	switch s {
	case CartStatusActive, CartStatusConverted, CartStatusAbandoned:
		return true
	default:
		return false
	}
}

func ParseCartStatus(v string) (CartStatus, error) {
	s := CartStatus(v)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid cart status %q", v)
	}
	return s, nil
}
