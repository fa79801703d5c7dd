package enums

import "fmt"

// WarrantyStatus is derived from the coverage window; the sweep keeps the
// stored value in line with wall-clock time.
type WarrantyStatus string

const (
	WarrantyStatusActive  WarrantyStatus = "active"
	WarrantyStatusExpired WarrantyStatus = "expired"
	WarrantyStatusVoided  WarrantyStatus = "voided"
)

func (s WarrantyStatus) String() string {
	return string(s)
}

func (s WarrantyStatus) IsValid() bool {
	switch s {
	case WarrantyStatusActive, WarrantyStatusExpired, WarrantyStatusVoided:
		return true
	default:
		return false
	}
}

func ParseWarrantyStatus(v string) (WarrantyStatus, error) {
	s := WarrantyStatus(v)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid warranty status %q", v)
	}
	return s, nil
}
