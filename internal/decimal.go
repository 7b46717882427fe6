package internal

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// Decimal wraps an arbitrary-precision decimal. Attribute values arriving
// from independently parsed files often disagree in numeric representation
// (int vs float, trailing zeros); comparing through Decimal keeps the attrs
// policies about values, not lexemes.
type Decimal struct {
	value apd.Decimal
}

func NewDecimal(s string) (Decimal, error) {
	var d apd.Decimal
	_, _, err := d.SetString(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("invalid decimal: %w", err)
	}
	return Decimal{value: d}, nil
}

func NewDecimalFromInt64(i int64) Decimal {
	var d apd.Decimal
	d.SetInt64(i)
	return Decimal{value: d}
}

func NewDecimalFromFloat64(f float64) (Decimal, error) {
	var d apd.Decimal
	_, err := d.SetFloat64(f)
	if err != nil {
		return Decimal{}, fmt.Errorf("invalid decimal: %w", err)
	}
	return Decimal{value: d}, nil
}

func (d Decimal) String() string {
	return d.value.String()
}

func (d Decimal) Cmp(other Decimal) int {
	return d.value.Cmp(&other.value)
}
