package entities

import (
	"encoding/json"
	"strings"

	domainerrors "mintworks/contexts/issuance/drop-service/domain/errors"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Amount is a quantity of the smallest indivisible currency unit.
// It is always a non-negative integer.
type Amount struct {
	value decimal.Decimal
}

func ZeroAmount() Amount {
	return Amount{value: decimal.Zero}
}

// NewAmount builds an amount from a non-negative int64; negative input clamps to zero.
func NewAmount(units int64) Amount {
	if units < 0 {
		return ZeroAmount()
	}
	return Amount{value: decimal.NewFromInt(units)}
}

// ParseAmount parses a base-10 integer string such as "4000000000000000000".
func ParseAmount(raw string) (Amount, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Amount{}, domainerrors.ErrInvalidAmount
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return Amount{}, domainerrors.ErrInvalidAmount
	}
	return AmountFromDecimal(value)
}

func AmountFromDecimal(value decimal.Decimal) (Amount, error) {
	if value.IsNegative() || !value.Equal(value.Truncate(0)) {
		return Amount{}, domainerrors.ErrInvalidAmount
	}
	return Amount{value: value.Truncate(0)}, nil
}

func (a Amount) Decimal() decimal.Decimal {
	return a.value
}

func (a Amount) Add(other Amount) Amount {
	return Amount{value: a.value.Add(other.value)}
}

// Sub returns a-other, floored at zero.
func (a Amount) Sub(other Amount) Amount {
	diff := a.value.Sub(other.value)
	if diff.IsNegative() {
		return ZeroAmount()
	}
	return Amount{value: diff}
}

func (a Amount) MulInt(n int64) Amount {
	if n <= 0 {
		return ZeroAmount()
	}
	return Amount{value: a.value.Mul(decimal.NewFromInt(n))}
}

// Percent returns a*percent/100 truncated toward zero.
func (a Amount) Percent(percent int64) Amount {
	if percent <= 0 {
		return ZeroAmount()
	}
	quotient, _ := a.value.Mul(decimal.NewFromInt(percent)).QuoRem(hundred, 0)
	return Amount{value: quotient}
}

func (a Amount) Min(other Amount) Amount {
	if a.LessThan(other) {
		return a
	}
	return other
}

func (a Amount) Cmp(other Amount) int {
	return a.value.Cmp(other.value)
}

func (a Amount) LessThan(other Amount) bool {
	return a.value.LessThan(other.value)
}

func (a Amount) Equal(other Amount) bool {
	return a.value.Equal(other.value)
}

func (a Amount) IsZero() bool {
	return a.value.IsZero()
}

func (a Amount) String() string {
	return a.value.String()
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.value.String())
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseAmount(raw)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
