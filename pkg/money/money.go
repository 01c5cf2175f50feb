// Package money provides currency-safe financial arithmetic using integer
// minor units and the Fowler Money pattern. Amounts surfaced to users are
// formatted with the assistant's display conventions (space-grouped sums,
// symbol placement per currency).
package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Supported currency codes (ISO-4217)
const (
	UZS = "UZS" // Uzbek som
	USD = "USD" // US Dollar
	EUR = "EUR" // Euro
	RUB = "RUB" // Russian Ruble
)

// Money represents a monetary value with currency.
// It wraps go-money for safe arithmetic and shopspring/decimal for precision.
type Money struct {
	m *money.Money
}

// New creates a new Money value from minor units and currency code.
func New(amountMinor int64, currencyCode string) *Money {
	return &Money{
		m: money.New(amountMinor, currencyCode),
	}
}

// NewFromDecimal creates Money from a decimal.Decimal value.
// This is the safest way to create Money from a non-integer value.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currency = money.GetCurrency(UZS)
	}

	multiplier := decimal.New(1, int32(currency.Fraction))
	minor := amount.Mul(multiplier).Round(0).IntPart()

	return New(minor, currencyCode)
}

// NewFromFloat creates Money from a floating-point value.
// Prefer NewFromDecimal when the source is already exact.
func NewFromFloat(amount float64, currencyCode string) *Money {
	return NewFromDecimal(decimal.NewFromFloat(amount), currencyCode)
}

// NewFromString parses a formatted amount string.
// Accepts "100.50", "1,234.56", "10 000" and "1 234,56": a comma followed by
// exactly three digits is treated as a thousands separator, one or two
// trailing digits as a decimal separator.
func NewFromString(amount string, currencyCode string) (*Money, error) {
	cleaned := strings.TrimSpace(amount)
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")

	for _, sym := range []string{"$", "€", "₽", "£"} {
		cleaned = strings.ReplaceAll(cleaned, sym, "")
	}

	cleaned = normalizeSeparators(cleaned)

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}

	return NewFromDecimal(d, currencyCode), nil
}

// normalizeSeparators rewrites an amount to use a single dot decimal point.
// Comma groups of exactly three digits are thousands separators; a dot
// after the last comma makes the dot the decimal point ("1,234.56").
func normalizeSeparators(s string) string {
	lastComma := strings.LastIndex(s, ",")
	if lastComma == -1 {
		return s
	}
	if lastDot := strings.LastIndex(s, "."); lastDot > lastComma {
		// 1,234.56 style dot decimal
		return strings.ReplaceAll(s, ",", "")
	}
	tail := s[lastComma+1:]
	if len(tail) == 3 {
		// 1,500 / 12,345,678 style grouping
		return strings.ReplaceAll(s, ",", "")
	}
	// 1.234,56 or 1234,56 style decimal comma
	s = strings.ReplaceAll(s[:lastComma], ",", "")
	s = strings.ReplaceAll(s, ".", "")
	return s + "." + tail
}

// Zero returns a zero Money value for the given currency
func Zero(currencyCode string) *Money {
	return New(0, currencyCode)
}

// Amount returns the amount in minor units
func (m *Money) Amount() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// Currency returns the ISO-4217 currency code
func (m *Money) Currency() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Currency().Code
}

// IsZero returns true if the amount is zero
func (m *Money) IsZero() bool {
	return m == nil || m.m == nil || m.m.IsZero()
}

// IsPositive returns true if the amount is greater than zero
func (m *Money) IsPositive() bool {
	return m != nil && m.m != nil && m.m.IsPositive()
}

// IsNegative returns true if the amount is less than zero
func (m *Money) IsNegative() bool {
	return m != nil && m.m != nil && m.m.IsNegative()
}

// Abs returns the absolute value
func (m *Money) Abs() *Money {
	if m == nil || m.m == nil {
		return Zero(UZS)
	}
	return &Money{m: m.m.Absolute()}
}

// Negate returns the negated value
func (m *Money) Negate() *Money {
	if m == nil || m.m == nil {
		return Zero(UZS)
	}
	return &Money{m: m.m.Negative()}
}

// Add adds two Money values. Returns error if currencies don't match.
func (m *Money) Add(other *Money) (*Money, error) {
	if m == nil || m.m == nil {
		return other, nil
	}
	if other == nil || other.m == nil {
		return m, nil
	}

	result, err := m.m.Add(other.m)
	if err != nil {
		return nil, err
	}
	return &Money{m: result}, nil
}

// Subtract subtracts other from m. Returns error if currencies don't match.
func (m *Money) Subtract(other *Money) (*Money, error) {
	if m == nil || m.m == nil {
		if other == nil {
			return Zero(UZS), nil
		}
		return other.Negate(), nil
	}
	if other == nil || other.m == nil {
		return m, nil
	}

	result, err := m.m.Subtract(other.m)
	if err != nil {
		return nil, err
	}
	return &Money{m: result}, nil
}

// Multiply multiplies by an integer factor
func (m *Money) Multiply(factor int64) *Money {
	if m == nil || m.m == nil {
		return Zero(UZS)
	}
	return &Money{m: m.m.Multiply(factor)}
}

// MultiplyDecimal multiplies by a decimal factor for precise calculations.
func (m *Money) MultiplyDecimal(factor decimal.Decimal) *Money {
	if m == nil || m.m == nil {
		return Zero(UZS)
	}
	return NewFromDecimal(m.ToDecimal().Mul(factor), m.Currency())
}

// Equals returns true if both values are equal
func (m *Money) Equals(other *Money) bool {
	if m == nil || m.m == nil {
		return other == nil || other.m == nil || other.IsZero()
	}
	if other == nil || other.m == nil {
		return m.IsZero()
	}
	eq, _ := m.m.Equals(other.m)
	return eq
}

// LessThan returns true if m < other
func (m *Money) LessThan(other *Money) bool {
	if m == nil || m.m == nil || other == nil || other.m == nil {
		return false
	}
	lt, _ := m.m.LessThan(other.m)
	return lt
}

// GreaterThan returns true if m > other
func (m *Money) GreaterThan(other *Money) bool {
	if m == nil || m.m == nil || other == nil || other.m == nil {
		return false
	}
	gt, _ := m.m.GreaterThan(other.m)
	return gt
}

// Compare returns -1 if m < other, 0 if equal, 1 if m > other
func (m *Money) Compare(other *Money) int {
	if m == nil || m.m == nil {
		if other == nil || other.m == nil || other.IsZero() {
			return 0
		}
		if other.IsPositive() {
			return -1
		}
		return 1
	}
	cmp, _ := m.m.Compare(other.m)
	return cmp
}

// SameCurrency returns true if both have the same currency
func (m *Money) SameCurrency(other *Money) bool {
	if m == nil || m.m == nil || other == nil || other.m == nil {
		return false
	}
	return m.m.SameCurrency(other.m)
}

// ToDecimal converts to decimal.Decimal for precise calculations
func (m *Money) ToDecimal() decimal.Decimal {
	if m == nil || m.m == nil {
		return decimal.Zero
	}
	currency := m.m.Currency()
	d := decimal.NewFromInt(m.m.Amount())
	divisor := decimal.New(1, int32(currency.Fraction))
	return d.Div(divisor)
}

// ToFloat64 converts to float64 (display only)
func (m *Money) ToFloat64() float64 {
	return m.ToDecimal().InexactFloat64()
}

// String returns the amount as a decimal string (e.g., "1234.56")
func (m *Money) String() string {
	if m == nil || m.m == nil {
		return "0"
	}
	return m.ToDecimal().String()
}

// Display formats the amount for user-facing messages: sums of 1000 and
// above are shown as space-grouped integers, smaller sums keep up to two
// decimals; dollar/euro symbols prefix, som/ruble marks suffix.
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return FormatAmount(decimal.Zero, UZS)
	}
	return FormatAmount(m.ToDecimal(), m.Currency())
}

// FormatAmount renders a decimal amount with the display conventions above.
func FormatAmount(amount decimal.Decimal, currencyCode string) string {
	var formatted string
	if amount.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000)) {
		formatted = groupThousands(amount.Round(0).String())
	} else {
		formatted = amount.Round(2).String()
	}

	switch currencyCode {
	case USD:
		return "$" + formatted
	case EUR:
		return "€" + formatted
	case RUB:
		return formatted + " ₽"
	case UZS:
		return formatted + " сум"
	default:
		return formatted + " " + currencyCode
	}
}

// groupThousands inserts a space between every three digits of an integer
// string, preserving a leading minus sign.
func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// Convert converts to a different currency using the given exchange rate.
// Rate is how many units of target currency per unit of source currency.
func (m *Money) Convert(targetCurrency string, rate decimal.Decimal) *Money {
	if m == nil || m.m == nil {
		return Zero(targetCurrency)
	}
	return NewFromDecimal(m.ToDecimal().Mul(rate), targetCurrency)
}

// Percentage calculates a percentage of the amount.
func (m *Money) Percentage(percent float64) *Money {
	if m == nil || m.m == nil {
		return Zero(UZS)
	}

	d := m.ToDecimal()
	pct := decimal.NewFromFloat(percent).Div(decimal.NewFromInt(100))
	return NewFromDecimal(d.Mul(pct), m.Currency())
}

// PercentageOf calculates what percentage this amount is of another amount.
// Returns the percentage as a decimal.Decimal (e.g., 25.5 for 25.5%)
func (m *Money) PercentageOf(total *Money) decimal.Decimal {
	if m == nil || m.m == nil || total == nil || total.m == nil || total.IsZero() {
		return decimal.Zero
	}
	return m.ToDecimal().Div(total.ToDecimal()).Mul(decimal.NewFromInt(100))
}

// Split divides money into n equal parts, distributing remainder to the
// first parts so no minor unit is lost.
func (m *Money) Split(n int) ([]*Money, error) {
	if m == nil || m.m == nil {
		return nil, errors.New("cannot split nil money")
	}
	if n <= 0 {
		return nil, errors.New("n must be positive")
	}

	parts, err := m.m.Split(n)
	if err != nil {
		return nil, err
	}

	result := make([]*Money, len(parts))
	for i, p := range parts {
		result[i] = &Money{m: p}
	}
	return result, nil
}

// MarshalJSON implements json.Marshaler.
func (m *Money) MarshalJSON() ([]byte, error) {
	if m == nil || m.m == nil {
		return json.Marshal(nil)
	}
	return json.Marshal(map[string]interface{}{
		"amount":   m.Amount(),
		"currency": m.Currency(),
		"display":  m.Display(),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Money) UnmarshalJSON(data []byte) error {
	var v struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	m.m = money.New(v.Amount, v.Currency)
	return nil
}
