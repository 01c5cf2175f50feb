package command

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var nonDigitComma = regexp.MustCompile(`[^\d,]`)

// ParseAmount turns a captured digit amount into a decimal. Spaces and
// commas are thousands separators; a dot followed by at most two digits
// is the decimal point, any other dot is a separator too.
func ParseAmount(s string) (decimal.Decimal, bool) {
	clean := strings.NewReplacer(" ", "", ",", "").Replace(s)
	if dot := strings.LastIndexByte(clean, '.'); dot >= 0 && len(clean)-dot-1 <= 2 {
		clean = strings.ReplaceAll(clean, ".", ",")
	}
	clean = nonDigitComma.ReplaceAllString(clean, "")
	clean = strings.ReplaceAll(clean, ",", ".")

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Numeric reports whether the string is all digits once thousands and
// decimal separators are stripped. Decides which capture group carries
// the amount when a pattern's group order is ambiguous.
func Numeric(s string) bool {
	clean := strings.NewReplacer(" ", "", ",", "", ".", "").Replace(s)
	if clean == "" {
		return false
	}
	for _, r := range clean {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
