package payment

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/LavaJover/pickup-settlement-service/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// zeroDecimal lists the currencies the gateway charges in whole units.
// Both tables follow the gateway's own convention, not ISO 4217.
var zeroDecimal = map[string]struct{}{
	"BIF": {}, "CLP": {}, "DJF": {}, "GNF": {}, "JPY": {}, "KMF": {},
	"KRW": {}, "MGA": {}, "PYG": {}, "RWF": {}, "UGX": {}, "VND": {},
	"VUV": {}, "XAF": {}, "XOF": {}, "XPF": {},
}

// threeDecimal currencies are charged in thousandths, and the gateway only
// accepts amounts whose last digit is zero.
var threeDecimal = map[string]struct{}{
	"BHD": {}, "JOD": {}, "KWD": {}, "OMR": {}, "TND": {},
}

var maxMinor = decimal.NewFromInt(math.MaxInt64)

// IsZeroDecimal reports whether code is charged without a fractional part.
func IsZeroDecimal(code string) bool {
	_, ok := zeroDecimal[strings.ToUpper(code)]
	return ok
}

// Scale returns the number of decimal places used to express code in minor
// units. Every currency outside the two tables is charged in hundredths.
func Scale(code string) int {
	code = strings.ToUpper(code)
	if _, ok := zeroDecimal[code]; ok {
		return 0
	}
	if _, ok := threeDecimal[code]; ok {
		return 3
	}
	return 2
}

// MinorUnits converts a major-unit amount into the integer the gateway
// expects, rounding half away from zero. Three-decimal amounts are rounded
// to a multiple of ten.
func MinorUnits(amount decimal.Decimal, code string) (int64, error) {
	scale := Scale(code)
	minor := amount.Shift(int32(scale))
	if scale == 3 {
		minor = minor.Round(-1)
	} else {
		minor = minor.Round(0)
	}
	if minor.Sign() <= 0 || minor.GreaterThan(maxMinor) {
		return 0, fmt.Errorf("%w: %s %s", domain.ErrInvalidAmount, amount.String(), code)
	}
	return minor.IntPart(), nil
}

// ParseAmount reads a customer-entered amount. A comma is accepted as the
// decimal separator.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if raw == "" {
		return decimal.Zero, domain.ErrInvalidAmount
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", domain.ErrInvalidAmount, err)
	}
	if !amount.IsPositive() {
		return decimal.Zero, domain.ErrInvalidAmount
	}
	return amount, nil
}

// NormalizeCurrency upper-cases code and checks it is a known ISO 4217 code.
func NormalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", domain.ErrInvalidCurrency
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", domain.ErrInvalidCurrency
		}
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidCurrency, code)
	}
	return unit.String(), nil
}

// Build assembles the gateway request for an order.
func Build(amount decimal.Decimal, code string, orderID int64, email, source string) (domain.PaymentIntentRequest, error) {
	minor, err := MinorUnits(amount, code)
	if err != nil {
		return domain.PaymentIntentRequest{}, err
	}
	return domain.PaymentIntentRequest{
		AmountMinor:  minor,
		Currency:     strings.ToLower(code),
		ReceiptEmail: email,
		Metadata: map[string]string{
			domain.MetadataOrderID: strconv.FormatInt(orderID, 10),
			"source":               source,
		},
	}, nil
}
