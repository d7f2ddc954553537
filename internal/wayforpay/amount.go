package wayforpay

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Amount is a monetary value in minor units (kopecks for UAH).
//
// The gateway recomputes signatures over the decimal rendering of the
// amount, so a single canonical format with exactly two fraction digits is
// used everywhere: 29000 minor units renders as "290.00", never "290" or
// "290.0". A formatting drift is indistinguishable from a forged signature
// on the other side.
type Amount int64

var ErrBadAmount = errors.New("malformed amount")

// String renders the canonical two-fraction-digit decimal form.
func (a Amount) String() string {
	sign := ""
	v := int64(a)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON emits the canonical decimal as a JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts the integer, one- and two-fraction-digit renderings
// the gateway has been observed to send. More than two fraction digits is a
// malformed payload.
func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	parsed, err := ParseAmount(raw)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAmount converts a decimal string into minor units.
func ParseAmount(raw string) (Amount, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrBadAmount
	}
	whole, frac, _ := strings.Cut(raw, ".")
	major, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadAmount, raw)
	}
	minor := int64(0)
	if frac != "" {
		if len(frac) > 2 {
			return 0, fmt.Errorf("%w: %q", ErrBadAmount, raw)
		}
		minor, err = strconv.ParseInt(frac, 10, 64)
		if err != nil || minor < 0 {
			return 0, fmt.Errorf("%w: %q", ErrBadAmount, raw)
		}
		if len(frac) == 1 {
			minor *= 10
		}
	}
	if major < 0 {
		return Amount(major*100 - minor), nil
	}
	return Amount(major*100 + minor), nil
}

// Minor exposes the raw minor-unit value.
func (a Amount) Minor() int64 { return int64(a) }
