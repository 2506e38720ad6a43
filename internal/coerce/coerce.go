// Package coerce converts locale-formatted statement tokens into typed
// values: fixed-point monetary amounts, fixed-point share counts, decimal
// exchange rates and calendar dates. All numeric values are scaled integers
// so no floating-point drift can creep into extracted transactions.
package coerce

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// SharesScale is the fixed-point scale for share counts. Eight decimal
// places cover every fractional-share convention we have seen on broker
// statements.
const SharesScale = 8

// Profile describes how an institution formats numbers and dates.
type Profile struct {
	DecimalSep   rune
	ThousandsSep rune
}

// EnUS is the profile for US statements: 1,234.56.
var EnUS = Profile{DecimalSep: '.', ThousandsSep: ','}

// DeDE is the profile for German statements: 1.234,56.
var DeDE = Profile{DecimalSep: ',', ThousandsSep: '.'}

// MalformedNumberError reports a token that could not be coerced to a number.
type MalformedNumberError struct {
	Token string
}

func (e *MalformedNumberError) Error() string {
	return fmt.Sprintf("malformed number %q", e.Token)
}

// MalformedDateError reports a token that could not be coerced to a date.
type MalformedDateError struct {
	Token string
}

func (e *MalformedDateError) Error() string {
	return fmt.Sprintf("malformed date %q", e.Token)
}

// decimalValue normalizes a raw token into a shopspring decimal, honoring
// the profile's separators. Negative values may be written with a leading
// sign or by parenthesization: "(123.45)" means -123.45.
func (p Profile) decimalValue(token string) (decimal.Decimal, error) {
	s := strings.TrimSpace(token)
	if s == "" {
		return decimal.Zero, &MalformedNumberError{Token: token}
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = s[1:]
	}

	s = strings.ReplaceAll(s, string(p.ThousandsSep), "")
	if p.DecimalSep != '.' {
		s = strings.ReplaceAll(s, string(p.DecimalSep), ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &MalformedNumberError{Token: token}
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// Amount parses a monetary token into minor currency units (e.g. cents)
// for the given ISO-4217 currency code. Unknown currencies fall back to
// two decimal places.
func (p Profile) Amount(token, currencyCode string) (int64, error) {
	d, err := p.decimalValue(token)
	if err != nil {
		return 0, err
	}

	fraction := 2
	if c := money.GetCurrency(currencyCode); c != nil {
		fraction = c.Fraction
	}
	return d.Shift(int32(fraction)).Round(0).IntPart(), nil
}

// Shares parses a share-count token into a fixed-point integer with
// SharesScale decimal places. Fractional shares are preserved exactly.
func (p Profile) Shares(token string) (int64, error) {
	d, err := p.decimalValue(token)
	if err != nil {
		return 0, err
	}
	return d.Shift(SharesScale).Round(0).IntPart(), nil
}

// Rate parses an exchange-rate token. Rates stay decimal because they are
// multiplied against amounts, never stored.
func (p Profile) Rate(token string) (decimal.Decimal, error) {
	return p.decimalValue(token)
}

// months maps English month names (full and three-letter) to time.Month.
var months = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// Date parses a composed "DD Mon YYYY" token, the canonical form built by
// rule builders from separately captured day, month and year fields. The
// month may be a name (any case, full or abbreviated) or numeric.
func (p Profile) Date(token string) (time.Time, error) {
	fields := strings.Fields(strings.TrimSpace(token))
	if len(fields) != 3 {
		return time.Time{}, &MalformedDateError{Token: token}
	}

	day, err := strconv.Atoi(fields[0])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, &MalformedDateError{Token: token}
	}

	var month time.Month
	if m, ok := months[strings.ToLower(fields[1])]; ok {
		month = m
	} else if n, err := strconv.Atoi(fields[1]); err == nil && n >= 1 && n <= 12 {
		month = time.Month(n)
	} else {
		return time.Time{}, &MalformedDateError{Token: token}
	}

	year, err := strconv.Atoi(fields[2])
	if err != nil || year < 1900 || year > 2999 {
		return time.Time{}, &MalformedDateError{Token: token}
	}

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), nil
}
