package payment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

var ErrInvalidCard = errors.New("invalid card")

// CardError names the card field that failed the checks.
type CardError struct {
	Field  string
	Reason string
}

func (e *CardError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *CardError) Unwrap() error { return ErrInvalidCard }

type Card struct {
	Number         string `json:"card_number"`
	CardholderName string `json:"cardholder_name"`
	Expiry         string `json:"expiry_date"`
	CVV            string `json:"cvv"`
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// ValidateCard runs the simulated card checks against now. Expiry is
// compared on year and month only, so a card expiring this month is valid.
func ValidateCard(c *Card, now time.Time) error {
	if c == nil {
		return &CardError{Field: "card", Reason: "card details are required"}
	}

	var missing []string
	if strings.TrimSpace(c.Number) == "" {
		missing = append(missing, "card_number")
	}
	if strings.TrimSpace(c.CardholderName) == "" {
		missing = append(missing, "cardholder_name")
	}
	if strings.TrimSpace(c.Expiry) == "" {
		missing = append(missing, "expiry_date")
	}
	if strings.TrimSpace(c.CVV) == "" {
		missing = append(missing, "cvv")
	}
	if len(missing) > 0 {
		return &CardError{Field: strings.Join(missing, ","), Reason: "please provide all card details"}
	}

	number := stripSpaces(c.Number)
	if !allDigits(number) || len(number) < 13 || len(number) > 19 {
		return &CardError{Field: "card_number", Reason: "card number must be 13 to 19 digits"}
	}

	cvv := strings.TrimSpace(c.CVV)
	if !allDigits(cvv) || len(cvv) < 3 || len(cvv) > 4 {
		return &CardError{Field: "cvv", Reason: "cvv must be 3 or 4 digits"}
	}

	month, year, err := parseExpiry(c.Expiry)
	if err != nil {
		return &CardError{Field: "expiry_date", Reason: err.Error()}
	}
	now = now.UTC()
	if year < now.Year() || (year == now.Year() && month < int(now.Month())) {
		return &CardError{Field: "expiry_date", Reason: "card has expired"}
	}

	return nil
}

// parseExpiry accepts MM/YY and MM/YYYY.
func parseExpiry(s string) (month, year int, err error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 {
		return 0, 0, errors.New("expiry must be MM/YY or MM/YYYY")
	}

	mm, yy := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	month, err = strconv.Atoi(mm)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, errors.New("expiry month must be 01 to 12")
	}

	year, err = strconv.Atoi(yy)
	if err != nil || year < 0 {
		return 0, 0, errors.New("expiry year is not a number")
	}
	switch len(yy) {
	case 2:
		year += 2000
	case 4:
	default:
		return 0, 0, errors.New("expiry must be MM/YY or MM/YYYY")
	}
	return month, year, nil
}

func last4(number string) string {
	n := stripSpaces(number)
	if len(n) <= 4 {
		return n
	}
	return n[len(n)-4:]
}
