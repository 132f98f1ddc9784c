// Package forms turns free-text user input into validated API payloads.
package forms

import (
	"math"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/discountsync/pkg/errors"
	"github.com/angelmondragon/discountsync/pkg/i18n"
	"github.com/shopspring/decimal"
)

var (
	minorUnitsPerMajor = decimal.NewFromInt(100)
	maxMinorUnits      = decimal.NewFromInt(math.MaxInt64)
)

// ParseAmountCents converts a monetary input using '.' or ',' as decimal separator into minor units.
// An empty input is absent (nil), not zero.
func ParseAmountCents(input string) (*int64, error) {
	value, present, err := parseNumber(input)
	if err != nil || (present && value.IsNegative()) {
		return nil, fieldError(i18n.InvalidAmount, "amount", input)
	}
	if !present {
		return nil, nil
	}
	cents := value.Mul(minorUnitsPerMajor).Round(0)
	if cents.GreaterThan(maxMinorUnits) {
		return nil, fieldError(i18n.InvalidAmount, "amount", input)
	}
	out := cents.IntPart()
	return &out, nil
}

// ParsePercentage converts a percentage input into a decimal. An empty input is absent.
func ParsePercentage(input string) (*decimal.Decimal, error) {
	value, present, err := parseNumber(input)
	if err != nil {
		return nil, fieldError(i18n.InvalidPercentage, "percentage", input)
	}
	if !present {
		return nil, nil
	}
	return &value, nil
}

// ParseID parses a positive integer identifier such as a select-box value. Empty input is absent.
func ParseID(input string) (*int64, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || id <= 0 {
		return nil, fieldError(i18n.InvalidIdentifier, "id", input)
	}
	return &id, nil
}

// TrimOptional trims s and maps the empty string to nil.
func TrimOptional(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func parseNumber(input string) (decimal.Decimal, bool, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return decimal.Zero, false, nil
	}
	normalized := strings.ReplaceAll(trimmed, ",", ".")
	if strings.Count(normalized, ".") > 1 {
		return decimal.Zero, true, strconv.ErrSyntax
	}
	value, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, true, err
	}
	return value, true, nil
}

func fieldError(msg i18n.Message, field, input string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeValidation, msg.Fallback).
		WithKey(msg.Key).
		WithDetails(map[string]any{"field": field, "input": input})
}
