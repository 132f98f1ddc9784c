package forms

import (
	"testing"

	pkgerrors "github.com/angelmondragon/discountsync/pkg/errors"
	"github.com/angelmondragon/discountsync/pkg/i18n"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmountCents(t *testing.T) {
	tests := []struct {
		input string
		want  *int64
	}{
		{input: "5,50", want: ptr(550)},
		{input: "5.50", want: ptr(550)},
		{input: " 12 ", want: ptr(1200)},
		{input: "0", want: ptr(0)},
		{input: "0,005", want: ptr(1)},
		{input: "", want: nil},
		{input: "   ", want: nil},
	}
	for _, tt := range tests {
		got, err := ParseAmountCents(tt.input)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestParseAmountCentsRejectsInvalid(t *testing.T) {
	for _, input := range []string{"abc", "NaN", "Inf", "-1", "1.2.3", "1,2.3", "99999999999999999999999"} {
		got, err := ParseAmountCents(input)
		require.Error(t, err, "input %q", input)
		assert.Nil(t, got)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
		assert.Equal(t, i18n.InvalidAmount.Key, typed.Key())
	}
}

func TestParsePercentage(t *testing.T) {
	got, err := ParsePercentage("10")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(decimal.NewFromInt(10)))

	got, err = ParsePercentage("12,5")
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("12.5")))

	got, err = ParsePercentage("")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParsePercentage("ten")
	require.Error(t, err)
	assert.Equal(t, i18n.InvalidPercentage.Key, pkgerrors.As(err).Key())
}

func TestParseID(t *testing.T) {
	got, err := ParseID(" 7 ")
	require.NoError(t, err)
	assert.Equal(t, ptr(7), got)

	got, err = ParseID("")
	require.NoError(t, err)
	assert.Nil(t, got)

	for _, input := range []string{"0", "-3", "x", "1.5"} {
		_, err := ParseID(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestTrimOptional(t *testing.T) {
	assert.Nil(t, TrimOptional("  "))
	v := TrimOptional(" monday ")
	require.NotNil(t, v)
	assert.Equal(t, "monday", *v)
}

func ptr(v int64) *int64 { return &v }
