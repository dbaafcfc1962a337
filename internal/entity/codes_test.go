package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSaleTypeRoundTrip(t *testing.T) {
	forms := []string{
		"program-beginner", "program-advanced", "nutrition-standard",
		"nutrition-pro", "coaching", "posing", "endo",
	}
	for _, form := range forms {
		st, ok := ParseSaleType(form)
		assert.True(t, ok, form)
		assert.Equal(t, form, st.String())
	}

	_, ok := ParseSaleType("program-request")
	assert.False(t, ok, "the request pseudo-type is not a sellable form")
	_, ok = ParseSaleType("")
	assert.False(t, ok)
}

func TestCodeParsersAcceptCodeAndLabel(t *testing.T) {
	g, ok := ParseGender("1")
	assert.True(t, ok)
	assert.Equal(t, GenderMale, g)
	g, ok = ParseGender("Female")
	assert.True(t, ok)
	assert.Equal(t, GenderFemale, g)
	_, ok = ParseGender("3")
	assert.False(t, ok)

	p, ok := ParsePurpose("Mass gain")
	assert.True(t, ok)
	assert.Equal(t, PurposeMassGain, p)
	assert.Equal(t, 1.2, p.Factor())
	_, ok = ParsePurpose("0")
	assert.False(t, ok)

	d, ok := ParseDailyActivity("5")
	assert.True(t, ok)
	assert.Equal(t, ActivityExtreme, d)
	assert.Equal(t, 1.9, d.Factor())

	f, ok := ParseFocus("Glutes")
	assert.True(t, ok)
	assert.Equal(t, FocusGlutes, f)
}

func TestParseWeeklyActivityBounds(t *testing.T) {
	for _, raw := range []string{"2", "3", "4", "5"} {
		_, ok := ParseWeeklyActivity(raw)
		assert.True(t, ok, raw)
	}
	for _, raw := range []string{"1", "6", "0", "x", ""} {
		_, ok := ParseWeeklyActivity(raw)
		assert.False(t, ok, raw)
	}
}

func TestParseYesNo(t *testing.T) {
	v, ok := ParseYesNo("yes")
	assert.True(t, ok)
	assert.True(t, v)
	v, ok = ParseYesNo("0")
	assert.True(t, ok)
	assert.False(t, v)
	_, ok = ParseYesNo("maybe")
	assert.False(t, ok)
}
