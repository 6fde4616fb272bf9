package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	t.Run("bare date anchored at noon UTC", func(t *testing.T) {
		got, err := Parse("2024-06-01")
		assert.NoError(t, err)
		assert.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), got)
	})

	t.Run("rfc3339 converted to UTC", func(t *testing.T) {
		got, err := Parse("2024-06-01T10:30:00-03:00")
		assert.NoError(t, err)
		assert.Equal(t, time.Date(2024, 6, 1, 13, 30, 0, 0, time.UTC), got)
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := Parse("01/06/2024")
		assert.Error(t, err)

		_, err = Parse("not a date")
		assert.Error(t, err)
	})
}

func TestNormalize(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*3600)
	// 23:00 in UTC-3 is already the next calendar day in UTC
	in := time.Date(2024, 6, 1, 23, 0, 0, 0, loc)
	got := Normalize(in)
	assert.Equal(t, time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC), got)
}

func TestParseOptional(t *testing.T) {
	got, err := ParseOptional("")
	assert.NoError(t, err)
	assert.Nil(t, got)

	got, err = ParseOptional("2024-06-01")
	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), *got)

	_, err = ParseOptional("bogus")
	assert.Error(t, err)
}
