package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestExtractor() *Extractor {
	return NewExtractor(zap.NewNop())
}

func TestFieldsLeaseEndToEnd(t *testing.T) {
	text := "Lessor: Acme Ltd\nLessee: John Doe\nRent: £500 per month"
	fields := newTestExtractor().Fields(text)

	require.NotNil(t, fields.Parties)
	assert.Equal(t, "Acme Ltd", fields.Parties.Lessor)
	assert.Equal(t, "John Doe", fields.Parties.Lessee)

	require.NotNil(t, fields.Financial)
	assert.Equal(t, "£500 per month", fields.Financial.Rent)
}

func TestFieldsRentRoundTrip(t *testing.T) {
	fields := newTestExtractor().Fields("the rent: £450 per year is payable in advance")
	require.NotNil(t, fields.Financial)
	assert.Equal(t, "£450 per year", fields.Financial.Rent)
}

func TestFieldsRentPeriodNormalization(t *testing.T) {
	cases := map[string]string{
		"Rent: £1,250.50 per annum":        "£1,250.50 per year",
		"payable £900 per month in arrears": "£900 per month",
		"the sum of £120 per week":          "£120 per week",
		"Rent: £2,000 per half-year":        "£2,000 per halfyear",
	}
	for text, want := range cases {
		fields := newTestExtractor().Fields(text)
		require.NotNil(t, fields.Financial, "text %q", text)
		assert.Equal(t, want, fields.Financial.Rent, "text %q", text)
	}
}

func TestFieldsAddress(t *testing.T) {
	fields := newTestExtractor().Fields("Property: Flat 5, 12 Maple Road, London SW4 7AA")
	require.NotNil(t, fields.Property)
	assert.Contains(t, fields.Property.Address, "Maple Road")
}

func TestFieldsDeposit(t *testing.T) {
	fields := newTestExtractor().Fields("A deposit: £1,500 is held under the scheme")
	require.NotNil(t, fields.Financial)
	assert.Equal(t, "£1,500", fields.Financial.Deposit)
}

func TestFieldsStartDateAndTerm(t *testing.T) {
	fields := newTestExtractor().Fields("The lease commences: 25 March 2020 for a term: 99 years")
	require.NotNil(t, fields.Dates)
	assert.Contains(t, fields.Dates.StartDate, "March 2020")
	assert.Equal(t, "99 years", fields.Dates.Term)

	fields = newTestExtractor().Fields("starting 01/04/2021 with rent reviews")
	require.NotNil(t, fields.Dates)
	assert.Equal(t, "01/04/2021", fields.Dates.StartDate)
}

func TestFieldsProseParties(t *testing.T) {
	text := "made between Harbour Estates Plc as lessor and Jane Winters as lessee"
	fields := newTestExtractor().Fields(text)
	require.NotNil(t, fields.Parties)
	assert.Equal(t, "Harbour Estates Plc", fields.Parties.Lessor)
	assert.Equal(t, "Jane Winters", fields.Parties.Lessee)
}

func TestFieldsNothingFound(t *testing.T) {
	fields := newTestExtractor().Fields("completely unrelated text with no lease content")
	assert.Nil(t, fields.Parties)
	assert.Nil(t, fields.Financial)
	assert.Nil(t, fields.Property)
	assert.Nil(t, fields.Dates)
}

func TestFieldsEmptyInput(t *testing.T) {
	fields := newTestExtractor().Fields("")
	assert.Nil(t, fields.Parties)
	assert.Nil(t, fields.Dates)
}
