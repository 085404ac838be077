package encoding_test

import (
	"testing"

	"github.com/globalguide/travelagent/encoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type budget struct {
	Total    float64 `json:"total" validate:"gte=0"`
	Days     int     `json:"days" validate:"gt=0"`
	Currency string  `json:"currency"`
}

func Test_TypedOutputParser(t *testing.T) {
	parser, err := encoding.NewTypedOutputParser(budget{}, encoding.ModeJSON)
	require.NoError(t, err)

	res, err := parser.Parse(`Here is the budget: {"total": 1000, "days": 5, "currency": "EUR"}`)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, res.Total)
	assert.Equal(t, 5, res.Days)
	assert.Equal(t, "EUR", res.Currency)

	instructions := parser.GetFormatInstructions()
	assert.Contains(t, instructions, "JSON schema")
	assert.Contains(t, instructions, `"currency"`)

	assert.Equal(t, "encoding_test.budget parser", parser.Type())
}

func Test_TypedOutputParser_Validation(t *testing.T) {
	parser, err := encoding.NewTypedOutputParser(budget{}, encoding.ModeJSON)
	require.NoError(t, err)
	parser.WithValidation(true)

	_, err = parser.Parse(`{"total": 1000, "days": 0, "currency": "EUR"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to validate")
}

func Test_SimpleOutputParser(t *testing.T) {
	parser := encoding.NewSimpleOutputParser()
	res, err := parser.Parse("  ## Day 1: Lisbon \n")
	require.NoError(t, err)
	assert.Equal(t, "## Day 1: Lisbon", res.GetContent())
	assert.Empty(t, parser.GetFormatInstructions())
}

func Test_PredefinedSchemaEncoder_Unknown(t *testing.T) {
	_, err := encoding.PredefinedSchemaEncoder("csv", budget{})
	assert.Error(t, err)
}
