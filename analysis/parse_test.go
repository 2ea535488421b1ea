package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponseFencedJSON(t *testing.T) {
	text := "```json\n{\"commonName\":\"Rose\",\"scientificName\":\"Rosa\"}\n```"

	result, perr := ParseResponse(text, ResultFields)
	require.Nil(t, perr)
	assert.Equal(t, "Rose", result["commonName"])
	assert.Equal(t, "Rosa", result["scientificName"])
}

func TestParseResponseFencedJSONWithProse(t *testing.T) {
	text := "Sure! Here is the identification you asked for:\n\n" +
		"```JSON\n{\n  \"commonName\": \"Peace Lily\",\n  \"scientificName\": \"Spathiphyllum wallisii\"\n}\n```\n\nLet me know if you need care tips."

	result, perr := ParseResponse(text, ResultFields)
	require.Nil(t, perr)
	assert.Equal(t, "Peace Lily", result["commonName"])
	assert.Equal(t, "Spathiphyllum wallisii", result["scientificName"])
}

func TestParseResponsePlainJSON(t *testing.T) {
	text := `{"commonName":"Tulip","scientificName":"Tulipa"}`

	result, perr := ParseResponse(text, ResultFields)
	require.Nil(t, perr)
	assert.Equal(t, "Tulip", result["commonName"])
	assert.Equal(t, "Tulipa", result["scientificName"])
}

func TestParseResponseMissingKeyDefaults(t *testing.T) {
	text := `{"commonName":"Cactus"}`

	result, perr := ParseResponse(text, ResultFields)
	require.Nil(t, perr)
	assert.Equal(t, "Cactus", result["commonName"])
	assert.Equal(t, UnknownValue, result["scientificName"])
}

func TestParseResponseEmptyStringValueDefaults(t *testing.T) {
	text := `{"commonName":"  ","scientificName":"Ficus lyrata"}`

	result, perr := ParseResponse(text, ResultFields)
	require.Nil(t, perr)
	assert.Equal(t, UnknownValue, result["commonName"])
	assert.Equal(t, "Ficus lyrata", result["scientificName"])
}

func TestParseResponseNonStringValue(t *testing.T) {
	text := `{"commonName":42,"scientificName":"Rosa"}`

	result, perr := ParseResponse(text, ResultFields)
	require.Nil(t, perr)
	assert.Equal(t, "42", result["commonName"])
}

func TestParseResponseLineHeuristic(t *testing.T) {
	text := "I looked at the photo.\n" +
		"Common Name: Swiss Cheese Plant\n" +
		"Scientific Name: Monstera deliciosa\n" +
		"It prefers indirect light."

	result, perr := ParseResponse(text, ResultFields)
	require.Nil(t, perr)
	assert.Equal(t, "Swiss Cheese Plant", result["commonName"])
	assert.Equal(t, "Monstera deliciosa", result["scientificName"])
}

func TestParseResponseLineHeuristicCustomLabels(t *testing.T) {
	fields := []Field{
		{Key: "plantType", Label: "type"},
		{Key: "growthStage", Label: "stage"},
	}
	text := "Plant Type: Monstera deliciosa\nGrowth Stage: mature"

	result, perr := ParseResponse(text, fields)
	require.Nil(t, perr)
	assert.Equal(t, "Monstera deliciosa", result["plantType"])
	assert.Equal(t, "mature", result["growthStage"])
}

func TestParseResponseLineHeuristicNoMatch(t *testing.T) {
	text := "This image shows some kind of greenery but nothing I recognize."

	result, perr := ParseResponse(text, ResultFields)
	require.Nil(t, perr)
	assert.Equal(t, UnknownValue, result["commonName"])
	assert.Equal(t, UnknownValue, result["scientificName"])
}

func TestParseResponseEmptyTextFails(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t\n"} {
		result, perr := ParseResponse(text, ResultFields)
		assert.Nil(t, result)
		require.NotNil(t, perr)
		assert.Equal(t, KindParseFailure, perr.Kind)
		assert.Equal(t, 500, perr.HTTPStatus())
	}
}

func TestExtractFencedJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractFencedJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, extractFencedJSON("before ``` json \n{\"a\":1}``` after"))
	assert.Equal(t, "", extractFencedJSON("no fence here"))
	assert.Equal(t, "", extractFencedJSON("```\n{\"a\":1}\n```"))
}
