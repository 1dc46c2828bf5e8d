package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJsonBlock(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "bare object",
			text:     `{"a": 1}`,
			expected: `{"a": 1}`,
		},
		{
			name:     "json fence",
			text:     "```json\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "plain fence",
			text:     "```\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "chatter around the object",
			text:     "Sure! Here is the result:\n{\"a\": 1}\nLet me know if you need anything else.",
			expected: `{"a": 1}`,
		},
		{
			name:     "chatter and fence",
			text:     "Here you go:\n```json\n{\"a\": {\"b\": 2}}\n```\nhope that helps",
			expected: `{"a": {"b": 2}}`,
		},
		{
			name:     "no object at all",
			text:     "cannot comply",
			expected: "cannot comply",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, ExtractJsonBlock(test.text))
		})
	}
}

func TestJsonOutputParser_Parse(t *testing.T) {
	parser := NewJsonOutputParser(_INTENT_SAMPLE_OUTPUT)

	value, err := parser.Parse("```json\n{\"primary_intent\": \"add_patient\", \"confidence\": 0.92}\n```")
	require.NoError(t, err)

	intent, ok := value.(LLMIntent)
	require.True(t, ok)
	assert.Equal(t, "add_patient", intent.PrimaryIntent)
	assert.Equal(t, 0.92, intent.Confidence)
}

func TestJsonOutputParser_Parse_Buckets(t *testing.T) {
	parser := NewJsonOutputParser(_ENTITY_SAMPLE_OUTPUT)

	value, err := parser.Parse(`{
		"patient_info": [{"text": "John Doe", "type": "patient", "confidence": 0.95}],
		"medical_info": [],
		"temporal_info": [],
		"location_info": []
	}`)
	require.NoError(t, err)

	buckets, ok := value.(LLMEntityBuckets)
	require.True(t, ok)
	require.Len(t, buckets.PatientInfo, 1)
	assert.Equal(t, "John Doe", buckets.PatientInfo[0].Text)
}

func TestJsonOutputParser_Parse_Garbage(t *testing.T) {
	parser := NewJsonOutputParser(_INTENT_SAMPLE_OUTPUT)
	_, err := parser.Parse("the model refused to answer")
	assert.Error(t, err)
}

func TestJsonOutputParser_FormatInstructions(t *testing.T) {
	parser := NewJsonOutputParser(_INTENT_SAMPLE_OUTPUT)
	instructions := parser.GetFormatInstructions()
	assert.Contains(t, instructions, "primary_intent")
	assert.Contains(t, instructions, "confidence")
}
