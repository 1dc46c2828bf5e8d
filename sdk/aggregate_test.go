package sdk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careparrot/medsack/nlp"
)

var testClock = WithClock(func() time.Time {
	return time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)
})

func TestAggregate_ExampleNote(t *testing.T) {
	text := "Add new patient John Doe, 45 years old, with diabetes"
	raw_entities := []nlp.ExtractedEntity{
		{Text: "John Doe", Label: "patient", Score: 0.995},
		{Text: "45 years old", Label: "age", Score: 0.99},
		{Text: "diabetes", Label: "condition", Score: 0.986},
	}
	raw_intent := nlp.IntentPrediction{Label: "add_patient", Score: 0.944}

	result, err := Aggregate(text, raw_entities, raw_intent, nil, testClock)
	require.NoError(t, err)

	assert.Equal(t, "add_patient", result.Intent.PrimaryIntent)
	assert.Equal(t, 0.944, result.Intent.Confidence)
	assert.Equal(t, []CategorizedEntity{
		{Text: "John Doe", Type: "patient", Confidence: 0.995},
		{Text: "45 years old", Type: "age", Confidence: 0.99},
	}, result.Entities[PATIENT_INFO])
	assert.Equal(t, []CategorizedEntity{
		{Text: "diabetes", Type: "condition", Confidence: 0.986},
	}, result.Entities[MEDICAL_INFO])
	assert.Empty(t, result.Entities[TEMPORAL_INFO])
	assert.Empty(t, result.Entities[LOCATION_INFO])
	assert.Equal(t, "2024-03-15T10:30:00Z", result.ProcessedAt)
}

func TestAggregate_EmptyText(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t "} {
		result, err := Aggregate(text, nil, nlp.IntentPrediction{}, nil)
		assert.ErrorIs(t, err, ErrEmptyText)
		assert.Nil(t, result)
	}
}

func TestAggregate_AllBucketsPresent(t *testing.T) {
	result, err := Aggregate("note", nil, nlp.IntentPrediction{Label: "query_info", Score: 0.5}, nil, testClock)
	require.NoError(t, err)

	require.Len(t, result.Entities, len(EntityBuckets))
	for _, bucket := range EntityBuckets {
		sequence, ok := result.Entities[bucket]
		require.True(t, ok, bucket)
		assert.NotNil(t, sequence, bucket)
		assert.Empty(t, sequence, bucket)
	}
	assert.NotNil(t, result.TemporalInfo.Dates)
	assert.NotNil(t, result.TemporalInfo.Times)
	assert.NotNil(t, result.TemporalInfo.Patterns)
}

func TestAggregate_UnknownLabelGoesToOther(t *testing.T) {
	raw_entities := []nlp.ExtractedEntity{
		{Text: "something", Label: "gibberish_label", Score: 0.42},
	}
	result, err := Aggregate("note", raw_entities, nlp.IntentPrediction{Label: "query_info", Score: 0.5}, nil, testClock)
	require.NoError(t, err)

	require.Len(t, result.Entities[OTHER_INFO], 1)
	assert.Equal(t, "gibberish_label", result.Entities[OTHER_INFO][0].Type)
}

func TestAggregate_PreservesOrderWithinBucket(t *testing.T) {
	raw_entities := []nlp.ExtractedEntity{
		{Text: "Metformin", Label: "medication", Score: 0.9},
		{Text: "diabetes", Label: "condition", Score: 0.8},
		{Text: "500mg", Label: "dosage", Score: 0.7},
		{Text: "twice a day", Label: "frequency", Score: 0.6},
	}
	result, err := Aggregate("note", raw_entities, nlp.IntentPrediction{Label: "assign_medication", Score: 0.9}, nil, testClock)
	require.NoError(t, err)

	texts := make([]string, 0, len(result.Entities[MEDICAL_INFO]))
	for _, entity := range result.Entities[MEDICAL_INFO] {
		texts = append(texts, entity.Text)
	}
	assert.Equal(t, []string{"Metformin", "diabetes", "500mg", "twice a day"}, texts)
}

func TestAggregate_ConfidencePassThrough(t *testing.T) {
	// scores must arrive bit-for-bit, no rounding or rescaling
	score := 0.8999999999999911
	raw_entities := []nlp.ExtractedEntity{{Text: "Aspirin", Label: "medication", Score: score}}
	result, err := Aggregate("note", raw_entities, nlp.IntentPrediction{Label: "assign_medication", Score: score}, nil, testClock)
	require.NoError(t, err)

	assert.Equal(t, score, result.Entities[MEDICAL_INFO][0].Confidence)
	assert.Equal(t, score, result.Intent.Confidence)
}

func TestAggregate_Deterministic(t *testing.T) {
	raw_entities := []nlp.ExtractedEntity{
		{Text: "John Doe", Label: "patient", Score: 0.99},
		{Text: "City Hospital", Label: "hospital", Score: 0.88},
	}
	tokens := []string{"2024-03-20", "twice daily"}

	first, err := Aggregate("note", raw_entities, nlp.IntentPrediction{Label: "schedule_followup", Score: 0.8}, tokens, testClock)
	require.NoError(t, err)
	second, err := Aggregate("note", raw_entities, nlp.IntentPrediction{Label: "schedule_followup", Score: 0.8}, tokens, testClock)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBucketFor(t *testing.T) {
	tests := []struct {
		label  string
		bucket string
	}{
		{"patient", PATIENT_INFO},
		{"doctor", PATIENT_INFO},
		{"age", PATIENT_INFO},
		{"medication", MEDICAL_INFO},
		{"dosage", MEDICAL_INFO},
		{"frequency", MEDICAL_INFO},
		{"condition", MEDICAL_INFO},
		{"symptom", MEDICAL_INFO},
		{"procedure", MEDICAL_INFO},
		{"test", MEDICAL_INFO},
		{"date", TEMPORAL_INFO},
		{"time", TEMPORAL_INFO},
		{"duration", TEMPORAL_INFO},
		{"facility", LOCATION_INFO},
		{"department", LOCATION_INFO},
		{"hospital", LOCATION_INFO},
		{"whatever", OTHER_INFO},
		{"", OTHER_INFO},
	}
	for _, test := range tests {
		assert.Equal(t, test.bucket, BucketFor(test.label), test.label)
	}
}

func TestTagTemporalTokens(t *testing.T) {
	tests := []struct {
		name     string
		tokens   []string
		expected TemporalInfo
	}{
		{
			name:     "iso and slash dates",
			tokens:   []string{"2024-03-15", "03/15/2024"},
			expected: TemporalInfo{Dates: []string{"2024-03-15", "03/15/2024"}, Times: []string{}, Patterns: []string{}},
		},
		{
			name:     "month name date",
			tokens:   []string{"March 15, 2024"},
			expected: TemporalInfo{Dates: []string{"March 15, 2024"}, Times: []string{}, Patterns: []string{}},
		},
		{
			name:     "clock times",
			tokens:   []string{"10:30", "2pm"},
			expected: TemporalInfo{Dates: []string{}, Times: []string{"10:30", "2pm"}, Patterns: []string{}},
		},
		{
			name:     "frequency patterns",
			tokens:   []string{"twice daily", "every 4 hours", "3 times a day"},
			expected: TemporalInfo{Dates: []string{}, Times: []string{}, Patterns: []string{"twice daily", "every 4 hours", "3 times a day"}},
		},
		{
			name:   "date token that also names a pattern",
			tokens: []string{"every Monday 2024-03-15"},
			expected: TemporalInfo{
				Dates:    []string{"every Monday 2024-03-15"},
				Times:    []string{},
				Patterns: []string{"every Monday 2024-03-15"},
			},
		},
		{
			name:     "plain words are ignored",
			tokens:   []string{"diabetes", "John"},
			expected: TemporalInfo{Dates: []string{}, Times: []string{}, Patterns: []string{}},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, tagTemporalTokens(test.tokens))
		})
	}
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "add patient John Doe", CleanText("  add\tpatient\n John   Doe "))
	assert.Equal(t, "", CleanText(" \n\t "))
}
