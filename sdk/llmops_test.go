package sdk

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/careparrot/medsack/nlp"
)

type stubLLMExtractor struct {
	buckets     nlp.LLMEntityBuckets
	intent      nlp.LLMIntent
	extract_err error
	intent_err  error
}

func (stub *stubLLMExtractor) ExtractCategorizedEntities(ctx context.Context, text string) (nlp.LLMEntityBuckets, error) {
	return stub.buckets, stub.extract_err
}

func (stub *stubLLMExtractor) ClassifyIntent(ctx context.Context, text string) (nlp.LLMIntent, error) {
	return stub.intent, stub.intent_err
}

func TestLLMPipeline_ProcessText(t *testing.T) {
	extractor := &stubLLMExtractor{
		buckets: nlp.LLMEntityBuckets{
			PatientInfo: []nlp.LLMEntity{{Text: "John Doe", Type: "patient", Confidence: 0.95}},
			MedicalInfo: []nlp.LLMEntity{{Text: "Metformin", Type: "medication", Confidence: 0.9}},
			TemporalInfo: []nlp.LLMEntity{
				{Text: "2024-03-20", Type: "date", Confidence: 0.9},
				{Text: "twice daily", Type: "frequency", Confidence: 0.8},
			},
		},
		intent: nlp.LLMIntent{PrimaryIntent: "assign_medication", Confidence: 0.88},
	}
	pipeline := NewLLMPipeline(extractor, zap.NewNop(), WithLLMPipelineClock(frozenClock))

	response, err := pipeline.ProcessText(context.Background(), "Prescribe Metformin to John Doe twice daily starting 2024-03-20")
	require.NoError(t, err)

	assert.Equal(t, "llm", response.PipelineType)
	assert.Equal(t, "assign_medication", response.Intent.PrimaryIntent)
	assert.Equal(t, "2024-03-15T10:30:00Z", response.ProcessedAt)
	assert.Equal(t, []CategorizedEntity{{Text: "John Doe", Type: "patient", Confidence: 0.95}}, response.Entities[PATIENT_INFO])
	assert.Len(t, response.Entities[TEMPORAL_INFO], 2)

	// every bucket is present even when the model returned nothing for it
	for _, bucket := range EntityBuckets {
		assert.NotNil(t, response.Entities[bucket], bucket)
	}

	// temporal info is re-derived from the temporal entity texts
	assert.Equal(t, []string{"2024-03-20"}, response.TemporalInfo.Dates)
	assert.Equal(t, []string{"twice daily"}, response.TemporalInfo.Patterns)

	// medication validation kicks in off the llm path too
	require.NotNil(t, response.MedicationValidation)
	assert.False(t, response.MedicationValidation.IsValid)
}

func TestLLMPipeline_ProcessText_EmptyText(t *testing.T) {
	pipeline := NewLLMPipeline(&stubLLMExtractor{}, zap.NewNop())

	response, err := pipeline.ProcessText(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyText)
	assert.Nil(t, response)
}

func TestLLMPipeline_ProcessText_DegradedDefaults(t *testing.T) {
	// when the model output was unusable the extractor reports defaults with
	// no error; the pipeline must turn those into a successful response
	extractor := &stubLLMExtractor{
		buckets: nlp.LLMEntityBuckets{},
		intent:  nlp.LLMIntent{PrimaryIntent: "unknown", Confidence: 0.5},
	}
	pipeline := NewLLMPipeline(extractor, zap.NewNop(), WithLLMPipelineClock(frozenClock))

	response, err := pipeline.ProcessText(context.Background(), "some note")
	require.NoError(t, err)
	require.NotNil(t, response)
	assert.Equal(t, "unknown", response.Intent.PrimaryIntent)
	assert.Equal(t, 0.5, response.Intent.Confidence)
	for _, bucket := range EntityBuckets {
		assert.Empty(t, response.Entities[bucket], bucket)
	}
}

func TestLLMPipeline_ProcessText_ExtractorFailure(t *testing.T) {
	boom := errors.New("groq unavailable")
	pipeline := NewLLMPipeline(&stubLLMExtractor{extract_err: boom}, zap.NewNop())

	response, err := pipeline.ProcessText(context.Background(), "some note")
	assert.Nil(t, response)

	var annotator_err *AnnotatorError
	require.ErrorAs(t, err, &annotator_err)
	assert.Equal(t, "llm_extractor", annotator_err.Annotator)
}
