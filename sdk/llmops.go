package sdk

import (
	"context"
	"time"

	"github.com/careparrot/medsack/nlp"
	datautils "github.com/soumitsalman/data-utils"
	"go.uber.org/zap"
)

// LLMExtractor is the single-model alternative to the transformer
// annotators: one call for pre-categorized entities, one for intent.
type LLMExtractor interface {
	ExtractCategorizedEntities(ctx context.Context, text string) (nlp.LLMEntityBuckets, error)
	ClassifyIntent(ctx context.Context, text string) (nlp.LLMIntent, error)
}

// LLMPipeline shapes Groq structured-extraction output into the same record
// the transformer pipeline produces.
type LLMPipeline struct {
	extractor LLMExtractor
	clock     Clock
	log       *zap.Logger
}

func NewLLMPipeline(extractor LLMExtractor, log *zap.Logger, opts ...LLMPipelineOption) *LLMPipeline {
	pipeline := &LLMPipeline{
		extractor: extractor,
		clock:     time.Now,
		log:       log.With(zap.String("pipeline", "llm")),
	}
	for _, opt := range opts {
		opt(pipeline)
	}
	return pipeline
}

type LLMPipelineOption func(pipeline *LLMPipeline)

func WithLLMPipelineClock(clock Clock) LLMPipelineOption {
	return func(pipeline *LLMPipeline) {
		pipeline.clock = clock
	}
}

func (pipeline *LLMPipeline) ProcessText(ctx context.Context, text string) (*ProcessResponse, error) {
	text = CleanText(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	buckets, err := pipeline.extractor.ExtractCategorizedEntities(ctx, text)
	if err != nil {
		return nil, &AnnotatorError{Annotator: "llm_extractor", Err: err}
	}
	intent, err := pipeline.extractor.ClassifyIntent(ctx, text)
	if err != nil {
		return nil, &AnnotatorError{Annotator: "llm_classifier", Err: err}
	}

	entities := map[string][]CategorizedEntity{
		PATIENT_INFO:  fromLLMEntities(buckets.PatientInfo),
		MEDICAL_INFO:  fromLLMEntities(buckets.MedicalInfo),
		TEMPORAL_INFO: fromLLMEntities(buckets.TemporalInfo),
		LOCATION_INFO: fromLLMEntities(buckets.LocationInfo),
		OTHER_INFO:    {},
	}

	result := &ProcessedResult{
		Intent: Intent{
			PrimaryIntent: intent.PrimaryIntent,
			Confidence:    intent.Confidence,
		},
		Entities: entities,
		// the llm path has no separate linguistic analyzer; temporal info is
		// tagged from the temporal entity texts instead
		TemporalInfo: tagTemporalTokens(datautils.Transform(buckets.TemporalInfo,
			func(entity *nlp.LLMEntity) string { return entity.Text })),
		ProcessedAt: pipeline.clock().Format(time.RFC3339),
	}

	pipeline.log.Info("note processed",
		zap.String("intent", result.Intent.PrimaryIntent))
	return finishResponse(result, "llm"), nil
}

// never returns nil: empty buckets serialize as [], not null
func fromLLMEntities(llm_entities []nlp.LLMEntity) []CategorizedEntity {
	categorized := make([]CategorizedEntity, 0, len(llm_entities))
	for _, entity := range llm_entities {
		categorized = append(categorized, CategorizedEntity{
			Text:       entity.Text,
			Type:       entity.Type,
			Confidence: entity.Confidence,
		})
	}
	return categorized
}
