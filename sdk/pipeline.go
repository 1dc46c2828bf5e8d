package sdk

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/careparrot/medsack/nlp"
	"go.uber.org/zap"
)

// The three annotator collaborators. Each wraps one remote model; the
// pipeline owns none of them so tests can swap in doubles.
type EntityExtractor interface {
	Extract(ctx context.Context, text string) ([]nlp.ExtractedEntity, error)
}

type IntentClassifier interface {
	Classify(ctx context.Context, text string, candidate_labels []string) (nlp.IntentPrediction, error)
}

type TemporalAnalyzer interface {
	AnalyzeTemporal(ctx context.Context, text string) ([]string, error)
}

// ContextStore keeps conversation context across requests with an expiry.
// Satisfied by store.RedisStore[ConversationContext] and
// store.MemoryStore[ConversationContext].
type ContextStore interface {
	Get(ctx context.Context, key string) (*ConversationContext, error)
	Put(ctx context.Context, key string, value *ConversationContext) error
}

// Processor is what the HTTP layer programs against; the transformer and llm
// pipelines both satisfy it.
type Processor interface {
	ProcessText(ctx context.Context, text string) (*ProcessResponse, error)
}

// AnnotatorError wraps a failure from one of the model collaborators. The
// aggregator never produces one; by the time aggregation runs all three
// annotator outputs already exist.
type AnnotatorError struct {
	Annotator string
	Err       error
}

func (err *AnnotatorError) Error() string {
	return fmt.Sprintf("annotator %s failed: %v", err.Annotator, err.Err)
}

func (err *AnnotatorError) Unwrap() error {
	return err.Err
}

// Pipeline runs the transformer annotators and shapes their raw outputs.
type Pipeline struct {
	extractor  EntityExtractor
	classifier IntentClassifier
	temporal   TemporalAnalyzer
	contexts   ContextStore
	clock      Clock
	log        *zap.Logger
}

func NewPipeline(extractor EntityExtractor, classifier IntentClassifier, temporal TemporalAnalyzer, log *zap.Logger, opts ...PipelineOption) *Pipeline {
	pipeline := &Pipeline{
		extractor:  extractor,
		classifier: classifier,
		temporal:   temporal,
		clock:      time.Now,
		log:        log.With(zap.String("pipeline", "transformer")),
	}
	for _, opt := range opts {
		opt(pipeline)
	}
	return pipeline
}

// ProcessText runs the three annotators over one note and aggregates their
// outputs. The annotator calls are independent so they fan out concurrently;
// their results are only combined after all three return.
func (pipeline *Pipeline) ProcessText(ctx context.Context, text string) (*ProcessResponse, error) {
	text = CleanText(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	var (
		wg              sync.WaitGroup
		raw_entities    []nlp.ExtractedEntity
		raw_intent      nlp.IntentPrediction
		temporal_tokens []string
		extract_err     error
		classify_err    error
		temporal_err    error
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		raw_entities, extract_err = pipeline.extractor.Extract(ctx, text)
	}()
	go func() {
		defer wg.Done()
		raw_intent, classify_err = pipeline.classifier.Classify(ctx, text, nil)
	}()
	go func() {
		defer wg.Done()
		temporal_tokens, temporal_err = pipeline.temporal.AnalyzeTemporal(ctx, text)
	}()
	wg.Wait()

	switch {
	case extract_err != nil:
		return nil, &AnnotatorError{Annotator: "entity_extractor", Err: extract_err}
	case classify_err != nil:
		return nil, &AnnotatorError{Annotator: "intent_classifier", Err: classify_err}
	case temporal_err != nil:
		return nil, &AnnotatorError{Annotator: "temporal_analyzer", Err: temporal_err}
	}

	result, err := Aggregate(text, raw_entities, raw_intent, temporal_tokens, WithClock(pipeline.clock))
	if err != nil {
		return nil, err
	}

	pipeline.log.Info("note processed",
		zap.String("intent", result.Intent.PrimaryIntent),
		zap.Int("entity_count", len(raw_entities)))
	return finishResponse(result, "transformer"), nil
}

// ProcessConversation processes utterances in order, threading the rolling
// context through each. The final context is persisted under context_key when
// a context store is attached.
func (pipeline *Pipeline) ProcessConversation(ctx context.Context, context_key string, utterances []string) ([]*ProcessResponse, *ConversationContext, error) {
	conv_context := &ConversationContext{}
	if pipeline.contexts != nil && context_key != "" {
		if stored, err := pipeline.contexts.Get(ctx, context_key); err == nil && stored != nil {
			conv_context = stored
		}
	}

	responses := make([]*ProcessResponse, 0, len(utterances))
	for _, utterance := range utterances {
		response, err := pipeline.ProcessText(ctx, utterance)
		if err != nil {
			return nil, nil, err
		}
		updateContext(conv_context, &response.ProcessedResult)
		responses = append(responses, response)
	}

	if pipeline.contexts != nil && context_key != "" {
		if err := pipeline.contexts.Put(ctx, context_key, conv_context); err != nil {
			// context persistence is auxiliary; the processing result stands
			pipeline.log.Warn("context persistence failed", zap.Error(err))
		}
	}
	return responses, conv_context, nil
}

func updateContext(conv_context *ConversationContext, result *ProcessedResult) {
	if patients := result.Entities[PATIENT_INFO]; len(patients) > 0 {
		conv_context.CurrentPatient = &patients[0]
	}
	if medical := result.Entities[MEDICAL_INFO]; len(medical) > 0 {
		conv_context.CurrentMedicalInfo = medical
	}
	if len(result.TemporalInfo.Dates) > 0 {
		conv_context.LastMentionedDate = result.TemporalInfo.Dates[0]
	}
}

// finishResponse derives the service-layer extras that ride on top of the
// aggregated record: simplified view, medication validation, follow-up.
func finishResponse(result *ProcessedResult, pipeline_type string) *ProcessResponse {
	response := &ProcessResponse{
		ProcessedResult:  *result,
		SimplifiedFormat: simplify(result),
		PipelineType:     pipeline_type,
	}

	if result.Intent.PrimaryIntent == "assign_medication" {
		if medication := firstEntityOfType(result, MEDICAL_INFO, "medication"); medication != nil {
			dosage := firstEntityOfType(result, MEDICAL_INFO, "dosage")
			frequency := firstEntityOfType(result, MEDICAL_INFO, "frequency")
			response.MedicationValidation = ValidateMedication(
				medication.Text, entityText(dosage), entityText(frequency))
			if len(response.MedicationValidation.MissingFields) > 0 {
				response.FollowUpQuestion = fmt.Sprintf(
					"What is the %s for %s?",
					strings.Join(response.MedicationValidation.MissingFields, " and "),
					medication.Text)
			}
		}
	}
	return response
}

func simplify(result *ProcessedResult) SimplifiedFormat {
	return SimplifiedFormat{
		Intent: result.Intent.PrimaryIntent,
		Entities: SimplifiedEntities{
			Patient:   entityTextPtr(firstEntityOfType(result, PATIENT_INFO, "patient")),
			Gender:    entityTextPtr(firstEntityOfType(result, PATIENT_INFO, "gender")),
			Age:       entityTextPtr(firstEntityOfType(result, PATIENT_INFO, "age")),
			Condition: entityTextPtr(firstEntityOfType(result, MEDICAL_INFO, "condition", "diagnosis")),
		},
	}
}

func firstEntityOfType(result *ProcessedResult, bucket string, types ...string) *CategorizedEntity {
	for i := range result.Entities[bucket] {
		for _, entity_type := range types {
			if result.Entities[bucket][i].Type == entity_type {
				return &result.Entities[bucket][i]
			}
		}
	}
	return nil
}

func entityText(entity *CategorizedEntity) string {
	if entity == nil {
		return ""
	}
	return entity.Text
}

func entityTextPtr(entity *CategorizedEntity) *string {
	if entity == nil {
		return nil
	}
	return &entity.Text
}

// CleanText collapses whitespace runs in an incoming note.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
