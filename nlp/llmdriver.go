package nlp

import (
	"context"
	"errors"

	"github.com/careparrot/medsack/nlp/internal"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

const (
	_DEFAULT_LLM_MODEL = "llama3-70b-8192"
	_GROQ_BASE_URL     = "https://api.groq.com/openai/v1"
)

// GroqMedicalClient is the LLM alternative to the transformer annotators:
// one structured-extraction chain for categorized entities and one for
// intent, both against Groq's openai-compatible endpoint.
type GroqMedicalClient struct {
	entity_chain *JsonValueExtraction
	intent_chain *JsonValueExtraction
	log          *zap.Logger
}

func NewGroqMedicalClient(api_key, model string, log *zap.Logger) (*GroqMedicalClient, error) {
	if model == "" {
		model = _DEFAULT_LLM_MODEL
	}
	client, err := openai.New(
		openai.WithBaseURL(_GROQ_BASE_URL),
		openai.WithModel(model),
		openai.WithToken(api_key),
		openai.WithResponseFormat(openai.ResponseFormatJSON))
	if err != nil {
		return nil, err
	}
	return &GroqMedicalClient{
		entity_chain: NewJsonValueExtraction(client, _ENTITY_SAMPLE_OUTPUT),
		intent_chain: NewJsonValueExtraction(client, _INTENT_SAMPLE_OUTPUT),
		log:          log.With(zap.String("driver", "groq")),
	}, nil
}

func (client *GroqMedicalClient) ExtractCategorizedEntities(ctx context.Context, text string) (LLMEntityBuckets, error) {
	result, err := client.entity_chain.Call(ctx, map[string]any{
		"context":    _ENTITY_EXTRACTION_INSTRUCTION,
		"input_text": internal.TruncateTextOnTokenCount(text),
	})
	if errors.Is(err, ErrUnparseableOutput) {
		// unusable model output degrades to empty buckets; only transport
		// and API failures are hard errors
		client.log.Warn("llm entity output unusable, degrading to empty buckets", zap.Error(err))
		return LLMEntityBuckets{}, nil
	}
	if err != nil {
		client.log.Error("llm entity extraction failed", zap.Error(err))
		return LLMEntityBuckets{}, err
	}
	return result[_DEFAULT_OUTPUT_KEY].(LLMEntityBuckets), nil
}

func (client *GroqMedicalClient) ClassifyIntent(ctx context.Context, text string) (LLMIntent, error) {
	result, err := client.intent_chain.Call(ctx, map[string]any{
		"context":    _INTENT_CLASSIFICATION_INSTRUCTION,
		"input_text": internal.TruncateTextOnTokenCount(text),
	})
	if errors.Is(err, ErrUnparseableOutput) {
		client.log.Warn("llm intent output unusable, degrading to unknown intent", zap.Error(err))
		return LLMIntent{PrimaryIntent: "unknown", Confidence: 0.5}, nil
	}
	if err != nil {
		client.log.Error("llm intent classification failed", zap.Error(err))
		return LLMIntent{}, err
	}
	return result[_DEFAULT_OUTPUT_KEY].(LLMIntent), nil
}
