package nlp

import (
	"context"

	"github.com/careparrot/medsack/nlp/internal"
	"go.uber.org/zap"
)

// candidate intents for the zero-shot classifier
var IntentLabels = []string{
	"add_patient", "assign_medication",
	"schedule_followup", "update_record",
	"query_info", "check_vitals",
	"order_test", "review_results",
}

const _HYPOTHESIS_TEMPLATE = "This is a request to {}."

type zeroShotInput struct {
	Text               string   `json:"text"`
	CandidateLabels    []string `json:"candidate_labels"`
	HypothesisTemplate string   `json:"hypothesis_template"`
	MultiLabel         bool     `json:"multi_label"`
}

// the serving side returns labels sorted by score, highest first
type zeroShotOutput struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// ZeroShotDriver classifies intent through a remote bart-large-mnli style
// zero-shot inference service. Only the top-1 label survives; the classifier
// always returns one even when the score is garbage low.
type ZeroShotDriver struct {
	url        string
	auth_token string
	log        *zap.Logger
}

func NewZeroShotDriver(url, auth_token string, log *zap.Logger) *ZeroShotDriver {
	return &ZeroShotDriver{
		url:        url,
		auth_token: auth_token,
		log:        log.With(zap.String("driver", "zeroshot")),
	}
}

func (driver *ZeroShotDriver) Classify(ctx context.Context, text string, candidate_labels []string) (IntentPrediction, error) {
	if len(candidate_labels) == 0 {
		candidate_labels = IntentLabels
	}
	input := zeroShotInput{
		Text:               internal.TruncateTextOnTokenCount(text),
		CandidateLabels:    candidate_labels,
		HypothesisTemplate: _HYPOTHESIS_TEMPLATE,
		MultiLabel:         true,
	}
	output, err := internal.PostHTTPRequestAndRetryOnFail[zeroShotOutput](ctx, driver.url, driver.auth_token, input)
	if err != nil {
		driver.log.Error("intent classification failed", zap.Error(err))
		return IntentPrediction{}, err
	}
	if len(output.Labels) == 0 || len(output.Scores) == 0 {
		return IntentPrediction{}, internal.InferenceServerError("classifier returned no labels")
	}
	return IntentPrediction{Label: output.Labels[0], Score: output.Scores[0]}, nil
}
