package nlp

import (
	"context"

	"github.com/careparrot/medsack/nlp/internal"
	"go.uber.org/zap"
)

// the full label set the extraction model is prompted with.
// matches the serving side; changing it here does not retrain anything.
var MedicalEntityLabels = []string{
	"patient", "doctor", "medication", "dosage",
	"frequency", "condition", "symptom", "procedure",
	"test", "date", "time", "duration", "facility",
	"department", "vital_sign", "lab_result",
}

type glinerInput struct {
	Text   string   `json:"text"`
	Labels []string `json:"labels"`
}

// GlinerDriver talks to a remote inference service wrapping a GLiNER model.
// The service accepts a text and a candidate label set and returns scored
// spans. It never invents ordering: spans come back in extraction order and
// this driver keeps them that way.
type GlinerDriver struct {
	url        string
	auth_token string
	labels     []string
	log        *zap.Logger
}

func NewGlinerDriver(url, auth_token string, log *zap.Logger) *GlinerDriver {
	return &GlinerDriver{
		url:        url,
		auth_token: auth_token,
		labels:     MedicalEntityLabels,
		log:        log.With(zap.String("driver", "gliner")),
	}
}

func (driver *GlinerDriver) Extract(ctx context.Context, text string) ([]ExtractedEntity, error) {
	input := glinerInput{
		Text:   internal.TruncateTextOnTokenCount(text),
		Labels: driver.labels,
	}
	entities, err := internal.PostHTTPRequestAndRetryOnFail[[]ExtractedEntity](ctx, driver.url, driver.auth_token, input)
	if err != nil {
		driver.log.Error("entity extraction failed", zap.Error(err))
		return nil, err
	}
	driver.log.Debug("entities extracted", zap.Int("count", len(entities)))
	return entities, nil
}
