package nlp

import (
	"context"

	"github.com/careparrot/medsack/nlp/internal"
	"go.uber.org/zap"
)

type temporalInput struct {
	Text string `json:"text"`
}

type temporalOutput struct {
	Tokens []string `json:"tokens"`
}

// TemporalDriver asks a remote linguistic service (spaCy behind HTTP) for the
// raw temporal spans of a text: DATE and TIME entities plus frequency-looking
// chunks. The tokens come back untyped; categorizing them is the aggregator's
// job, deliberately separate from entity extraction.
type TemporalDriver struct {
	url        string
	auth_token string
	log        *zap.Logger
}

func NewTemporalDriver(url, auth_token string, log *zap.Logger) *TemporalDriver {
	return &TemporalDriver{
		url:        url,
		auth_token: auth_token,
		log:        log.With(zap.String("driver", "temporal")),
	}
}

func (driver *TemporalDriver) AnalyzeTemporal(ctx context.Context, text string) ([]string, error) {
	input := temporalInput{Text: internal.TruncateTextOnTokenCount(text)}
	output, err := internal.PostHTTPRequestAndRetryOnFail[temporalOutput](ctx, driver.url, driver.auth_token, input)
	if err != nil {
		driver.log.Error("temporal analysis failed", zap.Error(err))
		return nil, err
	}
	return output.Tokens, nil
}
