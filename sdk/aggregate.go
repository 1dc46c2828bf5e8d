package sdk

import (
	"regexp"
	"strings"
	"time"

	"github.com/careparrot/medsack/nlp"
)

// label -> bucket. Total by construction: anything not listed lands in
// OTHER_INFO so no extraction is ever silently dropped.
var categoryMapping = map[string]string{
	"patient": PATIENT_INFO,
	"doctor":  PATIENT_INFO,
	"age":     PATIENT_INFO,

	"medication": MEDICAL_INFO,
	"dosage":     MEDICAL_INFO,
	"frequency":  MEDICAL_INFO,
	"condition":  MEDICAL_INFO,
	"symptom":    MEDICAL_INFO,
	"procedure":  MEDICAL_INFO,
	"test":       MEDICAL_INFO,

	"date":     TEMPORAL_INFO,
	"time":     TEMPORAL_INFO,
	"duration": TEMPORAL_INFO,

	"facility":   LOCATION_INFO,
	"department": LOCATION_INFO,
	"hospital":   LOCATION_INFO,
}

// frequency-looking vocabulary for temporal pattern tagging
var temporalPatterns = []string{
	"daily", "twice", "weekly", "monthly",
	"every", "times a day", "hours",
}

var (
	dateFormats = []*regexp.Regexp{
		regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
		regexp.MustCompile(`\d{2}/\d{2}/\d{4}`),
		regexp.MustCompile(`\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]* \d{1,2},? \d{4}\b`),
	}
	timeFormat = regexp.MustCompile(`\b\d{1,2}(?::\d{2})?\s*(?:[AaPp][Mm])\b|\b\d{1,2}:\d{2}\b`)
)

// BucketFor returns the output bucket for an extraction label.
func BucketFor(label string) string {
	if bucket, ok := categoryMapping[label]; ok {
		return bucket
	}
	return OTHER_INFO
}

// Aggregate merges the raw outputs of the three annotators over one note into
// a single ProcessedResult. It is purely a shaping function: it never calls a
// model and never sees annotator failures. Deterministic except for the
// timestamp, which WithClock pins down in tests.
//
// Entities keep their extraction order within each bucket and their scores
// bit-for-bit. Temporal tokens are tagged independently of the entity output;
// the two views are allowed to overlap.
func Aggregate(text string, raw_entities []nlp.ExtractedEntity, raw_intent nlp.IntentPrediction, temporal_tokens []string, opts ...AggregateOption) (*ProcessedResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	clock := time.Now
	for _, opt := range opts {
		clock = opt(clock)
	}

	entities := make(map[string][]CategorizedEntity, len(EntityBuckets))
	for _, bucket := range EntityBuckets {
		entities[bucket] = []CategorizedEntity{}
	}
	for _, raw := range raw_entities {
		bucket := BucketFor(raw.Label)
		entities[bucket] = append(entities[bucket], CategorizedEntity{
			Text:       raw.Text,
			Type:       raw.Label,
			Confidence: raw.Score,
		})
	}

	return &ProcessedResult{
		Intent: Intent{
			PrimaryIntent: raw_intent.Label,
			Confidence:    raw_intent.Score,
		},
		Entities:     entities,
		TemporalInfo: tagTemporalTokens(temporal_tokens),
		ProcessedAt:  clock().Format(time.RFC3339),
	}, nil
}

// tagTemporalTokens sorts raw linguistic tokens into the three temporal
// sequences. A token is a date or a time, not both; the pattern check runs
// separately since "every 4 hours" is a pattern whether or not it also parses
// as something else.
func tagTemporalTokens(tokens []string) TemporalInfo {
	info := TemporalInfo{Dates: []string{}, Times: []string{}, Patterns: []string{}}
	for _, token := range tokens {
		if matchesDate(token) {
			info.Dates = append(info.Dates, token)
		} else if timeFormat.MatchString(token) {
			info.Times = append(info.Times, token)
		}
		lower := strings.ToLower(token)
		for _, pattern := range temporalPatterns {
			if strings.Contains(lower, pattern) {
				info.Patterns = append(info.Patterns, token)
				break
			}
		}
	}
	return info
}

func matchesDate(token string) bool {
	for _, format := range dateFormats {
		if format.MatchString(token) {
			return true
		}
	}
	return false
}
