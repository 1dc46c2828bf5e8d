package sdk

// bucket names. these are wire contract: dashboards and downstream consumers
// key off these exact strings.
const (
	PATIENT_INFO  = "patient_info"
	MEDICAL_INFO  = "medical_info"
	TEMPORAL_INFO = "temporal_info"
	LOCATION_INFO = "location_info"
	OTHER_INFO    = "other"
)

// Buckets in presentation order.
var EntityBuckets = []string{PATIENT_INFO, MEDICAL_INFO, TEMPORAL_INFO, LOCATION_INFO, OTHER_INFO}

// CategorizedEntity is one extracted span after bucket assignment. Type keeps
// the model's fine-grained label; Confidence is the model score untouched.
type CategorizedEntity struct {
	Text       string  `json:"text"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

type Intent struct {
	PrimaryIntent string  `json:"primary_intent"`
	Confidence    float64 `json:"confidence"`
}

// TemporalInfo is derived from the linguistic analyzer's tokens, never from
// extracted entities. Overlap with the temporal_info entity bucket is
// expected and left alone.
type TemporalInfo struct {
	Dates    []string `json:"dates"`
	Times    []string `json:"times"`
	Patterns []string `json:"patterns"`
}

// ProcessedResult is the one record the service produces per note. Immutable
// after construction and never persisted.
type ProcessedResult struct {
	Intent       Intent                         `json:"intent"`
	Entities     map[string][]CategorizedEntity `json:"entities"`
	TemporalInfo TemporalInfo                   `json:"temporal_info"`
	ProcessedAt  string                         `json:"processed_at"`
}

// SimplifiedFormat is a flat convenience view for the dashboard: first
// matching entity per slot, nil when the note never mentions one.
type SimplifiedFormat struct {
	Intent   string             `json:"intent"`
	Entities SimplifiedEntities `json:"entities"`
}

type SimplifiedEntities struct {
	Patient   *string `json:"patient"`
	Gender    *string `json:"gender"`
	Age       *string `json:"age"`
	Condition *string `json:"condition"`
}

// MedicationValidation is attached when the note assigns a medication.
type MedicationValidation struct {
	IsValid       bool     `json:"is_valid"`
	Message       string   `json:"message"`
	MissingFields []string `json:"missing_fields,omitempty"`
}

// ProcessResponse is what the HTTP layer serializes under "result".
type ProcessResponse struct {
	ProcessedResult
	SimplifiedFormat     SimplifiedFormat      `json:"simplified_format"`
	MedicationValidation *MedicationValidation `json:"medication_validation,omitempty"`
	FollowUpQuestion     string                `json:"follow_up_question,omitempty"`
	PipelineType         string                `json:"pipeline_type,omitempty"`
}

// ConversationContext is the rolling state threaded through a multi-utterance
// exchange. Kept in the context store with an expiry, not in process memory.
type ConversationContext struct {
	CurrentPatient     *CategorizedEntity  `json:"current_patient,omitempty"`
	CurrentMedicalInfo []CategorizedEntity `json:"current_medical_info,omitempty"`
	LastMentionedDate  string              `json:"last_mentioned_date,omitempty"`
}

type MedSackError string

func (err MedSackError) Error() string {
	return string(err)
}

// ErrEmptyText is the validation failure for blank input. Raised before any
// annotator is invoked; extraction on an empty note is meaningless.
const ErrEmptyText = MedSackError("text is empty")
