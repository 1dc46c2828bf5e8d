package nlp

// ExtractedEntity is a single span tagged by the entity extraction model.
// The label is free-form: whatever the model was prompted with, it may still
// come back with something outside that set.
type ExtractedEntity struct {
	Text  string  `json:"text"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// IntentPrediction is the top-1 label from the zero-shot classifier.
type IntentPrediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// LLMEntity mirrors ExtractedEntity for the LLM extraction path, where the
// model emits pre-categorized entities instead of flat spans.
type LLMEntity struct {
	Text       string  `json:"text" jsonschema_description:"The exact text span extracted from the input"`
	Type       string  `json:"type" jsonschema_description:"What kind of information the span represents, such as: patient, age, gender, medication, dosage, frequency, condition, symptom, date, facility"`
	Confidence float64 `json:"confidence" jsonschema_description:"How confident you are in this extraction, between 0.0 and 1.0"`
}

// LLMEntityBuckets is the structured-output shape the LLM extraction chain is
// instructed to produce. Category keys match the service wire contract.
type LLMEntityBuckets struct {
	PatientInfo  []LLMEntity `json:"patient_info" jsonschema_description:"Entities describing who the note is about: patient name, doctor, age, gender"`
	MedicalInfo  []LLMEntity `json:"medical_info" jsonschema_description:"Medical entities: medications, dosages, frequencies, conditions, symptoms, procedures, tests"`
	TemporalInfo []LLMEntity `json:"temporal_info" jsonschema_description:"Dates, times and durations mentioned in the note"`
	LocationInfo []LLMEntity `json:"location_info" jsonschema_description:"Facilities, departments, hospitals"`
}

// LLMIntent is the structured-output shape of the LLM intent chain.
type LLMIntent struct {
	PrimaryIntent string  `json:"primary_intent" jsonschema_description:"The detected medical task intent, such as: add_patient, assign_medication, schedule_followup, update_record, query_info, check_vitals, order_test, review_results"`
	Confidence    float64 `json:"confidence" jsonschema_description:"Confidence in the detected intent, between 0.0 and 1.0"`
}
