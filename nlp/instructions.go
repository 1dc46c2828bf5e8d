package nlp

const (
	_ENTITY_EXTRACTION_INSTRUCTION = "You are a medical task management assistant. You are provided with one free-text medical note.\n" +
		"Extract and categorize all medical entities from the note.\n" +
		"Group them into patient information, medical information, temporal information and location information.\n" +
		"Include any detail that is medically relevant. Do not invent entities that are not in the note."

	_INTENT_CLASSIFICATION_INSTRUCTION = "You are a medical task management assistant. You are provided with one free-text medical note.\n" +
		"Classify the primary medical intent of the note. Consider common medical tasks like adding patients,\n" +
		"assigning medications, scheduling follow-ups, updating records, querying information, checking vitals,\n" +
		"ordering tests and reviewing results."
)

var (
	_ENTITY_SAMPLE_OUTPUT = LLMEntityBuckets{
		PatientInfo: []LLMEntity{
			{Text: "John Doe", Type: "patient", Confidence: 0.99},
			{Text: "45 years old", Type: "age", Confidence: 0.97},
		},
		MedicalInfo: []LLMEntity{
			{Text: "Metformin", Type: "medication", Confidence: 0.98},
			{Text: "500mg", Type: "dosage", Confidence: 0.95},
			{Text: "diabetes", Type: "condition", Confidence: 0.98},
		},
		TemporalInfo: []LLMEntity{
			{Text: "twice daily", Type: "frequency", Confidence: 0.93},
		},
		LocationInfo: []LLMEntity{},
	}

	_INTENT_SAMPLE_OUTPUT = LLMIntent{
		PrimaryIntent: "assign_medication",
		Confidence:    0.94,
	}
)
