package sdk

import (
	"fmt"
	"regexp"
	"strings"

	datautils "github.com/soumitsalman/data-utils"
)

// static reference data about known medications. this is a lookup table, not
// a clinical decision engine; unknown medications simply fail validation with
// a message for the clinician.
type MedicationInfo struct {
	Dosages      []string
	Frequencies  []string
	MaxDailyDose string
}

var medicationsDB = map[string]MedicationInfo{
	"paracetamol": {
		Dosages:      []string{"500mg", "1000mg"},
		Frequencies:  []string{"twice a day", "three times a day", "every 4-6 hours"},
		MaxDailyDose: "4000mg",
	},
	"ibuprofen": {
		Dosages:      []string{"200mg", "400mg", "600mg"},
		Frequencies:  []string{"three times a day", "every 6-8 hours"},
		MaxDailyDose: "2400mg",
	},
	"aspirin": {
		Dosages:      []string{"75mg", "300mg", "500mg"},
		Frequencies:  []string{"once daily", "twice a day"},
		MaxDailyDose: "4000mg",
	},
}

var (
	dosageFormat     = regexp.MustCompile(`^\d+(?:\.\d+)?(?:mg|g|ml|mcg)$`)
	frequencyFormats = []*regexp.Regexp{
		regexp.MustCompile(`^\d+\s+times?\s+(?:per|a)\s+day$`),
		regexp.MustCompile(`^every\s+\d+(?:-\d+)?\s+hours?$`),
		regexp.MustCompile(`^(?:once|twice|three times)\s+(?:daily|a day)$`),
		regexp.MustCompile(`^daily$`),
		regexp.MustCompile(`^weekly$`),
		regexp.MustCompile(`^monthly$`),
	}
)

// ValidDosageFormat reports whether a dosage string looks like "500mg".
func ValidDosageFormat(dosage string) bool {
	return dosageFormat.MatchString(strings.ToLower(dosage))
}

// ValidFrequencyFormat reports whether a frequency string is one of the
// accepted shapes ("twice a day", "every 6 hours", "daily", ...).
func ValidFrequencyFormat(frequency string) bool {
	frequency = strings.ToLower(frequency)
	for _, format := range frequencyFormats {
		if format.MatchString(frequency) {
			return true
		}
	}
	return false
}

// ValidateMedication checks a medication instruction against the reference
// table. Dosage and frequency are optional; when absent they are reported as
// missing rather than invalid so the caller can ask a follow-up question.
func ValidateMedication(medication, dosage, frequency string) *MedicationValidation {
	medication = strings.ToLower(strings.TrimSpace(medication))

	info, known := medicationsDB[medication]
	if !known {
		return &MedicationValidation{
			IsValid: false,
			Message: fmt.Sprintf("medication '%s' not found in reference data", medication),
		}
	}

	var missing []string
	if dosage == "" {
		missing = append(missing, "dosage")
	} else if !datautils.In(strings.ToLower(dosage), info.Dosages, equalsFold) {
		return &MedicationValidation{
			IsValid: false,
			Message: fmt.Sprintf("invalid dosage for %s. valid dosages are: %s", medication, strings.Join(info.Dosages, ", ")),
		}
	}

	if frequency == "" {
		missing = append(missing, "frequency")
	} else if !datautils.In(strings.ToLower(frequency), info.Frequencies, equalsFold) {
		return &MedicationValidation{
			IsValid: false,
			Message: fmt.Sprintf("invalid frequency for %s. valid frequencies are: %s", medication, strings.Join(info.Frequencies, ", ")),
		}
	}

	if len(missing) > 0 {
		return &MedicationValidation{
			IsValid:       false,
			Message:       fmt.Sprintf("incomplete instruction for %s", medication),
			MissingFields: missing,
		}
	}

	return &MedicationValidation{IsValid: true, Message: "medication validated successfully"}
}

// GetMedicationInfo returns the reference entry for a medication, nil when
// the medication is not in the table.
func GetMedicationInfo(medication string) *MedicationInfo {
	if info, ok := medicationsDB[strings.ToLower(medication)]; ok {
		return &info
	}
	return nil
}

func equalsFold(a, b *string) bool {
	return strings.EqualFold(*a, *b)
}
