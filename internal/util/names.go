package util

import (
	"math/rand/v2"
	"strings"
)

var (
	maleFirstNames = []string{
		"James", "John", "Robert", "Michael", "David", "Thomas", "Daniel", "Paul",
		"Jean", "Pierre", "Michel", "Nicolas", "Julien", "Antoine",
	}
	femaleFirstNames = []string{
		"Mary", "Patricia", "Linda", "Sarah", "Emma", "Laura", "Alice",
		"Marie", "Sophie", "Claire", "Camille", "Hélène", "Léa", "Chloé",
	}
	lastNames = []string{
		"Smith", "Johnson", "Brown", "Miller", "Wilson", "Taylor", "Clark", "Walker",
		"Martin", "Dubois", "Durand", "Leroy", "Moreau", "Lefebvre", "Fournier", "Girard",
	}

	reportFindings = []string{
		"No focal lesion identified.",
		"Mild degenerative changes without acute abnormality.",
		"Stable appearance compared with the prior examination.",
		"Small nonspecific nodule, follow-up suggested in twelve months.",
		"Normal study for age.",
	}
)

// GeneratePatientName returns a patient name in DICOM person-name form,
// LASTNAME^Firstname. Sex "M" picks a male first name, anything else a
// female one.
func GeneratePatientName(sex string, rng *rand.Rand) string {
	first := femaleFirstNames
	if sex == "M" {
		first = maleFirstNames
	}
	last := lastNames[rng.IntN(len(lastNames))]
	return strings.ToUpper(last) + "^" + first[rng.IntN(len(first))]
}

// GenerateReportText returns a short free-text report body.
func GenerateReportText(description string, rng *rand.Rand) string {
	finding := reportFindings[rng.IntN(len(reportFindings))]
	return "Findings for " + description + ": " + finding
}
