package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ViolationKind tags the variant of evidence a case carries.
type ViolationKind string

const (
	ViolationKindPlagiarism     ViolationKind = "plagiarism"
	ViolationKindCheating       ViolationKind = "cheating"
	ViolationKindCollusion      ViolationKind = "collusion"
	ViolationKindCodePlagiarism ViolationKind = "code_plagiarism"
)

var violationKindLabels = map[ViolationKind]string{
	ViolationKindPlagiarism:     "Plagiarism",
	ViolationKindCheating:       "Cheating",
	ViolationKindCollusion:      "Collusion",
	ViolationKindCodePlagiarism: "Code Plagiarism",
}

// Label returns the human readable misconduct type for the kind.
func (k ViolationKind) Label() string {
	if label, ok := violationKindLabels[k]; ok {
		return label
	}
	return string(k)
}

// ParseViolationKind accepts either the tag ("code_plagiarism") or the label ("Code Plagiarism").
func ParseViolationKind(value string) (ViolationKind, error) {
	trimmed := strings.TrimSpace(value)
	for kind, label := range violationKindLabels {
		if strings.EqualFold(trimmed, string(kind)) || strings.EqualFold(trimmed, label) {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: unknown violation kind %q", ErrInvalidInput, value)
}

// ViolationDetails is the type-specific evidence attached to a case. The set of
// implementations is closed to this package.
type ViolationDetails interface {
	Kind() ViolationKind
	validate() error
	reportHeading() string
	reportLines() []string
}

// PlagiarismDetails describes copied written work.
type PlagiarismDetails struct {
	SourceDetected       string  `json:"source_detected" yaml:"source_detected"`
	SimilarityPercentage float64 `json:"similarity_percentage" yaml:"similarity_percentage"`
}

func (PlagiarismDetails) Kind() ViolationKind { return ViolationKindPlagiarism }

func (d PlagiarismDetails) validate() error {
	return validateSimilarity(d.SimilarityPercentage)
}

func (PlagiarismDetails) reportHeading() string { return "PLAGIARISM CASE REPORT" }

func (d PlagiarismDetails) reportLines() []string {
	return []string{
		"Plagiarism Details:",
		"Source Detected: " + d.SourceDetected,
		fmt.Sprintf("Similarity Percentage: %.1f%%", d.SimilarityPercentage),
	}
}

// CheatingDetails describes unauthorized help during an assessment.
type CheatingDetails struct {
	CheatingMethod        string `json:"cheating_method" yaml:"cheating_method"`
	UnauthorizedMaterials string `json:"unauthorized_materials" yaml:"unauthorized_materials"`
}

func (CheatingDetails) Kind() ViolationKind { return ViolationKindCheating }

func (CheatingDetails) validate() error { return nil }

func (CheatingDetails) reportHeading() string { return "CHEATING CASE REPORT" }

func (d CheatingDetails) reportLines() []string {
	return []string{
		"Cheating Details:",
		"Cheating Method: " + d.CheatingMethod,
		"Unauthorized Materials: " + d.UnauthorizedMaterials,
	}
}

// CollusionDetails describes unauthorized collaboration between students.
type CollusionDetails struct {
	InvolvedParties      string `json:"involved_parties" yaml:"involved_parties"`
	CollaborationDetails string `json:"collaboration_details" yaml:"collaboration_details"`
}

func (CollusionDetails) Kind() ViolationKind { return ViolationKindCollusion }

func (CollusionDetails) validate() error { return nil }

func (CollusionDetails) reportHeading() string { return "COLLUSION CASE REPORT" }

func (d CollusionDetails) reportLines() []string {
	return []string{
		"Collusion Details:",
		"Involved Parties: " + d.InvolvedParties,
		"Collaboration Details: " + d.CollaborationDetails,
	}
}

// CodePlagiarismDetails describes copied source code.
type CodePlagiarismDetails struct {
	SourceDetected       string  `json:"source_detected" yaml:"source_detected"`
	SimilarityPercentage float64 `json:"similarity_percentage" yaml:"similarity_percentage"`
	ProgrammingLanguage  string  `json:"programming_language" yaml:"programming_language"`
	DetectionTool        string  `json:"detection_tool" yaml:"detection_tool"`
}

func (CodePlagiarismDetails) Kind() ViolationKind { return ViolationKindCodePlagiarism }

func (d CodePlagiarismDetails) validate() error {
	return validateSimilarity(d.SimilarityPercentage)
}

func (CodePlagiarismDetails) reportHeading() string { return "CODE PLAGIARISM CASE REPORT" }

func (d CodePlagiarismDetails) reportLines() []string {
	return []string{
		"Code Plagiarism Details:",
		"Source Detected: " + d.SourceDetected,
		fmt.Sprintf("Similarity Percentage: %.1f%%", d.SimilarityPercentage),
		"Programming Language: " + d.ProgrammingLanguage,
		"Detection Tool: " + d.DetectionTool,
	}
}

func validateSimilarity(value float64) error {
	if value < 0 || value > 100 {
		return fmt.Errorf("%w: similarity percentage must be between 0 and 100", ErrInvalidInput)
	}
	return nil
}

// DecodeDetails restores the variant payload stored for kind.
func DecodeDetails(kind ViolationKind, raw []byte) (ViolationDetails, error) {
	switch kind {
	case ViolationKindPlagiarism:
		var d PlagiarismDetails
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return d, nil
	case ViolationKindCheating:
		var d CheatingDetails
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return d, nil
	case ViolationKindCollusion:
		var d CollusionDetails
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return d, nil
	case ViolationKindCodePlagiarism:
		var d CodePlagiarismDetails
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unknown violation kind %q", kind)
	}
}
