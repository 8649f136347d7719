package aiagent

import "github.com/ehstaff/ehstaff-backend/internal/cv/domain"

// Task names understood by the agent platform.
const (
	TaskOCR           = "ocr"
	TaskParseCV       = "parse_cv"
	TaskCompareIntake = "compare_intake"
	TaskFormatCV      = "format_cv"
	TaskQA            = "qa"
)

// OCRResult holds text recovered from a scanned or image-only document.
type OCRResult struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// ParseResult is the structured interpretation of raw CV text.
type ParseResult struct {
	StructuredData *domain.CandidateRecord `json:"structuredData"`
	Errors         []string                `json:"errors"`
}

// CompareResult is the outcome of reconciling a parsed CV against intake
// form answers supplied by the candidate.
type CompareResult struct {
	AdjustedData *domain.CandidateRecord `json:"adjustedData"`
	AppliedRules []string                `json:"appliedRules"`
}

// FormatResult carries the agency-styled version of the record.
type FormatResult struct {
	FormattedData    *domain.CandidateRecord `json:"formattedData"`
	ValidationErrors []string                `json:"validationErrors"`
}

// QAResult is the agent's quality verdict over a finished record.
type QAResult struct {
	Score           float64  `json:"score"`
	Passed          bool     `json:"passed"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
	Suggestions     []string `json:"suggestions"`
}

// PipelineResult bundles the output of the full agent chain. OCR is nil
// when the pipeline started from already-extracted text.
type PipelineResult struct {
	OCR       *OCRResult
	Parsed    *ParseResult
	Compared  *CompareResult
	Formatted *FormatResult
	QA        *QAResult
}

// agentResponse mirrors the platform's invoke envelope.
type agentResponse struct {
	Data struct {
		Text             string                  `json:"text"`
		Confidence       *float64                `json:"confidence"`
		ParsedData       *domain.CandidateRecord `json:"parsed_data"`
		Errors           []string                `json:"errors"`
		AdjustedData     *domain.CandidateRecord `json:"adjusted_data"`
		AppliedRules     []string                `json:"applied_rules"`
		ValidationErrors []string                `json:"validation_errors"`
		FormattedCV      *domain.CandidateRecord `json:"formatted_cv"`
		QAScore          float64                 `json:"qa_score"`
		Issues           []string                `json:"issues"`
		Recommendations  []string                `json:"recommendations"`
		Suggestions      []string                `json:"suggestions"`
	} `json:"data"`
}
