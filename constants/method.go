package constants

// ExtractionMethod records which path produced the structured fields of a document.
type ExtractionMethod string

// Stable values (store these exact strings in DB).
const (
	MethodLLM         ExtractionMethod = "LLM"          // model response parsed cleanly
	MethodLLMRepaired ExtractionMethod = "LLM_REPAIRED" // model response recovered from malformed JSON
	MethodRegex       ExtractionMethod = "REGEX"        // deterministic pattern extraction
	MethodDisabled    ExtractionMethod = "DISABLED"     // analysis turned off, raw text only
)

// MethodConfidence maps an extraction method to its baseline confidence score.
func MethodConfidence(m ExtractionMethod) float32 {
	switch m {
	case MethodLLM:
		return 0.95
	case MethodLLMRepaired:
		return 0.85
	case MethodRegex:
		return 0.60
	default:
		return 0
	}
}
