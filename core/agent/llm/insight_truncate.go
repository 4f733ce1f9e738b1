package llm

const (
	// maxInputChars bounds the text sent upstream per call to limit
	// token cost.
	maxInputChars = 2000

	truncatedMarker = "\n\n[Email truncated...]"
)

// truncateInput caps text at maxInputChars, appending an explicit
// marker so the model knows the tail is missing.
func truncateInput(text string) string {
	if len(text) > maxInputChars {
		return text[:maxInputChars] + truncatedMarker
	}
	return text
}
