package dictation

import "strings"

// Known speech-model artifacts that show up on near-silent clips. Matched
// against the whole transcript only, so real sentences containing these
// phrases pass through.
var hallucinationPatterns = map[string]struct{}{
	"transcribed by https://otter.ai": {},
	"otter.ai":                        {},
	"thanks for watching":             {},
	"thank you for watching":          {},
	"subscribe to my channel":         {},
	"please subscribe":                {},
	"like and subscribe":              {},
	"see you in the next video":       {},
	"see you next time":               {},
	"the end":                         {},
	"you":                             {},
	"bye":                             {},
	"bye bye":                         {},
	"bye-bye":                         {},
}

func isHallucination(text string) bool {
	normalized := strings.ToLower(strings.TrimSpace(text))
	normalized = strings.TrimRight(normalized, ".!")
	_, ok := hallucinationPatterns[normalized]
	return ok
}
