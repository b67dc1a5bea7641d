package dataset

import "strings"

// Strategy identifies how a row was split into question and response.
type Strategy int

// Parse strategies, tried top to bottom. First success wins.
const (
	StrategyNone Strategy = iota
	QuotedResponse
	UnquotedResponse
	FirstCommaSplit
)

// String returns the strategy name used in parse reports.
func (s Strategy) String() string {
	switch s {
	case QuotedResponse:
		return "quoted"
	case UnquotedResponse:
		return "unquoted"
	case FirstCommaSplit:
		return "first-comma"
	default:
		return "none"
	}
}

// splitFunc returns the raw (un-normalized) question and response of a row.
type splitFunc func(row string) (question, response string, ok bool)

// strategies is the ordered list of row splitters.
var strategies = []struct {
	tag   Strategy
	split splitFunc
}{
	{QuotedResponse, splitQuoted},
	{UnquotedResponse, splitUnquoted},
	{FirstCommaSplit, splitFirstComma},
}

// splitRow runs the strategies in order and reports the first that applies.
func splitRow(row string) (question, response string, tag Strategy) {
	for _, s := range strategies {
		if q, r, ok := s.split(row); ok {
			return q, r, s.tag
		}
	}
	return "", "", StrategyNone
}

// splitQuoted handles `question,"response"` where the question may itself be
// wrapped in double quotes. The response runs from the opening quote after the
// separating comma to the row's final quote, so commas inside it survive.
// The question ends at the earliest separator that leaves a valid quoted
// response behind.
func splitQuoted(row string) (string, string, bool) {
	n := len(row)
	if n < 3 || row[n-1] != '"' {
		return "", "", false
	}
	starts := []int{0}
	if row[0] == '"' {
		starts = []int{1, 0}
	}
	for _, start := range starts {
		for j := start; j < n; j++ {
			// Prefer consuming a closing quote on the question.
			if row[j] == '"' && strings.HasPrefix(row[j+1:], `,"`) && j+3 <= n-1 {
				return row[start:j], row[j+3 : n-1], true
			}
			if strings.HasPrefix(row[j:], `,"`) && j+2 <= n-1 {
				return row[start:j], row[j+2 : n-1], true
			}
		}
	}
	return "", "", false
}

// splitUnquoted handles `question,response`: the question ends at the first
// comma (an optional quote pair around the question is stripped) and the
// response is everything after it, verbatim.
func splitUnquoted(row string) (string, string, bool) {
	start := 0
	if strings.HasPrefix(row, `"`) {
		start = 1
	}
	for j := start; j < len(row); j++ {
		if row[j] == '"' && j+1 < len(row) && row[j+1] == ',' {
			return row[start:j], row[j+2:], true
		}
		if row[j] == ',' {
			return row[start:j], row[j+1:], true
		}
	}
	return "", "", false
}

// splitFirstComma is the last resort: split on the first comma only. A row
// with no comma yields the whole row as the question and an empty response,
// which the normalizer then drops.
func splitFirstComma(row string) (string, string, bool) {
	q, r, _ := strings.Cut(row, ",")
	return q, r, true
}
