// Package dataset turns raw question/response text into an ordered table of
// normalized pairs.
//
// Format: newline-delimited rows of `question,response`. The first line is a
// header when it contains "question" (any case). The response may be wrapped
// in double quotes to carry literal commas. Rows that normalize to an empty
// question or response are dropped.
package dataset

import (
	"strings"

	"github.com/corey/chatmon/internal/ports"
)

// headerMarker marks the first line as a header when present (case-insensitive).
const headerMarker = "question"

// RowResult describes what happened to one input row.
type RowResult struct {
	Line     int      // 1-based line number in the input
	Raw      string   // row text after line-ending cleanup
	Strategy Strategy // splitter that produced the pair
	Pair     ports.QAPair
	Dropped  bool
	Reason   string // why the row was dropped; empty when kept
}

// ParseResult is the detailed outcome of parsing one blob.
type ParseResult struct {
	Table     ports.Table
	Rows      []RowResult
	HasHeader bool
}

// Kept returns the number of rows that produced a pair.
func (r *ParseResult) Kept() int {
	return len(r.Table)
}

// Dropped returns the number of rows that were discarded.
func (r *ParseResult) Dropped() int {
	return len(r.Rows) - len(r.Table)
}

// Parse returns the normalized table for text, in input order.
func Parse(text string) ports.Table {
	return ParseDetailed(text).Table
}

// ParseDetailed parses text and keeps a per-row record of the strategy used
// and of every drop. The table is identical to Parse's.
func ParseDetailed(text string) *ParseResult {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.TrimSpace(text)

	lines := strings.Split(text, "\n")
	res := &ParseResult{Table: ports.Table{}}

	first := 0
	if strings.Contains(strings.ToLower(lines[0]), headerMarker) {
		res.HasHeader = true
		first = 1
	}

	for i := first; i < len(lines); i++ {
		row := strings.TrimRight(lines[i], "\r")
		rr := parseRow(row)
		rr.Line = i + 1
		res.Rows = append(res.Rows, rr)
		if !rr.Dropped {
			res.Table = append(res.Table, rr.Pair)
		}
	}
	return res
}

// parseRow splits and normalizes a single row.
func parseRow(row string) RowResult {
	q, r, tag := splitRow(row)
	rr := RowResult{
		Raw:      row,
		Strategy: tag,
		Pair: ports.QAPair{
			Question: normalizeQuestion(q),
			Response: strings.TrimSpace(r),
		},
	}
	switch {
	case strings.TrimSpace(row) == "":
		rr.Dropped, rr.Reason = true, "blank row"
	case rr.Pair.Question == "":
		rr.Dropped, rr.Reason = true, "empty question"
	case rr.Pair.Response == "":
		rr.Dropped, rr.Reason = true, "empty response"
	}
	return rr
}

// normalizeQuestion trims and lower-cases a question.
func normalizeQuestion(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}
