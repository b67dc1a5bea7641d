package dataset

import (
	"strings"
	"testing"

	"github.com/corey/chatmon/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Dataset parsing: header detection, ordered split strategies, normalization
// =============================================================================

func TestParse_SimpleRowRoundtrip(t *testing.T) {
	cases := []struct{ q, r string }{
		{"How do I post?", "Tap the plus icon."},
		{"  Where are my Reels  ", "  Open the Reels tab  "},
		{"DELETE ACCOUNT", "Go to Settings and choose Delete Account"},
		{"stories", "Swipe right from Home"},
	}
	for _, c := range cases {
		text := "question,response\n" + c.q + "," + c.r
		table := Parse(text)
		require.Len(t, table, 1, "row %q", c.q)
		assert.Equal(t, ports.QAPair{
			Question: normalizeQuestion(c.q),
			Response: strings.TrimSpace(c.r),
		}, table[0])
	}
}

func TestParse_QuotedResponseKeepsCommas(t *testing.T) {
	res := ParseDetailed(`how are you,"I'm good, thanks!"`)
	require.Len(t, res.Table, 1)
	assert.Equal(t, "how are you", res.Table[0].Question)
	assert.Equal(t, "I'm good, thanks!", res.Table[0].Response)
	assert.Equal(t, QuotedResponse, res.Rows[0].Strategy)
}

func TestParse_QuotedQuestionWithCommas(t *testing.T) {
	table := Parse(`"Where, exactly, are Reels?","In the Reels tab, bottom bar."`)
	require.Len(t, table, 1)
	assert.Equal(t, "where, exactly, are reels?", table[0].Question)
	assert.Equal(t, "In the Reels tab, bottom bar.", table[0].Response)
}

func TestParse_QuotedQuestionUnquotedResponse(t *testing.T) {
	res := ParseDetailed(`"Hi",Hello there`)
	require.Len(t, res.Table, 1)
	assert.Equal(t, "hi", res.Table[0].Question)
	assert.Equal(t, "Hello there", res.Table[0].Response)
	assert.Equal(t, UnquotedResponse, res.Rows[0].Strategy)
}

func TestParse_UnquotedResponseKeepsLaterCommas(t *testing.T) {
	table := Parse("how do i share,Tap share, then pick a friend")
	require.Len(t, table, 1)
	assert.Equal(t, "how do i share", table[0].Question)
	assert.Equal(t, "Tap share, then pick a friend", table[0].Response)
}

func TestParse_HeaderDetection(t *testing.T) {
	res := ParseDetailed("Question,Response\nHi,Hello!")
	assert.True(t, res.HasHeader)
	require.Len(t, res.Table, 1)
	assert.Equal(t, "hi", res.Table[0].Question)
	assert.Equal(t, 2, res.Rows[0].Line)

	res = ParseDetailed("QUESTION,ANSWER\nHi,Hello!")
	assert.True(t, res.HasHeader, "header match is case-insensitive")

	res = ParseDetailed("hi,Hello!\nhey,Hey you!")
	assert.False(t, res.HasHeader)
	assert.Len(t, res.Table, 2)
}

func TestParse_DropsEmptyRowsSilently(t *testing.T) {
	text := "question,response\n" +
		"no comma here\n" +
		",response without question\n" +
		"   \n" +
		"question without response,   \n" +
		"hi,Hello!"
	res := ParseDetailed(text)

	require.Len(t, res.Table, 1)
	assert.Equal(t, "hi", res.Table[0].Question)
	assert.Equal(t, 5, len(res.Rows))
	assert.Equal(t, 4, res.Dropped())
	assert.Equal(t, 1, res.Kept())

	reasons := make([]string, 0, 4)
	for _, r := range res.Rows {
		if r.Dropped {
			reasons = append(reasons, r.Reason)
		}
	}
	assert.Equal(t, []string{"empty response", "empty question", "blank row", "empty response"}, reasons)
}

func TestParse_NoCommaFallsToFirstCommaSplit(t *testing.T) {
	res := ParseDetailed("just words")
	require.Len(t, res.Rows, 1)
	assert.Equal(t, FirstCommaSplit, res.Rows[0].Strategy)
	assert.True(t, res.Rows[0].Dropped)
}

func TestParse_CRLFLineEndings(t *testing.T) {
	text := "Question,Response\r\nhow are you,\"I'm good, thanks!\"\r\nhi,Hello!\r\n"
	table := Parse(text)
	require.Len(t, table, 2)
	assert.Equal(t, "I'm good, thanks!", table[0].Response)
	assert.Equal(t, "Hello!", table[1].Response)
}

func TestParse_ByteOrderMark(t *testing.T) {
	res := ParseDetailed("\ufeffQuestion,Response\nhi,Hello!")
	assert.True(t, res.HasHeader)
	require.Len(t, res.Table, 1)
}

func TestParse_PreservesOrderAndDuplicates(t *testing.T) {
	table := Parse("hi,First\nhello,Second\nhi,Third")
	require.Len(t, table, 3)
	assert.Equal(t, []string{"First", "Second", "Third"},
		[]string{table[0].Response, table[1].Response, table[2].Response})
}

func TestParse_ResponseCasePreserved(t *testing.T) {
	table := Parse("HOW DO I POST,Tap the + ICON")
	require.Len(t, table, 1)
	assert.Equal(t, "how do i post", table[0].Question)
	assert.Equal(t, "Tap the + ICON", table[0].Response)
}

func TestParse_Empty(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse("Question,Response"))
	assert.NotNil(t, Parse(""))
}

func TestStrategy_String(t *testing.T) {
	assert.Equal(t, "quoted", QuotedResponse.String())
	assert.Equal(t, "unquoted", UnquotedResponse.String())
	assert.Equal(t, "first-comma", FirstCommaSplit.String())
	assert.Equal(t, "none", StrategyNone.String())
}

func TestFallback_SingleGreeting(t *testing.T) {
	assert.Equal(t, ports.Table{{Question: "hi", Response: "Welcome back!"}}, Fallback())
}
