package resolver

import "github.com/corey/chatmon/internal/ports"

// Tuning defaults. The threshold and token floor were tuned against the
// bundled dataset; swapping datasets usually means retuning both.
const (
	DefaultScoreThreshold  = 6
	DefaultMinTokenLength  = 3
	DefaultSuggestionLimit = 2
)

// Score weights for the keyword tier.
const (
	wholeTokenWeight      = 3 // query token equals a question token
	substringWeight       = 1 // query token occurs in the question or response
	containsQuestionBonus = 5 // normalized query contains the whole question
)

// Fixed replies.
const (
	DefaultGreetingReply = "Hey there! 👋 How can I help you with your Instanza clone app today?"
	DefaultFallbackReply = "I'm sorry, I couldn't find a direct answer to that specific query. " +
		"I can assist with **Home, Post Creation, Profile, Reels, Stories, and Messages**. " +
		"Could you rephrase your question about the app's features?"

	suggestionLead   = "Here are some tips based on your query:"
	suggestionBullet = "• "
	suggestionHint   = "If you need more details, try a more specific question about the app's features."
)

// DefaultGreetings are the prefixes that route a query to the greeting tier.
var DefaultGreetings = []string{
	"hi",
	"hello",
	"hey",
	"good morning",
	"good afternoon",
	"good evening",
}

// Options tunes a Resolver. Zero values select the defaults.
type Options struct {
	// ScoreThreshold is the minimum keyword score that wins outright.
	ScoreThreshold int

	// MinTokenLength drops shorter query tokens before scoring; the default
	// of 3 keeps tokens longer than two characters.
	MinTokenLength int

	// SuggestionLimit caps the responses listed by the contextual tier.
	SuggestionLimit int

	// Greetings are lower-case prefixes that trigger the greeting tier.
	Greetings []string

	GreetingReply string
	FallbackReply string

	// Matcher compiles the per-query substring matcher. Nil uses a plain
	// substring scan.
	Matcher ports.MatcherFactory
}

// withDefaults returns a copy of o with zero values filled in.
func (o Options) withDefaults() Options {
	if o.ScoreThreshold <= 0 {
		o.ScoreThreshold = DefaultScoreThreshold
	}
	if o.MinTokenLength <= 0 {
		o.MinTokenLength = DefaultMinTokenLength
	}
	if o.SuggestionLimit <= 0 {
		o.SuggestionLimit = DefaultSuggestionLimit
	}
	if len(o.Greetings) == 0 {
		o.Greetings = DefaultGreetings
	}
	if o.GreetingReply == "" {
		o.GreetingReply = DefaultGreetingReply
	}
	if o.FallbackReply == "" {
		o.FallbackReply = DefaultFallbackReply
	}
	if o.Matcher == nil {
		o.Matcher = newSubstringMatcher
	}
	return o
}
