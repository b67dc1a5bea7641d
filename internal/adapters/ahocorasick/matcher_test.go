package ahocorasick

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corey/chatmon/internal/domain/resolver"
	"github.com/corey/chatmon/internal/ports"
)

// =============================================================================
// Aho-Corasick Pattern Matcher: all query tokens located in one pass
// =============================================================================

func TestMatcher_SingleKeyword(t *testing.T) {
	m := NewMatcher([]string{"reels"})
	assert.Equal(t, []string{"reels"}, m.Match("open the reels tab"))
}

func TestMatcher_MultipleKeywords(t *testing.T) {
	m := NewMatcher([]string{"post", "story", "profile"})
	got := m.Match("share a story from your profile")
	assert.Equal(t, []string{"story", "profile"}, got, "pattern order, not text order")
}

func TestMatcher_OverlappingKeywords(t *testing.T) {
	m := NewMatcher([]string{"post", "posts", "osts"})
	assert.Equal(t, []string{"post", "posts", "osts"}, m.Match("my posts"))
}

func TestMatcher_Deduplicates(t *testing.T) {
	m := NewMatcher([]string{"tap"})
	assert.Equal(t, []string{"tap"}, m.Match("tap, tap, tap"))
}

func TestMatcher_NoMatch(t *testing.T) {
	m := NewMatcher([]string{"inbox"})
	assert.Empty(t, m.Match("hello world"))
	assert.Empty(t, m.Match(""))
}

func TestMatcher_EmptyPatterns(t *testing.T) {
	m := NewMatcher([]string{"", ""})
	assert.Empty(t, m.Match("anything"))
	assert.Empty(t, m.(*Matcher).patterns, "empty patterns are skipped")

	var zero Matcher
	assert.Nil(t, zero.Match("not built"))
}

func TestMatcher_Rebuild(t *testing.T) {
	m := &Matcher{}
	m.Build([]string{"story"})
	assert.NotEmpty(t, m.Match("story"))

	m.Build([]string{"reel"})
	assert.Empty(t, m.Match("story"))
	assert.Equal(t, []string{"reel"}, m.Match("reels"))
}

// =============================================================================
// Parity with the resolver's built-in substring scan
// =============================================================================

func TestMatcher_ResolverParity(t *testing.T) {
	table := ports.Table{
		{Question: "how do i create a post", Response: "Tap the + icon to create a post."},
		{Question: "story highlights", Response: "Pin stories to your profile."},
		{Question: "story privacy", Response: "Hide your story from people."},
		{Question: "reels", Response: "Open the Reels tab."},
	}
	plain := resolver.New(table, resolver.Options{})
	fast := resolver.New(table, resolver.Options{Matcher: NewMatcher})

	for _, q := range []string{
		"how do I create a post on this app",
		"stor",
		"reels reels",
		"posting stories",
		"xyzxyz unrelated gibberish",
		"hello there",
	} {
		assert.Equal(t, plain.Resolve(q), fast.Resolve(q), q)
	}
}
