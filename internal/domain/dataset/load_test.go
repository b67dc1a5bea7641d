package dataset

import (
	"context"
	"errors"
	"testing"

	"github.com/corey/chatmon/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Dataset loading: fetch, parse, substitute the built-in table on failure
// =============================================================================

type stubSource struct {
	text string
	err  error
}

func (s stubSource) Fetch(ctx context.Context) (string, error) { return s.text, s.err }
func (s stubSource) Name() string                              { return "stub" }

func TestLoad_ParsesSource(t *testing.T) {
	src := stubSource{text: "Question,Response\nhi,Hello!\nbad row\nhow are you,\"Good, thanks\""}
	table, report := Load(context.Background(), src)

	require.Len(t, table, 2)
	assert.Equal(t, "how are you", table[1].Question)
	assert.False(t, report.Fallback)
	assert.NoError(t, report.Err)
	assert.Equal(t, "stub", report.Source)
	assert.Equal(t, 3, report.Rows)
	assert.Equal(t, 2, report.Kept)
	assert.Equal(t, 1, report.Dropped)
	assert.True(t, report.HasHeader)
}

func TestLoad_FetchErrorUsesFallback(t *testing.T) {
	cause := errors.New("connection refused")
	table, report := Load(context.Background(), stubSource{err: cause})

	assert.Equal(t, ports.Table{{Question: "hi", Response: "Welcome back!"}}, table)
	assert.True(t, report.Fallback)
	assert.ErrorIs(t, report.Err, cause)
}

func TestLoad_EmptyDatasetUsesFallback(t *testing.T) {
	for _, text := range []string{"", "Question,Response", "no comma\n,missing question"} {
		table, report := Load(context.Background(), stubSource{text: text})
		assert.Len(t, table, 1, "text %q", text)
		assert.True(t, report.Fallback)
		assert.ErrorIs(t, report.Err, ErrEmptyDataset)
	}
}

func TestLoad_NeverEmpty(t *testing.T) {
	table, _ := Load(context.Background(), stubSource{err: context.Canceled})
	assert.NotZero(t, table.Len())
}
