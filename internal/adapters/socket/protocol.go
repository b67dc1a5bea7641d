// Package socket implements a JSON-over-Unix-socket protocol for the chatmon daemon.
// The protocol uses newline-delimited JSON: each message is one JSON object + \n.
package socket

import (
	"crypto/sha256"
	"fmt"
	"path/filepath"
)

// SocketPath returns the Unix socket path for a given project root.
// Format: /tmp/chatmon-{first12hex}.sock
func SocketPath(projectRoot string) string {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		abs = projectRoot
	}
	h := sha256.Sum256([]byte(abs))
	return fmt.Sprintf("/tmp/chatmon-%x.sock", h[:6])
}

// Method names for the protocol.
const (
	MethodAsk        = "ask"
	MethodHealth     = "health"
	MethodStats      = "stats"
	MethodUnanswered = "unanswered"
	MethodReload     = "reload"
	MethodShutdown   = "shutdown"
)

// Request is the wire format for client-to-server messages.
type Request struct {
	ID     string      `json:"id"`
	Method string      `json:"method"`
	Params interface{} `json:"params,omitempty"`
}

// Response is the wire format for server-to-client messages.
type Response struct {
	ID     string      `json:"id"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// AskParams is the params for an ask request.
type AskParams struct {
	Query string `json:"query"`
}

// AskResult is the result of an ask request.
type AskResult struct {
	Response  string `json:"response"`
	Tier      string `json:"tier"`
	Question  string `json:"question,omitempty"` // matched question, when one pair answered
	Score     int    `json:"score"`
	ElapsedUs int64  `json:"elapsed_us"`
}

// HealthResult is the result of a health request.
type HealthResult struct {
	Status   string `json:"status"`
	Dataset  string `json:"dataset"`
	Entries  int    `json:"entries"`
	Fallback bool   `json:"fallback"` // built-in table in use
	LoadedAt int64  `json:"loaded_at,omitempty"`
	Reloads  int    `json:"reloads"`
	Uptime   string `json:"uptime"`

	Asked         uint64  `json:"asked"`           // queries answered since start
	QueriesPerMin float64 `json:"queries_per_min"` // rolling 5-minute rate
}

// StatsParams is the params for a stats request.
type StatsParams struct {
	Top int `json:"top,omitempty"` // number of top questions; 0 means DefaultStatsTop
}

// DefaultStatsTop is the number of top questions returned when none is requested.
const DefaultStatsTop = 10

// StatsResult is the result of a stats request.
type StatsResult struct {
	Enabled      bool              `json:"enabled"`
	Total        uint64            `json:"total"`
	TierCounts   map[string]uint64 `json:"tier_counts"`
	TopQuestions []RankedItem      `json:"top_questions"`
	LastQueryAt  int64             `json:"last_query_at,omitempty"` // Unix seconds
}

// RankedItem is a question with its hit count.
type RankedItem struct {
	Name  string `json:"name"`
	Count uint64 `json:"count"`
}

// UnansweredParams is the params for an unanswered request.
type UnansweredParams struct {
	Limit int `json:"limit,omitempty"`
}

// UnansweredResult is the result of an unanswered request.
type UnansweredResult struct {
	Queries []UnansweredItem `json:"queries"`
	Count   int              `json:"count"`
}

// UnansweredItem is one query that reached the default reply.
type UnansweredItem struct {
	Query     string `json:"query"`
	Count     uint64 `json:"count"`
	FirstSeen int64  `json:"first_seen"` // Unix seconds
	LastSeen  int64  `json:"last_seen"`  // Unix seconds
}

// ReloadResult is the result of a reload request.
type ReloadResult struct {
	Dataset   string `json:"dataset"`
	Entries   int    `json:"entries"`
	Rows      int    `json:"rows"`
	Dropped   int    `json:"dropped"`
	Fallback  bool   `json:"fallback"`
	Reason    string `json:"reason,omitempty"` // why the fallback table was used
	ElapsedMs int64  `json:"elapsed_ms"`
}
