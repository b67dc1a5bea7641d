package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/corey/chatmon/internal/adapters/socket"
	"github.com/corey/chatmon/internal/domain/dataset"
	"github.com/corey/chatmon/internal/ports"
)

// ANSI color codes for terminal output.
const (
	colorReset   = "\033[0m"
	colorBold    = "\033[1m"
	colorCyan    = "\033[36m"
	colorMagenta = "\033[35m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorRed     = "\033[31m"
	colorGray    = "\033[90m"
)

// formatExplain renders how an answer was chosen.
//
//	⚡ scored │ score 17 │ 42µs
//	  matched: how do i create a post
func formatExplain(r socket.AskResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ %s%s", colorBold, r.Tier, colorReset))
	if r.Score > 0 {
		sb.WriteString(fmt.Sprintf(" │ score %d", r.Score))
	}
	sb.WriteString(fmt.Sprintf(" │ %s\n", time.Duration(r.ElapsedUs)*time.Microsecond))
	if r.Question != "" {
		sb.WriteString(fmt.Sprintf("  matched: %s%s%s\n", colorCyan, r.Question, colorReset))
	}
	return sb.String()
}

// formatHealth formats a HealthResult for terminal display.
func formatHealth(h socket.HealthResult) string {
	status := colorGreen
	if h.Status != "ok" {
		status = colorYellow
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ chatmon daemon%s\n", colorBold, colorReset))
	sb.WriteString(fmt.Sprintf("  Status:   %s%s%s\n", status, h.Status, colorReset))
	sb.WriteString(fmt.Sprintf("  Dataset:  %s\n", h.Dataset))
	sb.WriteString(fmt.Sprintf("  Entries:  %d\n", h.Entries))
	if h.Fallback {
		sb.WriteString(fmt.Sprintf("  %sserving the built-in table%s\n", colorYellow, colorReset))
	}
	if h.LoadedAt > 0 {
		sb.WriteString(fmt.Sprintf("  Loaded:   %s\n", time.Unix(h.LoadedAt, 0).Format(time.DateTime)))
	}
	sb.WriteString(fmt.Sprintf("  Reloads:  %d\n", h.Reloads))
	sb.WriteString(fmt.Sprintf("  Asked:    %d (%.1f/min)\n", h.Asked, h.QueriesPerMin))
	if h.Uptime != "" {
		sb.WriteString(fmt.Sprintf("  Uptime:   %s\n", h.Uptime))
	}
	return sb.String()
}

// formatDatasetSummary describes the dataset a daemon came up with.
func formatDatasetSummary(h socket.HealthResult, rep dataset.LoadReport, loaded bool) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("  dataset: %s (%d entries", h.Dataset, h.Entries))
	if loaded && rep.Dropped > 0 {
		sb.WriteString(fmt.Sprintf(", %d dropped", rep.Dropped))
	}
	sb.WriteString(")\n")
	if loaded && rep.Fallback && rep.Err != nil {
		sb.WriteString(fmt.Sprintf("  %sserving the built-in table: %v%s\n", colorYellow, rep.Err, colorReset))
	}
	return sb.String()
}

// formatStats formats lookup statistics, tiers in evaluation order.
func formatStats(s socket.StatsResult) string {
	if !s.Enabled {
		return fmt.Sprintf("%s⚡ stats are disabled%s (set stats: true in .chatmon/config.yaml)\n", colorYellow, colorReset)
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ %d lookups%s", colorBold, s.Total, colorReset))
	if s.LastQueryAt > 0 {
		sb.WriteString(fmt.Sprintf(" │ last %s", time.Unix(s.LastQueryAt, 0).Format(time.DateTime)))
	}
	sb.WriteString("\n")

	for _, tier := range ports.Tiers {
		n := s.TierCounts[string(tier)]
		pct := 0.0
		if s.Total > 0 {
			pct = float64(n) * 100 / float64(s.Total)
		}
		sb.WriteString(fmt.Sprintf("  %-11s %6d  %s%5.1f%%%s\n", tier, n, colorGray, pct, colorReset))
	}

	if len(s.TopQuestions) > 0 {
		sb.WriteString(fmt.Sprintf("%sTop questions%s\n", colorBold, colorReset))
		for _, q := range s.TopQuestions {
			sb.WriteString(fmt.Sprintf("  %6d  %s%s%s\n", q.Count, colorCyan, q.Name, colorReset))
		}
	}
	return sb.String()
}

// formatUnanswered lists queries that fell through to the default reply.
func formatUnanswered(r socket.UnansweredResult) string {
	if r.Count == 0 {
		return fmt.Sprintf("%s⚡ no unanswered queries%s\n", colorBold, colorReset)
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ %d unanswered queries%s\n", colorBold, r.Count, colorReset))
	for _, q := range r.Queries {
		sb.WriteString(fmt.Sprintf("  %6d  %s%s%s  %slast %s%s\n",
			q.Count, colorMagenta, q.Query, colorReset,
			colorGray, time.Unix(q.LastSeen, 0).Format(time.DateTime), colorReset))
	}
	return sb.String()
}

// formatReload summarizes a reload.
func formatReload(r socket.ReloadResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ reloaded %s%s │ %d entries │ %d dropped │ %dms\n",
		colorBold, r.Dataset, colorReset, r.Entries, r.Dropped, r.ElapsedMs))
	if r.Fallback {
		sb.WriteString(fmt.Sprintf("  %susing the built-in table: %s%s\n", colorYellow, r.Reason, colorReset))
	}
	return sb.String()
}

// formatCheck reports every row of a parsed dataset. With droppedOnly, kept
// rows are omitted from the listing but still counted.
//
//	  12  quoted     how do i create a post
//	  13  dropped    empty response  "bad row"
func formatCheck(name string, res *dataset.ParseResult, droppedOnly bool) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ %s%s │ %d rows │ %d kept │ %d dropped",
		colorBold, name, colorReset, len(res.Rows), res.Kept(), res.Dropped()))
	if res.HasHeader {
		sb.WriteString(" │ header")
	}
	sb.WriteString("\n")

	for _, row := range res.Rows {
		if row.Dropped {
			sb.WriteString(fmt.Sprintf("  %4d  %s%-9s%s  %s  %s%q%s\n",
				row.Line, colorRed, "dropped", colorReset, row.Reason, colorGray, row.Raw, colorReset))
			continue
		}
		if droppedOnly {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %4d  %s%-9s%s  %s\n",
			row.Line, colorGreen, row.Strategy, colorReset, row.Pair.Question))
	}

	if dups := duplicateQuestions(res.Table); len(dups) > 0 {
		sb.WriteString(fmt.Sprintf("%sShadowed duplicates%s (only the first answers)\n", colorYellow, colorReset))
		for _, q := range dups {
			sb.WriteString(fmt.Sprintf("  %s\n", q))
		}
	}
	return sb.String()
}

// duplicateQuestions returns questions that occur more than once, sorted.
func duplicateQuestions(t ports.Table) []string {
	seen := make(map[string]int, len(t))
	for _, p := range t {
		seen[p.Question]++
	}
	var dups []string
	for q, n := range seen {
		if n > 1 {
			dups = append(dups, q)
		}
	}
	sort.Strings(dups)
	return dups
}
