package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"conveyor/internal/api"
)

func buildStatsRows(stats map[string]int) [][]string {
	if len(stats) == 0 {
		return nil
	}
	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{formatStatusLabel(key), fmt.Sprintf("%d", stats[key])})
	}
	return rows
}

func formatStatsSummary(stats map[string]int) string {
	if len(stats) == 0 {
		return ""
	}
	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s %d", key, stats[key]))
	}
	return strings.Join(parts, ", ")
}

func buildOutcomeRows(outcomes []api.OutcomeView) [][]string {
	if len(outcomes) == 0 {
		return nil
	}
	sorted := make([]api.OutcomeView, len(outcomes))
	copy(sorted, outcomes)

	sort.Slice(sorted, func(i, j int) bool {
		ti := parseDisplayTime(sorted[i].FinishedAt)
		tj := parseDisplayTime(sorted[j].FinishedAt)
		if ti.Equal(tj) {
			return sorted[i].ID > sorted[j].ID
		}
		return ti.After(tj)
	})

	rows := make([][]string, 0, len(sorted))
	for _, outcome := range sorted {
		rows = append(rows, []string{
			shortItemID(outcome.ItemID),
			outcome.Kind,
			outcome.Worker,
			formatStatusLabel(outcome.Status),
			formatDuration(outcome.DurationMS),
			formatDisplayTime(outcome.FinishedAt),
			truncateDetail(outcome.ErrorMessage),
		})
	}
	return rows
}

func buildProbeRows(probes []api.ProbeView) [][]string {
	if len(probes) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(probes))
	for _, probe := range probes {
		code := "-"
		if probe.StatusCode > 0 {
			code = fmt.Sprintf("%d", probe.StatusCode)
		}
		rows = append(rows, []string{
			probe.Name,
			formatStatusLabel(probe.Status),
			code,
			formatDuration(probe.LatencyMS),
			formatDisplayTime(probe.LastChecked),
			truncateDetail(probe.Error),
		})
	}
	return rows
}

func probeDetail(probe api.ProbeView) string {
	if probe.Error != "" {
		return probe.Error
	}
	if probe.StatusCode > 0 {
		return fmt.Sprintf("%s in %s (HTTP %d)", formatStatusLabel(probe.Status), formatDuration(probe.LatencyMS), probe.StatusCode)
	}
	return formatStatusLabel(probe.Status)
}

func formatStatusLabel(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return ""
	}
	parts := strings.Split(status, "_")
	for i, part := range parts {
		lower := strings.ToLower(part)
		if lower == "" {
			continue
		}
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}

func formatDisplayTime(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC().Format("2006-01-02 15:04:05")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC().Format("2006-01-02 15:04:05")
	}
	return value
}

func parseDisplayTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	return time.Time{}
}

func formatDuration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	d := time.Duration(ms) * time.Millisecond
	if d < time.Second {
		return fmt.Sprintf("%dms", ms)
	}
	return d.Round(time.Second / 10).String()
}

func shortItemID(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "-"
	}
	if len(value) > 8 {
		return value[:8]
	}
	return value
}

func truncateDetail(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "-"
	}
	if len(value) > 48 {
		return value[:45] + "..."
	}
	return value
}
