// Package alertlog extracts the non-Hold history of an annotated series.
package alertlog

import (
	"sort"
	"time"

	"CryptoPulse/internal/model"
)

// Build returns one entry per Buy or Sell row, in chronological order.
func Build(rows []model.SignalRow) []model.AlertEntry {
	var entries []model.AlertEntry
	for _, r := range rows {
		if r.Signal == model.SignalHold {
			continue
		}
		entries = append(entries, model.AlertEntry{Time: r.Time, Price: r.Close, Signal: r.Signal})
	}
	return entries
}

// Newest returns a copy sorted most recent first.
func Newest(entries []model.AlertEntry) []model.AlertEntry {
	out := append([]model.AlertEntry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.After(out[j].Time) })
	return out
}

// Since keeps the entries strictly after t.
func Since(entries []model.AlertEntry, t time.Time) []model.AlertEntry {
	var out []model.AlertEntry
	for _, e := range entries {
		if e.Time.After(t) {
			out = append(out, e)
		}
	}
	return out
}
