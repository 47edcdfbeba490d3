package agenda

import (
	"sort"
	"strings"
	"time"
)

// duplicateWindow is how close two timestamps must be for the fuzzy client
// name match to treat events as the same appointment.
const duplicateWindow = 60 * time.Second

// Merge combines events from all sources into one list without duplicates.
// Provider events win over local ones, which win over mined notes; surviving
// local and notes events receive a provenance suffix on their titles. The
// result is ordered by start time, then id, for stable rendering.
func Merge(provider, local, notes []Event) []Event {
	merged := make([]Event, 0, len(provider)+len(local)+len(notes))
	merged = append(merged, provider...)

	for _, candidate := range append(append([]Event(nil), local...), notes...) {
		if containsDuplicate(merged, candidate) {
			continue
		}
		candidate.Title += provenanceSuffix(candidate.Source)
		merged = append(merged, candidate)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Start.Equal(merged[j].Start) {
			return merged[i].ID < merged[j].ID
		}
		return merged[i].Start.Before(merged[j].Start)
	})

	return merged
}

func containsDuplicate(events []Event, candidate Event) bool {
	for _, existing := range events {
		if sameEvent(existing, candidate) {
			return true
		}
	}
	return false
}

// sameEvent applies the duplicate heuristic: identical ids, a stored external
// id matching the other side's id, or mutually substring-matching client
// names with starts under a minute apart.
func sameEvent(a, b Event) bool {
	if a.ID != "" && a.ID == b.ID {
		return true
	}
	if a.ExternalID != "" && a.ExternalID == b.ID {
		return true
	}
	if b.ExternalID != "" && b.ExternalID == a.ID {
		return true
	}
	if namesMatch(a.ClientName, b.ClientName) {
		delta := a.Start.Sub(b.Start)
		if delta < 0 {
			delta = -delta
		}
		if delta < duplicateWindow {
			return true
		}
	}
	return false
}

// namesMatch reports whether either client name contains the other,
// case-insensitively. "João" matches "João Silva" in both directions.
func namesMatch(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
