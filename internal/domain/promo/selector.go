package promo

import "time"

// Select returns the single winning event for the given instant: the
// eligible event with the highest priority. Ties go to the smallest ID,
// so repeated calls over the same event set always pick the same winner.
// Returns nil when nothing is eligible.
func Select(events []*PromoEvent, now time.Time) *PromoEvent {
	var best *PromoEvent
	for _, e := range events {
		if e == nil || !e.EligibleAt(now) {
			continue
		}
		if best == nil || beats(e, best) {
			best = e
		}
	}
	return best
}

// beats reports whether a wins over b under the selection ordering
func beats(a, b *PromoEvent) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	return a.ID < b.ID
}
