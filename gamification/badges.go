package gamification

import "math"

// counterFor returns the state value a badge of type t is measured against.
func counterFor(s State, t BadgeType) (int, bool) {
	switch t {
	case BadgeTypeCheckins:
		return s.TotalCheckins, true
	case BadgeTypeJournal:
		return s.TotalJournals, true
	case BadgeTypeStreak:
		return s.CurrentStreak, true
	case BadgeTypePoints:
		return s.Points, true
	}
	return 0, false
}

// EvaluateNewBadges returns, in catalog order, the ids of badges whose
// requirement s now meets and that are not yet unlocked. It never mutates s;
// a badge with an unknown type is never satisfied.
func EvaluateNewBadges(s State, catalog *Catalog) []string {
	unlocked := make(map[string]struct{}, len(s.UnlockedBadges))
	for _, id := range s.UnlockedBadges {
		unlocked[id] = struct{}{}
	}
	newly := []string{}
	for _, b := range catalog.badges {
		if _, ok := unlocked[b.ID]; ok {
			continue
		}
		v, known := counterFor(s, b.Type)
		if known && v >= b.Requirement {
			newly = append(newly, b.ID)
		}
	}
	return newly
}

// UnlockedBadges returns the catalog entries s has earned, in catalog order.
func UnlockedBadges(s State, catalog *Catalog) []Badge {
	out := []Badge{}
	for _, b := range catalog.badges {
		if s.HasBadge(b.ID) {
			out = append(out, b)
		}
	}
	return out
}

// LockedBadges returns the catalog entries s has not earned yet, with progress.
func LockedBadges(s State, catalog *Catalog) []LockedBadge {
	out := []LockedBadge{}
	for _, b := range catalog.badges {
		if s.HasBadge(b.ID) {
			continue
		}
		out = append(out, LockedBadge{Badge: b, Progress: badgeProgress(s, b)})
	}
	return out
}

func badgeProgress(s State, b Badge) float64 {
	v, known := counterFor(s, b.Type)
	if !known || b.Requirement <= 0 {
		return 0
	}
	return math.Min(float64(v)/float64(b.Requirement)*100, 100)
}
