package gamification

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// State is the persisted per-user progress record.
type State struct {
	Points          int      `json:"points"`
	TotalCheckins   int      `json:"totalCheckins"`
	TotalJournals   int      `json:"totalJournals"`
	CurrentStreak   int      `json:"currentStreak"`
	LongestStreak   int      `json:"longestStreak"`
	LastCheckinDate *Date    `json:"lastCheckinDate"`
	UnlockedBadges  []string `json:"unlockedBadges"`
}

// DefaultState is the state of a user seen for the first time.
func DefaultState() State {
	return State{UnlockedBadges: []string{}}
}

// Clone returns a deep copy.
func (s State) Clone() State {
	cp := s
	if s.LastCheckinDate != nil {
		d := *s.LastCheckinDate
		cp.LastCheckinDate = &d
	}
	cp.UnlockedBadges = make([]string, len(s.UnlockedBadges))
	copy(cp.UnlockedBadges, s.UnlockedBadges)
	return cp
}

// HasBadge reports whether id is already unlocked.
func (s State) HasBadge(id string) bool {
	for _, b := range s.UnlockedBadges {
		if b == id {
			return true
		}
	}
	return false
}

// Normalize repairs a decoded record so it satisfies the state invariants
// against catalog: counters are non-negative, longest >= current, and
// unlocked badges are unique catalog ids.
func (s *State) Normalize(catalog *Catalog) {
	s.Points = max(s.Points, 0)
	s.TotalCheckins = max(s.TotalCheckins, 0)
	s.TotalJournals = max(s.TotalJournals, 0)
	s.CurrentStreak = max(s.CurrentStreak, 0)
	s.LongestStreak = max(s.LongestStreak, s.CurrentStreak)

	seen := make(map[string]struct{}, len(s.UnlockedBadges))
	badges := make([]string, 0, len(s.UnlockedBadges))
	for _, id := range s.UnlockedBadges {
		if _, dup := seen[id]; dup {
			continue
		}
		if catalog != nil && !catalog.Contains(id) {
			continue
		}
		seen[id] = struct{}{}
		badges = append(badges, id)
	}
	s.UnlockedBadges = badges
}

func (s State) MarshalJSON() ([]byte, error) {
	type plain State
	p := plain(s)
	if p.UnlockedBadges == nil {
		p.UnlockedBadges = []string{}
	}
	return json.Marshal(p)
}

// UnmarshalJSON decodes field by field. A missing or wrong-typed field keeps
// its default instead of rejecting the whole record. Only a payload that is
// not a JSON object at all is an error.
func (s *State) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := DefaultState()
	out.Points = decodeInt(raw["points"])
	out.TotalCheckins = decodeInt(raw["totalCheckins"])
	out.TotalJournals = decodeInt(raw["totalJournals"])
	out.CurrentStreak = decodeInt(raw["currentStreak"])
	out.LongestStreak = decodeInt(raw["longestStreak"])

	if v, ok := raw["lastCheckinDate"]; ok {
		var str string
		if json.Unmarshal(v, &str) == nil && str != "" {
			if d, err := ParseDate(str); err == nil {
				out.LastCheckinDate = &d
			}
		}
	}

	if v, ok := raw["unlockedBadges"]; ok {
		var items []json.RawMessage
		if json.Unmarshal(v, &items) == nil {
			for _, it := range items {
				var id string
				if json.Unmarshal(it, &id) == nil && strings.TrimSpace(id) != "" {
					out.UnlockedBadges = append(out.UnlockedBadges, id)
				}
			}
		}
	}

	*s = out
	return nil
}

// decodeInt accepts JSON numbers (floats are truncated) and numeric strings.
// Integer literals are decoded exactly so that large totals survive a round trip.
func decodeInt(v json.RawMessage) int {
	if len(v) == 0 {
		return 0
	}
	var n int64
	if err := json.Unmarshal(v, &n); err == nil {
		return clampInt64(n)
	}
	var f float64
	if err := json.Unmarshal(v, &f); err == nil {
		return clampInt(f)
	}
	var str string
	if err := json.Unmarshal(v, &str); err == nil {
		str = strings.TrimSpace(str)
		if n, err := strconv.ParseInt(str, 10, 64); err == nil {
			return clampInt64(n)
		}
		if f, err := strconv.ParseFloat(str, 64); err == nil {
			return clampInt(f)
		}
	}
	return 0
}

func clampInt64(n int64) int {
	switch {
	case n > math.MaxInt:
		return math.MaxInt
	case n < math.MinInt:
		return math.MinInt
	}
	return int(n)
}

func clampInt(f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	}
	return int(f)
}
