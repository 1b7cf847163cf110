package gamification

import (
	"math"
	"strings"
)

// Action identifies a user action that earns points.
type Action string

const (
	ActionMoodCheckin       Action = "MOOD_CHECKIN"
	ActionJournalEntry      Action = "JOURNAL_ENTRY"
	ActionBreathingExercise Action = "BREATHING_EXERCISE"
	ActionActivityComplete  Action = "ACTIVITY_COMPLETE"
	ActionTriviaCorrect     Action = "TRIVIA_CORRECT"
)

const (
	DailyStreakBonus  = 50
	WeeklyStreakBonus = 100
	PointsPerLevel    = 100
	// MaxMultiplier bounds the scaling accepted by AwardWithMultiplier.
	MaxMultiplier = 100
)

var pointTable = map[Action]int{
	ActionMoodCheckin:       10,
	ActionJournalEntry:      25,
	ActionBreathingExercise: 15,
	ActionActivityComplete:  20,
	ActionTriviaCorrect:     5,
}

// Actions lists the accepted actions in a stable order.
var Actions = []Action{
	ActionMoodCheckin,
	ActionJournalEntry,
	ActionBreathingExercise,
	ActionActivityComplete,
	ActionTriviaCorrect,
}

var actionAliases = map[string]Action{
	"MOOD_CHECKIN":       ActionMoodCheckin,
	"MOOD_CHECK_IN":      ActionMoodCheckin,
	"CHECKIN":            ActionMoodCheckin,
	"JOURNAL_ENTRY":      ActionJournalEntry,
	"JOURNAL":            ActionJournalEntry,
	"BREATHING_EXERCISE": ActionBreathingExercise,
	"ACTIVITY_COMPLETE":  ActionActivityComplete,
	"PLANNER_ACTIVITY":   ActionActivityComplete,
	"TRIVIA_CORRECT":     ActionTriviaCorrect,
}

// ParseAction normalises an externally supplied action identifier.
// Matching is case-insensitive and treats '-' and ' ' like '_'.
func ParseAction(s string) (Action, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	if a, ok := actionAliases[key]; ok {
		return a, nil
	}
	return "", &InvalidActionError{Action: s}
}

// BasePoints returns the table value for a, or false for an unknown action.
func BasePoints(a Action) (int, bool) {
	p, ok := pointTable[a]
	return p, ok
}

// PointTable returns a copy of the per-action point values.
func PointTable() map[Action]int {
	out := make(map[Action]int, len(pointTable))
	for k, v := range pointTable {
		out[k] = v
	}
	return out
}

// ScaledPoints applies multiplier to base and rounds down. The result is
// clamped to [0, math.MaxInt].
func ScaledPoints(base int, multiplier float64) int {
	v := math.Floor(float64(base) * multiplier)
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= math.MaxInt:
		return math.MaxInt
	}
	return int(v)
}

// addPoints adds two non-negative amounts, saturating at math.MaxInt.
func addPoints(a, b int) int {
	if b > 0 && a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

// StreakBonus returns the bonus for reaching streak on a new day.
// Every seventh day earns the weekly bonus; other days from the second on
// earn floor(50 * streak / 7).
func StreakBonus(streak int) int {
	if streak <= 1 {
		return 0
	}
	if streak%7 == 0 {
		return WeeklyStreakBonus
	}
	return DailyStreakBonus * streak / 7
}

func validMultiplier(m float64) bool {
	return !math.IsNaN(m) && m >= 0 && m <= MaxMultiplier
}
