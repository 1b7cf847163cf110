package gamification

// ComputeStreak returns the streak after a check-in on today and whether
// today is a new check-in day. A same-day repeat, or a last date in the
// future (clock skew), leaves the streak untouched and is not a new day.
func ComputeStreak(last *Date, today Date, current int) (newStreak int, isNewDay bool) {
	if last == nil {
		return 1, true
	}
	switch diff := today.DaysSince(*last); {
	case diff <= 0:
		return current, false
	case diff == 1:
		return current + 1, true
	default:
		return 1, true
	}
}
