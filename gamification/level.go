package gamification

// Level is the display view derived from total points.
type Level struct {
	Level             int     `json:"level"`
	PointsToNextLevel int     `json:"pointsToNextLevel"`
	LevelProgress     float64 `json:"levelProgress"`
}

// LevelFor derives the level view for points. Negative input is treated as zero.
func LevelFor(points int) Level {
	points = max(points, 0)
	rem := points % PointsPerLevel
	return Level{
		Level:             points/PointsPerLevel + 1,
		PointsToNextLevel: PointsPerLevel - rem,
		LevelProgress:     float64(rem) / PointsPerLevel,
	}
}
