package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/serenity-app/serenity/gamification"
	"github.com/serenity-app/serenity/utils"
)

// ConfigController serves the static rule tables the UI renders.
type ConfigController struct {
	catalog *gamification.Catalog
}

func NewConfigController(catalog *gamification.Catalog) *ConfigController {
	if catalog == nil {
		catalog = gamification.DefaultCatalog()
	}
	return &ConfigController{catalog: catalog}
}

type actionRule struct {
	Action gamification.Action `json:"action"`
	Points int                 `json:"points"`
}

// GetRules returns point values, streak bonuses, level size and the badge catalog.
func (c *ConfigController) GetRules(ctx *gin.Context) {
	table := gamification.PointTable()
	actions := make([]actionRule, 0, len(gamification.Actions))
	for _, a := range gamification.Actions {
		actions = append(actions, actionRule{Action: a, Points: table[a]})
	}
	utils.Success(ctx, gin.H{
		"actions": actions,
		"streakBonus": gin.H{
			"daily":  gamification.DailyStreakBonus,
			"weekly": gamification.WeeklyStreakBonus,
		},
		"pointsPerLevel": gamification.PointsPerLevel,
		"badges":         c.catalog.Badges(),
	})
}
