package controllers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/serenity-app/serenity/gamification"
	"github.com/serenity-app/serenity/middleware"
	"github.com/serenity-app/serenity/utils"
)

// GuestUserID is the session key of the single guest profile.
const GuestUserID = "guest"

const eventKeepAlive = 25 * time.Second

// GamificationController serves awards and progress for the caller.
// Authenticated callers use the users registry, guests the guests registry.
type GamificationController struct {
	users  *gamification.Registry
	guests *gamification.Registry
}

// NewGamificationController creates a controller. guests may be nil to turn
// the guest profile off.
func NewGamificationController(users, guests *gamification.Registry) *GamificationController {
	return &GamificationController{users: users, guests: guests}
}

type awardRequest struct {
	Action     string   `json:"action" binding:"required"`
	Multiplier *float64 `json:"multiplier"`
}

type awardResponse struct {
	gamification.AwardResult
	Warning string `json:"warning,omitempty"`
}

type badgesResponse struct {
	Unlocked []gamification.Badge       `json:"unlocked"`
	Locked   []gamification.LockedBadge `json:"locked"`
}

// session resolves the caller's session and its registry, answering 401 when
// neither applies.
func (g *GamificationController) session(ctx *gin.Context) (*gamification.Session, *gamification.Registry, bool) {
	userID, guest := middleware.Principal(ctx)
	switch {
	case guest && g.guests != nil:
		return g.guests.Session(ctx.Request.Context(), GuestUserID), g.guests, true
	case !guest && userID != "" && g.users != nil:
		return g.users.Session(ctx.Request.Context(), userID), g.users, true
	}
	utils.Error(ctx, http.StatusUnauthorized, utils.CodeUnauthorized, "unauthorized")
	return nil, nil, false
}

// GetState returns points, counters, streaks, badges and level.
func (g *GamificationController) GetState(ctx *gin.Context) {
	s, _, ok := g.session(ctx)
	if !ok {
		return
	}
	utils.Success(ctx, s.Summary())
}

// Award credits one action to the caller.
func (g *GamificationController) Award(ctx *gin.Context) {
	var req awardRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, utils.CodeInvalidRequest, "invalid request body")
		return
	}
	action, err := gamification.ParseAction(req.Action)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, utils.CodeInvalidAction, err.Error())
		return
	}
	multiplier := 1.0
	if req.Multiplier != nil {
		multiplier = *req.Multiplier
	}

	s, _, ok := g.session(ctx)
	if !ok {
		return
	}

	res, err := s.AwardWithMultiplier(ctx.Request.Context(), action, multiplier)
	var warning *gamification.PersistenceWarning
	switch {
	case err == nil:
	case errors.As(err, &warning):
		utils.Sugar.Warnw("award applied but not persisted",
			"user_id", s.UserID(), "action", action, "error", warning.Err)
		utils.Success(ctx, awardResponse{AwardResult: res, Warning: "progress saved locally only; sync pending"})
		return
	case errors.Is(err, gamification.ErrInvalidAction):
		utils.Error(ctx, http.StatusBadRequest, utils.CodeInvalidAction, err.Error())
		return
	case errors.Is(err, gamification.ErrInvalidMultiplier):
		utils.Error(ctx, http.StatusBadRequest, utils.CodeInvalidMultiplier, err.Error())
		return
	default:
		utils.Sugar.Errorw("award failed", "user_id", s.UserID(), "action", action, "error", err)
		utils.Error(ctx, http.StatusInternalServerError, utils.CodeInternal, "failed to award points")
		return
	}

	utils.Success(ctx, awardResponse{AwardResult: res})
}

// Badges returns the unlocked badges and the locked ones with progress.
func (g *GamificationController) Badges(ctx *gin.Context) {
	s, reg, ok := g.session(ctx)
	if !ok {
		return
	}
	st := s.Snapshot()
	utils.Success(ctx, badgesResponse{
		Unlocked: gamification.UnlockedBadges(st, reg.Catalog()),
		Locked:   gamification.LockedBadges(st, reg.Catalog()),
	})
}

// Sync re-persists the caller's state after an earlier save failed.
func (g *GamificationController) Sync(ctx *gin.Context) {
	s, _, ok := g.session(ctx)
	if !ok {
		return
	}
	if err := s.Flush(ctx.Request.Context()); err != nil {
		utils.Sugar.Warnw("sync failed", "user_id", s.UserID(), "error", err)
		utils.Error(ctx, http.StatusServiceUnavailable, utils.CodePersistFailed, "failed to persist progress")
		return
	}
	utils.Success(ctx, gin.H{"synced": true})
}

// Events streams the caller's state as server-sent "state" events, starting
// with the current state.
func (g *GamificationController) Events(ctx *gin.Context) {
	s, reg, ok := g.session(ctx)
	if !ok {
		return
	}
	events, cancel := reg.Broker().Subscribe(s.UserID())
	defer cancel()

	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")
	ctx.Header("X-Accel-Buffering", "no")
	ctx.SSEvent("state", s.Summary())
	ctx.Writer.Flush()

	keepAlive := time.NewTicker(eventKeepAlive)
	defer keepAlive.Stop()

	done := ctx.Request.Context().Done()
	ctx.Stream(func(w io.Writer) bool {
		select {
		case <-done:
			return false
		case <-keepAlive.C:
			ctx.SSEvent("ping", time.Now().Unix())
			return true
		case ev, open := <-events:
			if !open {
				return false
			}
			ctx.SSEvent("state", gamification.Summary{
				State: ev.State,
				Level: gamification.LevelFor(ev.State.Points),
			})
			return true
		}
	})
}
