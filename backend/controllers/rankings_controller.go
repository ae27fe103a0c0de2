package controllers

import (
	"strconv"
	"time"

	"duotrack/backend/services"
	"duotrack/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type RankingsController struct {
	Rankings  *services.RankingService
	Collector *services.CollectorService
}

func NewRankingsController(rankings *services.RankingService, collector *services.CollectorService) *RankingsController {
	return &RankingsController{Rankings: rankings, Collector: collector}
}

// GetRankings godoc
// @Summary XP rankings over a date range
// @Description Computes the leaderboard between two snapshot dates
// @Tags rankings
// @Accept json
// @Produce json
// @Param startDate query string true "Range start (YYYY-MM-DD)"
// @Param endDate query string true "Range end (YYYY-MM-DD)"
// @Param streakMin query int false "Minimum streak filter" default(0)
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /rankings [get]
func (rc *RankingsController) GetRankings(c *fiber.Ctx) error {
	startDate := c.Query("startDate")
	endDate := c.Query("endDate")

	// Диапазон дат обязателен, без тихих значений по умолчанию
	if startDate == "" || endDate == "" {
		return utils.BadRequest(c, "Missing date parameters")
	}
	if !validDate(startDate) || !validDate(endDate) {
		return utils.BadRequest(c, "Dates must be in YYYY-MM-DD format")
	}
	if startDate > endDate {
		return utils.BadRequest(c, "startDate must not be after endDate")
	}

	streakMin := 0
	if raw := c.Query("streakMin"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return utils.BadRequest(c, "streakMin must be a non-negative integer")
		}
		streakMin = n
	}

	rows, err := rc.Rankings.ComputeRankings(startDate, endDate, streakMin)
	if err != nil {
		return utils.InternalServerError(c, "Could not compute rankings")
	}

	return utils.Success(c, fiber.StatusOK, rows)
}

// GetUserHistory godoc
// @Summary Snapshot history for one user
// @Description Returns the most recent snapshots with day-to-day deltas
// @Tags rankings
// @Accept json
// @Produce json
// @Param userId query int true "User id"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /user-history [get]
func (rc *RankingsController) GetUserHistory(c *fiber.Ctx) error {
	raw := c.Query("userId")
	if raw == "" {
		return utils.BadRequest(c, "Missing userId")
	}

	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return utils.BadRequest(c, "Invalid userId")
	}

	entries, err := rc.Rankings.GetUserHistory(userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not load history")
	}

	return utils.Success(c, fiber.StatusOK, entries)
}

// Collect godoc
// @Summary Trigger a collection run
// @Description Runs the snapshot collector immediately and returns its report
// @Tags rankings
// @Accept json
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /collect [post]
func (rc *RankingsController) Collect(c *fiber.Ctx) error {
	report := rc.Collector.Collect(c.Context(), time.Now())
	return utils.Success(c, fiber.StatusOK, report)
}

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
