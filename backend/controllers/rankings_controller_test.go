package controllers

import (
	"net/http/httptest"
	"testing"

	"duotrack/backend/config"
	"duotrack/backend/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rankingsApp собирает приложение только с ручками рейтинга.
// Все кейсы ниже — ошибки валидации, до базы дело не доходит.
func rankingsApp() *fiber.App {
	app := fiber.New()
	rc := NewRankingsController(services.NewRankingService(nil, &config.Config{}), nil)
	app.Get("/api/rankings", rc.GetRankings)
	app.Get("/api/user-history", rc.GetUserHistory)
	return app
}

func TestGetRankingsMissingDates(t *testing.T) {
	app := rankingsApp()

	for _, target := range []string{
		"/api/rankings",
		"/api/rankings?startDate=2024-03-01",
		"/api/rankings?endDate=2024-03-08",
	} {
		req := httptest.NewRequest("GET", target, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, target)
	}
}

func TestGetRankingsInvalidDates(t *testing.T) {
	app := rankingsApp()

	req := httptest.NewRequest("GET", "/api/rankings?startDate=03-01-2024&endDate=2024-03-08", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// startDate позже endDate
	req = httptest.NewRequest("GET", "/api/rankings?startDate=2024-03-08&endDate=2024-03-01", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetRankingsInvalidStreakMin(t *testing.T) {
	app := rankingsApp()

	for _, target := range []string{
		"/api/rankings?startDate=2024-03-01&endDate=2024-03-08&streakMin=abc",
		"/api/rankings?startDate=2024-03-01&endDate=2024-03-08&streakMin=-5",
	} {
		req := httptest.NewRequest("GET", target, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, target)
	}
}

func TestGetUserHistoryParamValidation(t *testing.T) {
	app := rankingsApp()

	req := httptest.NewRequest("GET", "/api/user-history", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	req = httptest.NewRequest("GET", "/api/user-history?userId=abc", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
