package services

import (
	"encoding/json"
	"fmt"
	"testing"

	"duotrack/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSnapshot(t *testing.T, rs *RankingService, userID int64, date string, totalXP, streak int) {
	t.Helper()

	payload := map[string]interface{}{
		"totalXp":  totalXP,
		"streak":   streak,
		"username": fmt.Sprintf("user%d", userID),
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	require.NoError(t, rs.DB.Create(&models.Snapshot{
		UserID:            userID,
		SnapshotDate:      date,
		UserInfo:          string(raw),
		SnapshotTimestamp: 1700000000,
	}).Error)
}

func TestComputeRankingsStrictPolicy(t *testing.T) {
	db, cfg := testDB(t)
	rs := NewRankingService(db, cfg)

	require.NoError(t, db.Create(&models.User{ID: 1, IsTracked: true}).Error)
	require.NoError(t, db.Create(&models.User{ID: 2, IsTracked: true}).Error)

	seedSnapshot(t, rs, 1, "2024-03-01", 1000, 5)
	seedSnapshot(t, rs, 1, "2024-03-08", 1700, 6)
	// У второго пользователя нет снапшота на стартовую дату
	seedSnapshot(t, rs, 2, "2024-03-05", 100, 1)
	seedSnapshot(t, rs, 2, "2024-03-08", 400, 2)

	rows, err := rs.ComputeRankings("2024-03-01", "2024-03-08", 0)
	require.NoError(t, err)

	// Строгая политика: только точное совпадение стартовой даты
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].UserID)
	assert.Equal(t, 700, rows[0].Increase)
	assert.Equal(t, 100, rows[0].DailyAverage)
}

func TestComputeRankingsFallbackPolicy(t *testing.T) {
	db, cfg := testDB(t)
	fallbackCfg := *cfg
	fallbackCfg.RankingStartFallback = true
	rs := NewRankingService(db, &fallbackCfg)

	require.NoError(t, db.Create(&models.User{ID: 1, IsTracked: true}).Error)
	require.NoError(t, db.Create(&models.User{ID: 2, IsTracked: true}).Error)

	seedSnapshot(t, rs, 1, "2024-03-01", 1000, 5)
	seedSnapshot(t, rs, 1, "2024-03-08", 1700, 6)
	seedSnapshot(t, rs, 2, "2024-03-05", 100, 1)
	seedSnapshot(t, rs, 2, "2024-03-08", 400, 2)

	rows, err := rs.ComputeRankings("2024-03-01", "2024-03-08", 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byID := map[int64]models.RankingRow{}
	for _, row := range rows {
		byID[row.UserID] = row
	}

	assert.False(t, byID[1].UsedEarlierDate)
	assert.True(t, byID[2].UsedEarlierDate)
	assert.Equal(t, "2024-03-05", byID[2].ActualStartDate)
	assert.Equal(t, 300, byID[2].Increase)
}

func TestUntrackedUserExcludedButHistoryKept(t *testing.T) {
	db, cfg := testDB(t)
	rs := NewRankingService(db, cfg)

	require.NoError(t, db.Create(&models.User{ID: 1, IsTracked: true}).Error)
	require.NoError(t, db.Create(&models.User{ID: 2, IsTracked: true}).Error)

	seedSnapshot(t, rs, 1, "2024-03-01", 1000, 5)
	seedSnapshot(t, rs, 1, "2024-03-08", 1500, 6)
	seedSnapshot(t, rs, 2, "2024-03-01", 100, 1)
	seedSnapshot(t, rs, 2, "2024-03-08", 900, 2)

	rows, err := rs.ComputeRankings("2024-03-01", "2024-03-08", 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Снимаем второго с отслеживания — из рейтинга пропадает
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", 2).Update("is_tracked", false).Error)

	rows, err = rs.ComputeRankings("2024-03-01", "2024-03-08", 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].UserID)

	// История при этом остаётся полностью доступной
	history, err := rs.GetUserHistory(2)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestGetUserHistoryDeltas(t *testing.T) {
	db, cfg := testDB(t)
	rs := NewRankingService(db, cfg)

	require.NoError(t, db.Create(&models.User{ID: 1, IsTracked: true}).Error)

	seedSnapshot(t, rs, 1, "2024-03-01", 1000, 5)
	seedSnapshot(t, rs, 1, "2024-03-02", 1100, 6)
	seedSnapshot(t, rs, 1, "2024-03-03", 1250, 7)

	history, err := rs.GetUserHistory(1)
	require.NoError(t, err)
	require.Len(t, history, 3)

	// Новые первыми
	assert.Equal(t, "2024-03-03", history[0].Date)
	require.NotNil(t, history[0].XPChange)
	assert.Equal(t, 150, *history[0].XPChange)
	require.NotNil(t, history[0].StreakChange)
	assert.Equal(t, 1, *history[0].StreakChange)

	require.NotNil(t, history[1].XPChange)
	assert.Equal(t, 100, *history[1].XPChange)

	// Самый старый снапшот: соседа нет, дельты отсутствуют, а не равны нулю
	assert.Nil(t, history[2].XPChange)
	assert.Nil(t, history[2].StreakChange)
}

func TestGetUserHistoryMalformedPayload(t *testing.T) {
	db, cfg := testDB(t)
	rs := NewRankingService(db, cfg)

	require.NoError(t, db.Create(&models.User{ID: 1, IsTracked: true}).Error)

	seedSnapshot(t, rs, 1, "2024-03-01", 500, 5)
	require.NoError(t, db.Create(&models.Snapshot{
		UserID:            1,
		SnapshotDate:      "2024-03-02",
		UserInfo:          `{"broken`,
		SnapshotTimestamp: 1700000001,
	}).Error)

	history, err := rs.GetUserHistory(1)
	require.NoError(t, err)
	require.Len(t, history, 2)

	// Битый payload деградирует до пустого, а не ломает выдачу
	assert.Equal(t, 0, history[0].Data.TotalXP())
	require.NotNil(t, history[0].XPChange)
	assert.Equal(t, -500, *history[0].XPChange)
}
