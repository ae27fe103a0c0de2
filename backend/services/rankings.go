package services

import (
	"math"
	"sort"
	"time"

	"duotrack/backend/config"
	"duotrack/backend/models"

	"gorm.io/gorm"
)

// historyWindow — сколько снапшотов отдаёт история пользователя
const historyWindow = 100

// StartBoundary — разрешённая стартовая граница для одного пользователя.
// При строгой политике Date всегда равен запрошенной стартовой дате.
type StartBoundary struct {
	Payload         models.ProfilePayload
	Date            string
	UsedEarlierDate bool
}

type RankingService struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewRankingService(db *gorm.DB, cfg *config.Config) *RankingService {
	return &RankingService{DB: db, Cfg: cfg}
}

// ComputeRankings строит рейтинг за период [startDate, endDate].
// Обе границы — буквальные ключи поиска снапшотов; политика fallback
// по стартовой дате включается конфигом целиком для всего движка.
func (rs *RankingService) ComputeRankings(startDate, endDate string, streakMin int) ([]models.RankingRow, error) {
	endMap, err := rs.snapshotMap(endDate)
	if err != nil {
		return nil, err
	}

	var startMap map[int64]StartBoundary
	if rs.Cfg != nil && rs.Cfg.RankingStartFallback {
		startMap, err = rs.fallbackStartBoundaries(startDate, endDate, endMap)
	} else {
		startMap, err = rs.exactStartBoundaries(startDate)
	}
	if err != nil {
		return nil, err
	}

	rows := BuildRankings(startMap, endMap, startDate, endDate, streakMin)

	// Фильтр по отслеживаемым применяется последним и не меняет порядок
	trackedIDs, err := rs.trackedUserIDs()
	if err != nil {
		return nil, err
	}

	return FilterTracked(rows, trackedIDs), nil
}

// BuildRankings — чистая часть движка: два отображения user id → payload,
// на выходе отсортированные строки рейтинга. В рейтинг попадают только
// пользователи с данными на обеих границах — без двух точек дельту
// посчитать нельзя.
func BuildRankings(startSnaps map[int64]StartBoundary, endSnaps map[int64]models.ProfilePayload, startDate, endDate string, streakMin int) []models.RankingRow {
	daysDiff := DaysBetween(startDate, endDate)

	rows := make([]models.RankingRow, 0, len(endSnaps))
	for userID, end := range endSnaps {
		start, ok := startSnaps[userID]
		if !ok {
			continue
		}

		startXP := start.Payload.TotalXP()
		endXP := end.TotalXP()
		increase := endXP - startXP
		dailyAverage := int(math.Round(float64(increase) / float64(daysDiff)))

		streak := end.Streak()
		if streakMin > 0 && streak < streakMin {
			continue
		}

		row := models.RankingRow{
			UserID:       userID,
			Username:     resolveField(end.Username(), start.Payload.Username(), models.DisplayLabel(end, userID)),
			Name:         resolveField(end.Name(), start.Payload.Name(), ""),
			StartXP:      startXP,
			EndXP:        endXP,
			Increase:     increase,
			DailyAverage: dailyAverage,
			Streak:       streak,
		}

		if start.UsedEarlierDate {
			row.UsedEarlierDate = true
			row.ActualStartDate = start.Date
		}

		rows = append(rows, row)
	}

	// По убыванию прироста; при равенстве — по возрастанию id,
	// чтобы вывод был воспроизводимым
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Increase != rows[j].Increase {
			return rows[i].Increase > rows[j].Increase
		}
		return rows[i].UserID < rows[j].UserID
	})

	return rows
}

// FilterTracked оставляет только отслеживаемых пользователей, сохраняя порядок
func FilterTracked(rows []models.RankingRow, trackedIDs map[int64]bool) []models.RankingRow {
	filtered := make([]models.RankingRow, 0, len(rows))
	for _, row := range rows {
		if trackedIDs[row.UserID] {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// DaysBetween возвращает max(1, ceil(|end - start| в днях)).
// Нижняя граница в один день защищает от деления на ноль при start == end.
func DaysBetween(startDate, endDate string) int {
	start, err1 := time.Parse("2006-01-02", startDate)
	end, err2 := time.Parse("2006-01-02", endDate)
	if err1 != nil || err2 != nil {
		return 1
	}

	days := int(math.Ceil(math.Abs(end.Sub(start).Hours()) / 24))
	if days < 1 {
		days = 1
	}
	return days
}

// GetUserHistory возвращает последние снапшоты пользователя (новые первыми)
// с дельтами к хронологически предыдущему снапшоту. Запрашивается на одну
// запись больше окна, чтобы у самой старой записи окна тоже была дельта.
func (rs *RankingService) GetUserHistory(userID int64) ([]models.HistoryEntry, error) {
	var snapshots []models.Snapshot
	if err := rs.DB.
		Where("user_id = ?", userID).
		Order("snapshot_date DESC").
		Limit(historyWindow + 1).
		Find(&snapshots).Error; err != nil {
		return nil, err
	}

	entries := make([]models.HistoryEntry, 0, len(snapshots))
	for i, snap := range snapshots {
		if i >= historyWindow {
			break
		}

		entry := models.HistoryEntry{
			Date: snap.SnapshotDate,
			Data: models.ParsePayload(snap.UserInfo),
		}

		// Сосед по времени — следующий элемент списка (сортировка по убыванию)
		if i+1 < len(snapshots) {
			prev := models.ParsePayload(snapshots[i+1].UserInfo)
			xpChange := entry.Data.TotalXP() - prev.TotalXP()
			streakChange := entry.Data.Streak() - prev.Streak()
			entry.XPChange = &xpChange
			entry.StreakChange = &streakChange
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// snapshotMap загружает все снапшоты на точную дату
func (rs *RankingService) snapshotMap(date string) (map[int64]models.ProfilePayload, error) {
	var snapshots []models.Snapshot
	if err := rs.DB.Where("snapshot_date = ?", date).Find(&snapshots).Error; err != nil {
		return nil, err
	}

	m := make(map[int64]models.ProfilePayload, len(snapshots))
	for _, snap := range snapshots {
		m[snap.UserID] = models.ParsePayload(snap.UserInfo)
	}
	return m, nil
}

// exactStartBoundaries — строгая политика: только снапшоты с датой,
// равной запрошенной стартовой
func (rs *RankingService) exactStartBoundaries(startDate string) (map[int64]StartBoundary, error) {
	exact, err := rs.snapshotMap(startDate)
	if err != nil {
		return nil, err
	}

	m := make(map[int64]StartBoundary, len(exact))
	for userID, payload := range exact {
		m[userID] = StartBoundary{Payload: payload, Date: startDate}
	}
	return m, nil
}

// fallbackStartBoundaries — альтернативная политика: если точного стартового
// снапшота нет, берётся самый ранний доступный в пределах периода, и строка
// помечается usedEarlierDate/actualStartDate
func (rs *RankingService) fallbackStartBoundaries(startDate, endDate string, endMap map[int64]models.ProfilePayload) (map[int64]StartBoundary, error) {
	m, err := rs.exactStartBoundaries(startDate)
	if err != nil {
		return nil, err
	}

	var candidates []models.Snapshot
	if err := rs.DB.
		Where("snapshot_date > ? AND snapshot_date <= ?", startDate, endDate).
		Order("snapshot_date ASC").
		Find(&candidates).Error; err != nil {
		return nil, err
	}

	for _, snap := range candidates {
		if _, ok := m[snap.UserID]; ok {
			continue
		}
		if _, ok := endMap[snap.UserID]; !ok {
			continue
		}
		m[snap.UserID] = StartBoundary{
			Payload:         models.ParsePayload(snap.UserInfo),
			Date:            snap.SnapshotDate,
			UsedEarlierDate: true,
		}
	}

	return m, nil
}

func (rs *RankingService) trackedUserIDs() (map[int64]bool, error) {
	var ids []int64
	if err := rs.DB.Model(&models.User{}).Where("is_tracked = ?", true).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}

	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func resolveField(primary, secondary, fallback string) string {
	if primary != "" {
		return primary
	}
	if secondary != "" {
		return secondary
	}
	return fallback
}
