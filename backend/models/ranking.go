package models

// RankingRow — вычисленная дельта между двумя снапшотами одного пользователя.
type RankingRow struct {
	UserID       int64  `json:"userId"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	StartXP      int    `json:"startXp"`
	EndXP        int    `json:"endXp"`
	Increase     int    `json:"increase"`
	DailyAverage int    `json:"dailyAverage"`
	Streak       int    `json:"streak"`

	// Заполняются только при политике fallback по стартовой дате
	UsedEarlierDate bool   `json:"usedEarlierDate,omitempty"`
	ActualStartDate string `json:"actualStartDate,omitempty"`
}

// HistoryEntry — один снапшот в истории пользователя плюс дельты
// к хронологически предыдущему снапшоту. Для самого старого снапшота
// дельты отсутствуют (nil), а не равны нулю.
type HistoryEntry struct {
	Date         string         `json:"date"`
	Data         ProfilePayload `json:"data"`
	XPChange     *int           `json:"xpChange,omitempty"`
	StreakChange *int           `json:"streakChange,omitempty"`
}

// CollectionFailure — одна неудачная попытка сбора внутри прогона.
type CollectionFailure struct {
	UserID int64  `json:"userId"`
	Reason string `json:"reason"`
}

// CollectionReport — итог одного прогона сборщика.
type CollectionReport struct {
	SnapshotDate string              `json:"snapshotDate"`
	Attempted    int                 `json:"attempted"`
	Updated      int                 `json:"updated"`
	Failed       int                 `json:"failed"`
	Failures     []CollectionFailure `json:"failures,omitempty"`
}
