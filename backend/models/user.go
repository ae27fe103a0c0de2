package models

import "time"

// User — отслеживаемый пользователь Duolingo. ID приходит из внешнего API
// и используется как первичный ключ, поэтому gorm.Model здесь не подходит.
type User struct {
	ID        int64   `gorm:"primaryKey" json:"id"`
	Username  *string `json:"username"`
	Name      *string `json:"name"`
	IsTracked bool    `gorm:"default:true" json:"isTracked"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Snapshot — дневной слепок профиля пользователя. Составной ключ
// (user_id, snapshot_date) гарантирует не больше одной записи в день;
// повторный сбор за ту же дату перезаписывает её.
type Snapshot struct {
	UserID       int64  `gorm:"primaryKey" json:"userId"`
	SnapshotDate string `gorm:"primaryKey;size:10" json:"snapshotDate"` // YYYY-MM-DD

	// Полный JSON-документ профиля как его вернул Duolingo.
	// Хранится как текст: схема не наша, и битое содержимое не должно
	// ломать запись или чтение
	UserInfo string `gorm:"type:text" json:"-"`

	// Момент сбора (unix-секунды), только для наблюдаемости
	SnapshotTimestamp int64 `json:"snapshotTimestamp"`
}
