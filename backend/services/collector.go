package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"duotrack/backend/config"
	"duotrack/backend/duolingo"
	"duotrack/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileFetcher — то, что сборщику нужно от клиента Duolingo
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, userID int64) (duolingo.ProfileDocument, error)
}

type CollectorService struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Client ProfileFetcher
	Logger *log.Logger
}

func NewCollectorService(db *gorm.DB, cfg *config.Config, client ProfileFetcher, logger *log.Logger) *CollectorService {
	return &CollectorService{DB: db, Cfg: cfg, Client: client, Logger: logger}
}

// Collect делает один прогон сбора: для каждого целевого пользователя
// забирает текущий профиль и кладёт снапшот за календарную дату now (UTC).
// Ошибка по одному пользователю логируется и не прерывает остальных;
// повторов внутри прогона нет — следующий запуск по расписанию и есть повтор.
func (cs *CollectorService) Collect(ctx context.Context, now time.Time) models.CollectionReport {
	snapshotDate := now.UTC().Format("2006-01-02")
	snapshotTimestamp := now.Unix()

	report := models.CollectionReport{SnapshotDate: snapshotDate}

	users, err := cs.targetUsers()
	if err != nil {
		cs.Logger.Printf("collect: failed to load users: %v", err)
		return report
	}

	for _, user := range users {
		select {
		case <-ctx.Done():
			return report
		default:
		}

		report.Attempted++

		doc, err := cs.Client.FetchProfile(ctx, user.ID)
		if err != nil {
			cs.Logger.Printf("collect: failed to fetch user %d: %v", user.ID, err)
			report.Failed++
			report.Failures = append(report.Failures, models.CollectionFailure{
				UserID: user.ID,
				Reason: err.Error(),
			})
			continue
		}

		raw, err := json.Marshal(doc)
		if err != nil {
			cs.Logger.Printf("collect: failed to marshal payload for user %d: %v", user.ID, err)
			report.Failed++
			report.Failures = append(report.Failures, models.CollectionFailure{
				UserID: user.ID,
				Reason: err.Error(),
			})
			continue
		}

		snapshot := models.Snapshot{
			UserID:            user.ID,
			SnapshotDate:      snapshotDate,
			UserInfo:          string(raw),
			SnapshotTimestamp: snapshotTimestamp,
		}

		// Идемпотентный upsert по (user_id, snapshot_date):
		// повторный сбор за ту же дату перезаписывает снапшот
		if err := cs.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "snapshot_date"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_info", "snapshot_timestamp"}),
		}).Create(&snapshot).Error; err != nil {
			cs.Logger.Printf("collect: failed to store snapshot for user %d: %v", user.ID, err)
			report.Failed++
			report.Failures = append(report.Failures, models.CollectionFailure{
				UserID: user.ID,
				Reason: err.Error(),
			})
			continue
		}

		if updates := BackfillUpdates(user, doc); len(updates) > 0 {
			if err := cs.DB.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
				cs.Logger.Printf("collect: failed to backfill user %d: %v", user.ID, err)
			}
		}

		report.Updated++
	}

	cs.Logger.Printf("collect: snapshot complete for %s: %d attempted, %d updated, %d failed",
		snapshotDate, report.Attempted, report.Updated, report.Failed)

	return report
}

// targetUsers возвращает пользователей для прогона с учётом политики
// отслеживания и лимита на размер пачки
func (cs *CollectorService) targetUsers() ([]models.User, error) {
	query := cs.DB.Order("id")
	if cs.Cfg.CollectTrackedOnly {
		query = query.Where("is_tracked = ?", true)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}

	if batch := cs.Cfg.CollectBatchSize; batch > 0 && len(users) > batch {
		users = users[:batch]
	}

	return users, nil
}

// BackfillUpdates собирает неразрушающее обновление username/name
// пользователя из свежего документа: перезаписываем поле только если
// в ответе оно непустое, и никогда не затираем существующее значение пустым
func BackfillUpdates(user models.User, doc duolingo.ProfileDocument) map[string]interface{} {
	updates := map[string]interface{}{}

	if username := doc.StringField("username"); username != "" {
		if user.Username == nil || *user.Username != username {
			updates["username"] = username
		}
	}

	if name := doc.StringField("name"); name != "" {
		if user.Name == nil || *user.Name != name {
			updates["name"] = name
		}
	}

	return updates
}
