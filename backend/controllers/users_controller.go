package controllers

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"duotrack/backend/config"
	"duotrack/backend/duolingo"
	"duotrack/backend/models"
	"duotrack/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ProfileLookup — то, что контроллеру нужно от клиента Duolingo
type ProfileLookup interface {
	LookupByUsername(ctx context.Context, username string) (duolingo.ProfileDocument, error)
}

type UsersController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Client ProfileLookup
}

func NewUsersController(db *gorm.DB, cfg *config.Config, client ProfileLookup) *UsersController {
	return &UsersController{DB: db, Cfg: cfg, Client: client}
}

// AddUser godoc
// @Summary Register a user for tracking
// @Description Resolves a Duolingo username to a stable id and starts tracking
// @Tags users
// @Accept json
// @Produce json
// @Param request body map[string]interface{} true "Duolingo username"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /add-user [post]
func (uc *UsersController) AddUser(c *fiber.Ctx) error {
	var input struct {
		Username string `json:"username"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	username := strings.TrimSpace(input.Username)
	if username == "" {
		return utils.BadRequest(c, "Invalid username")
	}

	doc, err := uc.Client.LookupByUsername(c.Context(), username)
	if err != nil {
		// Три разных исхода: нет такого пользователя, провайдер недоступен,
		// дубликат (проверяется ниже) — не сливаем их в одну ошибку
		if errors.Is(err, duolingo.ErrNotFound) {
			return utils.NotFound(c, "User \""+username+"\" not found on Duolingo")
		}
		return utils.BadGateway(c, "Duolingo request failed")
	}

	userID, ok := doc.UserID()
	if !ok {
		return utils.NotFound(c, "User \""+username+"\" not found on Duolingo")
	}

	var existing models.User
	if err := uc.DB.First(&existing, userID).Error; err == nil {
		return utils.BadRequest(c, "User already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.InternalServerError(c, "Could not query database")
	}

	user := models.User{ID: userID, IsTracked: true}
	if v := doc.StringField("username"); v != "" {
		user.Username = &v
	}
	if v := doc.StringField("name"); v != "" {
		user.Name = &v
	} else if user.Username != nil {
		// Нет display name — показываем username
		user.Name = user.Username
	}

	if err := uc.DB.Create(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not create user")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"userId":   user.ID,
		"username": user.Username,
		"name":     user.Name,
	})
}

// UntrackUser godoc
// @Summary Untrack a user
// @Description Soft-delete: excludes the user from rankings, history is kept
// @Tags users
// @Accept json
// @Produce json
// @Param request body map[string]interface{} true "User id"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /untrack-user [post]
func (uc *UsersController) UntrackUser(c *fiber.Ctx) error {
	return uc.setTracked(c, false)
}

// RetrackUser godoc
// @Summary Retrack a user
// @Description Re-enables ranking inclusion for a previously untracked user
// @Tags users
// @Accept json
// @Produce json
// @Param request body map[string]interface{} true "User id"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /retrack-user [post]
func (uc *UsersController) RetrackUser(c *fiber.Ctx) error {
	return uc.setTracked(c, true)
}

func (uc *UsersController) setTracked(c *fiber.Ctx, tracked bool) error {
	var input struct {
		UserID int64 `json:"userId"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.UserID == 0 {
		return utils.BadRequest(c, "Invalid user ID")
	}

	if err := uc.DB.Model(&models.User{}).
		Where("id = ?", input.UserID).
		Update("is_tracked", tracked).Error; err != nil {
		return utils.InternalServerError(c, "Could not update user")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"userId": input.UserID, "isTracked": tracked})
}

// GetUsers godoc
// @Summary List users
// @Description Returns known users, optionally filtered by tracked flag
// @Tags users
// @Accept json
// @Produce json
// @Param tracked query bool false "Filter by tracked status"
// @Success 200 {object} utils.SuccessResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /users [get]
func (uc *UsersController) GetUsers(c *fiber.Ctx) error {
	query := uc.DB.Order("id")

	if tracked := c.Query("tracked"); tracked != "" {
		query = query.Where("is_tracked = ?", tracked == "1" || tracked == "true")
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return utils.InternalServerError(c, "Could not query users")
	}

	return utils.Success(c, fiber.StatusOK, users)
}

// GetLastCollectionTime godoc
// @Summary Last collection time
// @Description Returns the timestamp of the most recent stored snapshot
// @Tags users
// @Accept json
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /last-collection-time [get]
func (uc *UsersController) GetLastCollectionTime(c *fiber.Ctx) error {
	var last sql.NullInt64
	if err := uc.DB.Model(&models.Snapshot{}).
		Select("MAX(snapshot_timestamp)").
		Scan(&last).Error; err != nil {
		return utils.InternalServerError(c, "Could not query snapshots")
	}

	var value interface{}
	if last.Valid {
		value = last.Int64
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"lastCollectionTime": value})
}
