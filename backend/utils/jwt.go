package utils

import (
	"time"

	"duotrack/backend/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// GenerateAdminToken выдаёт HS256-токен для администратора дашборда
func GenerateAdminToken(username string, cfg *config.Config) (string, error) {
	claims := jwt.MapClaims{
		"sub":   username,
		"admin": true,
		"exp":   time.Now().Add(time.Hour * 72).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ExtractAdminFromToken проверяет токен из заголовка Authorization
// и возвращает имя администратора
func ExtractAdminFromToken(c *fiber.Ctx, cfg *config.Config) (string, error) {
	tokenString := c.Get("Authorization")
	if tokenString == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Missing authorization token")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})

	if err != nil {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	if isAdmin, ok := claims["admin"].(bool); !ok || !isAdmin {
		return "", fiber.NewError(fiber.StatusForbidden, "Admin access required")
	}

	username, ok := claims["sub"].(string)
	if !ok {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid subject in token")
	}

	return username, nil
}
