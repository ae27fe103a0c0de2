package duolingo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrNotFound — пользователь не существует на Duolingo.
// Отличаем от временных ошибок провайдера (5xx, сеть).
var ErrNotFound = errors.New("duolingo: user not found")

// StatusError — неожиданный ответ провайдера (не 200 и не 404)
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("duolingo: unexpected status %d: %s", e.StatusCode, e.Body)
}

// ProfileDocument — сырой документ профиля как его вернул API.
// Поля кроме totalXp/streak/username/name нас не интересуют,
// но сохраняются целиком.
type ProfileDocument map[string]interface{}

type usersResponse struct {
	Users []ProfileDocument `json:"users"`
}

// Client — клиент публичного Duolingo API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент с ограниченным таймаутом, чтобы один медленный
// запрос не задерживал весь прогон сборщика
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchProfile загружает профиль пользователя по его стабильному id
func (c *Client) FetchProfile(ctx context.Context, userID int64) (ProfileDocument, error) {
	endpoint := fmt.Sprintf("%s/users/%d", c.baseURL, userID)

	var doc ProfileDocument
	if err := c.get(ctx, endpoint, &doc); err != nil {
		return nil, err
	}

	return doc, nil
}

// LookupByUsername ищет профиль по имени пользователя. Используется
// один раз при регистрации, чтобы получить стабильный id.
func (c *Client) LookupByUsername(ctx context.Context, username string) (ProfileDocument, error) {
	endpoint := fmt.Sprintf("%s/users?username=%s", c.baseURL, url.QueryEscape(username))

	var resp usersResponse
	if err := c.get(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	if len(resp.Users) == 0 {
		return nil, ErrNotFound
	}

	doc := resp.Users[0]
	if _, ok := doc["id"]; !ok {
		return nil, ErrNotFound
	}

	return doc, nil
}

// get выполняет GET-запрос и декодирует JSON-ответ
func (c *Client) get(ctx context.Context, endpoint string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return ErrNotFound
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// UserID достаёт стабильный id из документа профиля
func (d ProfileDocument) UserID() (int64, bool) {
	switch v := d["id"].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}

// StringField достаёт строковое поле документа; пустая строка — поле отсутствует
func (d ProfileDocument) StringField(key string) string {
	if v, ok := d[key].(string); ok {
		return v
	}
	return ""
}
