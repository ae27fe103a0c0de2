package models

import (
	"encoding/json"
	"fmt"
)

// ProfilePayload — полуструктурированный документ профиля из Duolingo.
// Схема документа нам не принадлежит, поэтому все именованные поля
// извлекаются защитно: нет поля или тип не тот — возвращается ноль/пустая строка.
type ProfilePayload map[string]interface{}

// ParsePayload разбирает сохранённый JSON снапшота. Битый JSON не должен
// ломать рейтинг для всех остальных, поэтому в этом случае возвращается
// пустой payload, а не ошибка.
func ParsePayload(raw string) ProfilePayload {
	if raw == "" {
		return ProfilePayload{}
	}
	var p ProfilePayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return ProfilePayload{}
	}
	if p == nil {
		return ProfilePayload{}
	}
	return p
}

func (p ProfilePayload) TotalXP() int {
	return p.intField("totalXp")
}

func (p ProfilePayload) Streak() int {
	return p.intField("streak")
}

func (p ProfilePayload) Username() string {
	return p.stringField("username")
}

func (p ProfilePayload) Name() string {
	return p.stringField("name")
}

func (p ProfilePayload) intField(key string) int {
	// json.Unmarshal в map даёт float64 для чисел
	switch v := p[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return 0
}

func (p ProfilePayload) stringField(key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

// DisplayLabel возвращает имя для строки рейтинга: username, иначе
// синтетическая метка по id.
func DisplayLabel(p ProfilePayload, userID int64) string {
	if u := p.Username(); u != "" {
		return u
	}
	return fmt.Sprintf("User %d", userID)
}
