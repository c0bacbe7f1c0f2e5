package models

import "time"

// BookSettings is the persisted book outline configuration.
type BookSettings struct {
	AllowedTypes []string `json:"allowed_types"`
	ChildType    string   `json:"child_type"`
}

// Allows reports whether typeID is one of the allowed outline types.
func (s *BookSettings) Allows(typeID string) bool {
	for _, t := range s.AllowedTypes {
		if t == typeID {
			return true
		}
	}
	return false
}

type ContentType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type Role struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Weight int    `json:"weight"`
	// Implicit roles are granted by authentication state rather than assignment.
	Implicit bool `json:"implicit"`
}

// Account is the read-only projection of a user used by listings.
type Account struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Mail           string     `json:"mail,omitempty"`
	IsActive       bool       `json:"is_active"`
	Roles          []string   `json:"roles"`
	CreatedAt      time.Time  `json:"created_at"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
}

type ConfigValue struct {
	Name      string    `json:"name"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
