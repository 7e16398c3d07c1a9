package models

import (
	"encoding/json"
	"errors"
	"time"
)

// EntityKind is the family an entity belongs to
type EntityKind string

const (
	KindTable  EntityKind = "table"
	KindQuery  EntityKind = "query"
	KindScript EntityKind = "script"
)

// Valid reports whether k is one of the known kinds
func (k EntityKind) Valid() bool {
	switch k {
	case KindTable, KindQuery, KindScript:
		return true
	}
	return false
}

// Storage errors returned by repositories
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Entity is a named table, query or script definition
type Entity struct {
	Kind        EntityKind      `json:"kind" db:"kind"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Definition  json.RawMessage `json:"definition" db:"definition"`
	Roles       StringList      `json:"roles" db:"roles"`
	IsDeleted   bool            `json:"isDeleted" db:"is_deleted"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// EntityPayload is the client supplied part of an entity
type EntityPayload struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Definition  json.RawMessage `json:"definition"`
	Roles       []string        `json:"roles"`
}

// QueryDefinition is the definition stored for a query entity
type QueryDefinition struct {
	Statement string `json:"statement"`
}

// Row is one keyed record of a table
type Row struct {
	Key  string          `json:"key" db:"key"`
	Data json.RawMessage `json:"data" db:"data"`
}
