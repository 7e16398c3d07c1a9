package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/piresc/arbiter/internal/pkg/models"
)

const pgUniqueViolation = "23505"

const entityColumns = `kind, name, description, definition::text AS definition, roles::text AS roles, is_deleted, created_at, updated_at`

// entityRow reads jsonb columns as text so the driver never has to guess
type entityRow struct {
	Kind        string            `db:"kind"`
	Name        string            `db:"name"`
	Description string            `db:"description"`
	Definition  string            `db:"definition"`
	Roles       models.StringList `db:"roles"`
	IsDeleted   bool              `db:"is_deleted"`
	CreatedAt   time.Time         `db:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at"`
}

func (e entityRow) toEntity() models.Entity {
	roles := e.Roles
	if roles == nil {
		roles = models.StringList{}
	}
	return models.Entity{
		Kind:        models.EntityKind(e.Kind),
		Name:        e.Name,
		Description: e.Description,
		Definition:  json.RawMessage(e.Definition),
		Roles:       roles,
		IsDeleted:   e.IsDeleted,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func definitionText(def json.RawMessage) string {
	if len(def) == 0 {
		return "{}"
	}
	return string(def)
}

func rolesText(roles []string) string {
	if len(roles) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(roles)
	return string(b)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// ListEntities lists entities of kind ordered by name
func (r *EntityRepo) ListEntities(ctx context.Context, kind models.EntityKind, includeDeleted bool) ([]models.Entity, error) {
	query := `SELECT ` + entityColumns + ` FROM entities WHERE kind = $1`
	if !includeDeleted {
		query += ` AND NOT is_deleted`
	}
	query += ` ORDER BY name`

	var rows []entityRow
	if err := sqlx.SelectContext(ctx, r.ext, &rows, query, string(kind)); err != nil {
		return nil, fmt.Errorf("failed to list %s entities: %w", kind, err)
	}

	entities := make([]models.Entity, 0, len(rows))
	for _, row := range rows {
		entities = append(entities, row.toEntity())
	}
	return entities, nil
}

// GetEntity returns a live entity
func (r *EntityRepo) GetEntity(ctx context.Context, kind models.EntityKind, name string) (*models.Entity, error) {
	query := `SELECT ` + entityColumns + ` FROM entities WHERE kind = $1 AND name = $2 AND NOT is_deleted`

	var row entityRow
	err := sqlx.GetContext(ctx, r.ext, &row, query, string(kind), name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %q: %w", kind, name, err)
	}

	entity := row.toEntity()
	return &entity, nil
}

// CreateEntity inserts entity. A soft deleted entity with the same name is
// replaced; a live one yields models.ErrDuplicate.
func (r *EntityRepo) CreateEntity(ctx context.Context, entity *models.Entity) error {
	query := `
		INSERT INTO entities (kind, name, description, definition, roles, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6, $6)
		ON CONFLICT (kind, name) DO UPDATE SET
			description = EXCLUDED.description,
			definition  = EXCLUDED.definition,
			roles       = EXCLUDED.roles,
			is_deleted  = FALSE,
			created_at  = EXCLUDED.created_at,
			updated_at  = EXCLUDED.updated_at
		WHERE entities.is_deleted
		RETURNING created_at
	`
	now := time.Now().UTC()

	var createdAt time.Time
	err := r.ext.QueryRowxContext(ctx, query,
		string(entity.Kind), entity.Name, entity.Description,
		definitionText(entity.Definition), rolesText(entity.Roles), now,
	).Scan(&createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to create %s %q: %w", entity.Kind, entity.Name, err)
	}

	entity.IsDeleted = false
	entity.CreatedAt = createdAt
	entity.UpdatedAt = now
	return nil
}

// UpsertEntity inserts entity or overwrites the existing row, keeping its
// creation time
func (r *EntityRepo) UpsertEntity(ctx context.Context, entity *models.Entity) error {
	query := `
		INSERT INTO entities (kind, name, description, definition, roles, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6, $6)
		ON CONFLICT (kind, name) DO UPDATE SET
			description = EXCLUDED.description,
			definition  = EXCLUDED.definition,
			roles       = EXCLUDED.roles,
			is_deleted  = FALSE,
			updated_at  = EXCLUDED.updated_at
		RETURNING created_at
	`
	now := time.Now().UTC()

	var createdAt time.Time
	err := r.ext.QueryRowxContext(ctx, query,
		string(entity.Kind), entity.Name, entity.Description,
		definitionText(entity.Definition), rolesText(entity.Roles), now,
	).Scan(&createdAt)
	if err != nil {
		return fmt.Errorf("failed to upsert %s %q: %w", entity.Kind, entity.Name, err)
	}

	entity.IsDeleted = false
	entity.CreatedAt = createdAt
	entity.UpdatedAt = now
	return nil
}

// UpdateEntity replaces the client fields of a live entity, renaming it when
// payload.Name differs. The rows of a renamed table follow it.
func (r *EntityRepo) UpdateEntity(ctx context.Context, kind models.EntityKind, name string, payload *models.EntityPayload) (*models.Entity, error) {
	renamed := payload.Name != name

	if renamed {
		// a soft deleted entity must not block the new name
		if _, err := r.ext.ExecContext(ctx,
			`DELETE FROM entities WHERE kind = $1 AND name = $2 AND is_deleted`,
			string(kind), payload.Name,
		); err != nil {
			return nil, fmt.Errorf("failed to clear deleted %s %q: %w", kind, payload.Name, err)
		}
	}

	query := `
		UPDATE entities SET
			name = $3, description = $4, definition = $5, roles = $6, updated_at = $7
		WHERE kind = $1 AND name = $2 AND NOT is_deleted
		RETURNING ` + entityColumns

	var row entityRow
	err := sqlx.GetContext(ctx, r.ext, &row, query,
		string(kind), name, payload.Name, payload.Description,
		definitionText(payload.Definition), rolesText(payload.Roles), time.Now().UTC(),
	)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, models.ErrNotFound
	case isUniqueViolation(err):
		return nil, models.ErrDuplicate
	case err != nil:
		return nil, fmt.Errorf("failed to update %s %q: %w", kind, name, err)
	}

	if renamed && kind == models.KindTable {
		if _, err := r.ext.ExecContext(ctx,
			`UPDATE table_rows SET table_name = $2 WHERE table_name = $1`,
			name, payload.Name,
		); err != nil {
			return nil, fmt.Errorf("failed to move rows of table %q: %w", name, err)
		}
	}

	entity := row.toEntity()
	return &entity, nil
}

// DeleteEntity soft deletes a live entity
func (r *EntityRepo) DeleteEntity(ctx context.Context, kind models.EntityKind, name string) error {
	result, err := r.ext.ExecContext(ctx,
		`UPDATE entities SET is_deleted = TRUE, updated_at = $3 WHERE kind = $1 AND name = $2 AND NOT is_deleted`,
		string(kind), name, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to delete %s %q: %w", kind, name, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return models.ErrNotFound
	}

	if kind == models.KindTable {
		if _, err := r.ext.ExecContext(ctx, `DELETE FROM table_rows WHERE table_name = $1`, name); err != nil {
			return fmt.Errorf("failed to purge rows of table %q: %w", name, err)
		}
	}
	return nil
}
