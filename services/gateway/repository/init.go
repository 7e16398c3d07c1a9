package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/piresc/arbiter/internal/pkg/action"
	"github.com/piresc/arbiter/internal/pkg/models"
)

// Schema creates the tables the entity repository works on
const Schema = `
CREATE TABLE IF NOT EXISTS entities (
	kind        TEXT        NOT NULL,
	name        TEXT        NOT NULL,
	description TEXT        NOT NULL DEFAULT '',
	definition  JSONB       NOT NULL DEFAULT '{}',
	roles       JSONB       NOT NULL DEFAULT '[]',
	is_deleted  BOOLEAN     NOT NULL DEFAULT FALSE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (kind, name)
);

CREATE TABLE IF NOT EXISTS table_rows (
	table_name TEXT  NOT NULL,
	key        TEXT  NOT NULL,
	data       JSONB NOT NULL,
	PRIMARY KEY (table_name, key)
);
`

// EntityRepo is the Postgres backed action.Store. A repo returned by Begin is
// bound to its transaction; every other repo runs each statement on the pool.
type EntityRepo struct {
	cfg *models.Config
	db  *sqlx.DB
	ext sqlx.ExtContext
	tx  *sqlx.Tx
}

var _ action.Store = (*EntityRepo)(nil)

// NewEntityRepository creates a new entity repository
func NewEntityRepository(cfg *models.Config, db *sqlx.DB) *EntityRepo {
	return &EntityRepo{
		cfg: cfg,
		db:  db,
		ext: db,
	}
}

// Migrate applies Schema
func (r *EntityRepo) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Begin opens a transaction, or joins the one r is already bound to
func (r *EntityRepo) Begin(ctx context.Context) (action.Tx, error) {
	if r.tx != nil {
		return joinedTx{r}, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &txRepo{&EntityRepo{cfg: r.cfg, db: r.db, ext: tx, tx: tx}}, nil
}

type txRepo struct {
	*EntityRepo
}

func (t *txRepo) Commit() error {
	return t.tx.Commit()
}

func (t *txRepo) Rollback() error {
	return t.tx.Rollback()
}

// joinedTx leaves commit and rollback to the outer transaction
type joinedTx struct {
	*EntityRepo
}

func (joinedTx) Commit() error   { return nil }
func (joinedTx) Rollback() error { return nil }
