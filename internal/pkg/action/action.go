package action

import (
	"context"
	"encoding/json"

	"github.com/piresc/arbiter/internal/pkg/models"
)

// State is what an action runs against: the verified caller and the store,
// which may be bound to a transaction by WithTransaction
type State struct {
	Claims *models.Claims
	Store  Store
}

// withStore returns a copy of s using store
func (s *State) withStore(store Store) *State {
	return &State{Claims: s.Claims, Store: store}
}

// Action is one composable unit of server side behaviour
type Action interface {
	Name() string
	Call(ctx context.Context, st *State) (*models.Outcome, error)
}

// Decorator wraps an action into another action with the same result shape
type Decorator func(Action) Action

// Chain applies decorators to leaf so that the first decorator is outermost
func Chain(leaf Action, decorators ...Decorator) Action {
	a := leaf
	for i := len(decorators) - 1; i >= 0; i-- {
		a = decorators[i](a)
	}
	return a
}

// Func adapts a function into an Action
type Func struct {
	name string
	fn   func(ctx context.Context, st *State) (*models.Outcome, error)
}

// NewFunc creates a named Func action
func NewFunc(name string, fn func(ctx context.Context, st *State) (*models.Outcome, error)) *Func {
	return &Func{name: name, fn: fn}
}

func (f *Func) Name() string { return f.name }

func (f *Func) Call(ctx context.Context, st *State) (*models.Outcome, error) {
	return f.fn(ctx, st)
}

// Store is the storage engine leaves delegate to. Implementations return
// models.ErrNotFound and models.ErrDuplicate for the matching conditions.
type Store interface {
	ListEntities(ctx context.Context, kind models.EntityKind, includeDeleted bool) ([]models.Entity, error)
	GetEntity(ctx context.Context, kind models.EntityKind, name string) (*models.Entity, error)
	CreateEntity(ctx context.Context, entity *models.Entity) error
	UpsertEntity(ctx context.Context, entity *models.Entity) error
	UpdateEntity(ctx context.Context, kind models.EntityKind, name string, payload *models.EntityPayload) (*models.Entity, error)
	DeleteEntity(ctx context.Context, kind models.EntityKind, name string) error

	QueryRows(ctx context.Context, table string) ([]models.Row, error)
	InsertRows(ctx context.Context, table string, rows []models.Row) error
	UpdateRows(ctx context.Context, table string, rows []models.Row) (int64, error)
	DeleteRows(ctx context.Context, table string, keys []string) (int64, error)

	ExecuteQuery(ctx context.Context, statement string, params map[string]interface{}) ([]map[string]interface{}, error)

	// Begin starts a transaction. Calling Begin on a Tx joins the outer transaction.
	Begin(ctx context.Context) (Tx, error)
}

// Tx is a Store bound to a transaction
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// ScriptRunner executes a stored script with arguments
type ScriptRunner interface {
	RunScript(ctx context.Context, script *models.Entity, args json.RawMessage) (json.RawMessage, error)
}

// Executor runs a whole invocation somewhere else and returns its outcome
type Executor interface {
	Invoke(ctx context.Context, inv *models.Invocation) (*models.Outcome, error)
}
