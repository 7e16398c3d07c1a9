package action

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/piresc/arbiter/internal/pkg/apperror"
	"github.com/piresc/arbiter/internal/pkg/models"
)

// OnDuplicate decides what CreateEntity does when the name is taken
type OnDuplicate string

const (
	OnDuplicateUpdate OnDuplicate = "update"
	OnDuplicateIgnore OnDuplicate = "ignore"
	OnDuplicateFail   OnDuplicate = "fail"
)

// ParseOnDuplicate parses a policy name; empty means fail
func ParseOnDuplicate(s string) (OnDuplicate, error) {
	switch OnDuplicate(s) {
	case "", OnDuplicateFail:
		return OnDuplicateFail, nil
	case OnDuplicateUpdate, OnDuplicateIgnore:
		return OnDuplicate(s), nil
	}
	return "", fmt.Errorf("unknown onDuplicate policy %q", s)
}

// OnNotFound decides what update and delete do when the entity is missing
type OnNotFound string

const (
	OnNotFoundIgnore OnNotFound = "ignore"
	OnNotFoundFail   OnNotFound = "fail"
)

// ParseOnNotFound parses a policy name; empty means fail
func ParseOnNotFound(s string) (OnNotFound, error) {
	switch OnNotFound(s) {
	case "", OnNotFoundFail:
		return OnNotFoundFail, nil
	case OnNotFoundIgnore:
		return OnNotFoundIgnore, nil
	}
	return "", fmt.Errorf("unknown onNotFound policy %q", s)
}

// translate maps storage failures onto the client error taxonomy
func translate(err error, what string) error {
	var appErr *apperror.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, models.ErrNotFound):
		return apperror.NotFound(what + " not found")
	case errors.Is(err, models.ErrDuplicate):
		return apperror.AlreadyExists(what + " already exists")
	default:
		return apperror.Unknown(err)
	}
}

func describe(kind models.EntityKind, name string) string {
	return fmt.Sprintf("%s %q", kind, name)
}

// loadVisible fetches an entity the caller may see. A hidden entity reads as
// missing so its existence is not disclosed.
func loadVisible(ctx context.Context, st *State, kind models.EntityKind, name string) (*models.Entity, error) {
	entity, err := st.Store.GetEntity(ctx, kind, name)
	if err != nil {
		return nil, translate(err, describe(kind, name))
	}
	if !EntityVisible(st.Claims, *entity) {
		return nil, apperror.NotFound(describe(kind, name) + " not found")
	}
	return entity, nil
}

func requireStore(st *State) error {
	if st.Store == nil {
		return apperror.Unknown(errors.New("no store configured"))
	}
	return nil
}

// ListEntities lists entities of kind and subscribes the caller to the collection
func ListEntities(kind models.EntityKind, includeDeleted bool) Action {
	return NewFunc("ListEntities", func(ctx context.Context, st *State) (*models.Outcome, error) {
		if err := requireStore(st); err != nil {
			return nil, err
		}
		entities, err := st.Store.ListEntities(ctx, kind, includeDeleted)
		if err != nil {
			return nil, translate(err, string(kind))
		}
		if entities == nil {
			entities = []models.Entity{}
		}
		return &models.Outcome{
			SubscribeTo: []string{CollectionChannel(kind)},
			Data:        entities,
		}, nil
	})
}

// GetEntity returns one entity and subscribes the caller to its channel
func GetEntity(kind models.EntityKind, name string) Action {
	return NewFunc("GetEntity", func(ctx context.Context, st *State) (*models.Outcome, error) {
		if err := requireStore(st); err != nil {
			return nil, err
		}
		entity, err := loadVisible(ctx, st, kind, name)
		if err != nil {
			return nil, err
		}
		return &models.Outcome{
			SubscribeTo: []string{EntityChannel(kind, name)},
			Data:        entity,
		}, nil
	})
}

// CreateEntity creates an entity, resolving name clashes with policy.
// Ignore returns the existing entity and publishes nothing.
func CreateEntity(kind models.EntityKind, payload *models.EntityPayload, policy OnDuplicate) Action {
	return NewFunc("CreateEntity", func(ctx context.Context, st *State) (*models.Outcome, error) {
		if err := requireStore(st); err != nil {
			return nil, err
		}
		what := describe(kind, payload.Name)

		existing, err := st.Store.GetEntity(ctx, kind, payload.Name)
		exists := err == nil
		switch {
		case err == nil:
			switch policy {
			case OnDuplicateIgnore:
				return &models.Outcome{Data: existing}, nil
			case OnDuplicateFail:
				return nil, apperror.AlreadyExists(what + " already exists")
			}
		case !errors.Is(err, models.ErrNotFound):
			return nil, translate(err, what)
		}

		entity := &models.Entity{
			Kind:        kind,
			Name:        payload.Name,
			Description: payload.Description,
			Definition:  payload.Definition,
			Roles:       models.StringList(payload.Roles),
		}
		if exists {
			err = st.Store.UpsertEntity(ctx, entity)
		} else {
			err = st.Store.CreateEntity(ctx, entity)
		}
		if err != nil {
			return nil, translate(err, what)
		}

		return &models.Outcome{
			PublishTo: []string{CollectionChannel(kind), EntityChannel(kind, entity.Name)},
			Data:      entity,
		}, nil
	})
}

// UpdateEntity replaces the client fields of an entity. With OnNotFoundIgnore
// a missing entity is a successful no-op that publishes nothing.
func UpdateEntity(kind models.EntityKind, name string, payload *models.EntityPayload, policy OnNotFound) Action {
	return NewFunc("UpdateEntity", func(ctx context.Context, st *State) (*models.Outcome, error) {
		if err := requireStore(st); err != nil {
			return nil, err
		}
		update := *payload
		if update.Name == "" {
			update.Name = name
		}

		entity, err := st.Store.UpdateEntity(ctx, kind, name, &update)
		if errors.Is(err, models.ErrNotFound) && policy == OnNotFoundIgnore {
			return &models.Outcome{}, nil
		}
		if err != nil {
			return nil, translate(err, describe(kind, name))
		}

		publish := []string{CollectionChannel(kind), EntityChannel(kind, name)}
		if entity.Name != name {
			publish = append(publish, EntityChannel(kind, entity.Name))
		}
		return &models.Outcome{PublishTo: publish, Data: entity}, nil
	})
}

// DeleteEntity soft deletes an entity
func DeleteEntity(kind models.EntityKind, name string, policy OnNotFound) Action {
	return NewFunc("DeleteEntity", func(ctx context.Context, st *State) (*models.Outcome, error) {
		if err := requireStore(st); err != nil {
			return nil, err
		}

		err := st.Store.DeleteEntity(ctx, kind, name)
		if errors.Is(err, models.ErrNotFound) && policy == OnNotFoundIgnore {
			return &models.Outcome{}, nil
		}
		if err != nil {
			return nil, translate(err, describe(kind, name))
		}

		return &models.Outcome{
			PublishTo: []string{CollectionChannel(kind), EntityChannel(kind, name)},
			Data:      map[string]string{"kind": string(kind), "name": name},
		}, nil
	})
}

func requireTable(ctx context.Context, st *State, table string) error {
	_, err := loadVisible(ctx, st, models.KindTable, table)
	return err
}

// QueryTableData returns every row of table and subscribes the caller to its rows
func QueryTableData(table string) Action {
	return NewFunc("QueryTableData", func(ctx context.Context, st *State) (*models.Outcome, error) {
		if err := requireStore(st); err != nil {
			return nil, err
		}
		if err := requireTable(ctx, st, table); err != nil {
			return nil, err
		}
		rows, err := st.Store.QueryRows(ctx, table)
		if err != nil {
			return nil, translate(err, "rows of "+table)
		}
		if rows == nil {
			rows = []models.Row{}
		}
		return &models.Outcome{SubscribeTo: []string{RowsChannel(table)}, Data: rows}, nil
	})
}

// InsertTableData inserts rows; a key that already exists fails the whole insert
func InsertTableData(table string, rows []models.Row) Action {
	return NewFunc("InsertTableData", func(ctx context.Context, st *State) (*models.Outcome, error) {
		if err := requireStore(st); err != nil {
			return nil, err
		}
		if err := requireTable(ctx, st, table); err != nil {
			return nil, err
		}
		if err := st.Store.InsertRows(ctx, table, rows); err != nil {
			return nil, translate(err, "row of "+table)
		}
		return &models.Outcome{PublishTo: []string{RowsChannel(table)}, Data: rows}, nil
	})
}

// UpdateTableData replaces the data of rows matched by key
func UpdateTableData(table string, rows []models.Row) Action {
	return NewFunc("UpdateTableData", func(ctx context.Context, st *State) (*models.Outcome, error) {
		if err := requireStore(st); err != nil {
			return nil, err
		}
		if err := requireTable(ctx, st, table); err != nil {
			return nil, err
		}
		n, err := st.Store.UpdateRows(ctx, table, rows)
		if err != nil {
			return nil, translate(err, "rows of "+table)
		}
		return &models.Outcome{
			PublishTo: []string{RowsChannel(table)},
			Data:      map[string]interface{}{"updated": n, "rows": rows},
		}, nil
	})
}

// DeleteTableData deletes the rows with the given keys
func DeleteTableData(table string, keys []string) Action {
	return NewFunc("DeleteTableData", func(ctx context.Context, st *State) (*models.Outcome, error) {
		if err := requireStore(st); err != nil {
			return nil, err
		}
		if err := requireTable(ctx, st, table); err != nil {
			return nil, err
		}
		n, err := st.Store.DeleteRows(ctx, table, keys)
		if err != nil {
			return nil, translate(err, "rows of "+table)
		}
		return &models.Outcome{
			PublishTo: []string{RowsChannel(table)},
			Data:      map[string]interface{}{"deleted": n, "keys": keys},
		}, nil
	})
}

// RunQuery executes the statement stored in a query entity with named params
func RunQuery(name string, params map[string]interface{}) Action {
	return NewFunc("RunQuery", func(ctx context.Context, st *State) (*models.Outcome, error) {
		if err := requireStore(st); err != nil {
			return nil, err
		}
		query, err := loadVisible(ctx, st, models.KindQuery, name)
		if err != nil {
			return nil, err
		}

		var def models.QueryDefinition
		if err := json.Unmarshal(query.Definition, &def); err != nil || def.Statement == "" {
			return nil, apperror.Unknown(fmt.Errorf("query %q has no usable statement: %v", name, err))
		}
		if params == nil {
			params = map[string]interface{}{}
		}

		rows, err := st.Store.ExecuteQuery(ctx, def.Statement, params)
		if err != nil {
			return nil, translate(err, describe(models.KindQuery, name))
		}
		if rows == nil {
			rows = []map[string]interface{}{}
		}
		return &models.Outcome{Data: rows}, nil
	})
}

// RunScript hands a stored script to runner
func RunScript(runner ScriptRunner, name string, args json.RawMessage) Action {
	return NewFunc("RunScript", func(ctx context.Context, st *State) (*models.Outcome, error) {
		if err := requireStore(st); err != nil {
			return nil, err
		}
		if runner == nil {
			return nil, apperror.Unknown(errors.New("no script runner configured"))
		}
		script, err := loadVisible(ctx, st, models.KindScript, name)
		if err != nil {
			return nil, err
		}

		result, err := runner.RunScript(ctx, script, args)
		if err != nil {
			return nil, translate(err, describe(models.KindScript, name))
		}
		return &models.Outcome{Data: result}, nil
	})
}

// Nothing succeeds without doing anything
func Nothing() Action {
	return NewFunc("Nothing", func(context.Context, *State) (*models.Outcome, error) {
		return &models.Outcome{}, nil
	})
}

// Upstream forwards the whole invocation to executor
func Upstream(executor Executor, inv *models.Invocation) Action {
	return NewFunc("Upstream", func(ctx context.Context, st *State) (*models.Outcome, error) {
		forwarded := *inv
		forwarded.Claims = st.Claims
		return executor.Invoke(ctx, &forwarded)
	})
}
