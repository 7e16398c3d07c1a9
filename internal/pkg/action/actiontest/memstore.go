// Package actiontest provides an in-memory action.Store for tests.
package actiontest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/piresc/arbiter/internal/pkg/action"
	"github.com/piresc/arbiter/internal/pkg/models"
)

type data struct {
	entities map[string]models.Entity
	rows     map[string]map[string]models.Row
}

func (d *data) clone() *data {
	c := &data{
		entities: make(map[string]models.Entity, len(d.entities)),
		rows:     make(map[string]map[string]models.Row, len(d.rows)),
	}
	for k, v := range d.entities {
		c.entities[k] = v
	}
	for table, rows := range d.rows {
		m := make(map[string]models.Row, len(rows))
		for k, v := range rows {
			m[k] = v
		}
		c.rows[table] = m
	}
	return c
}

func entityKey(kind models.EntityKind, name string) string {
	return string(kind) + "/" + name
}

// MemStore is a goroutine safe in-memory Store. Transactions work on a copy
// that replaces the committed data on Commit.
type MemStore struct {
	mu   sync.Mutex
	data *data

	// CommitErr, when set, is returned by every top level Commit
	CommitErr error
	// Fail maps a method name to the error it should return
	Fail map[string]error

	Begins    int
	Commits   int
	Rollbacks int
	Writes    int
	Queries   []string
}

// NewMemStore returns an empty store
func NewMemStore() *MemStore {
	return &MemStore{
		data: &data{entities: map[string]models.Entity{}, rows: map[string]map[string]models.Row{}},
		Fail: map[string]error{},
	}
}

// Seed stores entities directly, bypassing transactions and counters
func (s *MemStore) Seed(entities ...models.Entity) *MemStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entities {
		s.data.entities[entityKey(e.Kind, e.Name)] = e
	}
	return s
}

// SeedRows stores rows directly
func (s *MemStore) SeedRows(table string, rows ...models.Row) *MemStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.rows[table] == nil {
		s.data.rows[table] = map[string]models.Row{}
	}
	for _, r := range rows {
		s.data.rows[table][r.Key] = r
	}
	return s
}

// Entity returns the committed entity, deleted or not
func (s *MemStore) Entity(kind models.EntityKind, name string) (models.Entity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data.entities[entityKey(kind, name)]
	return e, ok
}

// Rows returns the committed rows of table sorted by key
func (s *MemStore) Rows(table string) []models.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedRows(s.data.rows[table])
}

func sortedRows(m map[string]models.Row) []models.Row {
	out := make([]models.Row, 0, len(m))
	for _, r := range m {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (s *MemStore) failure(method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Fail[method]
}

func (s *MemStore) view() *view {
	return &view{store: s, data: nil}
}

func (s *MemStore) ListEntities(ctx context.Context, kind models.EntityKind, includeDeleted bool) ([]models.Entity, error) {
	return s.view().ListEntities(ctx, kind, includeDeleted)
}

func (s *MemStore) GetEntity(ctx context.Context, kind models.EntityKind, name string) (*models.Entity, error) {
	return s.view().GetEntity(ctx, kind, name)
}

func (s *MemStore) CreateEntity(ctx context.Context, entity *models.Entity) error {
	return s.view().CreateEntity(ctx, entity)
}

func (s *MemStore) UpsertEntity(ctx context.Context, entity *models.Entity) error {
	return s.view().UpsertEntity(ctx, entity)
}

func (s *MemStore) UpdateEntity(ctx context.Context, kind models.EntityKind, name string, payload *models.EntityPayload) (*models.Entity, error) {
	return s.view().UpdateEntity(ctx, kind, name, payload)
}

func (s *MemStore) DeleteEntity(ctx context.Context, kind models.EntityKind, name string) error {
	return s.view().DeleteEntity(ctx, kind, name)
}

func (s *MemStore) QueryRows(ctx context.Context, table string) ([]models.Row, error) {
	return s.view().QueryRows(ctx, table)
}

func (s *MemStore) InsertRows(ctx context.Context, table string, rows []models.Row) error {
	return s.view().InsertRows(ctx, table, rows)
}

func (s *MemStore) UpdateRows(ctx context.Context, table string, rows []models.Row) (int64, error) {
	return s.view().UpdateRows(ctx, table, rows)
}

func (s *MemStore) DeleteRows(ctx context.Context, table string, keys []string) (int64, error) {
	return s.view().DeleteRows(ctx, table, keys)
}

func (s *MemStore) ExecuteQuery(ctx context.Context, statement string, params map[string]interface{}) ([]map[string]interface{}, error) {
	return s.view().ExecuteQuery(ctx, statement, params)
}

// Begin starts a transaction over a copy of the committed data
func (s *MemStore) Begin(context.Context) (action.Tx, error) {
	if err := s.failure("Begin"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Begins++
	return &memTx{view: view{store: s, data: s.data.clone()}}, nil
}

// view runs store operations against either the committed data (data == nil)
// or a transaction's private copy
type view struct {
	store *MemStore
	data  *data
}

func (v *view) with(fn func(d *data) error) error {
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	d := v.data
	if d == nil {
		d = v.store.data
	}
	return fn(d)
}

func (v *view) ListEntities(_ context.Context, kind models.EntityKind, includeDeleted bool) ([]models.Entity, error) {
	if err := v.store.failure("ListEntities"); err != nil {
		return nil, err
	}
	var out []models.Entity
	err := v.with(func(d *data) error {
		for _, e := range d.entities {
			if e.Kind == kind && (includeDeleted || !e.IsDeleted) {
				out = append(out, e)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (v *view) GetEntity(_ context.Context, kind models.EntityKind, name string) (*models.Entity, error) {
	if err := v.store.failure("GetEntity"); err != nil {
		return nil, err
	}
	var found *models.Entity
	err := v.with(func(d *data) error {
		e, ok := d.entities[entityKey(kind, name)]
		if !ok || e.IsDeleted {
			return models.ErrNotFound
		}
		found = &e
		return nil
	})
	return found, err
}

func (v *view) CreateEntity(_ context.Context, entity *models.Entity) error {
	if err := v.store.failure("CreateEntity"); err != nil {
		return err
	}
	return v.with(func(d *data) error {
		key := entityKey(entity.Kind, entity.Name)
		if e, ok := d.entities[key]; ok && !e.IsDeleted {
			return models.ErrDuplicate
		}
		now := time.Now().UTC()
		entity.CreatedAt, entity.UpdatedAt = now, now
		d.entities[key] = *entity
		v.store.Writes++
		return nil
	})
}

func (v *view) UpsertEntity(_ context.Context, entity *models.Entity) error {
	if err := v.store.failure("UpsertEntity"); err != nil {
		return err
	}
	return v.with(func(d *data) error {
		key := entityKey(entity.Kind, entity.Name)
		now := time.Now().UTC()
		entity.CreatedAt = now
		if e, ok := d.entities[key]; ok {
			entity.CreatedAt = e.CreatedAt
		}
		entity.UpdatedAt = now
		entity.IsDeleted = false
		d.entities[key] = *entity
		v.store.Writes++
		return nil
	})
}

func (v *view) UpdateEntity(_ context.Context, kind models.EntityKind, name string, payload *models.EntityPayload) (*models.Entity, error) {
	if err := v.store.failure("UpdateEntity"); err != nil {
		return nil, err
	}
	var updated models.Entity
	err := v.with(func(d *data) error {
		key := entityKey(kind, name)
		e, ok := d.entities[key]
		if !ok || e.IsDeleted {
			return models.ErrNotFound
		}
		newKey := entityKey(kind, payload.Name)
		if other, taken := d.entities[newKey]; newKey != key && taken && !other.IsDeleted {
			return models.ErrDuplicate
		}
		e.Name = payload.Name
		e.Description = payload.Description
		e.Definition = payload.Definition
		e.Roles = models.StringList(payload.Roles)
		e.UpdatedAt = time.Now().UTC()
		delete(d.entities, key)
		d.entities[newKey] = e
		updated = e
		v.store.Writes++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (v *view) DeleteEntity(_ context.Context, kind models.EntityKind, name string) error {
	if err := v.store.failure("DeleteEntity"); err != nil {
		return err
	}
	return v.with(func(d *data) error {
		key := entityKey(kind, name)
		e, ok := d.entities[key]
		if !ok || e.IsDeleted {
			return models.ErrNotFound
		}
		e.IsDeleted = true
		d.entities[key] = e
		if kind == models.KindTable {
			delete(d.rows, name)
		}
		v.store.Writes++
		return nil
	})
}

func (v *view) QueryRows(_ context.Context, table string) ([]models.Row, error) {
	if err := v.store.failure("QueryRows"); err != nil {
		return nil, err
	}
	var out []models.Row
	err := v.with(func(d *data) error {
		out = sortedRows(d.rows[table])
		return nil
	})
	return out, err
}

func (v *view) InsertRows(_ context.Context, table string, rows []models.Row) error {
	if err := v.store.failure("InsertRows"); err != nil {
		return err
	}
	return v.with(func(d *data) error {
		if d.rows[table] == nil {
			d.rows[table] = map[string]models.Row{}
		}
		for _, r := range rows {
			if _, ok := d.rows[table][r.Key]; ok {
				return models.ErrDuplicate
			}
			d.rows[table][r.Key] = r
			v.store.Writes++
		}
		return nil
	})
}

func (v *view) UpdateRows(_ context.Context, table string, rows []models.Row) (int64, error) {
	if err := v.store.failure("UpdateRows"); err != nil {
		return 0, err
	}
	var n int64
	err := v.with(func(d *data) error {
		for _, r := range rows {
			if _, ok := d.rows[table][r.Key]; ok {
				d.rows[table][r.Key] = r
				n++
				v.store.Writes++
			}
		}
		return nil
	})
	return n, err
}

func (v *view) DeleteRows(_ context.Context, table string, keys []string) (int64, error) {
	if err := v.store.failure("DeleteRows"); err != nil {
		return 0, err
	}
	var n int64
	err := v.with(func(d *data) error {
		for _, k := range keys {
			if _, ok := d.rows[table][k]; ok {
				delete(d.rows[table], k)
				n++
				v.store.Writes++
			}
		}
		return nil
	})
	return n, err
}

// ExecuteQuery records the statement and echoes params back as a single row
func (v *view) ExecuteQuery(_ context.Context, statement string, params map[string]interface{}) ([]map[string]interface{}, error) {
	if err := v.store.failure("ExecuteQuery"); err != nil {
		return nil, err
	}
	v.store.mu.Lock()
	v.store.Queries = append(v.store.Queries, statement)
	v.store.mu.Unlock()

	row := map[string]interface{}{"statement": statement}
	for k, val := range params {
		row[k] = val
	}
	return []map[string]interface{}{row}, nil
}

type memTx struct {
	view
	done bool
}

// Begin inside a transaction joins it
func (t *memTx) Begin(context.Context) (action.Tx, error) {
	return &joinedTx{memTx: t}, nil
}

func (t *memTx) Commit() error {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.done {
		return nil
	}
	t.done = true
	if s.CommitErr != nil {
		s.Rollbacks++
		return s.CommitErr
	}
	s.data = t.data
	s.Commits++
	return nil
}

func (t *memTx) Rollback() error {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.done {
		return nil
	}
	t.done = true
	s.Rollbacks++
	return nil
}

// joinedTx leaves commit and rollback to the outer transaction
type joinedTx struct {
	*memTx
}

func (j *joinedTx) Commit() error   { return nil }
func (j *joinedTx) Rollback() error { return nil }
