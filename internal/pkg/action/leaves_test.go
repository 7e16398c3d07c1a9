package action_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/piresc/arbiter/internal/pkg/action"
	"github.com/piresc/arbiter/internal/pkg/action/actiontest"
	"github.com/piresc/arbiter/internal/pkg/apperror"
	"github.com/piresc/arbiter/internal/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, a action.Action, store action.Store) (*models.Outcome, error) {
	t.Helper()
	return a.Call(context.Background(), &action.State{Claims: admin, Store: store})
}

func TestCreateEntity_Policies(t *testing.T) {
	existing := models.Entity{Kind: models.KindTable, Name: "users", Description: "old"}
	payload := &models.EntityPayload{Name: "users", Description: "new"}

	tests := []struct {
		name        string
		policy      action.OnDuplicate
		wantErr     error
		wantDesc    string
		wantPublish []string
	}{
		{name: "fail", policy: action.OnDuplicateFail, wantErr: apperror.ErrAlreadyExists, wantDesc: "old"},
		{name: "ignore keeps existing", policy: action.OnDuplicateIgnore, wantDesc: "old"},
		{name: "update overwrites", policy: action.OnDuplicateUpdate, wantDesc: "new", wantPublish: []string{"tables", "table:users"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := actiontest.NewMemStore().Seed(existing)

			out, err := call(t, action.CreateEntity(models.KindTable, payload, tt.policy), store)

			stored, ok := store.Entity(models.KindTable, "users")
			require.True(t, ok)
			assert.Equal(t, tt.wantDesc, stored.Description)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, out)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPublish, out.PublishTo)
			assert.Equal(t, tt.wantDesc, out.Data.(*models.Entity).Description)
		})
	}
}

func TestCreateEntity_NewPublishesCollectionAndEntity(t *testing.T) {
	store := actiontest.NewMemStore()

	out, err := call(t, action.CreateEntity(models.KindQuery, &models.EntityPayload{Name: "by_id"}, action.OnDuplicateFail), store)

	require.NoError(t, err)
	assert.Equal(t, []string{"queries", "query:by_id"}, out.PublishTo)
	assert.Empty(t, out.SubscribeTo)
}

func TestCreateEntity_StorageFailureIsUnknown(t *testing.T) {
	store := actiontest.NewMemStore()
	store.Fail["CreateEntity"] = errors.New("disk full")

	_, err := call(t, action.CreateEntity(models.KindTable, tablePayload("users"), action.OnDuplicateFail), store)

	assert.ErrorIs(t, err, apperror.ErrUnknown)
}

func TestUpdateEntity(t *testing.T) {
	t.Run("rename publishes old and new channels", func(t *testing.T) {
		store := actiontest.NewMemStore().Seed(models.Entity{Kind: models.KindTable, Name: "users"})

		out, err := call(t, action.UpdateEntity(models.KindTable, "users", &models.EntityPayload{Name: "people"}, action.OnNotFoundFail), store)

		require.NoError(t, err)
		assert.Equal(t, []string{"tables", "table:users", "table:people"}, out.PublishTo)
		_, stillThere := store.Entity(models.KindTable, "users")
		assert.False(t, stillThere)
	})

	t.Run("empty name keeps the current one", func(t *testing.T) {
		store := actiontest.NewMemStore().Seed(models.Entity{Kind: models.KindTable, Name: "users"})

		payload := &models.EntityPayload{Description: "accounts"}
		out, err := call(t, action.UpdateEntity(models.KindTable, "users", payload, action.OnNotFoundFail), store)

		require.NoError(t, err)
		assert.Equal(t, []string{"tables", "table:users"}, out.PublishTo)
		stored, _ := store.Entity(models.KindTable, "users")
		assert.Equal(t, "accounts", stored.Description)
		assert.Empty(t, payload.Name, "caller payload is not mutated")
	})

	t.Run("missing fails", func(t *testing.T) {
		_, err := call(t, action.UpdateEntity(models.KindTable, "ghost", &models.EntityPayload{}, action.OnNotFoundFail), actiontest.NewMemStore())
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("missing ignored publishes nothing", func(t *testing.T) {
		out, err := call(t, action.UpdateEntity(models.KindTable, "ghost", &models.EntityPayload{}, action.OnNotFoundIgnore), actiontest.NewMemStore())
		require.NoError(t, err)
		assert.Empty(t, out.PublishTo)
		assert.Nil(t, out.Data)
	})

	t.Run("rename onto a taken name", func(t *testing.T) {
		store := actiontest.NewMemStore().Seed(
			models.Entity{Kind: models.KindTable, Name: "users"},
			models.Entity{Kind: models.KindTable, Name: "people"},
		)
		_, err := call(t, action.UpdateEntity(models.KindTable, "users", &models.EntityPayload{Name: "people"}, action.OnNotFoundFail), store)
		assert.ErrorIs(t, err, apperror.ErrAlreadyExists)
	})
}

func TestDeleteEntity(t *testing.T) {
	store := actiontest.NewMemStore().Seed(models.Entity{Kind: models.KindScript, Name: "cleanup"})

	out, err := call(t, action.DeleteEntity(models.KindScript, "cleanup", action.OnNotFoundFail), store)
	require.NoError(t, err)
	assert.Equal(t, []string{"scripts", "script:cleanup"}, out.PublishTo)
	assert.Equal(t, map[string]string{"kind": "script", "name": "cleanup"}, out.Data)

	stored, ok := store.Entity(models.KindScript, "cleanup")
	require.True(t, ok)
	assert.True(t, stored.IsDeleted)

	_, err = call(t, action.DeleteEntity(models.KindScript, "cleanup", action.OnNotFoundFail), store)
	assert.ErrorIs(t, err, apperror.ErrNotFound, "second delete sees a missing entity")

	out, err = call(t, action.DeleteEntity(models.KindScript, "cleanup", action.OnNotFoundIgnore), store)
	require.NoError(t, err)
	assert.Empty(t, out.PublishTo)
}

func TestDeleteEntity_RecreatedTableStartsEmpty(t *testing.T) {
	store := actiontest.NewMemStore().Seed(models.Entity{Kind: models.KindTable, Name: "orders"})
	store.SeedRows("orders", models.Row{Key: "1", Data: json.RawMessage(`{"total":10}`)})

	_, err := call(t, action.DeleteEntity(models.KindTable, "orders", action.OnNotFoundFail), store)
	require.NoError(t, err)
	assert.Empty(t, store.Rows("orders"))

	_, err = call(t, action.CreateEntity(models.KindTable, tablePayload("orders"), action.OnDuplicateFail), store)
	require.NoError(t, err)

	out, err := call(t, action.QueryTableData("orders"), store)
	require.NoError(t, err)
	assert.Equal(t, []models.Row{}, out.Data)
}

func TestListEntities_DeletedHiddenByDefault(t *testing.T) {
	store := actiontest.NewMemStore().Seed(
		models.Entity{Kind: models.KindTable, Name: "live"},
		models.Entity{Kind: models.KindTable, Name: "gone", IsDeleted: true},
		models.Entity{Kind: models.KindQuery, Name: "other"},
	)

	out, err := call(t, action.ListEntities(models.KindTable, false), store)
	require.NoError(t, err)
	assert.Len(t, out.Data, 1)

	out, err = call(t, action.ListEntities(models.KindTable, true), store)
	require.NoError(t, err)
	assert.Len(t, out.Data, 2)

	out, err = call(t, action.ListEntities(models.KindScript, false), store)
	require.NoError(t, err)
	assert.Equal(t, []models.Entity{}, out.Data)
	assert.Equal(t, []string{"scripts"}, out.SubscribeTo)
}

func TestGetEntity(t *testing.T) {
	store := actiontest.NewMemStore().Seed(models.Entity{Kind: models.KindTable, Name: "orders"})

	out, err := call(t, action.GetEntity(models.KindTable, "orders"), store)
	require.NoError(t, err)
	assert.Equal(t, []string{"table:orders"}, out.SubscribeTo)

	_, err = call(t, action.GetEntity(models.KindTable, "missing"), store)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestTableData(t *testing.T) {
	store := actiontest.NewMemStore().Seed(models.Entity{Kind: models.KindTable, Name: "orders"})
	rows := []models.Row{
		{Key: "1", Data: json.RawMessage(`{"total":10}`)},
		{Key: "2", Data: json.RawMessage(`{"total":20}`)},
	}

	out, err := call(t, action.InsertTableData("orders", rows), store)
	require.NoError(t, err)
	assert.Equal(t, []string{"table:orders:data"}, out.PublishTo)
	assert.Len(t, store.Rows("orders"), 2)

	_, err = call(t, action.InsertTableData("orders", rows[:1]), store)
	assert.ErrorIs(t, err, apperror.ErrAlreadyExists)

	out, err = call(t, action.QueryTableData("orders"), store)
	require.NoError(t, err)
	assert.Equal(t, rows, out.Data)
	assert.Equal(t, []string{"table:orders:data"}, out.SubscribeTo)

	changed := []models.Row{{Key: "2", Data: json.RawMessage(`{"total":25}`)}, {Key: "9", Data: json.RawMessage(`{}`)}}
	out, err = call(t, action.UpdateTableData("orders", changed), store)
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.Data.(map[string]interface{})["updated"])
	assert.JSONEq(t, `{"total":25}`, string(store.Rows("orders")[1].Data))

	out, err = call(t, action.DeleteTableData("orders", []string{"1", "9"}), store)
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.Data.(map[string]interface{})["deleted"])
	assert.Len(t, store.Rows("orders"), 1)
}

func TestTableData_UnknownTable(t *testing.T) {
	store := actiontest.NewMemStore()

	for _, a := range []action.Action{
		action.QueryTableData("nope"),
		action.InsertTableData("nope", nil),
		action.UpdateTableData("nope", nil),
		action.DeleteTableData("nope", nil),
	} {
		_, err := call(t, a, store)
		assert.ErrorIs(t, err, apperror.ErrNotFound, a.Name())
	}
	assert.Zero(t, store.Writes)
}

func TestRunQuery(t *testing.T) {
	store := actiontest.NewMemStore().Seed(
		models.Entity{Kind: models.KindQuery, Name: "by_customer", Definition: json.RawMessage(`{"statement":"select * from orders where customer = :customer"}`)},
		models.Entity{Kind: models.KindQuery, Name: "broken", Definition: json.RawMessage(`{}`)},
	)

	out, err := call(t, action.RunQuery("by_customer", map[string]interface{}{"customer": "acme"}), store)
	require.NoError(t, err)
	rows := out.Data.([]map[string]interface{})
	require.Len(t, rows, 1)
	assert.Equal(t, "acme", rows[0]["customer"])
	assert.Equal(t, []string{"select * from orders where customer = :customer"}, store.Queries)

	_, err = call(t, action.RunQuery("broken", nil), store)
	assert.ErrorIs(t, err, apperror.ErrUnknown)

	_, err = call(t, action.RunQuery("missing", nil), store)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestSingleEntityAccess_HiddenByRoles(t *testing.T) {
	store := actiontest.NewMemStore().Seed(
		models.Entity{Kind: models.KindTable, Name: "payroll", Roles: models.StringList{"finance"}},
		models.Entity{Kind: models.KindQuery, Name: "salaries", Roles: models.StringList{"finance"}, Definition: json.RawMessage(`{"statement":"select 1"}`)},
		models.Entity{Kind: models.KindScript, Name: "bonus", Roles: models.StringList{"finance"}},
	)
	store.SeedRows("payroll", models.Row{Key: "alice", Data: json.RawMessage(`{"salary":1}`)})
	runner := &fakeRunner{result: json.RawMessage(`{}`)}

	actions := []action.Action{
		action.GetEntity(models.KindTable, "payroll"),
		action.QueryTableData("payroll"),
		action.InsertTableData("payroll", []models.Row{{Key: "bob", Data: json.RawMessage(`{}`)}}),
		action.UpdateTableData("payroll", []models.Row{{Key: "alice", Data: json.RawMessage(`{}`)}}),
		action.DeleteTableData("payroll", []string{"alice"}),
		action.RunQuery("salaries", nil),
		action.RunScript(runner, "bonus", nil),
	}

	for _, a := range actions {
		t.Run(a.Name()+" reads as missing to outsiders", func(t *testing.T) {
			_, err := a.Call(context.Background(), &action.State{Claims: viewer, Store: store})
			assert.ErrorIs(t, err, apperror.ErrNotFound)
		})
	}
	assert.Zero(t, store.Writes)
	assert.Empty(t, store.Queries)
	assert.Empty(t, runner.gotScript)
	assert.Len(t, store.Rows("payroll"), 1)

	finance := &models.Claims{Subject: "fi", Roles: []string{"finance"}}
	for _, a := range actions[:2] {
		t.Run(a.Name()+" serves role holders", func(t *testing.T) {
			_, err := a.Call(context.Background(), &action.State{Claims: finance, Store: store})
			assert.NoError(t, err)
		})
	}
}

type fakeRunner struct {
	gotScript string
	gotArgs   json.RawMessage
	result    json.RawMessage
	err       error
}

func (f *fakeRunner) RunScript(_ context.Context, script *models.Entity, args json.RawMessage) (json.RawMessage, error) {
	f.gotScript = script.Name
	f.gotArgs = args
	return f.result, f.err
}

func TestRunScript(t *testing.T) {
	store := actiontest.NewMemStore().Seed(models.Entity{Kind: models.KindScript, Name: "rollup"})

	t.Run("result becomes data", func(t *testing.T) {
		runner := &fakeRunner{result: json.RawMessage(`{"ok":true}`)}
		out, err := call(t, action.RunScript(runner, "rollup", json.RawMessage(`[1,2]`)), store)
		require.NoError(t, err)
		assert.Equal(t, json.RawMessage(`{"ok":true}`), out.Data)
		assert.Equal(t, "rollup", runner.gotScript)
		assert.JSONEq(t, `[1,2]`, string(runner.gotArgs))
	})

	t.Run("runner error keeps its code", func(t *testing.T) {
		runner := &fakeRunner{err: apperror.Upstream("script crashed")}
		_, err := call(t, action.RunScript(runner, "rollup", nil), store)
		assert.True(t, apperror.HasCode(err, apperror.ErrUpstream.Code))
	})

	t.Run("missing script never reaches the runner", func(t *testing.T) {
		runner := &fakeRunner{}
		_, err := call(t, action.RunScript(runner, "nope", nil), store)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
		assert.Empty(t, runner.gotScript)
	})
}

type fakeExecutor struct {
	got *models.Invocation
	out *models.Outcome
	err error
}

func (f *fakeExecutor) Invoke(_ context.Context, inv *models.Invocation) (*models.Outcome, error) {
	f.got = inv
	return f.out, f.err
}

func TestUpstream_ForwardsCallerClaims(t *testing.T) {
	exec := &fakeExecutor{out: &models.Outcome{Data: "done", PublishTo: []string{"orders"}}}
	inv := &models.Invocation{Function: "shipOrder", Params: json.RawMessage(`{"id":1}`)}

	out, err := action.Upstream(exec, inv).Call(context.Background(), &action.State{Claims: editor})

	require.NoError(t, err)
	assert.Equal(t, "done", out.Data)
	assert.Same(t, editor, exec.got.Claims)
	assert.Nil(t, inv.Claims, "caller invocation is not mutated")
}

func TestNothing(t *testing.T) {
	out, err := action.Nothing().Call(context.Background(), &action.State{})
	require.NoError(t, err)
	assert.Empty(t, out.PublishTo)
	assert.Nil(t, out.Data)
}

func TestParsePolicies(t *testing.T) {
	d, err := action.ParseOnDuplicate("")
	require.NoError(t, err)
	assert.Equal(t, action.OnDuplicateFail, d)

	d, err = action.ParseOnDuplicate("update")
	require.NoError(t, err)
	assert.Equal(t, action.OnDuplicateUpdate, d)

	_, err = action.ParseOnDuplicate("merge")
	assert.Error(t, err)

	n, err := action.ParseOnNotFound("ignore")
	require.NoError(t, err)
	assert.Equal(t, action.OnNotFoundIgnore, n)

	_, err = action.ParseOnNotFound("skip")
	assert.Error(t, err)
}

func TestChannels(t *testing.T) {
	assert.Equal(t, "tables", action.CollectionChannel(models.KindTable))
	assert.Equal(t, "queries", action.CollectionChannel(models.KindQuery))
	assert.Equal(t, "scripts", action.CollectionChannel(models.KindScript))
	assert.Equal(t, "query:daily", action.EntityChannel(models.KindQuery, "daily"))
	assert.Equal(t, "table:orders:data", action.RowsChannel("orders"))
}
