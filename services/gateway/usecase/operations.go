package usecase

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/piresc/arbiter/internal/pkg/action"
	"github.com/piresc/arbiter/internal/pkg/apperror"
	"github.com/piresc/arbiter/internal/pkg/constants"
	"github.com/piresc/arbiter/internal/pkg/models"
)

// callParams is the union of the params every local operation accepts
type callParams struct {
	Name        string `json:"name"`
	ShowDeleted bool   `json:"showDeleted"`
	OnDuplicate string `json:"onDuplicate"`
	OnNotFound  string `json:"onNotFound"`
}

// operation builds the leaf for one invocation and names its guard
type operation struct {
	permission    action.Permission
	transactional bool
	filterList    bool
	build         func(p callParams, data json.RawMessage) (action.Action, error)
}

func (uc *GatewayUC) registerOperations() map[string]operation {
	editor := action.HasRole(uc.cfg.Permissions.EditorRole)
	runner := action.HasRole(uc.cfg.Permissions.RunnerRole)

	ops := map[string]operation{
		constants.OpQueryTableData: {
			permission: action.Authenticated,
			build: func(p callParams, _ json.RawMessage) (action.Action, error) {
				if err := requireName(p); err != nil {
					return nil, err
				}
				return action.QueryTableData(p.Name), nil
			},
		},
		constants.OpInsertTableData: {
			permission:    editor,
			transactional: true,
			build: func(p callParams, data json.RawMessage) (action.Action, error) {
				rows, err := decodeRows(p, data)
				if err != nil {
					return nil, err
				}
				return action.InsertTableData(p.Name, rows), nil
			},
		},
		constants.OpUpdateTableData: {
			permission:    editor,
			transactional: true,
			build: func(p callParams, data json.RawMessage) (action.Action, error) {
				rows, err := decodeRows(p, data)
				if err != nil {
					return nil, err
				}
				return action.UpdateTableData(p.Name, rows), nil
			},
		},
		constants.OpDeleteTableData: {
			permission:    editor,
			transactional: true,
			build: func(p callParams, data json.RawMessage) (action.Action, error) {
				if err := requireName(p); err != nil {
					return nil, err
				}
				var keys []string
				if err := decodeData(data, &keys); err != nil {
					return nil, err
				}
				return action.DeleteTableData(p.Name, keys), nil
			},
		},
		constants.OpRunQuery: {
			permission:    runner,
			transactional: true,
			build: func(p callParams, data json.RawMessage) (action.Action, error) {
				if err := requireName(p); err != nil {
					return nil, err
				}
				var args map[string]interface{}
				if len(data) > 0 {
					if err := decodeData(data, &args); err != nil {
						return nil, err
					}
				}
				return action.RunQuery(p.Name, args), nil
			},
		},
		constants.OpRunScript: {
			permission: runner,
			build: func(p callParams, data json.RawMessage) (action.Action, error) {
				if err := requireName(p); err != nil {
					return nil, err
				}
				return action.RunScript(uc.scriptGW, p.Name, data), nil
			},
		},
		constants.OpNothing: {
			permission: action.Anyone,
			build: func(callParams, json.RawMessage) (action.Action, error) {
				return action.Nothing(), nil
			},
		},
	}

	kinds := []struct {
		kind                           models.EntityKind
		list, get, create, upd, delete string
	}{
		{models.KindTable, constants.OpGetAllTables, constants.OpGetTable, constants.OpCreateTable, constants.OpUpdateTable, constants.OpDeleteTable},
		{models.KindQuery, constants.OpGetAllQueries, constants.OpGetQuery, constants.OpCreateQuery, constants.OpUpdateQuery, constants.OpDeleteQuery},
		{models.KindScript, constants.OpGetAllScripts, constants.OpGetScript, constants.OpCreateScript, constants.OpUpdateScript, constants.OpDeleteScript},
	}
	for _, k := range kinds {
		kind := k.kind
		ops[k.list] = operation{
			permission: action.Authenticated,
			filterList: true,
			build: func(p callParams, _ json.RawMessage) (action.Action, error) {
				return action.ListEntities(kind, p.ShowDeleted), nil
			},
		}
		ops[k.get] = operation{
			permission: action.Authenticated,
			build: func(p callParams, _ json.RawMessage) (action.Action, error) {
				if err := requireName(p); err != nil {
					return nil, err
				}
				return action.GetEntity(kind, p.Name), nil
			},
		}
		ops[k.create] = operation{
			permission:    action.AdminOnly,
			transactional: true,
			build: func(p callParams, data json.RawMessage) (action.Action, error) {
				policy, err := action.ParseOnDuplicate(p.OnDuplicate)
				if err != nil {
					return nil, apperror.InvalidParams(err)
				}
				payload, err := decodePayload(data)
				if err != nil {
					return nil, err
				}
				if payload.Name == "" {
					return nil, apperror.InvalidParams(errors.New("data.name is required"))
				}
				return action.CreateEntity(kind, payload, policy), nil
			},
		}
		ops[k.upd] = operation{
			permission:    action.AdminOnly,
			transactional: true,
			build: func(p callParams, data json.RawMessage) (action.Action, error) {
				if err := requireName(p); err != nil {
					return nil, err
				}
				policy, err := action.ParseOnNotFound(p.OnNotFound)
				if err != nil {
					return nil, apperror.InvalidParams(err)
				}
				payload, err := decodePayload(data)
				if err != nil {
					return nil, err
				}
				return action.UpdateEntity(kind, p.Name, payload, policy), nil
			},
		}
		ops[k.delete] = operation{
			permission:    action.AdminOnly,
			transactional: true,
			build: func(p callParams, _ json.RawMessage) (action.Action, error) {
				if err := requireName(p); err != nil {
					return nil, err
				}
				policy, err := action.ParseOnNotFound(p.OnNotFound)
				if err != nil {
					return nil, apperror.InvalidParams(err)
				}
				return action.DeleteEntity(kind, p.Name, policy), nil
			},
		}
	}
	return ops
}

func requireName(p callParams) error {
	if p.Name == "" {
		return apperror.InvalidParams(errors.New("params.name is required"))
	}
	return nil
}

func decodeData(data json.RawMessage, out interface{}) error {
	if len(data) == 0 {
		return apperror.InvalidParams(errors.New("data is required"))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperror.InvalidParams(fmt.Errorf("data: %w", err))
	}
	return nil
}

func decodePayload(data json.RawMessage) (*models.EntityPayload, error) {
	var payload models.EntityPayload
	if err := decodeData(data, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func decodeRows(p callParams, data json.RawMessage) ([]models.Row, error) {
	if err := requireName(p); err != nil {
		return nil, err
	}
	var rows []models.Row
	if err := decodeData(data, &rows); err != nil {
		return nil, err
	}
	for i, row := range rows {
		if row.Key == "" {
			return nil, apperror.InvalidParams(fmt.Errorf("data[%d].key is required", i))
		}
	}
	return rows, nil
}
