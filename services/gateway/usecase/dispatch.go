package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/piresc/arbiter/internal/pkg/action"
	"github.com/piresc/arbiter/internal/pkg/apperror"
	"github.com/piresc/arbiter/internal/pkg/constants"
	appctx "github.com/piresc/arbiter/internal/pkg/context"
	"github.com/piresc/arbiter/internal/pkg/logger"
	"github.com/piresc/arbiter/internal/pkg/models"
	nrpkg "github.com/piresc/arbiter/internal/pkg/newrelic"
)

// Dispatch builds the decorated action for inv and runs it
func (uc *GatewayUC) Dispatch(ctx context.Context, inv *models.Invocation) (*models.Outcome, error) {
	ctx, end := nrpkg.StartTransaction(ctx, uc.nrApp, "call/"+inv.Function)
	defer end()

	a, err := uc.buildAction(inv)
	if err != nil {
		return nil, err
	}

	outcome, err := a.Call(ctx, &action.State{Claims: inv.Claims, Store: uc.entityRepo})
	if err != nil {
		appErr := apperror.From(err)
		if appErr.Code == constants.ErrorUnknown || appErr.Code == constants.ErrorBadGateway {
			logger.ErrorCtx(ctx, "Action failed",
				logger.String("function", inv.Function),
				logger.String("conn_id", appctx.GetConnID(ctx)),
				logger.String("action", a.Name()),
				logger.Err(err))
			nrpkg.NoticeError(ctx, err)
		}
		return nil, appErr
	}

	outcome.Action = inv.Function
	if len(outcome.PublishTo) > 0 {
		uc.emitActionCompleted(ctx, inv, outcome)
	}
	return outcome, nil
}

func (uc *GatewayUC) buildAction(inv *models.Invocation) (action.Action, error) {
	if uc.cfg.Upstream.Mode == constants.ExecutorUpstream {
		return action.Chain(
			action.Upstream(uc.executorGW, inv),
			action.RequirePermission(action.Authenticated),
		), nil
	}

	op, ok := uc.operations[inv.Function]
	if !ok {
		return nil, apperror.NotFound(fmt.Sprintf("unknown function %q", inv.Function))
	}

	var p callParams
	if len(inv.Params) > 0 {
		if err := json.Unmarshal(inv.Params, &p); err != nil {
			return nil, apperror.InvalidParams(err)
		}
	}

	leaf, err := op.build(p, inv.Data)
	if err != nil {
		return nil, err
	}

	decorators := []action.Decorator{action.RequirePermission(op.permission)}
	if op.filterList {
		decorators = append(decorators, action.FilterList(action.EntityVisible))
	}
	if op.transactional {
		decorators = append(decorators, action.Transactional())
	}
	return action.Chain(leaf, decorators...), nil
}

func (uc *GatewayUC) emitActionCompleted(ctx context.Context, inv *models.Invocation, outcome *models.Outcome) {
	if uc.eventGW == nil {
		return
	}
	event := &models.ActionEvent{
		Function:   inv.Function,
		Channels:   outcome.PublishTo,
		OccurredAt: uc.now().UTC(),
	}
	if inv.Claims != nil {
		event.Username = inv.Claims.Subject
	}
	if err := uc.eventGW.PublishActionCompleted(ctx, event); err != nil {
		logger.Warn("Failed to publish action event",
			logger.String("function", inv.Function),
			logger.Err(err))
	}
}
