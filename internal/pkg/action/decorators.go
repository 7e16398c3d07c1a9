package action

import (
	"context"
	"errors"
	"fmt"

	"github.com/piresc/arbiter/internal/pkg/apperror"
	"github.com/piresc/arbiter/internal/pkg/logger"
	"github.com/piresc/arbiter/internal/pkg/models"
)

type permissionRequired struct {
	inner      Action
	permission Permission
}

// WithPermissionRequired runs inner only when the caller satisfies permission.
// Otherwise it fails with Forbidden and inner is never called.
func WithPermissionRequired(inner Action, permission Permission) Action {
	return &permissionRequired{inner: inner, permission: permission}
}

// RequirePermission is WithPermissionRequired as a Decorator
func RequirePermission(permission Permission) Decorator {
	return func(inner Action) Action {
		return WithPermissionRequired(inner, permission)
	}
}

func (p *permissionRequired) Name() string { return p.inner.Name() }

func (p *permissionRequired) Call(ctx context.Context, st *State) (*models.Outcome, error) {
	if !p.permission.Allows(st.Claims) {
		return nil, apperror.Forbidden(fmt.Sprintf("%s requires %s", p.inner.Name(), p.permission))
	}
	return p.inner.Call(ctx, st)
}

type transactional struct {
	inner Action
}

// WithTransaction runs inner against a transaction that is committed when
// inner succeeds and rolled back when it fails
func WithTransaction(inner Action) Action {
	return &transactional{inner: inner}
}

// Transactional is WithTransaction as a Decorator
func Transactional() Decorator {
	return WithTransaction
}

func (t *transactional) Name() string { return t.inner.Name() }

func (t *transactional) Call(ctx context.Context, st *State) (*models.Outcome, error) {
	if st.Store == nil {
		return nil, apperror.Unknown(errors.New("no store configured"))
	}

	tx, err := st.Store.Begin(ctx)
	if err != nil {
		return nil, apperror.Unknown(fmt.Errorf("begin transaction: %w", err))
	}

	out, err := t.inner.Call(ctx, st.withStore(tx))
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("Failed to roll back transaction",
				logger.String("action", t.inner.Name()),
				logger.Err(rbErr))
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, apperror.Unknown(fmt.Errorf("commit transaction: %w", err))
	}
	return out, nil
}

type filterList[T any] struct {
	inner   Action
	visible func(c *models.Claims, item T) bool
}

// WithFilterListByPermission drops the items of a []T result the caller may
// not see. Results of any other shape pass through untouched.
func WithFilterListByPermission[T any](inner Action, visible func(c *models.Claims, item T) bool) Action {
	return &filterList[T]{inner: inner, visible: visible}
}

// FilterList is WithFilterListByPermission as a Decorator
func FilterList[T any](visible func(c *models.Claims, item T) bool) Decorator {
	return func(inner Action) Action {
		return WithFilterListByPermission(inner, visible)
	}
}

func (f *filterList[T]) Name() string { return f.inner.Name() }

func (f *filterList[T]) Call(ctx context.Context, st *State) (*models.Outcome, error) {
	out, err := f.inner.Call(ctx, st)
	if err != nil || out == nil {
		return out, err
	}

	items, ok := out.Data.([]T)
	if !ok {
		return out, nil
	}

	kept := make([]T, 0, len(items))
	for _, item := range items {
		if f.visible(st.Claims, item) {
			kept = append(kept, item)
		}
	}

	filtered := *out
	filtered.Data = kept
	return &filtered, nil
}
