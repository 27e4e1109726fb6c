// Package services contains server-side business logic: the session
// lifecycle (register, login, refresh rotation, logout, authenticate) and the
// CRUD orchestration of users, projects and tasks.
package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
)

var passthrough = []error{
	common.ErrorNotFound,
	common.ErrorConflict,
	common.ErrorForbidden,
	common.ErrorInvalidInput,
	common.ErrorInternal,
	common.ErrAuthenticationFailed,
	common.ErrInvalidToken,
	common.ErrTokenNotFound,
}

// internalError returns err unchanged when it already carries one of the
// common sentinels; anything else is logged and replaced by ErrorInternal.
func internalError(ctx context.Context, log logging.Logger, op string, err error) error {
	for _, target := range passthrough {
		if errors.Is(err, target) {
			return err
		}
	}
	log.Error(ctx, op+" failed", "error", err)
	return common.ErrorInternal
}
