package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/cache"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/policy"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
)

// NewUser is the input of an administrative account creation.
type NewUser struct {
	Username string
	Email    string
	Password string
	Role     string
	Phone    string
}

type UserService struct {
	runner dbx.TxRunner
	repos  repomanager.RepositoryManager
	hasher PasswordHasher
	rules  policy.UserRules
	cache  *cache.Reader
	log    logging.Logger
}

func NewUserService(runner dbx.TxRunner, m repomanager.RepositoryManager, hasher PasswordHasher,
	engine *policy.Engine, reader *cache.Reader, log logging.Logger) *UserService {
	return &UserService{runner: runner, repos: m, hasher: hasher, rules: engine.Users(), cache: reader, log: log}
}

// Get returns user id through the read-through cache.
func (s *UserService) Get(ctx context.Context, actor models.Identity, id int64) (*models.User, error) {
	u, err := cache.ReadThrough(ctx, s.cache, cache.KindUser, id,
		func(ctx context.Context) (*models.User, error) {
			return s.repos.Users(s.runner.Conn()).GetByID(ctx, id)
		},
		func(u *models.User) error { return policy.Check(s.rules.CanRead(actor, u)) },
	)
	if err != nil {
		return nil, internalError(ctx, s.log, "get user", err)
	}
	return u, nil
}

// List returns every account to admins and only their own to everyone else.
func (s *UserService) List(ctx context.Context, actor models.Identity, f models.UserFilter) ([]*models.User, error) {
	if !actor.IsAdmin() {
		f.OnlyID = actor.ID
	}
	f.Page = f.Page.Normalize()

	list, err := s.repos.Users(s.runner.Conn()).List(ctx, f)
	if err != nil {
		return nil, internalError(ctx, s.log, "list users", err)
	}
	return list, nil
}

// Create adds an account with any role. Only admins may call it.
func (s *UserService) Create(ctx context.Context, actor models.Identity, in NewUser) (*models.User, error) {
	if err := policy.Check(s.rules.CanCreate(actor)); err != nil {
		return nil, err
	}
	if err := validateCredentials(in.Username, in.Email, in.Password); err != nil {
		return nil, err
	}
	role := in.Role
	switch role {
	case "":
		role = common.RoleUser
	case common.RoleUser, common.RoleAdmin:
	default:
		return nil, fmt.Errorf("%w: unknown role %q", common.ErrorInvalidInput, role)
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, internalError(ctx, s.log, "create user", err)
	}

	var user *models.User
	err = s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Users(tx)

		taken, err := repo.Taken(ctx, in.Username, in.Email, 0)
		if err != nil {
			return err
		}
		if taken {
			return common.ErrorConflict
		}

		user, err = repo.Create(ctx, &models.User{
			Username:     in.Username,
			Email:        in.Email,
			PasswordHash: hash,
			Role:         role,
			Phone:        in.Phone,
		})
		return err
	})
	if err != nil {
		return nil, internalError(ctx, s.log, "create user", err)
	}
	return user, nil
}

// Update applies the non-nil fields of upd to user id. A new password is
// re-hashed; a username or email already used by someone else is a conflict.
func (s *UserService) Update(ctx context.Context, actor models.Identity, id int64, upd models.UserUpdate) (*models.User, error) {
	user, err := s.repos.Users(s.runner.Conn()).GetByID(ctx, id)
	if err != nil {
		return nil, internalError(ctx, s.log, "update user", err)
	}
	if err := policy.Check(s.rules.CanUpdate(actor, user)); err != nil {
		return nil, err
	}

	if upd.Username != nil {
		if strings.TrimSpace(*upd.Username) == "" {
			return nil, fmt.Errorf("%w: username is required", common.ErrorInvalidInput)
		}
		user.Username = *upd.Username
	}
	if upd.Email != nil {
		if _, err := mail.ParseAddress(*upd.Email); err != nil {
			return nil, fmt.Errorf("%w: malformed email", common.ErrorInvalidInput)
		}
		user.Email = *upd.Email
	}
	if upd.Phone != nil {
		user.Phone = *upd.Phone
	}
	if upd.Password != nil {
		if *upd.Password == "" {
			return nil, fmt.Errorf("%w: password is required", common.ErrorInvalidInput)
		}
		user.PasswordHash, err = s.hasher.Hash(ctx, *upd.Password)
		if err != nil {
			return nil, internalError(ctx, s.log, "update user", err)
		}
	}

	var updated *models.User
	err = s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Users(tx)

		if upd.Username != nil || upd.Email != nil {
			taken, err := repo.Taken(ctx, user.Username, user.Email, user.ID)
			if err != nil {
				return err
			}
			if taken {
				return common.ErrorConflict
			}
		}

		var err error
		updated, err = repo.Update(ctx, user)
		return err
	})
	if err != nil {
		return nil, internalError(ctx, s.log, "update user", err)
	}

	s.cache.Invalidate(ctx, cache.KindUser, id)
	return updated, nil
}

// Delete removes user id together with their refresh token and projects,
// and unassigns their tasks. Cached copies of every touched row are dropped.
func (s *UserService) Delete(ctx context.Context, actor models.Identity, id int64) error {
	user, err := s.repos.Users(s.runner.Conn()).GetByID(ctx, id)
	if err != nil {
		return internalError(ctx, s.log, "delete user", err)
	}
	if err := policy.Check(s.rules.CanDelete(actor, user)); err != nil {
		return err
	}

	var projectIDs, taskIDs []int64
	err = s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if projectIDs, taskIDs, err = dependentsOf(ctx, s.repos, tx, id); err != nil {
			return err
		}
		return s.repos.Users(tx).Delete(ctx, id)
	})
	if err != nil {
		return internalError(ctx, s.log, "delete user", err)
	}

	s.cache.Invalidate(ctx, cache.KindUser, id)
	for _, projectID := range projectIDs {
		s.cache.Invalidate(ctx, cache.KindProject, projectID)
	}
	for _, taskID := range taskIDs {
		s.cache.Invalidate(ctx, cache.KindTask, taskID)
	}
	s.log.Info(ctx, "user deleted", "user_id", id, "by", actor.ID)
	return nil
}
