package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/cryptox"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/cache"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/policy"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const testPassword = "s3cret-pass"

// cheap parameters keep the suite fast; production cost lives in DefaultParams.
func newTestHasher() *cryptox.Hasher {
	return cryptox.NewHasher(cryptox.Params{
		Time:        1,
		MemoryKiB:   64,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}, 4)
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.AccessTokenValidityDuration = 15 * time.Minute
	cfg.RefreshTokenValidityDuration = 24 * time.Hour
	return cfg
}

func newTestCodec(t *testing.T) *auth.Codec {
	t.Helper()
	codec, err := auth.NewCodec([]byte("test-secret"), "HS256")
	require.NoError(t, err)
	return codec
}

// env is a fully wired service layer over the in-memory repositories and a
// miniredis-backed cache.
type env struct {
	repos    *repomanager.MemoryRepositoryManager
	redis    *miniredis.Miniredis
	hasher   *cryptox.Hasher
	codec    *auth.Codec
	sessions *SessionManager
	users    *UserService
	projects *ProjectService
	tasks    *TaskService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repos := repomanager.NewMemoryRepositoryManager()
	runner := dbx.DirectRunner{}
	hasher := newTestHasher()
	codec := newTestCodec(t)
	log := logging.Nop{}
	m := metrics.New()
	reader := cache.NewReader(cache.NewRedisStore(client), time.Minute, log, m)
	engine := policy.NewEngine()

	return &env{
		repos:    repos,
		redis:    mr,
		hasher:   hasher,
		codec:    codec,
		sessions: NewSessionManager(runner, repos, hasher, codec, newTestConfig(), log, m),
		users:    NewUserService(runner, repos, hasher, engine, reader, log),
		projects: NewProjectService(runner, repos, engine, reader, log),
		tasks:    NewTaskService(runner, repos, engine, reader, log),
	}
}

// seed stores an account with testPassword and returns its identity.
func (e *env) seed(t *testing.T, username, role string) models.Identity {
	t.Helper()
	hash, err := e.hasher.Hash(context.Background(), testPassword)
	require.NoError(t, err)

	u, err := e.repos.Users(nil).Create(context.Background(), &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Role:         role,
	})
	require.NoError(t, err)
	return models.Identity{ID: u.ID, Role: u.Role}
}

func (e *env) admin(t *testing.T) models.Identity {
	return e.seed(t, "root", common.RoleAdmin)
}

func (e *env) cached(kind string, id int64) bool {
	return e.redis.Exists(cache.Key(kind, id))
}
