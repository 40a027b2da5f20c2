//go:build integration

package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"mailguard/internal/settings/store"
	"mailguard/pkg/testutil/containers"
)

// backend is the surface both integration suites exercise.
type backend interface {
	Load(ctx context.Context) (map[string]string, error)
	Save(ctx context.Context, values map[string]string) error
	SaveMissing(ctx context.Context, values map[string]string) error
	Ping(ctx context.Context) error
}

type backendSuite struct {
	suite.Suite
	store backend
	reset func(ctx context.Context) error
}

func (s *backendSuite) SetupTest() {
	s.Require().NoError(s.reset(context.Background()))
}

func (s *backendSuite) TestRoundTrip() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, map[string]string{"api_token": "T1", "enabled": "1"}))
	s.Require().NoError(s.store.Save(ctx, map[string]string{"enabled": "0"}))

	values, err := s.store.Load(ctx)
	s.Require().NoError(err)
	s.Equal(map[string]string{"api_token": "T1", "enabled": "0"}, values)
}

func (s *backendSuite) TestConcurrentSeedingKeepsFirstWrite() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, map[string]string{"enabled": "1"}))

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.NoError(s.store.SaveMissing(ctx, map[string]string{"enabled": "0", "token_type": ""}))
		}()
	}
	wg.Wait()

	values, err := s.store.Load(ctx)
	s.Require().NoError(err)
	s.Equal("1", values["enabled"])
	s.Contains(values, "token_type")
	s.NoError(s.store.Ping(ctx))
}

type PostgresStoreSuite struct{ backendSuite }

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	pg := containers.GetManager().GetPostgres(s.T())
	pgStore := store.NewPostgres(pg.DB)
	s.Require().NoError(pgStore.Migrate(context.Background()))
	s.store = pgStore
	s.reset = func(ctx context.Context) error { return pg.TruncateTables(ctx, "settings") }
}

type RedisStoreSuite struct{ backendSuite }

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	rc := containers.GetManager().GetRedis(s.T())
	s.store = store.NewRedis(rc.Client)
	s.reset = rc.Flush
}
