package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) TestLoadEmpty() {
	values, err := s.store.Load(s.ctx)
	s.Require().NoError(err)
	s.Empty(values)
}

func (s *InMemoryStoreSuite) TestSaveOverwrites() {
	s.Require().NoError(s.store.Save(s.ctx, map[string]string{"enabled": "0", "api_token": "T1"}))
	s.Require().NoError(s.store.Save(s.ctx, map[string]string{"enabled": "1"}))

	values, err := s.store.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal(map[string]string{"enabled": "1", "api_token": "T1"}, values)
}

func (s *InMemoryStoreSuite) TestSaveMissingKeepsExisting() {
	s.Require().NoError(s.store.Save(s.ctx, map[string]string{"enabled": "1"}))
	s.Require().NoError(s.store.SaveMissing(s.ctx, map[string]string{"enabled": "0", "api_token": ""}))

	values, err := s.store.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal("1", values["enabled"])
	s.Contains(values, "api_token")
}

func (s *InMemoryStoreSuite) TestLoadReturnsCopy() {
	s.Require().NoError(s.store.Save(s.ctx, map[string]string{"enabled": "1"}))
	values, err := s.store.Load(s.ctx)
	s.Require().NoError(err)
	values["enabled"] = "0"

	again, err := s.store.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal("1", again["enabled"])
}

func (s *InMemoryStoreSuite) TestConcurrentAccess() {
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.store.Save(s.ctx, map[string]string{"enabled": "1"})
		}()
		go func() {
			defer wg.Done()
			_, _ = s.store.Load(s.ctx)
		}()
	}
	wg.Wait()
	s.NoError(s.store.Ping(s.ctx))
}
