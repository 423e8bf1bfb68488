package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mind-links/contractor-backend-go/internal/domain/wizard"
)

type SessionRepositorySuite struct {
	suite.Suite
	client *redis.Client
	repo   *sessionRepositoryImpl
	ctx    context.Context
}

func TestSessionRepositorySuite(t *testing.T) {
	if os.Getenv("TEST_REDIS_URL") == "" {
		t.Skip("TEST_REDIS_URL not set, skipping Redis integration tests")
	}
	suite.Run(t, new(SessionRepositorySuite))
}

func (s *SessionRepositorySuite) SetupSuite() {
	opts, err := redis.ParseURL(os.Getenv("TEST_REDIS_URL"))
	s.Require().NoError(err)

	s.client = redis.NewClient(opts)
	s.ctx = context.Background()
	s.Require().NoError(s.client.Ping(s.ctx).Err())
	s.repo = NewSessionRepository(s.client).(*sessionRepositoryImpl)
}

func (s *SessionRepositorySuite) TearDownSuite() {
	s.client.Close()
}

func (s *SessionRepositorySuite) SetupTest() {
	s.Require().NoError(s.client.FlushDB(s.ctx).Err())
	s.repo.now = time.Now
}

func (s *SessionRepositorySuite) newSession(ttl time.Duration) wizard.Session {
	w := wizard.New()
	w.Open()
	ct := wizard.ContractTypeMilestone
	s.Require().NoError(w.Update(wizard.Patch{ContractType: &ct}))
	s.Require().True(w.Advance())
	s.Require().False(w.Advance())

	now := time.Now()
	return wizard.Session{
		ID:        uuid.NewString(),
		OwnerID:   "user-1",
		CompanyID: "company-1",
		Snapshot:  w.Snapshot(),
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func (s *SessionRepositorySuite) TestSaveAndGet() {
	session := s.newSession(time.Hour)
	s.Require().NoError(s.repo.Save(s.ctx, session))

	got, err := s.repo.Get(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(session.OwnerID, got.OwnerID)
	s.Equal(wizard.StepPersonalDetails, got.Snapshot.State.CurrentStep)
	s.Equal(wizard.ContractTypeMilestone, got.Snapshot.Data.ContractType)
	s.Equal("Entity is required", got.Snapshot.State.Errors[wizard.FieldEntity])

	ttl, err := s.client.TTL(s.ctx, sessionKey(session.ID)).Result()
	s.Require().NoError(err)
	s.Greater(ttl, 59*time.Minute)
}

func (s *SessionRepositorySuite) TestGetMissing() {
	_, err := s.repo.Get(s.ctx, uuid.NewString())
	s.ErrorIs(err, wizard.ErrSessionNotFound)
}

func (s *SessionRepositorySuite) TestDelete() {
	session := s.newSession(time.Hour)
	s.Require().NoError(s.repo.Save(s.ctx, session))
	s.Require().NoError(s.repo.Delete(s.ctx, session.ID))

	_, err := s.repo.Get(s.ctx, session.ID)
	s.ErrorIs(err, wizard.ErrSessionNotFound)

	count, err := s.client.ZCard(s.ctx, expiryIndexKey).Result()
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *SessionRepositorySuite) TestDeleteExpired() {
	short := s.newSession(time.Minute)
	long := s.newSession(time.Hour)
	s.Require().NoError(s.repo.Save(s.ctx, short))
	s.Require().NoError(s.repo.Save(s.ctx, long))

	removed, err := s.repo.DeleteExpired(s.ctx, time.Now().Add(10*time.Minute))
	s.Require().NoError(err)
	s.Equal(1, removed)

	_, err = s.repo.Get(s.ctx, short.ID)
	s.ErrorIs(err, wizard.ErrSessionNotFound)
	_, err = s.repo.Get(s.ctx, long.ID)
	s.NoError(err)
}

func (s *SessionRepositorySuite) TestCountActive() {
	s.Require().NoError(s.repo.Save(s.ctx, s.newSession(time.Minute)))
	s.Require().NoError(s.repo.Save(s.ctx, s.newSession(time.Hour)))

	active, err := s.repo.CountActive(s.ctx, time.Now())
	s.Require().NoError(err)
	s.Equal(2, active)

	active, err = s.repo.CountActive(s.ctx, time.Now().Add(10*time.Minute))
	s.Require().NoError(err)
	s.Equal(1, active)
}

func (s *SessionRepositorySuite) TestExpiredPayloadIsInvisible() {
	session := s.newSession(time.Hour)
	s.Require().NoError(s.repo.Save(s.ctx, session))

	s.repo.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err := s.repo.Get(s.ctx, session.ID)
	s.ErrorIs(err, wizard.ErrSessionNotFound)
}
