package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-links/contractor-backend-go/internal/domain/invitation"
	"github.com/mind-links/contractor-backend-go/internal/domain/wizard"
	"github.com/mind-links/contractor-backend-go/internal/pkg/metrics"
	"github.com/mind-links/contractor-backend-go/internal/pkg/sse"
	"github.com/mind-links/contractor-backend-go/internal/pkg/validator"
	"github.com/mind-links/contractor-backend-go/internal/repository/memory"
	invitationService "github.com/mind-links/contractor-backend-go/internal/service/invitation"
)

var testTokenAuth = jwtauth.New("HS256", []byte("test-secret-key-for-jwt"), nil)

func ctxFor(t *testing.T, userID, companyID string) context.Context {
	t.Helper()
	token, _, err := testTokenAuth.Encode(map[string]interface{}{
		"user_id":    userID,
		"company_id": companyID,
		"type":       "access",
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func ptr[T any](v T) *T {
	return &v
}

type testEnv struct {
	svc      *WizardServiceImpl
	invRepo  invitation.InvitationRepository
	hub      *sse.Hub
	metrics  *metrics.Metrics
	clock    time.Time
	clockMu  sync.Mutex
	ctx      context.Context
	otherCtx context.Context
}

func (e *testEnv) now() time.Time {
	e.clockMu.Lock()
	defer e.clockMu.Unlock()
	return e.clock
}

func (e *testEnv) advanceClock(d time.Duration) {
	e.clockMu.Lock()
	defer e.clockMu.Unlock()
	e.clock = e.clock.Add(d)
}

func newTestEnv(t *testing.T, invSvc invitation.InvitationService) *testEnv {
	t.Helper()

	env := &testEnv{
		invRepo:  memory.NewInvitationRepository(),
		hub:      sse.NewHub(),
		metrics:  metrics.New(prometheus.NewRegistry()),
		clock:    time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		ctx:      ctxFor(t, "user-1", "company-1"),
		otherCtx: ctxFor(t, "user-2", "company-1"),
	}
	if invSvc == nil {
		invSvc = invitationService.NewInvitationService(env.invRepo, env.hub, nil, env.metrics, invitationService.Config{})
	}

	sessions := memory.NewSessionRepositoryWithClock(env.now)
	svc := NewWizardService(sessions, invSvc, env.hub, env.metrics, Config{SessionTTL: time.Hour}).(*WizardServiceImpl)
	svc.now = env.now
	env.svc = svc
	return env
}

// walkToReview fills every required field and advances to the review step.
func walkToReview(t *testing.T, env *testEnv, id string) {
	t.Helper()
	ctx := env.ctx

	_, err := env.svc.Update(ctx, id, wizard.Patch{ContractType: ptr(wizard.ContractTypeFixedRate)})
	require.NoError(t, err)
	mustAdvance(t, env, id)

	_, err = env.svc.Update(ctx, id, wizard.Patch{
		Entity:         ptr("Mind-Links Ltd"),
		PersonalEmail:  ptr("ada@example.com"),
		LegalFirstName: ptr("Ada"),
		LegalLastName:  ptr("Lovelace"),
		ContractName:   ptr("Consulting"),
		TaxResidence:   ptr("GB"),
		WorkerID:       ptr("W-1"),
	})
	require.NoError(t, err)
	mustAdvance(t, env, id)

	_, err = env.svc.Update(ctx, id, wizard.Patch{ScopeOfWork: ptr("Build a website")})
	require.NoError(t, err)
	mustAdvance(t, env, id)

	_, err = env.svc.Update(ctx, id, wizard.Patch{
		PaymentRate:   ptr("1500"),
		InvoicePolicy: ptr("monthly"),
		StartDate:     ptr("2025-04-01"),
		EndDate:       ptr("2025-12-31"),
	})
	require.NoError(t, err)
	mustAdvance(t, env, id)
	mustAdvance(t, env, id)
	mustAdvance(t, env, id)
}

func mustAdvance(t *testing.T, env *testEnv, id string) {
	t.Helper()
	resp, err := env.svc.Advance(env.ctx, id)
	require.NoError(t, err)
	require.True(t, resp.Advanced, "blocked at step %d: %v", resp.CurrentStep, resp.Errors)
}

func TestWizardService_Open(t *testing.T) {
	env := newTestEnv(t, nil)

	view, err := env.svc.Open(env.ctx)
	require.NoError(t, err)

	assert.True(t, validator.IsValidUUID(view.ID))
	assert.Equal(t, wizard.StepContractType, view.CurrentStep)
	assert.Equal(t, "Contract type", view.StepLabel)
	assert.Empty(t, view.CompletedSteps)
	assert.Empty(t, view.Errors)
	assert.Equal(t, wizard.NewData(), view.Data)
	assert.Equal(t, "2025-03-01T10:00:00Z", view.ExpiresAt)

	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.WizardsOpened))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.ActiveSessions))
}

func TestWizardService_Open_RequiresClaims(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.svc.Open(context.Background())
	assert.Error(t, err)
}

func TestWizardService_AdvanceBlocked(t *testing.T) {
	env := newTestEnv(t, nil)
	view, err := env.svc.Open(env.ctx)
	require.NoError(t, err)

	resp, err := env.svc.Advance(env.ctx, view.ID)
	require.NoError(t, err)
	assert.False(t, resp.Advanced)
	assert.Equal(t, wizard.StepContractType, resp.CurrentStep)

	_, err = env.svc.Update(env.ctx, view.ID, wizard.Patch{ContractType: ptr(wizard.ContractTypeMilestone)})
	require.NoError(t, err)
	mustAdvance(t, env, view.ID)

	_, err = env.svc.Update(env.ctx, view.ID, wizard.Patch{PersonalEmail: ptr("bad-email")})
	require.NoError(t, err)

	resp, err = env.svc.Advance(env.ctx, view.ID)
	require.NoError(t, err)
	assert.False(t, resp.Advanced)
	assert.Equal(t, wizard.StepPersonalDetails, resp.CurrentStep)
	assert.Equal(t, "Please enter a valid email address", resp.Errors["personalEmail"])
	assert.Equal(t, "Entity is required", resp.Errors["entity"])

	// Errors are persisted with the session.
	got, err := env.svc.Get(env.ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.Errors, got.Errors)

	// Editing a field clears its error only.
	got, err = env.svc.Update(env.ctx, view.ID, wizard.Patch{Entity: ptr("Acme")})
	require.NoError(t, err)
	assert.NotContains(t, got.Errors, "entity")
	assert.Contains(t, got.Errors, "personalEmail")

	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.WizardAdvances.WithLabelValues("Contract type", metrics.OutcomeBlocked)))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.WizardAdvances.WithLabelValues("Contract type", metrics.OutcomeAdvanced)))
}

func TestWizardService_Retreat(t *testing.T) {
	env := newTestEnv(t, nil)
	view, err := env.svc.Open(env.ctx)
	require.NoError(t, err)

	resp, err := env.svc.Retreat(env.ctx, view.ID)
	require.NoError(t, err)
	assert.False(t, resp.Retreated)

	walkToReview(t, env, view.ID)

	resp, err = env.svc.Retreat(env.ctx, view.ID)
	require.NoError(t, err)
	assert.True(t, resp.Retreated)
	assert.Equal(t, wizard.StepBenefits, resp.CurrentStep)
	assert.Equal(t, []wizard.Step{1, 2, 3, 4, 5}, resp.CompletedSteps)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.WizardRetreats))
}

func TestWizardService_UpdateErrors(t *testing.T) {
	env := newTestEnv(t, nil)
	view, err := env.svc.Open(env.ctx)
	require.NoError(t, err)

	t.Run("patch validation", func(t *testing.T) {
		_, err := env.svc.Update(env.ctx, view.ID, wizard.Patch{ContractType: ptr(wizard.ContractType("hourly"))})

		var validationErrs validator.ValidationErrors
		require.ErrorAs(t, err, &validationErrs)
		assert.Contains(t, validationErrs.ToMap(), "contractType")
	})

	t.Run("contract type locked after step 0", func(t *testing.T) {
		_, err := env.svc.Update(env.ctx, view.ID, wizard.Patch{ContractType: ptr(wizard.ContractTypeFixedRate)})
		require.NoError(t, err)
		mustAdvance(t, env, view.ID)

		_, err = env.svc.Update(env.ctx, view.ID, wizard.Patch{ContractType: ptr(wizard.ContractTypeMilestone)})
		assert.ErrorIs(t, err, wizard.ErrContractTypeLocked)

		got, err := env.svc.Get(env.ctx, view.ID)
		require.NoError(t, err)
		assert.Equal(t, wizard.ContractTypeFixedRate, got.Data.ContractType)
	})
}

func TestWizardService_SessionAccess(t *testing.T) {
	env := newTestEnv(t, nil)
	view, err := env.svc.Open(env.ctx)
	require.NoError(t, err)

	t.Run("other user cannot see the session", func(t *testing.T) {
		_, err := env.svc.Get(env.otherCtx, view.ID)
		assert.ErrorIs(t, err, wizard.ErrSessionNotFound)

		err = env.svc.Close(env.otherCtx, view.ID)
		assert.ErrorIs(t, err, wizard.ErrSessionNotFound)
	})

	t.Run("same user in another company cannot see the session", func(t *testing.T) {
		_, err := env.svc.Get(ctxFor(t, "user-1", "company-2"), view.ID)
		assert.ErrorIs(t, err, wizard.ErrSessionNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		_, err := env.svc.Get(env.ctx, "not-a-uuid")
		assert.ErrorIs(t, err, wizard.ErrInvalidSessionID)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := env.svc.Advance(env.ctx, "01890a5d-ac96-774b-bcce-b302099a8057")
		assert.ErrorIs(t, err, wizard.ErrSessionNotFound)
	})
}

func TestWizardService_Complete(t *testing.T) {
	env := newTestEnv(t, nil)
	events, cancel := env.hub.Subscribe("user-1")
	defer cancel()

	view, err := env.svc.Open(env.ctx)
	require.NoError(t, err)

	_, err = env.svc.Complete(env.ctx, view.ID)
	assert.ErrorIs(t, err, wizard.ErrNotOnReviewStep)

	walkToReview(t, env, view.ID)

	resp, err := env.svc.Complete(env.ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", resp.Status)

	inv, err := env.invRepo.GetByID(context.Background(), resp.InvitationID, "company-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", inv.CreatedBy)
	assert.Equal(t, "fixed-rate", inv.ContractType)
	assert.Equal(t, "1500", inv.PaymentRate.String())
	require.NotNil(t, inv.EndDate)

	_, err = env.svc.Get(env.ctx, view.ID)
	assert.ErrorIs(t, err, wizard.ErrSessionNotFound)

	select {
	case ev := <-events:
		assert.Equal(t, sse.EventInvitationCreated, ev.Event)
		data := ev.Data.(map[string]interface{})
		assert.Equal(t, resp.InvitationID, data["invitation_id"])
		assert.Equal(t, "Ada Lovelace", data["contractor_name"])
	default:
		t.Fatal("expected invitation.created event")
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.WizardsCompleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.InvitationsCreated))
	assert.Equal(t, 0.0, testutil.ToFloat64(env.metrics.ActiveSessions))
}

type failingInvitationService struct {
	invitation.InvitationService
	err   error
	calls int
}

func (f *failingInvitationService) CreateFromWizard(ctx context.Context, req invitation.CreateRequest) (invitation.Invitation, error) {
	f.calls++
	return invitation.Invitation{}, f.err
}

func TestWizardService_CompleteFailureKeepsSession(t *testing.T) {
	failing := &failingInvitationService{err: errors.New("database unavailable")}
	env := newTestEnv(t, failing)

	view, err := env.svc.Open(env.ctx)
	require.NoError(t, err)
	walkToReview(t, env, view.ID)

	_, err = env.svc.Complete(env.ctx, view.ID)
	require.ErrorIs(t, err, failing.err)
	assert.Equal(t, 1, failing.calls)

	got, err := env.svc.Get(env.ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, wizard.StepReview, got.CurrentStep)
	assert.Equal(t, "Ada", got.Data.LegalFirstName)
	assert.Equal(t, 0.0, testutil.ToFloat64(env.metrics.WizardsCompleted))
}

func TestWizardService_CompleteRejectsDataEditedOnReview(t *testing.T) {
	env := newTestEnv(t, nil)
	view, err := env.svc.Open(env.ctx)
	require.NoError(t, err)
	walkToReview(t, env, view.ID)

	_, err = env.svc.Update(env.ctx, view.ID, wizard.Patch{PersonalEmail: ptr("not-an-email")})
	require.NoError(t, err)

	_, err = env.svc.Complete(env.ctx, view.ID)
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
	assert.Equal(t, "Please enter a valid email address", validationErrs.ToMap()["personalEmail"])

	got, err := env.svc.Get(env.ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, wizard.StepReview, got.CurrentStep)
	assert.Empty(t, got.Errors)
	assert.Equal(t, 0.0, testutil.ToFloat64(env.metrics.WizardsCompleted))
}

func TestWizardService_Close(t *testing.T) {
	env := newTestEnv(t, nil)
	view, err := env.svc.Open(env.ctx)
	require.NoError(t, err)
	_, err = env.svc.Update(env.ctx, view.ID, wizard.Patch{ContractType: ptr(wizard.ContractTypePayAsYouGo)})
	require.NoError(t, err)

	require.NoError(t, env.svc.Close(env.ctx, view.ID))

	_, err = env.svc.Get(env.ctx, view.ID)
	assert.ErrorIs(t, err, wizard.ErrSessionNotFound)

	_, total, err := env.invRepo.List(context.Background(), invitation.ListFilter{CompanyID: "company-1", Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.WizardsClosed))
	assert.Equal(t, 0.0, testutil.ToFloat64(env.metrics.ActiveSessions))
}

func TestWizardService_SlidingExpiry(t *testing.T) {
	env := newTestEnv(t, nil)
	view, err := env.svc.Open(env.ctx)
	require.NoError(t, err)

	env.advanceClock(50 * time.Minute)
	_, err = env.svc.Update(env.ctx, view.ID, wizard.Patch{ContractType: ptr(wizard.ContractTypeMilestone)})
	require.NoError(t, err)

	env.advanceClock(50 * time.Minute)
	got, err := env.svc.Get(env.ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, wizard.ContractTypeMilestone, got.Data.ContractType)

	env.advanceClock(time.Hour)
	_, err = env.svc.Get(env.ctx, view.ID)
	assert.ErrorIs(t, err, wizard.ErrSessionNotFound)
}

func TestWizardService_SweepExpired(t *testing.T) {
	env := newTestEnv(t, nil)
	for i := 0; i < 3; i++ {
		_, err := env.svc.Open(env.ctx)
		require.NoError(t, err)
	}
	env.advanceClock(30 * time.Minute)
	_, err := env.svc.Open(env.ctx)
	require.NoError(t, err)

	removed, err := env.svc.SweepExpired(context.Background(), env.now().Add(45*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
	assert.Equal(t, 3.0, testutil.ToFloat64(env.metrics.SessionsExpired))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.ActiveSessions))
}

func TestWizardService_ActiveSessionsFollowSharedStore(t *testing.T) {
	env := newTestEnv(t, nil)
	replicaMetrics := metrics.New(prometheus.NewRegistry())
	replica := NewWizardService(env.svc.sessionRepo, env.svc.invitationService, env.hub, replicaMetrics, Config{SessionTTL: time.Hour}).(*WizardServiceImpl)
	replica.now = env.now

	first, err := env.svc.Open(env.ctx)
	require.NoError(t, err)
	_, err = env.svc.Open(env.ctx)
	require.NoError(t, err)

	require.NoError(t, replica.Close(env.ctx, first.ID))
	assert.Equal(t, 1.0, testutil.ToFloat64(replicaMetrics.ActiveSessions))
	assert.Equal(t, 2.0, testutil.ToFloat64(env.metrics.ActiveSessions))

	_, err = env.svc.SweepExpired(context.Background(), env.now())
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.ActiveSessions))
}

func TestWizardService_ConcurrentUpdates(t *testing.T) {
	env := newTestEnv(t, nil)
	view, err := env.svc.Open(env.ctx)
	require.NoError(t, err)
	_, err = env.svc.Update(env.ctx, view.ID, wizard.Patch{ContractType: ptr(wizard.ContractTypeFixedRate)})
	require.NoError(t, err)
	mustAdvance(t, env, view.ID)

	const writers = 20
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := env.svc.Update(env.ctx, view.ID, wizard.Patch{Department: ptr(fmt.Sprintf("dept-%d", i))})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	got, err := env.svc.Get(env.ctx, view.ID)
	require.NoError(t, err)
	assert.Regexp(t, `^dept-\d+$`, got.Data.Department)
	assert.Equal(t, 0, env.svc.locks.size())
}
