package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/mind-links/contractor-backend-go/internal/domain/invitation"
	"github.com/mind-links/contractor-backend-go/internal/domain/wizard"
	"github.com/mind-links/contractor-backend-go/internal/pkg/metrics"
	"github.com/mind-links/contractor-backend-go/internal/pkg/sse"
	"github.com/mind-links/contractor-backend-go/internal/pkg/validator"
)

const DefaultSessionTTL = 24 * time.Hour

// Config holds wizard service configuration
type Config struct {
	SessionTTL time.Duration         // default: 24 hours
	Email      wizard.EmailValidator // default: validator.MatchesEmailPattern
}

type WizardServiceImpl struct {
	sessionRepo       wizard.SessionRepository
	invitationService invitation.InvitationService
	publisher         sse.Publisher
	metrics           *metrics.Metrics
	validator         wizard.Validator
	ttl               time.Duration
	now               func() time.Time
	locks             *sessionLocks
}

func NewWizardService(
	sessionRepo wizard.SessionRepository,
	invitationService invitation.InvitationService,
	publisher sse.Publisher,
	m *metrics.Metrics,
	cfg Config,
) wizard.WizardService {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}

	return &WizardServiceImpl{
		sessionRepo:       sessionRepo,
		invitationService: invitationService,
		publisher:         publisher,
		metrics:           m,
		validator:         wizard.NewValidator(cfg.Email),
		ttl:               cfg.SessionTTL,
		now:               time.Now,
		locks:             newSessionLocks(),
	}
}

// getClaimsFromContext extracts user_id and company_id from JWT claims
func getClaimsFromContext(ctx context.Context) (userID, companyID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", "", fmt.Errorf("user_id claim is missing or invalid")
	}

	companyID, ok = claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", "", fmt.Errorf("company_id claim is missing or invalid")
	}

	return userID, companyID, nil
}

// Open implements wizard.WizardService.
func (s *WizardServiceImpl) Open(ctx context.Context) (wizard.View, error) {
	userID, companyID, err := getClaimsFromContext(ctx)
	if err != nil {
		return wizard.View{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return wizard.View{}, fmt.Errorf("failed to generate session id: %w", err)
	}

	w := wizard.New(wizard.WithValidator(s.validator))
	w.Open()

	now := s.now()
	session := wizard.Session{
		ID:        id.String(),
		OwnerID:   userID,
		CompanyID: companyID,
		Snapshot:  w.Snapshot(),
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return wizard.View{}, fmt.Errorf("failed to save wizard session: %w", err)
	}

	s.metrics.WizardsOpened.Inc()
	s.refreshActiveSessions(ctx, now)
	slog.Info("Wizard opened", "session_id", session.ID, "user_id", userID, "company_id", companyID)

	return newView(session), nil
}

// Get implements wizard.WizardService.
func (s *WizardServiceImpl) Get(ctx context.Context, id string) (wizard.View, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return wizard.View{}, err
	}
	return newView(session), nil
}

// Update implements wizard.WizardService.
func (s *WizardServiceImpl) Update(ctx context.Context, id string, patch wizard.Patch) (wizard.View, error) {
	if err := patch.Validate(); err != nil {
		return wizard.View{}, err
	}

	unlock := s.locks.lock(id)
	defer unlock()

	session, err := s.load(ctx, id)
	if err != nil {
		return wizard.View{}, err
	}

	w := s.restore(session)
	if err := w.Update(patch); err != nil {
		return wizard.View{}, err
	}

	if err := s.save(ctx, &session, w); err != nil {
		return wizard.View{}, err
	}

	return newView(session), nil
}

// Advance implements wizard.WizardService.
func (s *WizardServiceImpl) Advance(ctx context.Context, id string) (wizard.AdvanceResponse, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	session, err := s.load(ctx, id)
	if err != nil {
		return wizard.AdvanceResponse{}, err
	}

	w := s.restore(session)
	from := w.CurrentStep()
	advanced := w.Advance()

	if err := s.save(ctx, &session, w); err != nil {
		return wizard.AdvanceResponse{}, err
	}

	s.metrics.ObserveAdvance(from.Label(), advanced)
	slog.Debug("Wizard advance",
		"session_id", id,
		"from_step", int(from),
		"advanced", advanced,
		"error_count", len(session.Snapshot.State.Errors),
	)

	return wizard.AdvanceResponse{Advanced: advanced, View: newView(session)}, nil
}

// Retreat implements wizard.WizardService.
func (s *WizardServiceImpl) Retreat(ctx context.Context, id string) (wizard.RetreatResponse, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	session, err := s.load(ctx, id)
	if err != nil {
		return wizard.RetreatResponse{}, err
	}

	w := s.restore(session)
	retreated := w.Retreat()

	if err := s.save(ctx, &session, w); err != nil {
		return wizard.RetreatResponse{}, err
	}

	if retreated {
		s.metrics.WizardRetreats.Inc()
	}

	return wizard.RetreatResponse{Retreated: retreated, View: newView(session)}, nil
}

// Complete implements wizard.WizardService.
func (s *WizardServiceImpl) Complete(ctx context.Context, id string) (wizard.CompleteResponse, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	session, err := s.load(ctx, id)
	if err != nil {
		return wizard.CompleteResponse{}, err
	}

	var final *wizard.Data
	w := s.restore(session, wizard.WithOnComplete(func(d wizard.Data) {
		final = &d
	}))
	if err := w.Complete(); err != nil {
		return wizard.CompleteResponse{}, err
	}

	// The stored session is untouched until the invitation exists, so a
	// failed create can be retried from the review step.
	created, err := s.invitationService.CreateFromWizard(ctx, invitation.CreateRequest{
		CompanyID: session.CompanyID,
		CreatedBy: session.OwnerID,
		Data:      *final,
	})
	if err != nil {
		slog.Error("Failed to persist completed wizard", "session_id", id, "error", err)
		return wizard.CompleteResponse{}, err
	}

	if err := s.sessionRepo.Delete(ctx, id); err != nil {
		slog.Warn("Failed to delete completed wizard session", "session_id", id, "error", err)
	}

	s.metrics.WizardsCompleted.Inc()
	s.refreshActiveSessions(ctx, s.now())
	slog.Info("Wizard completed", "session_id", id, "invitation_id", created.ID)

	if s.publisher != nil {
		s.publisher.Publish(session.OwnerID, sse.Event{
			Event: sse.EventInvitationCreated,
			Data: map[string]interface{}{
				"invitation_id":   created.ID,
				"contractor_name": created.FullName(),
				"contract_type":   created.ContractType,
			},
		})
	}

	return wizard.CompleteResponse{
		InvitationID: created.ID,
		Status:       string(created.Status),
	}, nil
}

// Close implements wizard.WizardService.
func (s *WizardServiceImpl) Close(ctx context.Context, id string) error {
	unlock := s.locks.lock(id)
	defer unlock()

	session, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	w := s.restore(session, wizard.WithOnClose(func() {
		slog.Info("Wizard closed", "session_id", id, "from_step", int(session.Snapshot.State.CurrentStep))
	}))
	w.Close()

	if err := s.sessionRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete wizard session: %w", err)
	}

	s.metrics.WizardsClosed.Inc()
	s.refreshActiveSessions(ctx, s.now())

	return nil
}

// SweepExpired implements wizard.WizardService.
func (s *WizardServiceImpl) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	removed, err := s.sessionRepo.DeleteExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep wizard sessions: %w", err)
	}

	if removed > 0 {
		s.metrics.SessionsExpired.Add(float64(removed))
	}
	s.refreshActiveSessions(ctx, now)

	return removed, nil
}

// refreshActiveSessions sets the active gauge from the repository, which may
// be shared with other replicas. A failed count leaves the last value.
func (s *WizardServiceImpl) refreshActiveSessions(ctx context.Context, now time.Time) {
	active, err := s.sessionRepo.CountActive(ctx, now)
	if err != nil {
		slog.Warn("Failed to count active wizard sessions", "error", err)
		return
	}
	s.metrics.ActiveSessions.Set(float64(active))
}

// load fetches a session owned by the caller. Sessions of other users are
// reported as not found.
func (s *WizardServiceImpl) load(ctx context.Context, id string) (wizard.Session, error) {
	userID, companyID, err := getClaimsFromContext(ctx)
	if err != nil {
		return wizard.Session{}, err
	}

	if !validator.IsValidUUID(id) {
		return wizard.Session{}, wizard.ErrInvalidSessionID
	}

	session, err := s.sessionRepo.Get(ctx, id)
	if err != nil {
		return wizard.Session{}, err
	}

	if session.OwnerID != userID || session.CompanyID != companyID {
		return wizard.Session{}, wizard.ErrSessionNotFound
	}

	return session, nil
}

func (s *WizardServiceImpl) restore(session wizard.Session, opts ...wizard.Option) *wizard.Wizard {
	opts = append([]wizard.Option{wizard.WithValidator(s.validator)}, opts...)
	w := wizard.New(opts...)
	w.Restore(session.Snapshot)
	return w
}

// save stores the wizard's snapshot and slides the session expiry.
func (s *WizardServiceImpl) save(ctx context.Context, session *wizard.Session, w *wizard.Wizard) error {
	now := s.now()
	session.Snapshot = w.Snapshot()
	session.UpdatedAt = now
	session.ExpiresAt = now.Add(s.ttl)

	if err := s.sessionRepo.Save(ctx, *session); err != nil {
		return fmt.Errorf("failed to save wizard session: %w", err)
	}
	return nil
}

func newView(session wizard.Session) wizard.View {
	state := session.Snapshot.State
	return wizard.View{
		ID:             session.ID,
		CurrentStep:    state.CurrentStep,
		StepLabel:      state.CurrentStep.Label(),
		CompletedSteps: state.CompletedSteps.Sorted(),
		Errors:         state.Errors.ToMap(),
		Data:           session.Snapshot.Data,
		ExpiresAt:      session.ExpiresAt.Format(time.RFC3339),
	}
}
