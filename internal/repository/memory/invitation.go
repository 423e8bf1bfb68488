package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mind-links/contractor-backend-go/internal/domain/invitation"
)

type invitationRepositoryImpl struct {
	mu          sync.RWMutex
	invitations map[string]invitation.Invitation
	now         func() time.Time
}

// NewInvitationRepository creates an in-memory invitation repository, used
// when STORAGE_DRIVER=memory and in tests
func NewInvitationRepository() invitation.InvitationRepository {
	return &invitationRepositoryImpl{
		invitations: make(map[string]invitation.Invitation),
		now:         time.Now,
	}
}

// Create implements invitation.InvitationRepository.
func (r *invitationRepositoryImpl) Create(ctx context.Context, inv invitation.Invitation) (invitation.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	inv.CreatedAt = now
	inv.UpdatedAt = now
	if inv.Status == "" {
		inv.Status = invitation.StatusPending
	}
	r.invitations[inv.ID] = inv

	return inv, nil
}

// GetByID implements invitation.InvitationRepository.
func (r *invitationRepositoryImpl) GetByID(ctx context.Context, id, companyID string) (invitation.Invitation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inv, ok := r.invitations[id]
	if !ok || inv.CompanyID != companyID {
		return invitation.Invitation{}, invitation.ErrInvitationNotFound
	}
	return inv, nil
}

// List implements invitation.InvitationRepository.
func (r *invitationRepositoryImpl) List(ctx context.Context, filter invitation.ListFilter) ([]invitation.Invitation, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []invitation.Invitation
	for _, inv := range r.invitations {
		if inv.CompanyID != filter.CompanyID {
			continue
		}
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		matched = append(matched, inv)
	}

	// Newest first; IDs are UUIDv7 so they break ties in creation order.
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	if filter.Offset >= len(matched) {
		return []invitation.Invitation{}, total, nil
	}
	end := len(matched)
	if filter.Limit > 0 && filter.Offset+filter.Limit < end {
		end = filter.Offset + filter.Limit
	}

	return matched[filter.Offset:end], total, nil
}

// MarkRevoked implements invitation.InvitationRepository.
func (r *invitationRepositoryImpl) MarkRevoked(ctx context.Context, id, companyID string) (invitation.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inv, ok := r.invitations[id]
	if !ok || inv.CompanyID != companyID {
		return invitation.Invitation{}, invitation.ErrInvitationNotFound
	}
	if !inv.CanBeRevoked() {
		return invitation.Invitation{}, invitation.ErrInvitationAlreadyRevoked
	}

	now := r.now()
	inv.Status = invitation.StatusRevoked
	inv.RevokedAt = &now
	inv.UpdatedAt = now
	r.invitations[id] = inv

	return inv, nil
}
