package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/muirkirkangling/memberportal/internal/domain/member"
	"github.com/muirkirkangling/memberportal/internal/repo"
)

// MembersRepo mirrors the postgres repo's semantics in a mutex-guarded map,
// including email uniqueness under concurrent Create calls. Used by handler
// tests and for running the portal without a database.
type MembersRepo struct {
	mu    sync.RWMutex
	items map[string]member.Member // keyed by email
}

func NewMembersRepo() *MembersRepo {
	return &MembersRepo{
		items: make(map[string]member.Member),
	}
}

func (r *MembersRepo) GetByEmail(_ context.Context, email string) (member.Member, error) {
	r.mu.RLock()
	m, ok := r.items[email]
	r.mu.RUnlock()

	if !ok {
		return member.Member{}, repo.ErrMemberNotFound
	}

	return m, nil
}

func (r *MembersRepo) Create(_ context.Context, firstName, lastName, email, passwordHash string) (member.Member, error) {
	now := time.Now().UTC()

	m := member.Member{
		ID:           uuid.NewString(),
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: passwordHash,
		PermitType:   member.PermitNone,
		Renewed:      false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// check-and-insert under one lock: exactly one concurrent Create wins
	if _, exists := r.items[email]; exists {
		return member.Member{}, repo.ErrEmailTaken
	}

	r.items[email] = m

	return m, nil
}

func (r *MembersRepo) CountRenewed(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0

	for _, m := range r.items {
		if m.Renewed {
			count++
		}
	}

	return count, nil
}

// SetPermit assigns a category and renewal flag directly. Test and seed
// helper standing in for the out-of-scope payment confirmation flow.
func (r *MembersRepo) SetPermit(email string, t member.PermitType, renewed bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.items[email]

	if !ok {
		return false
	}

	m.PermitType = t
	m.Renewed = renewed
	r.items[email] = m

	return true
}
