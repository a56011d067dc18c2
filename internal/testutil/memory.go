// Package testutil provides an in-memory registration store and fixtures
// shared by package tests.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/daap14/eventpass/internal/registration"
)

// MemoryRepository is a registration.Repository backed by a map. It enforces
// the same uniqueness rules as the real stores.
type MemoryRepository struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]*registration.Registration
	order []uuid.UUID
	clock func() time.Time

	// PingErr, when set, is returned by Ping.
	PingErr error
}

var _ registration.Repository = (*MemoryRepository)(nil)

// NewMemoryRepository returns an empty store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:  make(map[uuid.UUID]*registration.Registration),
		clock: func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryRepository) Create(_ context.Context, reg *registration.Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.byID {
		switch {
		case existing.Email == reg.Email:
			return registration.ErrEmailExists
		case strings.EqualFold(existing.TeamName, reg.TeamName):
			return registration.ErrTeamNameExists
		case existing.PassID == reg.PassID:
			return registration.ErrPassIDExists
		}
	}

	now := m.clock()
	reg.ID = uuid.New()
	reg.CreatedAt = now
	reg.UpdatedAt = now

	m.byID[reg.ID] = clone(reg)
	m.order = append(m.order, reg.ID)
	return nil
}

func (m *MemoryRepository) GetByEmail(_ context.Context, email string) (*registration.Registration, error) {
	return m.find(func(r *registration.Registration) bool { return r.Email == email })
}

func (m *MemoryRepository) GetByPassID(_ context.Context, passID string) (*registration.Registration, error) {
	return m.find(func(r *registration.Registration) bool { return r.PassID == passID })
}

func (m *MemoryRepository) FindByPassIDOrEmail(_ context.Context, passID, email string) (*registration.Registration, error) {
	if reg, err := m.find(func(r *registration.Registration) bool { return r.PassID == passID }); err == nil {
		return reg, nil
	}
	return m.find(func(r *registration.Registration) bool { return r.Email == email })
}

func (m *MemoryRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	return err == nil, nil
}

func (m *MemoryRepository) TeamNameExists(_ context.Context, teamName string) (bool, error) {
	_, err := m.find(func(r *registration.Registration) bool { return strings.EqualFold(r.TeamName, teamName) })
	return err == nil, nil
}

func (m *MemoryRepository) SetEntered(_ context.Context, passID string, targets []registration.EntryTarget, entered bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	reg := m.lookupLocked(func(r *registration.Registration) bool { return r.PassID == passID })
	if reg == nil {
		return registration.ErrNotFound
	}

	for _, t := range targets {
		if t.Type == registration.PersonMember && t.MemberIndex >= len(reg.TeamMembers) {
			return registration.ErrMemberIndexOutOfRange
		}
	}

	for _, t := range targets {
		if t.Type == registration.PersonLead {
			reg.Entered = entered
			continue
		}
		reg.TeamMembers[t.MemberIndex].Entered = entered
	}
	reg.UpdatedAt = m.clock()
	return nil
}

func (m *MemoryRepository) List(_ context.Context) ([]registration.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]registration.Registration, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *clone(m.byID[id]))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryRepository) Ping(_ context.Context) error {
	return m.PingErr
}

// Seed stores regs as-is, keeping their timestamps and entered flags.
func (m *MemoryRepository) Seed(regs ...registration.Registration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range regs {
		reg := clone(&regs[i])
		if reg.ID == uuid.Nil {
			reg.ID = uuid.New()
		}
		if reg.CreatedAt.IsZero() {
			reg.CreatedAt = m.clock()
			reg.UpdatedAt = reg.CreatedAt
		}
		m.byID[reg.ID] = reg
		m.order = append(m.order, reg.ID)
	}
}

func (m *MemoryRepository) find(match func(*registration.Registration) bool) (*registration.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reg := m.lookupLocked(match)
	if reg == nil {
		return nil, registration.ErrNotFound
	}
	return clone(reg), nil
}

func (m *MemoryRepository) lookupLocked(match func(*registration.Registration) bool) *registration.Registration {
	for _, id := range m.order {
		if reg := m.byID[id]; match(reg) {
			return reg
		}
	}
	return nil
}

func clone(r *registration.Registration) *registration.Registration {
	c := *r
	c.TeamMembers = append([]registration.TeamMember{}, r.TeamMembers...)
	return &c
}

// Team builds a registration fixture whose members carry the given entered
// flags. The first flag belongs to the lead.
func Team(passID, teamName, college string, entered ...bool) registration.Registration {
	reg := registration.Registration{
		PassID:              passID,
		Email:               strings.ToLower(passID) + "@example.com",
		TeamName:            teamName,
		TeamLeadFullName:    teamName + " Lead",
		Phone:               "9999999999",
		College:             college,
		Year:                registration.YearSecond,
		NumberOfTeamMembers: 1,
		TeamMembers:         []registration.TeamMember{},
	}
	if len(entered) == 0 {
		return reg
	}

	reg.Entered = entered[0]
	for i, e := range entered[1:] {
		reg.TeamMembers = append(reg.TeamMembers, registration.TeamMember{
			FullName: teamName + " Member " + string(rune('A'+i)),
			Email:    strings.ToLower(passID) + "-m" + string(rune('a'+i)) + "@example.com",
			Phone:    "8888888888",
			College:  college,
			Entered:  e,
		})
	}
	reg.NumberOfTeamMembers = 1 + len(reg.TeamMembers)
	return reg
}
