// Package entry records physical check-in of team leads and members at the
// event gate.
package entry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/daap14/eventpass/internal/registration"
)

// Selection is one person picked in a bulk check-in. MemberIndex is required
// when Type is "member".
type Selection struct {
	Type        string
	MemberIndex *int
}

// Outcome describes a successful entry update.
type Outcome struct {
	Message  string
	Affected int
}

// Service implements gate-side search and entry updates.
type Service struct {
	repo registration.Repository
}

// NewService creates a new entry Service.
func NewService(repo registration.Repository) *Service {
	return &Service{repo: repo}
}

// Search finds a registration by exact pass ID or by email.
func (s *Service) Search(ctx context.Context, query string) (*registration.Registration, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &registration.InputError{Code: "MISSING_QUERY", Message: "Please enter a Pass ID or email to search"}
	}

	reg, err := s.repo.FindByPassIDOrEmail(ctx, query, registration.NormalizeEmail(query))
	if err != nil {
		if errors.Is(err, registration.ErrNotFound) {
			return nil, registration.ErrNotFound
		}
		return nil, fmt.Errorf("searching registration: %w", err)
	}
	return reg, nil
}

// Mark sets the entered flag of the lead or of one member.
func (s *Service) Mark(ctx context.Context, passID, personType string, memberIndex *int) (*Outcome, error) {
	return s.setOne(ctx, passID, personType, memberIndex, true)
}

// Undo clears the entered flag of the lead or of one member.
func (s *Service) Undo(ctx context.Context, passID, personType string, memberIndex *int) (*Outcome, error) {
	return s.setOne(ctx, passID, personType, memberIndex, false)
}

// BulkMark sets the entered flag of every selected person in one update.
// Selections with an unknown type or a member without an index are skipped.
func (s *Service) BulkMark(ctx context.Context, passID string, selections []Selection) (*Outcome, error) {
	passID = strings.TrimSpace(passID)
	if passID == "" || len(selections) == 0 {
		return nil, &registration.InputError{Code: "INVALID_PARAMS", Message: "Pass ID and selections are required"}
	}

	targets := make([]registration.EntryTarget, 0, len(selections))
	for _, sel := range selections {
		target, ok := toTarget(sel.Type, sel.MemberIndex)
		if !ok {
			continue
		}
		targets = append(targets, target)
	}
	if len(targets) == 0 {
		return nil, invalidParams()
	}

	if err := s.repo.SetEntered(ctx, passID, targets, true); err != nil {
		return nil, translate(err)
	}

	slog.Info("bulk entry recorded", "passId", passID, "selections", len(selections), "applied", len(targets))
	return &Outcome{
		Message:  fmt.Sprintf("%d person(s) marked as entered", len(selections)),
		Affected: len(targets),
	}, nil
}

func (s *Service) setOne(ctx context.Context, passID, personType string, memberIndex *int, entered bool) (*Outcome, error) {
	passID = strings.TrimSpace(passID)
	if passID == "" {
		return nil, &registration.InputError{Code: "MISSING_PASS_ID", Message: "Pass ID is required"}
	}

	target, ok := toTarget(personType, memberIndex)
	if !ok {
		return nil, invalidParams()
	}

	if err := s.repo.SetEntered(ctx, passID, []registration.EntryTarget{target}, entered); err != nil {
		return nil, translate(err)
	}

	slog.Info("entry updated", "passId", passID, "personType", target.Type, "memberIndex", target.MemberIndex, "entered", entered)
	return &Outcome{Message: message(target.Type, entered), Affected: 1}, nil
}

func toTarget(personType string, memberIndex *int) (registration.EntryTarget, bool) {
	switch registration.PersonType(personType) {
	case registration.PersonLead:
		return registration.EntryTarget{Type: registration.PersonLead}, true
	case registration.PersonMember:
		if memberIndex == nil || *memberIndex < 0 {
			return registration.EntryTarget{}, false
		}
		return registration.EntryTarget{Type: registration.PersonMember, MemberIndex: *memberIndex}, true
	}
	return registration.EntryTarget{}, false
}

func message(t registration.PersonType, entered bool) string {
	switch {
	case t == registration.PersonLead && entered:
		return "Team lead marked as entered"
	case t == registration.PersonLead:
		return "Team lead entry undone"
	case entered:
		return "Team member marked as entered"
	default:
		return "Team member entry undone"
	}
}

func invalidParams() error {
	return &registration.InputError{Code: "INVALID_PARAMS", Message: "Invalid entry parameters"}
}

func translate(err error) error {
	switch {
	case errors.Is(err, registration.ErrNotFound):
		return registration.ErrNotFound
	case errors.Is(err, registration.ErrMemberIndexOutOfRange):
		return registration.ErrMemberIndexOutOfRange
	}
	return fmt.Errorf("updating entry: %w", err)
}
