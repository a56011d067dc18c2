package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// MemberInput is one non-lead member on a sign-up form.
type MemberInput struct {
	FullName string
	Email    string
	Phone    string
	College  string
}

// CreateInput is a team sign-up form as submitted by a participant.
type CreateInput struct {
	TeamLeadFullName    string
	Email               string
	Phone               string
	College             string
	Year                string
	TeamName            string
	NumberOfTeamMembers int
	TeamMembers         []MemberInput
}

// passIDAttempts bounds how often Create regenerates a colliding pass ID.
const passIDAttempts = 3

// Service implements team sign-up and pass retrieval.
type Service struct {
	repo      Repository
	newPassID func() (string, error)
}

// NewService creates a new registration Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, newPassID: NewPassID}
}

// NormalizeEmail trims and lower-cases an email so it matches the stored form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create validates in, checks email and team name uniqueness and stores a new
// registration with a freshly generated pass ID.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Registration, error) {
	reg, err := buildRegistration(in)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.EmailExists(ctx, reg.Email)
	if err != nil {
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if exists {
		return nil, ErrEmailExists
	}

	exists, err = s.repo.TeamNameExists(ctx, reg.TeamName)
	if err != nil {
		return nil, fmt.Errorf("checking team name: %w", err)
	}
	if exists {
		return nil, ErrTeamNameExists
	}

	for attempt := 1; ; attempt++ {
		reg.PassID, err = s.newPassID()
		if err != nil {
			return nil, err
		}

		err = s.repo.Create(ctx, reg)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrPassIDExists) || attempt == passIDAttempts {
			return nil, err
		}
		slog.Warn("pass ID collision, regenerating", "passId", reg.PassID, "attempt", attempt)
	}

	slog.Info("team registered", "passId", reg.PassID, "teamName", reg.TeamName, "size", reg.NumberOfTeamMembers)
	return reg, nil
}

// GetPass returns the registration whose email matches, ignoring case and
// surrounding whitespace.
func (s *Service) GetPass(ctx context.Context, email string) (*Registration, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, &InputError{Code: "MISSING_EMAIL", Message: "Email is required"}
	}

	reg, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("looking up pass: %w", err)
	}
	return reg, nil
}

// GetByPassID returns the registration holding passID.
func (s *Service) GetByPassID(ctx context.Context, passID string) (*Registration, error) {
	passID = strings.TrimSpace(passID)
	if passID == "" {
		return nil, &InputError{Code: "MISSING_PASS_ID", Message: "Pass ID is required"}
	}

	reg, err := s.repo.GetByPassID(ctx, passID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("looking up pass %s: %w", passID, err)
	}
	return reg, nil
}

// buildRegistration validates a sign-up form and converts it into a
// normalized Registration without a pass ID.
func buildRegistration(in CreateInput) (*Registration, error) {
	reg := &Registration{
		TeamLeadFullName:    strings.TrimSpace(in.TeamLeadFullName),
		Email:               NormalizeEmail(in.Email),
		Phone:               strings.TrimSpace(in.Phone),
		College:             strings.TrimSpace(in.College),
		Year:                Year(strings.TrimSpace(in.Year)),
		TeamName:            strings.TrimSpace(in.TeamName),
		NumberOfTeamMembers: in.NumberOfTeamMembers,
		TeamMembers:         []TeamMember{},
	}

	if reg.TeamLeadFullName == "" || reg.Email == "" || reg.Phone == "" ||
		reg.College == "" || reg.Year == "" || reg.TeamName == "" {
		return nil, &InputError{Code: "MISSING_REQUIRED_FIELDS", Message: "All team lead fields are required"}
	}

	if !reg.Year.Valid() {
		return nil, &InputError{Code: "INVALID_YEAR", Message: "Year must be one of 1st, 2nd, 3rd, 4th or PG"}
	}

	if reg.NumberOfTeamMembers < 1 {
		return nil, &InputError{Code: "INVALID_TEAM_SIZE", Message: "Number of team members must be at least 1"}
	}

	if reg.NumberOfTeamMembers >= 2 {
		expected := reg.NumberOfTeamMembers - 1
		if len(in.TeamMembers) != expected {
			return nil, &InputError{
				Code:    "INVALID_MEMBER_COUNT",
				Message: fmt.Sprintf("Please provide details for %d team member(s)", expected),
			}
		}

		for i, m := range in.TeamMembers {
			member := TeamMember{
				FullName: strings.TrimSpace(m.FullName),
				Email:    NormalizeEmail(m.Email),
				Phone:    strings.TrimSpace(m.Phone),
				College:  strings.TrimSpace(m.College),
			}
			if member.FullName == "" || member.Email == "" || member.Phone == "" || member.College == "" {
				return nil, &InputError{
					Code:    "MISSING_MEMBER_FIELDS",
					Message: fmt.Sprintf("All fields are required for team member %d", i+1),
				}
			}
			reg.TeamMembers = append(reg.TeamMembers, member)
		}
	}

	return reg, nil
}
