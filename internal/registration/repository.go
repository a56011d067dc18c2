package registration

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when no registration matches the lookup key.
var ErrNotFound = errors.New("registration not found")

// ErrEmailExists is returned when a registration already uses the email.
var ErrEmailExists = errors.New("email already registered")

// ErrTeamNameExists is returned when a registration already uses the team name
// (compared case-insensitively).
var ErrTeamNameExists = errors.New("team name already taken")

// ErrPassIDExists is returned when a generated pass ID collides with a stored one.
var ErrPassIDExists = errors.New("pass ID already exists")

// ErrMemberIndexOutOfRange is returned when an entry update addresses a member
// position the registration does not have.
var ErrMemberIndexOutOfRange = errors.New("member index out of range")

// InputError is a client input failure detected before any storage access.
type InputError struct {
	Code    string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Repository provides storage operations on the registrations collection.
type Repository interface {
	// Create inserts reg and fills in ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, reg *Registration) error
	GetByEmail(ctx context.Context, email string) (*Registration, error)
	GetByPassID(ctx context.Context, passID string) (*Registration, error)
	// FindByPassIDOrEmail matches either key exactly; callers normalize the email.
	FindByPassIDOrEmail(ctx context.Context, passID, email string) (*Registration, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	// TeamNameExists compares names case-insensitively and literally.
	TeamNameExists(ctx context.Context, teamName string) (bool, error)
	// SetEntered sets every target's entered flag to the given value in a
	// single atomic update.
	SetEntered(ctx context.Context, passID string, targets []EntryTarget, entered bool) error
	List(ctx context.Context) ([]Registration, error)
	Ping(ctx context.Context) error
}

// maxMemberIndex returns the highest member position among targets, or -1
// when only the lead is addressed.
func maxMemberIndex(targets []EntryTarget) int {
	highest := -1
	for _, t := range targets {
		if t.Type == PersonMember && t.MemberIndex > highest {
			highest = t.MemberIndex
		}
	}
	return highest
}
