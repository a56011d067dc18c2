package registration

import (
	"time"

	"github.com/google/uuid"
)

// Year is the team lead's year of study.
type Year string

// Accepted values for Year.
const (
	YearFirst  Year = "1st"
	YearSecond Year = "2nd"
	YearThird  Year = "3rd"
	YearFourth Year = "4th"
	YearPG     Year = "PG"
)

// Valid reports whether y is one of the accepted years.
func (y Year) Valid() bool {
	switch y {
	case YearFirst, YearSecond, YearThird, YearFourth, YearPG:
		return true
	}
	return false
}

// TeamMember is a non-lead member of a team, addressed by its position in
// Registration.TeamMembers.
type TeamMember struct {
	FullName string
	Email    string
	Phone    string
	College  string
	Entered  bool
}

// Registration is one team's sign-up document.
type Registration struct {
	ID                  uuid.UUID
	PassID              string
	Email               string
	TeamName            string
	TeamLeadFullName    string
	Phone               string
	College             string
	Year                Year
	NumberOfTeamMembers int
	TeamMembers         []TeamMember
	Entered             bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TotalPeople counts the lead plus every stored member.
func (r *Registration) TotalPeople() int {
	return 1 + len(r.TeamMembers)
}

// EnteredCount counts the people whose entered flag is set.
func (r *Registration) EnteredCount() int {
	n := 0
	if r.Entered {
		n++
	}
	for _, m := range r.TeamMembers {
		if m.Entered {
			n++
		}
	}
	return n
}

// PersonType selects the lead or a member as the target of an entry update.
type PersonType string

// Accepted values for PersonType.
const (
	PersonLead   PersonType = "lead"
	PersonMember PersonType = "member"
)

// EntryTarget identifies one person within a registration. MemberIndex is
// only meaningful when Type is PersonMember.
type EntryTarget struct {
	Type        PersonType
	MemberIndex int
}
