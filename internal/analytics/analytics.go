// Package analytics computes attendance statistics over all registrations.
package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/daap14/eventpass/internal/registration"
)

// UnknownCollege is the bucket for registrations with a blank college.
const UnknownCollege = "Unknown"

// MemberStatus is one member's name and entry flag.
type MemberStatus struct {
	Name    string `json:"name"`
	Entered bool   `json:"entered"`
}

// TeamRow summarizes one registration.
type TeamRow struct {
	PassID       string         `json:"passId"`
	TeamName     string         `json:"teamName"`
	College      string         `json:"college"`
	Year         string         `json:"year"`
	TotalMembers int            `json:"totalMembers"`
	EnteredCount int            `json:"enteredCount"`
	LeadName     string         `json:"leadName"`
	LeadEntered  bool           `json:"leadEntered"`
	Members      []MemberStatus `json:"members"`
	CreatedAt    string         `json:"createdAt"`
}

// CollegeRow aggregates registrations from one college.
type CollegeRow struct {
	College           string `json:"college"`
	TotalTeams        int    `json:"totalTeams"`
	TotalCandidates   int    `json:"totalCandidates"`
	EnteredCandidates int    `json:"enteredCandidates"`
}

// Report is the full analytics snapshot.
type Report struct {
	TotalTeams            int          `json:"totalTeams"`
	TotalCandidates       int          `json:"totalCandidates"`
	TotalEntered          int          `json:"totalEntered"`
	TotalPending          int          `json:"totalPending"`
	EntryPercentage       int          `json:"entryPercentage"`
	TeamsFullyEntered     int          `json:"teamsFullyEntered"`
	TeamsPartiallyEntered int          `json:"teamsPartiallyEntered"`
	TeamsNotEntered       int          `json:"teamsNotEntered"`
	CollegeBreakdown      []CollegeRow `json:"collegeBreakdown"`
	Teams                 []TeamRow    `json:"teams"`
}

// Summarize builds a Report from regs. Teams are ordered partially entered
// first, then not entered, then fully entered; colleges by candidate count,
// largest first.
func Summarize(regs []registration.Registration) *Report {
	report := &Report{
		TotalTeams:       len(regs),
		CollegeBreakdown: []CollegeRow{},
		Teams:            make([]TeamRow, 0, len(regs)),
	}

	colleges := make(map[string]int)
	for i := range regs {
		reg := &regs[i]
		total := reg.TotalPeople()
		entered := reg.EnteredCount()

		report.TotalCandidates += total
		report.TotalEntered += entered

		switch {
		case entered == 0:
			report.TeamsNotEntered++
		case entered == total:
			report.TeamsFullyEntered++
		default:
			report.TeamsPartiallyEntered++
		}

		college := reg.College
		if college == "" {
			college = UnknownCollege
		}
		idx, ok := colleges[college]
		if !ok {
			idx = len(report.CollegeBreakdown)
			colleges[college] = idx
			report.CollegeBreakdown = append(report.CollegeBreakdown, CollegeRow{College: college})
		}
		row := &report.CollegeBreakdown[idx]
		row.TotalTeams++
		row.TotalCandidates += total
		row.EnteredCandidates += entered

		members := make([]MemberStatus, 0, len(reg.TeamMembers))
		for _, m := range reg.TeamMembers {
			members = append(members, MemberStatus{Name: m.FullName, Entered: m.Entered})
		}

		report.Teams = append(report.Teams, TeamRow{
			PassID:       reg.PassID,
			TeamName:     reg.TeamName,
			College:      reg.College,
			Year:         string(reg.Year),
			TotalMembers: total,
			EnteredCount: entered,
			LeadName:     reg.TeamLeadFullName,
			LeadEntered:  reg.Entered,
			Members:      members,
			CreatedAt:    reg.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}

	report.TotalPending = report.TotalCandidates - report.TotalEntered
	if report.TotalCandidates > 0 {
		report.EntryPercentage = int(math.Round(float64(report.TotalEntered) / float64(report.TotalCandidates) * 100))
	}

	sort.SliceStable(report.CollegeBreakdown, func(i, j int) bool {
		return report.CollegeBreakdown[i].TotalCandidates > report.CollegeBreakdown[j].TotalCandidates
	})
	sort.SliceStable(report.Teams, func(i, j int) bool {
		return bucket(report.Teams[i]) < bucket(report.Teams[j])
	})

	return report
}

func bucket(t TeamRow) int {
	switch {
	case t.EnteredCount == 0:
		return 2
	case t.EnteredCount == t.TotalMembers:
		return 3
	default:
		return 1
	}
}

// Service loads registrations and summarizes them.
type Service struct {
	repo registration.Repository
}

// NewService creates a new analytics Service.
func NewService(repo registration.Repository) *Service {
	return &Service{repo: repo}
}

// Report reads every registration and returns the summary.
func (s *Service) Report(ctx context.Context) (*Report, error) {
	regs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing registrations: %w", err)
	}
	return Summarize(regs), nil
}
