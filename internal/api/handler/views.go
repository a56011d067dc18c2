package handler

import (
	"time"

	"github.com/daap14/eventpass/internal/registration"
)

const timeLayout = "2006-01-02T15:04:05.000Z"

type memberResponse struct {
	Index    int    `json:"index"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	College  string `json:"college"`
	Entered  bool   `json:"entered"`
}

type passResponse struct {
	PassID              string           `json:"passId"`
	TeamName            string           `json:"teamName"`
	TeamLeadFullName    string           `json:"teamLeadFullName"`
	Email               string           `json:"email"`
	Phone               string           `json:"phone"`
	College             string           `json:"college"`
	Year                string           `json:"year"`
	NumberOfTeamMembers int              `json:"numberOfTeamMembers"`
	TeamMembers         []memberResponse `json:"teamMembers"`
	Entered             bool             `json:"entered"`
	QRCodeURL           string           `json:"qrCodeUrl"`
	CreatedAt           string           `json:"createdAt"`
}

func toPassResponse(reg *registration.Registration) passResponse {
	members := make([]memberResponse, 0, len(reg.TeamMembers))
	for i, m := range reg.TeamMembers {
		members = append(members, memberResponse{
			Index:    i,
			FullName: m.FullName,
			Email:    m.Email,
			Phone:    m.Phone,
			College:  m.College,
			Entered:  m.Entered,
		})
	}

	return passResponse{
		PassID:              reg.PassID,
		TeamName:            reg.TeamName,
		TeamLeadFullName:    reg.TeamLeadFullName,
		Email:               reg.Email,
		Phone:               reg.Phone,
		College:             reg.College,
		Year:                string(reg.Year),
		NumberOfTeamMembers: reg.NumberOfTeamMembers,
		TeamMembers:         members,
		Entered:             reg.Entered,
		QRCodeURL:           qrPath(reg.PassID),
		CreatedAt:           formatTime(reg.CreatedAt),
	}
}

func qrPath(passID string) string {
	return "/passes/" + passID + "/qr.png"
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
