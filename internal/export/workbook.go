// Package export renders registrations as a spreadsheet and ships copies of
// it to object storage and Google Sheets.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/daap14/eventpass/internal/registration"
)

// SheetName is the worksheet holding the registration rows.
const SheetName = "Registrations"

// ContentType is the MIME type of generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	roleLeader = "Team Leader"
	roleMember = "Member"
	noYear     = "-"
)

// Header is the first row of every export.
var Header = []string{"Team Name", "Pass ID", "Full Name", "Email", "Phone", "College", "Year", "Role"}

var columnWidths = []float64{20, 20, 25, 30, 15, 25, 10, 15}

// Rows flattens regs into the header row followed by one row per lead and
// one per member, in storage order.
func Rows(regs []registration.Registration) [][]string {
	rows := make([][]string, 0, 1+len(regs)*2)
	rows = append(rows, Header)

	for i := range regs {
		reg := &regs[i]
		rows = append(rows, []string{
			reg.TeamName, reg.PassID, reg.TeamLeadFullName, reg.Email,
			reg.Phone, reg.College, string(reg.Year), roleLeader,
		})
		for _, m := range reg.TeamMembers {
			rows = append(rows, []string{
				reg.TeamName, reg.PassID, m.FullName, m.Email,
				m.Phone, m.College, noYear, roleMember,
			})
		}
	}
	return rows
}

// Workbook renders rows into an xlsx file with a single Registrations sheet.
func Workbook(rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("setting width of column %s: %w", col, err)
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("encoding workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename names an export generated at t, e.g.
// Registration_Details_17-10-2026_14-05-09.xlsx.
func Filename(t time.Time) string {
	return "Registration_Details_" + t.Format("02-01-2006_15-04-05") + ".xlsx"
}
