package registration

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const registrationColumns = `id, pass_id, email, team_name, team_lead_full_name, phone, college,
		       year, number_of_team_members, team_members, entered, created_at, updated_at`

// memberJSON is the JSONB shape of one element of registrations.team_members.
type memberJSON struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	College  string `json:"college"`
	Entered  bool   `json:"entered"`
}

// PostgresRepository implements Repository using pgxpool. Team members live in
// a JSONB array column so each registration stays a single row.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new Repository backed by the given connection pool.
func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new registration record.
func (r *PostgresRepository) Create(ctx context.Context, reg *Registration) error {
	if reg.ID == uuid.Nil {
		reg.ID = uuid.New()
	}

	query := `
		INSERT INTO registrations (id, pass_id, email, team_name, team_lead_full_name, phone,
		                           college, year, number_of_team_members, team_members, entered)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		reg.ID,
		reg.PassID,
		reg.Email,
		reg.TeamName,
		reg.TeamLeadFullName,
		reg.Phone,
		reg.College,
		string(reg.Year),
		reg.NumberOfTeamMembers,
		toMemberJSON(reg.TeamMembers),
		reg.Entered,
	).Scan(&reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return duplicateFromConstraint(pgErr.ConstraintName)
		}
		return fmt.Errorf("inserting registration: %w", err)
	}

	return nil
}

// GetByEmail retrieves a registration by its normalized email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE email = $1`
	return r.scanOne(ctx, query, email)
}

// GetByPassID retrieves a registration by its pass ID.
func (r *PostgresRepository) GetByPassID(ctx context.Context, passID string) (*Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE pass_id = $1`
	return r.scanOne(ctx, query, passID)
}

// FindByPassIDOrEmail retrieves the registration matching either key, preferring
// a pass ID match.
func (r *PostgresRepository) FindByPassIDOrEmail(ctx context.Context, passID, email string) (*Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE pass_id = $1 OR email = $2
		ORDER BY (pass_id = $1) DESC
		LIMIT 1`
	return r.scanOne(ctx, query, passID, email)
}

// EmailExists reports whether a registration uses the given normalized email.
func (r *PostgresRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM registrations WHERE email = $1)", email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking email existence: %w", err)
	}
	return exists, nil
}

// TeamNameExists reports whether a registration uses teamName, ignoring case.
func (r *PostgresRepository) TeamNameExists(ctx context.Context, teamName string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM registrations WHERE LOWER(team_name) = LOWER($1))",
		strings.TrimSpace(teamName),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking team name existence: %w", err)
	}
	return exists, nil
}

// SetEntered updates the lead flag and any member flags in one UPDATE. Member
// flags are rewritten in place with nested jsonb_set calls.
func (r *PostgresRepository) SetEntered(ctx context.Context, passID string, targets []EntryTarget, entered bool) error {
	var setClauses []string
	args := []any{passID, entered}
	argIdx := 3

	membersExpr := "team_members"
	seen := make(map[int]bool)
	for _, t := range targets {
		switch t.Type {
		case PersonLead:
			if !seen[-1] {
				setClauses = append(setClauses, "entered = $2")
				seen[-1] = true
			}
		case PersonMember:
			if seen[t.MemberIndex] {
				continue
			}
			seen[t.MemberIndex] = true
			membersExpr = fmt.Sprintf("jsonb_set(%s, ARRAY[$%d::text, 'entered'], to_jsonb($2::boolean))", membersExpr, argIdx)
			args = append(args, strconv.Itoa(t.MemberIndex))
			argIdx++
		}
	}
	if membersExpr != "team_members" {
		setClauses = append(setClauses, "team_members = "+membersExpr)
	}
	if len(setClauses) == 0 {
		return fmt.Errorf("setting entered flags: no targets")
	}
	setClauses = append(setClauses, "updated_at = NOW()")

	where := "pass_id = $1"
	if highest := maxMemberIndex(targets); highest >= 0 {
		where += fmt.Sprintf(" AND jsonb_array_length(team_members) > $%d", argIdx)
		args = append(args, highest)
	}

	query := fmt.Sprintf(`UPDATE registrations SET %s WHERE %s`, strings.Join(setClauses, ", "), where)

	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating entered flags: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Distinguish a missing pass from a member index past the end of the list.
		var exists bool
		err := r.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM registrations WHERE pass_id = $1)", passID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("checking registration existence: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrMemberIndexOutOfRange
	}

	return nil
}

// List retrieves every registration ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context) ([]Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing registrations: %w", err)
	}
	defer rows.Close()

	var regs []Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning registration row: %w", err)
		}
		regs = append(regs, *reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating registration rows: %w", err)
	}

	if regs == nil {
		regs = []Registration{}
	}

	return regs, nil
}

// Ping verifies the pool can reach the database.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// scanOne scans a single Registration row from a query. Returns ErrNotFound if no rows.
func (r *PostgresRepository) scanOne(ctx context.Context, query string, args ...any) (*Registration, error) {
	reg, err := scanRegistration(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning registration row: %w", err)
	}
	return reg, nil
}

func scanRegistration(row pgx.Row) (*Registration, error) {
	var (
		reg     Registration
		year    string
		members []memberJSON
	)
	err := row.Scan(
		&reg.ID, &reg.PassID, &reg.Email, &reg.TeamName, &reg.TeamLeadFullName,
		&reg.Phone, &reg.College, &year, &reg.NumberOfTeamMembers, &members,
		&reg.Entered, &reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	reg.Year = Year(year)
	reg.TeamMembers = fromMemberJSON(members)
	return &reg, nil
}

func toMemberJSON(members []TeamMember) []memberJSON {
	out := make([]memberJSON, 0, len(members))
	for _, m := range members {
		out = append(out, memberJSON(m))
	}
	return out
}

func fromMemberJSON(members []memberJSON) []TeamMember {
	out := make([]TeamMember, 0, len(members))
	for _, m := range members {
		out = append(out, TeamMember(m))
	}
	return out
}

// duplicateFromConstraint maps a unique constraint name to its sentinel error.
func duplicateFromConstraint(constraint string) error {
	switch {
	case strings.Contains(constraint, "email"):
		return ErrEmailExists
	case strings.Contains(constraint, "team_name"):
		return ErrTeamNameExists
	case strings.Contains(constraint, "pass_id"):
		return ErrPassIDExists
	}
	return fmt.Errorf("unique violation on %s", constraint)
}
