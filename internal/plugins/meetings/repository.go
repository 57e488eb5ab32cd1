package meetings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// ErrDuplicateID is returned by Create when the meeting ID already exists.
var ErrDuplicateID = errors.New("meeting id already exists")

// mysqlDuplicateEntry is the server error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// MeetingRepository defines persistence operations for meetings.
type MeetingRepository interface {
	Create(ctx context.Context, m *Meeting) error
	FindByID(ctx context.Context, id string) (*Meeting, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// meetingRepo is the MariaDB implementation of MeetingRepository.
type meetingRepo struct {
	db *sql.DB
}

// NewMeetingRepository creates a new MariaDB-backed meeting repository.
func NewMeetingRepository(db *sql.DB) MeetingRepository {
	return &meetingRepo{db: db}
}

const meetingCols = `id, title, timezone, earliest, latest, type, dates, days, created_at`

// Create inserts a meeting. A primary key collision is reported as
// ErrDuplicateID so the service can answer 409.
func (r *meetingRepo) Create(ctx context.Context, m *Meeting) error {
	dates, err := json.Marshal(nonNilStrings(m.Dates))
	if err != nil {
		return fmt.Errorf("encoding dates: %w", err)
	}
	days, err := json.Marshal(nonNilInts(m.Days))
	if err != nil {
		return fmt.Errorf("encoding days: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO meetings (id, title, timezone, earliest, latest, type, dates, days, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Title, m.Timezone, m.Earliest, m.Latest, m.Type, dates, days, m.CreatedAt,
	)
	if isDuplicateKey(err) {
		return ErrDuplicateID
	}
	return err
}

// FindByID returns the meeting, or nil when there is none.
func (r *meetingRepo) FindByID(ctx context.Context, id string) (*Meeting, error) {
	m := &Meeting{}
	var dates, days []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT `+meetingCols+` FROM meetings WHERE id = ?`, id,
	).Scan(&m.ID, &m.Title, &m.Timezone, &m.Earliest, &m.Latest, &m.Type, &dates, &days, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(dates, &m.Dates); err != nil {
		return nil, fmt.Errorf("decoding dates of %s: %w", id, err)
	}
	if err := json.Unmarshal(days, &m.Days); err != nil {
		return nil, fmt.Errorf("decoding days of %s: %w", id, err)
	}
	return m, nil
}

// Exists reports whether a meeting with this ID is stored.
func (r *meetingRepo) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM meetings WHERE id = ?`, id,
	).Scan(&n)
	return n > 0, err
}

func isDuplicateKey(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilInts(s []int) []int {
	if s == nil {
		return []int{}
	}
	return s
}
