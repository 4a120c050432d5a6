// Package store persists user accounts and generation history in a SQL
// database. Both SQLite (driver "sqlite3") and Postgres (driver "pgx") are
// supported with the same schema.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mattn/go-sqlite3"

	"github.com/venturemind/venturemind-backend/internal/models"
)

var (
	ErrNotFound       = errors.New("store: not found")
	ErrDuplicateEmail = errors.New("store: email already registered")
)

// timeLayout sorts lexically in the same order as chronologically.
const timeLayout = "2006-01-02T15:04:05.000000Z"

type Store struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

// Open connects to the database and creates the schema if needed.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	dsn = strings.TrimSpace(dsn)
	if driver == "sqlite3" && !strings.Contains(dsn, "?") && dsn != ":memory:" {
		dsn += "?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000"
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if driver == "sqlite3" {
		// One writer at a time keeps SQLite free of SQLITE_BUSY under load.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{db: db, driver: driver, now: time.Now}
	if err := s.createSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	slog.Info("database ready", "component", "store", "driver", driver)
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			hashed_password TEXT NOT NULL,
			full_name TEXT NOT NULL DEFAULT '',
			dob TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS history (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id),
			idea TEXT NOT NULL,
			summary TEXT NOT NULL DEFAULT '',
			full_json TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_user_created ON history(user_id, created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

func (s *Store) timestamp() (time.Time, string) {
	t := s.now().UTC().Truncate(time.Microsecond)
	return t, t.Format(timeLayout)
}

// CreateUser inserts u, assigning its ID and CreatedAt. The email is stored
// lower-cased.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	u.ID = uuid.NewString()
	u.Email = normalizeEmail(u.Email)
	created, stamp := s.timestamp()
	u.CreatedAt = created

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, hashed_password, full_name, dob, phone, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Email, u.HashedPassword, u.FullName, u.DOB, u.Phone, stamp)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, hashed_password, full_name, dob, phone, created_at
		 FROM users WHERE email = $1`, normalizeEmail(email))

	var (
		u     models.User
		stamp string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.HashedPassword, &u.FullName, &u.DOB, &u.Phone, &stamp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}
	created, err := parseTime(stamp)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = created
	return &u, nil
}

// AddHistory saves one generation for a user, assigning ID and CreatedAt.
func (s *Store) AddHistory(ctx context.Context, item *models.HistoryItem) error {
	item.ID = uuid.NewString()
	created, stamp := s.timestamp()
	item.CreatedAt = created

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history (id, user_id, idea, summary, full_json, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		item.ID, item.UserID, item.Idea, item.Summary, item.FullJSON, stamp)
	if err != nil {
		return fmt.Errorf("inserting history: %w", err)
	}
	return nil
}

// ListHistory returns the user's items newest first, without FullJSON.
func (s *Store) ListHistory(ctx context.Context, userID string) ([]models.HistoryItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, idea, summary, created_at
		 FROM history WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	items := []models.HistoryItem{}
	for rows.Next() {
		var (
			item  models.HistoryItem
			stamp string
		)
		if err := rows.Scan(&item.ID, &item.UserID, &item.Idea, &item.Summary, &stamp); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		if item.CreatedAt, err = parseTime(stamp); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}
	return items, nil
}

// GetHistory returns one item owned by userID. Items belonging to other
// users are reported as ErrNotFound.
func (s *Store) GetHistory(ctx context.Context, userID, id string) (*models.HistoryItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, idea, summary, full_json, created_at
		 FROM history WHERE id = $1 AND user_id = $2`, id, userID)

	var (
		item  models.HistoryItem
		stamp string
	)
	if err := row.Scan(&item.ID, &item.UserID, &item.Idea, &item.Summary, &item.FullJSON, &stamp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying history item: %w", err)
	}
	created, err := parseTime(stamp)
	if err != nil {
		return nil, err
	}
	item.CreatedAt = created
	return &item, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func parseTime(stamp string) (time.Time, error) {
	t, err := time.Parse(timeLayout, stamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", stamp, err)
	}
	return t, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
