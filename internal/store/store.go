package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/folioapp/folio/internal/model"
)

// Supported driver names for Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// connectTimeout bounds connection establishment to the backing database.
const connectTimeout = 5 * time.Second

// Store persists folio's state: the administrator account, the singleton
// site-data document, and login sessions. The same Store type serves both
// the SQLite and Postgres backends; the driver is chosen by configuration.
type Store struct {
	db     *sqlx.DB
	driver string
}

// Open opens a store for the given driver.
//
// For DriverSQLite, dsn is a data directory (empty means in-memory, used by
// tests). For DriverPostgres, dsn is a standard connection string.
func Open(driver, dsn string) (*Store, error) {
	var db *sqlx.DB
	var err error

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	switch driver {
	case DriverSQLite:
		var path string
		if dsn == "" {
			path = ":memory:?_journal_mode=WAL"
		} else {
			if err := os.MkdirAll(dsn, 0755); err != nil {
				return nil, fmt.Errorf("create data dir: %w", err)
			}
			path = filepath.Join(dsn, "folio.db") + "?_journal_mode=WAL&_busy_timeout=5000"
		}
		db, err = sqlx.ConnectContext(ctx, "sqlite", path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
		db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes
	case DriverPostgres:
		db, err = sqlx.ConnectContext(ctx, "pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres database: %w", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(2)
		db.SetConnMaxIdleTime(45 * time.Second)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	s := &Store{db: db, driver: driver}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the backing database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ---------------------------------------------------------------------------
// Admin
// ---------------------------------------------------------------------------

// CreateAdmin inserts the administrator account. The admins table pins its
// primary key to 1, so a concurrent second insert fails inside the database
// with a unique violation; that is surfaced as ErrAdminExists. The ID and
// CreatedAt fields are populated after a successful insert.
func (s *Store) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	admin.ID = 1
	admin.CreatedAt = time.Now().UTC()

	const q = `INSERT INTO admins (id, username, password_hash, created_at)
		VALUES (:id, :username, :password_hash, :created_at)`

	if _, err := s.db.NamedExecContext(ctx, q, admin); err != nil {
		if isUniqueViolation(err) {
			return ErrAdminExists
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

// GetAdminByUsername returns the admin with the given username.
func (s *Store) GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	var admin model.Admin
	q := s.db.Rebind("SELECT * FROM admins WHERE username = ?")
	if err := s.db.GetContext(ctx, &admin, q, username); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get admin by username: %w", err)
	}
	return &admin, nil
}

// HasAdmin reports whether the administrator account exists.
func (s *Store) HasAdmin(ctx context.Context) (bool, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM admins"); err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	return count > 0, nil
}

// ListAdmins returns all admin accounts. In practice that is zero or one;
// the CLI uses this for `folio admin list`.
func (s *Store) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	var admins []model.Admin
	if err := s.db.SelectContext(ctx, &admins, "SELECT * FROM admins ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}

// ---------------------------------------------------------------------------
// Site data (singleton document)
// ---------------------------------------------------------------------------

// GetOrCreateSiteData returns the site-data document, seeding the singleton
// row with defaults on first access. Seeding uses an atomic insert-if-absent
// so concurrent first reads cannot create two rows.
func (s *Store) GetOrCreateSiteData(ctx context.Context) (model.SiteData, error) {
	defaults, err := json.Marshal(model.DefaultSiteData())
	if err != nil {
		return model.SiteData{}, fmt.Errorf("marshal default site data: %w", err)
	}

	now := time.Now().UTC()
	insert := s.db.Rebind(
		`INSERT INTO site_config (id, data, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT (id) DO NOTHING`)
	if _, err := s.db.ExecContext(ctx, insert, string(defaults), now); err != nil {
		return model.SiteData{}, fmt.Errorf("seed site config: %w", err)
	}

	var raw string
	if err := s.db.GetContext(ctx, &raw, "SELECT data FROM site_config WHERE id = 1"); err != nil {
		return model.SiteData{}, fmt.Errorf("get site config: %w", err)
	}

	var data model.SiteData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return model.SiteData{}, fmt.Errorf("unmarshal site data: %w", err)
	}
	return data, nil
}

// ReplaceSiteData overwrites the entire site-data document. Last write wins
// under concurrent updates; the document is small and owned by one person.
func (s *Store) ReplaceSiteData(ctx context.Context, data model.SiteData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal site data: %w", err)
	}

	q := s.db.Rebind(
		`INSERT INTO site_config (id, data, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`)
	if _, err := s.db.ExecContext(ctx, q, string(raw), time.Now().UTC()); err != nil {
		return fmt.Errorf("replace site data: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Sessions
// ---------------------------------------------------------------------------

// CreateSession inserts a session record.
func (s *Store) CreateSession(ctx context.Context, sess *model.Session) error {
	const q = `INSERT INTO sessions (id, admin_id, username, created_at, expires_at)
		VALUES (:id, :admin_id, :username, :created_at, :expires_at)`

	if _, err := s.db.NamedExecContext(ctx, q, sess); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSession returns a session by ID. Expiry is the caller's concern; the
// row is returned as stored.
func (s *Store) GetSession(ctx context.Context, id string) (*model.Session, error) {
	var sess model.Session
	q := s.db.Rebind("SELECT * FROM sessions WHERE id = ?")
	if err := s.db.GetContext(ctx, &sess, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &sess, nil
}

// DeleteSession removes a session by ID. Deleting an absent session is not
// an error: logout is idempotent.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	q := s.db.Rebind("DELETE FROM sessions WHERE id = ?")
	if _, err := s.db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes all sessions past their expiry and returns
// how many were deleted.
func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	q := s.db.Rebind("DELETE FROM sessions WHERE expires_at <= ?")
	result, err := s.db.ExecContext(ctx, q, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions rows affected: %w", err)
	}
	return n, nil
}
