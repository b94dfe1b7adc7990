package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/visitor-leads/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// MemoryDSN returns a DSN for a private in-memory database. Each call names
// a new database so stores never share rows.
func MemoryDSN() string {
	return "file:leads-" + uuid.NewString() + "?mode=memory&cache=shared"
}

// NewSQLite opens a SQLite database. An empty dsn opens a private in-memory
// database that lives as long as the store.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	memory := dsn == ""
	if memory {
		dsn = MemoryDSN()
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// One connection serializes writers and keeps an in-memory database alive.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{"PRAGMA busy_timeout=5000"}
	if !memory {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL", "PRAGMA synchronous=NORMAL")
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id           TEXT PRIMARY KEY,
	ip           TEXT NOT NULL UNIQUE,
	organization TEXT NOT NULL,
	category     TEXT NOT NULL,
	matched      INTEGER NOT NULL DEFAULT 0,
	visitor      TEXT NOT NULL,
	result       TEXT NOT NULL,
	created_at   DATETIME NOT NULL,
	updated_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leads_category ON leads(category);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveLead(ctx context.Context, visitor model.Visitor, result model.LeadResult) (*model.Lead, error) {
	ip := visitor.IP
	if ip == "" {
		ip = result.IP
	}
	if ip == "" {
		return nil, eris.New("sqlite: save lead: empty ip")
	}
	visitor.IP = ip

	visitorJSON, err := json.Marshal(visitor)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal visitor")
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal result")
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO leads (id, ip, organization, category, matched, visitor, result, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(ip) DO UPDATE SET
			organization = excluded.organization,
			category     = excluded.category,
			matched      = excluded.matched,
			visitor      = excluded.visitor,
			result       = excluded.result,
			updated_at   = excluded.updated_at`,
		uuid.NewString(), ip, result.Organization, result.Category, result.Matched,
		string(visitorJSON), string(resultJSON), now, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: upsert lead %s", ip)
	}
	return s.GetLead(ctx, ip)
}

func (s *SQLiteStore) GetLead(ctx context.Context, ip string) (*model.Lead, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, ip, visitor, result, created_at, updated_at FROM leads WHERE ip = ?`, ip,
	)
	l, err := scanLead(row)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "ip %s", ip)
	}
	return l, err
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT id, ip, visitor, result, created_at, updated_at FROM leads WHERE 1=1`
	var args []any

	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if filter.MatchedOnly {
		query += ` AND matched = 1`
	}
	query += ` ORDER BY rowid`

	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}
	query += ` LIMIT ?`
	args = append(args, limit)
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close() //nolint:errcheck

	leads := []model.Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *l)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: list leads iterate")
}

func (s *SQLiteStore) CountLeads(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads`).Scan(&n)
	return n, eris.Wrap(err, "sqlite: count leads")
}

func (s *SQLiteStore) ClearLeads(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM leads`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: clear leads")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

type scannable interface {
	Scan(dest ...any) error
}

// scanLead returns sql.ErrNoRows unwrapped so callers can map it.
func scanLead(row scannable) (*model.Lead, error) {
	var l model.Lead
	var visitorJSON, resultJSON string

	err := row.Scan(&l.ID, &l.IP, &visitorJSON, &resultJSON, &l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan lead")
	}
	if err := json.Unmarshal([]byte(visitorJSON), &l.Visitor); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal visitor")
	}
	if err := json.Unmarshal([]byte(resultJSON), &l.Result); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal result")
	}
	return &l, nil
}
