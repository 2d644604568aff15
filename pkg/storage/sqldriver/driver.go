// Package sqldriver implements storage.Driver on top of database/sql. The
// sqlite and postgres packages open the connection and embed a *Driver.
package sqldriver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/papercomputeco/replybot/pkg/storage"
)

// Dialect captures the differences between the supported SQL engines.
type Dialect struct {
	// Name is used in error messages.
	Name string

	// TimestampType is the column type used for replied_at.
	TimestampType string

	// NumberedParams rewrites "?" placeholders to "$1", "$2", ...
	NumberedParams bool
}

var (
	// SQLite is the dialect for github.com/mattn/go-sqlite3.
	SQLite = Dialect{Name: "sqlite", TimestampType: "TIMESTAMP"}

	// Postgres is the dialect for github.com/jackc/pgx/v5/stdlib.
	Postgres = Dialect{Name: "postgres", TimestampType: "TIMESTAMPTZ", NumberedParams: true}
)

// Driver implements storage.Driver with plain SQL.
type Driver struct {
	DB      *sql.DB
	Dialect Dialect
}

// New wraps db and creates the replies table if it does not exist.
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*Driver, error) {
	d := &Driver{DB: db, Dialect: dialect}

	if err := d.migrate(ctx); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *Driver) migrate(ctx context.Context) error {
	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS replies (
	status_id  TEXT PRIMARY KEY,
	reply_id   TEXT NOT NULL,
	account    TEXT NOT NULL,
	text       TEXT NOT NULL,
	replied_at %s NOT NULL
)`, d.Dialect.TimestampType)

	if _, err := d.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create %s schema: %w", d.Dialect.Name, err)
	}

	index := `CREATE INDEX IF NOT EXISTS replies_replied_at_idx ON replies (replied_at)`
	if _, err := d.DB.ExecContext(ctx, index); err != nil {
		return fmt.Errorf("failed to create %s index: %w", d.Dialect.Name, err)
	}

	return nil
}

// Put stores a reply. Returns true if the reply was newly inserted.
func (d *Driver) Put(ctx context.Context, reply *storage.Reply) (bool, error) {
	if err := reply.Validate(); err != nil {
		return false, err
	}

	res, err := d.DB.ExecContext(ctx, d.rebind(`INSERT INTO replies
	(status_id, reply_id, account, text, replied_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (status_id) DO NOTHING`),
		reply.StatusID,
		reply.ReplyID,
		reply.Account,
		reply.Text,
		reply.RepliedAt.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("inserting reply %s: %w", reply.StatusID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("inserting reply %s: %w", reply.StatusID, err)
	}

	return n == 1, nil
}

// Get retrieves the reply to a status.
func (d *Driver) Get(ctx context.Context, statusID string) (*storage.Reply, error) {
	row := d.DB.QueryRowContext(ctx, d.rebind(`SELECT status_id, reply_id, account, text, replied_at
	FROM replies WHERE status_id = ?`), statusID)

	reply, err := scanReply(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFoundError{StatusID: statusID}
	}
	if err != nil {
		return nil, fmt.Errorf("getting reply %s: %w", statusID, err)
	}

	return reply, nil
}

// Has checks if a status was answered.
func (d *Driver) Has(ctx context.Context, statusID string) (bool, error) {
	var one int
	err := d.DB.QueryRowContext(ctx, d.rebind(`SELECT 1 FROM replies WHERE status_id = ?`), statusID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking reply %s: %w", statusID, err)
	}
	return true, nil
}

// List returns all replies, newest first.
func (d *Driver) List(ctx context.Context) ([]*storage.Reply, error) {
	rows, err := d.DB.QueryContext(ctx, `SELECT status_id, reply_id, account, text, replied_at
	FROM replies ORDER BY replied_at DESC, status_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing replies: %w", err)
	}
	defer rows.Close()

	var replies []*storage.Reply
	for rows.Next() {
		reply, err := scanReply(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning reply: %w", err)
		}
		replies = append(replies, reply)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing replies: %w", err)
	}

	return replies, nil
}

// Count returns the number of stored replies.
func (d *Driver) Count(ctx context.Context) (int, error) {
	var n int
	if err := d.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM replies`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting replies: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (d *Driver) Close() error {
	return d.DB.Close()
}

// rebind rewrites "?" placeholders for dialects with numbered parameters.
// Queries passed here never contain a literal "?".
func (d *Driver) rebind(query string) string {
	if !d.Dialect.NumberedParams {
		return query
	}

	var (
		b strings.Builder
		n int
	)
	for _, r := range query {
		if r != '?' {
			b.WriteRune(r)
			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReply(s scanner) (*storage.Reply, error) {
	var r storage.Reply
	if err := s.Scan(&r.StatusID, &r.ReplyID, &r.Account, &r.Text, &r.RepliedAt); err != nil {
		return nil, err
	}
	r.RepliedAt = r.RepliedAt.UTC()
	return &r, nil
}
