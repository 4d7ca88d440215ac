package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"time"
)

var _ Sink = (*Store)(nil)

// Store persists audit events to the audit_messages table.
type Store struct {
	db       *sql.DB
	hostname string
	now      func() time.Time
}

// NewStore creates a store over an existing database connection. The
// connection is owned by the caller.
func NewStore(db *sql.DB) *Store {
	hostname, _ := os.Hostname()
	return &Store{db: db, hostname: hostname, now: time.Now}
}

// Save persists an audit event to the database
func (s *Store) Save(ctx context.Context, event Event) error {
	if s.db == nil {
		return nil
	}

	sdata, err := json.Marshal(event.StructuredData())
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_messages (facility, severity, timestamp, hostname, appname, procid, msgid, sdata, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		event.Facility(),
		int(event.Severity()),
		s.now().UTC(),
		s.hostname,
		AppName,
		os.Getpid(),
		event.MessageID(),
		sdata,
		event.Message(),
	)
	return err
}
