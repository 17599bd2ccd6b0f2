package feedback

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"retainformat/common"
)

const schema = `
CREATE TABLE IF NOT EXISTS feedback_events (
	id        TEXT PRIMARY KEY,
	kind      TEXT NOT NULL,
	contact   TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	client_id TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS feedback_events_timestamp ON feedback_events(timestamp);
`

// SQLiteSink keeps records in feedback_events table. Connection is shared
// so access is serialized.
type SQLiteSink struct {
	mu   sync.Mutex
	conn *sqlite.Conn
	log  *zap.Logger
}

// OpenSQLite opens (creating if necessary) database at path.
func OpenSQLite(path string, log *zap.Logger) (*SQLiteSink, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("unable to create feedback database directory: %w", err)
		}
	}
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite, sqlite.OpenCreate, sqlite.OpenWAL)
	if err != nil {
		return nil, fmt.Errorf("unable to open feedback database: %w", err)
	}
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to prepare feedback database: %w", err)
	}
	log.Debug("Feedback database opened", zap.String("path", path))
	return &SQLiteSink{conn: conn, log: log.Named("feedback-db")}, nil
}

func (s *SQLiteSink) Store(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conn.SetInterrupt(ctx.Done())
	defer s.conn.SetInterrupt(nil)

	err := sqlitex.Execute(s.conn,
		`INSERT INTO feedback_events (id, kind, contact, timestamp, client_id) VALUES (?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{
			rec.ID.String(),
			rec.Kind.String(),
			rec.Contact,
			rec.Timestamp.Format(time.RFC3339Nano),
			rec.ClientID,
		}})
	if err != nil {
		return fmt.Errorf("unable to insert feedback: %w", err)
	}
	s.log.Debug("Feedback stored", zap.Stringer("id", rec.ID))
	return nil
}

// Records returns all stored records oldest first.
func (s *SQLiteSink) Records(ctx context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conn.SetInterrupt(ctx.Done())
	defer s.conn.SetInterrupt(nil)

	var out []Record
	err := sqlitex.Execute(s.conn,
		`SELECT id, kind, contact, timestamp, client_id FROM feedback_events ORDER BY timestamp, id`,
		&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
			id, err := uuid.Parse(stmt.ColumnText(0))
			if err != nil {
				return fmt.Errorf("bad feedback id: %w", err)
			}
			kind, err := common.ParseFeedbackKind(stmt.ColumnText(1))
			if err != nil {
				kind = common.FeedbackKindUnknown
			}
			ts, err := time.Parse(time.RFC3339Nano, stmt.ColumnText(3))
			if err != nil {
				return fmt.Errorf("bad feedback timestamp: %w", err)
			}
			out = append(out, Record{
				ID:        id,
				Kind:      kind,
				Contact:   stmt.ColumnText(2),
				Timestamp: ts,
				ClientID:  stmt.ColumnText(4),
			})
			return nil
		}})
	if err != nil {
		return nil, fmt.Errorf("unable to read feedback: %w", err)
	}
	return out, nil
}

func (s *SQLiteSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("unable to close feedback database: %w", err)
	}
	return nil
}
