// Package feedback collects free form user feedback and stores it best
// effort.
package feedback

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"retainformat/common"
	"retainformat/config"
)

// Status strings returned to the user.
const (
	StatusSaved  = "Thanks for your feedback."
	StatusFailed = "Feedback not saved (storage issue)."
)

// Record is a single feedback event.
type Record struct {
	ID        uuid.UUID
	Kind      common.FeedbackKind
	Contact   string
	Timestamp time.Time
	ClientID  string
}

// Sink stores feedback records.
type Sink interface {
	Store(ctx context.Context, rec Record) error
	Close() error
}

// LogSink only logs records.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log.Named("feedback")}
}

func (s *LogSink) Store(_ context.Context, rec Record) error {
	s.log.Info("Feedback received",
		zap.Stringer("id", rec.ID),
		zap.Stringer("kind", rec.Kind),
		zap.String("contact", rec.Contact),
		zap.Time("timestamp", rec.Timestamp),
		zap.String("client", rec.ClientID))
	return nil
}

func (s *LogSink) Close() error { return nil }

// Collector turns user input into records and hands them to the sink.
type Collector struct {
	sink     Sink
	clientID string
	log      *zap.Logger
	now      func() time.Time
}

// NewCollector creates collector, when clientID is empty new random one is
// used for the lifetime of collector.
func NewCollector(sink Sink, clientID string, log *zap.Logger) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	if len(clientID) == 0 {
		if id, err := uuid.NewV7(); err == nil {
			clientID = id.String()
		}
	}
	return &Collector{sink: sink, clientID: clientID, log: log.Named("feedback"), now: time.Now}
}

// Open prepares collector according to configuration: SQLite database when
// one is configured, log otherwise. It returns nil collector when feedback
// is disabled.
func Open(cfg *config.FeedbackConfig, log *zap.Logger) (*Collector, error) {
	if !cfg.Enable {
		return nil, nil
	}
	var sink Sink = NewLogSink(log)
	if len(cfg.Database) > 0 {
		s, err := OpenSQLite(cfg.Database, log)
		if err != nil {
			return nil, err
		}
		sink = s
	}
	return NewCollector(sink, cfg.ClientID.Reveal(), log), nil
}

// Submit records feedback and returns status string for the user. Storage
// errors are logged and never returned.
func (c *Collector) Submit(ctx context.Context, kind, contact string) string {
	k, err := common.ParseFeedbackKind(strings.ToLower(strings.TrimSpace(kind)))
	if err != nil {
		c.log.Debug("Unknown feedback kind", zap.String("kind", kind))
		k = common.FeedbackKindUnknown
	}
	id, err := uuid.NewV7()
	if err != nil {
		c.log.Error("Unable to generate feedback id", zap.Error(err))
		return StatusFailed
	}
	rec := Record{
		ID:        id,
		Kind:      k,
		Contact:   strings.TrimSpace(contact),
		Timestamp: c.now().UTC(),
		ClientID:  c.clientID,
	}
	if err := c.sink.Store(ctx, rec); err != nil {
		c.log.Error("Unable to store feedback", zap.Stringer("id", rec.ID), zap.Error(err))
		return StatusFailed
	}
	return StatusSaved
}

// Close releases the sink.
func (c *Collector) Close() error {
	if c == nil {
		return nil
	}
	return c.sink.Close()
}
