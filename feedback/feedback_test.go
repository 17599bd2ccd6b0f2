package feedback

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"retainformat/common"
	"retainformat/config"
)

type failingSink struct{ closed bool }

func (f *failingSink) Store(context.Context, Record) error { return errors.New("disk full") }
func (f *failingSink) Close() error                        { f.closed = true; return nil }

type memSink struct{ recs []Record }

func (m *memSink) Store(_ context.Context, r Record) error { m.recs = append(m.recs, r); return nil }
func (m *memSink) Close() error                            { return nil }

func TestSubmit(t *testing.T) {
	sink := &memSink{}
	c := NewCollector(sink, "client-1", zap.NewNop())
	fixed := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	if got := c.Submit(context.Background(), " Like ", "  me@example.com "); got != StatusSaved {
		t.Errorf("Submit() = %q", got)
	}
	if got := c.Submit(context.Background(), "rant", ""); got != StatusSaved {
		t.Errorf("Submit() = %q", got)
	}
	if len(sink.recs) != 2 {
		t.Fatalf("stored %d records", len(sink.recs))
	}
	r := sink.recs[0]
	if r.Kind != common.FeedbackKindLike || r.Contact != "me@example.com" || r.ClientID != "client-1" || !r.Timestamp.Equal(fixed) {
		t.Errorf("record = %+v", r)
	}
	if sink.recs[1].Kind != common.FeedbackKindUnknown {
		t.Errorf("unknown kind recorded as %v", sink.recs[1].Kind)
	}
	if sink.recs[0].ID == sink.recs[1].ID {
		t.Error("record ids must be unique")
	}
}

func TestSubmit_Failure(t *testing.T) {
	sink := &failingSink{}
	c := NewCollector(sink, "", nil)
	if c.clientID == "" {
		t.Error("client id must be generated")
	}
	if got := c.Submit(context.Background(), "dislike", ""); got != StatusFailed {
		t.Errorf("Submit() = %q", got)
	}
	if err := c.Close(); err != nil || !sink.closed {
		t.Errorf("Close() = %v", err)
	}
}

func TestSQLiteSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "feedback.sqlite")
	s, err := OpenSQLite(path, zap.NewNop())
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	c := NewCollector(s, "cli", zap.NewNop())
	for _, k := range []string{"like", "question"} {
		if got := c.Submit(context.Background(), k, "contact "+k); got != StatusSaved {
			t.Fatalf("Submit(%s) = %q", k, got)
		}
	}
	recs, err := s.Records(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 || recs[0].Kind != common.FeedbackKindLike || recs[1].Contact != "contact question" {
		t.Errorf("Records() = %+v", recs)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	// reopening keeps data
	s, err = OpenSQLite(path, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if recs, err = s.Records(context.Background()); err != nil || len(recs) != 2 {
		t.Errorf("Records() after reopen = %d, %v", len(recs), err)
	}
}

func TestOpen(t *testing.T) {
	c, err := Open(&config.FeedbackConfig{Enable: false}, zap.NewNop())
	if err != nil || c != nil {
		t.Errorf("disabled Open() = %v, %v", c, err)
	}
	c, err = Open(&config.FeedbackConfig{Enable: true, ClientID: "abc"}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.sink.(*LogSink); !ok || c.clientID != "abc" {
		t.Errorf("Open() = %+v", c)
	}
	c, err = Open(&config.FeedbackConfig{Enable: true, Database: filepath.Join(t.TempDir(), "f.db")}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if _, ok := c.sink.(*SQLiteSink); !ok {
		t.Errorf("expected sqlite sink, got %T", c.sink)
	}
}
