package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"retainformat/config"
	"retainformat/feedback"
	"retainformat/format"
)

type memSink struct {
	records []feedback.Record
}

func (m *memSink) Store(_ context.Context, rec feedback.Record) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *memSink) Close() error { return nil }

func newTestServer(t *testing.T, fb *feedback.Collector) *Server {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return New(cfg, nil, fb, zaptest.NewLogger(t))
}

func post(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t, nil).Router()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("content type = %q", rec.Header().Get("Content-Type"))
	}
}

func TestDetect(t *testing.T) {
	h := newTestServer(t, nil).Router()

	t.Run("formats", func(t *testing.T) {
		rec := post(t, h, "/api/detect", documentRequest{HTML: `<p>Hello <b>world</b> <i>again</i></p>`})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var resp detectResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		var ids []string
		for _, f := range resp.Formats {
			ids = append(ids, f.ID)
		}
		if got := strings.Join(ids, ","); got != "bold:bold,italic:italic" {
			t.Errorf("ids = %s", got)
		}
		if resp.Message != "" {
			t.Errorf("unexpected message %q", resp.Message)
		}
		if resp.Theme != "light" {
			t.Errorf("theme = %q", resp.Theme)
		}
	})

	t.Run("markdown", func(t *testing.T) {
		rec := post(t, h, "/api/detect", documentRequest{Markdown: "# Title\n\ntext"})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), `"heading:H1"`) {
			t.Errorf("body = %s", rec.Body.String())
		}
	})

	t.Run("empty", func(t *testing.T) {
		rec := post(t, h, "/api/detect", documentRequest{HTML: `<p>plain</p>`})
		var resp detectResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp.Message != format.EmptyMessage {
			t.Errorf("message = %q", resp.Message)
		}
		if resp.Formats == nil || len(resp.Formats) != 0 {
			t.Errorf("formats = %#v", resp.Formats)
		}
	})

	t.Run("rejected", func(t *testing.T) {
		cases := []struct {
			name string
			body any
			code int
		}{
			{"bad json", `{"html":`, http.StatusBadRequest},
			{"unknown field", `{"text":"x"}`, http.StatusBadRequest},
			{"both inputs", documentRequest{HTML: "a", Markdown: "b"}, http.StatusBadRequest},
			{"unknown theme", documentRequest{HTML: "a", Theme: "sepia"}, http.StatusBadRequest},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				rec := post(t, h, "/api/detect", tc.body)
				if rec.Code != tc.code {
					t.Errorf("status = %d, want %d (%s)", rec.Code, tc.code, rec.Body.String())
				}
				var resp errorResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Error == "" {
					t.Errorf("error body = %s", rec.Body.String())
				}
			})
		}
	})
}

func TestGenerate(t *testing.T) {
	h := newTestServer(t, nil).Router()

	rec := post(t, h, "/api/generate", documentRequest{
		HTML: `Hello <b>world</b>`,
		Updates: []format.LabelUpdate{
			{ID: "bold:bold", Label: "Tmp"},
			{ID: "bold:bold", Label: "Emph"},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp generateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Output != "Hello <Emph>world</Emph>" {
		t.Errorf("output = %q", resp.Output)
	}
	if resp.Raw {
		t.Error("unexpected raw output")
	}
	if want := `Hello <span class="semantic-tag">&lt;Emph&gt;</span>world<span class="semantic-tag">&lt;/Emph&gt;</span>`; resp.PreviewHTML != want {
		t.Errorf("preview = %q", resp.PreviewHTML)
	}
	if len(resp.Formats) != 1 || resp.Formats[0].UserLabel != "Emph" {
		t.Errorf("formats = %#v", resp.Formats)
	}
	if len(resp.Warnings) != 0 {
		t.Errorf("warnings = %v", resp.Warnings)
	}
}

func TestGenerate_NoLabels(t *testing.T) {
	h := newTestServer(t, nil).Router()
	rec := post(t, h, "/api/generate", documentRequest{HTML: `<p>Hello <b>world</b></p>`})
	var resp generateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Raw || resp.Output != "Hello world" {
		t.Errorf("response = %+v", resp)
	}
}

func TestGenerate_BadLabelWarns(t *testing.T) {
	h := newTestServer(t, nil).Router()
	rec := post(t, h, "/api/generate", documentRequest{
		HTML:    `<b>x</b>`,
		Updates: []format.LabelUpdate{{ID: "bold:bold", Label: "two words"}},
	})
	var resp generateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Output != "<two words>x</two words>" {
		t.Errorf("output = %q", resp.Output)
	}
	if len(resp.Warnings) != 1 {
		t.Errorf("warnings = %v", resp.Warnings)
	}
}

func TestGenerate_UnknownFormat(t *testing.T) {
	h := newTestServer(t, nil).Router()
	rec := post(t, h, "/api/generate", documentRequest{
		HTML:    `<b>x</b>`,
		Updates: []format.LabelUpdate{{ID: "italic:italic", Label: "I"}},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestBodyLimit(t *testing.T) {
	s := newTestServer(t, nil)
	s.srv.MaxBodyBytes = 1024
	rec := post(t, s.Router(), "/api/detect", documentRequest{HTML: strings.Repeat("a", 4096)})
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestFeedback(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		rec := post(t, newTestServer(t, nil).Router(), "/api/feedback", feedbackRequest{Kind: "like"})
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("recorded", func(t *testing.T) {
		sink := &memSink{}
		h := newTestServer(t, feedback.NewCollector(sink, "client", zaptest.NewLogger(t))).Router()

		rec := post(t, h, "/api/feedback", feedbackRequest{Kind: "dislike", Contact: "me@example.com"})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp["status"] != feedback.StatusSaved {
			t.Errorf("status = %q", resp["status"])
		}
		if len(sink.records) != 1 || sink.records[0].Contact != "me@example.com" || sink.records[0].ClientID != "client" {
			t.Errorf("records = %+v", sink.records)
		}
	})

	t.Run("missing kind", func(t *testing.T) {
		h := newTestServer(t, feedback.NewCollector(&memSink{}, "", zaptest.NewLogger(t))).Router()
		if rec := post(t, h, "/api/feedback", feedbackRequest{}); rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rec.Code)
		}
	})
}

func TestServe_Shutdown(t *testing.T) {
	s := newTestServer(t, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve: %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("server did not stop")
	}
}
