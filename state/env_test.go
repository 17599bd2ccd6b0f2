package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"golang.org/x/text/encoding/charmap"

	"retainformat/config"
)

func TestContextWithEnv(t *testing.T) {
	env := EnvFromContext(ContextWithEnv(context.Background()))
	if env == nil {
		t.Fatal("EnvFromContext() returned nil")
	}
	if env.start.IsZero() {
		t.Error("Environment start time not set")
	}
	if env.Labels == nil {
		t.Error("Labels map not initialized")
	}
}

func TestEnvFromContext_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic when env not in context")
		}
	}()
	EnvFromContext(context.Background())
}

func TestLocalEnv_Uptime(t *testing.T) {
	env := EnvFromContext(ContextWithEnv(context.Background()))
	time.Sleep(10 * time.Millisecond)
	if uptime := env.Uptime(); uptime < 10*time.Millisecond || uptime > time.Second {
		t.Errorf("Uptime() = %v, unexpected", uptime)
	}
}

func TestLocalEnv_RedirectAndRestore(t *testing.T) {
	env := &LocalEnv{
		Log: zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1))),
	}
	for i := range 3 {
		env.RedirectStdLog()
		if env.restoreStdLog == nil {
			t.Errorf("Iteration %d: restoreStdLog not set", i)
		}
		env.RestoreStdLog()
	}

	nolog := &LocalEnv{}
	nolog.RedirectStdLog()
	if nolog.restoreStdLog != nil {
		t.Error("Expected restoreStdLog to remain nil without logger")
	}
	nolog.RestoreStdLog()
}

func TestLocalEnv_ApplyDocumentConfig(t *testing.T) {
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatal(err)
	}
	css := filepath.Join(t.TempDir(), "extra.css")
	if err := os.WriteFile(css, []byte(".note { color: red }"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg.Document.Theme = "dark"
	cfg.Document.InputCharset = "windows-1251"
	cfg.Document.StylesheetPath = css
	cfg.Document.Labels = map[string]string{"bold:bold": "B"}

	env := newLocalEnv()
	env.Cfg = cfg
	env.Log = zap.NewNop()
	if err := env.ApplyDocumentConfig(); err != nil {
		t.Fatalf("ApplyDocumentConfig() error = %v", err)
	}
	if env.Theme != "dark" {
		t.Errorf("Theme = %q, want dark", env.Theme)
	}
	if env.CodePage != charmap.Windows1251 {
		t.Errorf("CodePage = %v, want windows-1251", env.CodePage)
	}
	if string(env.Stylesheet) != ".note { color: red }" {
		t.Errorf("Stylesheet = %q", env.Stylesheet)
	}
	if env.Labels["bold:bold"] != "B" {
		t.Errorf("Labels = %v", env.Labels)
	}
}

func TestLocalEnv_ForceCharset(t *testing.T) {
	env := newLocalEnv()
	if err := env.ForceCharset("no-such-charset"); err == nil {
		t.Error("expected error for unknown charset")
	}
	if err := env.ForceCharset("ISO-8859-1"); err != nil {
		t.Errorf("ForceCharset(ISO-8859-1) error = %v", err)
	}
	if env.CodePage == nil {
		t.Error("CodePage not set")
	}
}
