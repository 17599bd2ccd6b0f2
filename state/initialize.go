package state

import (
	"fmt"
	"maps"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start:  time.Now(),
		Labels: make(map[string]string),
	}
}

// ApplyDocumentConfig pulls document related defaults from loaded
// configuration: theme, forced input charset, extra stylesheet and labels.
// Command line flags are expected to be applied afterwards.
func (e *LocalEnv) ApplyDocumentConfig() error {
	if e.Cfg == nil {
		return nil
	}
	doc := &e.Cfg.Document

	e.Theme = doc.Theme
	e.CodePage, e.Stylesheet = nil, nil
	e.Labels = make(map[string]string, len(doc.Labels))
	maps.Copy(e.Labels, doc.Labels)

	if len(doc.InputCharset) > 0 {
		if err := e.ForceCharset(doc.InputCharset); err != nil {
			return err
		}
	}

	if len(doc.StylesheetPath) > 0 {
		data, err := os.ReadFile(doc.StylesheetPath)
		if err != nil {
			return fmt.Errorf("unable to read stylesheet: %w", err)
		}
		e.Stylesheet = data
		e.Rpt.Store("stylesheet.css", doc.StylesheetPath)
		if e.Log != nil {
			e.Log.Debug("Using additional stylesheet", zap.String("path", doc.StylesheetPath))
		}
	}
	return nil
}

// ForceCharset makes reader ignore charset declared by input and use named
// one (IANA name) instead.
func (e *LocalEnv) ForceCharset(name string) error {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return fmt.Errorf("unknown character set %q: %w", name, err)
	}
	if enc == nil {
		return fmt.Errorf("character set %q is not supported", name)
	}
	e.CodePage = enc
	return nil
}
