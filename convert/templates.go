package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"retainformat/common"
	"retainformat/config"
	"retainformat/format"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context    string
	SourceFile string
	Format     string
	Theme      string
	// Formats are ids of all detected formats
	Formats []string
	// Labels are distinct active labels in presentation order
	Labels []string
}

func buildValues(name config.TemplateFieldName, src string, in common.InputFmt, theme string, set *format.Set) Values {
	v := Values{
		Context:    string(name),
		SourceFile: strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)),
		Format:     in.String(),
		Theme:      theme,
	}
	seen := make(map[string]bool)
	for _, f := range set.Formats() {
		v.Formats = append(v.Formats, f.ID)
		if !f.Active() {
			continue
		}
		if l := strings.TrimSpace(f.UserLabel); !seen[l] {
			seen[l] = true
			v.Labels = append(v.Labels, l)
		}
	}
	return v
}

func expandTemplate(name config.TemplateFieldName, field string, values Values) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
