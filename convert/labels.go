package convert

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"retainformat/format"
)

// parseLabelFlags converts "id=Label" pairs to the map. Format ids contain
// ':' so only first '=' separates id from label.
func parseLabelFlags(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		id, label, ok := strings.Cut(p, "=")
		id = strings.TrimSpace(id)
		if !ok || len(id) == 0 {
			return nil, fmt.Errorf("malformed label assignment %q, expected id=Label", p)
		}
		out[id] = label
	}
	return out, nil
}

// loadLabelsFile reads YAML map of format ids to labels.
func loadLabelsFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read labels: %w", err)
	}
	out := make(map[string]string)
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unable to decode labels from %q: %w", path, err)
	}
	return out, nil
}

// applyLabels assigns labels to detected formats. Labels for formats not
// present in the document are expected when many documents are processed
// and are ignored.
func applyLabels(set *format.Set, labels map[string]string, log *zap.Logger) int {
	applied := 0
	for _, id := range slices.Sorted(maps.Keys(labels)) {
		err := set.Apply(format.LabelUpdate{ID: id, Label: labels[id]})
		var unknown format.ErrUnknownFormat
		switch {
		case err == nil:
			applied++
		case errors.As(err, &unknown):
			log.Debug("Label ignored, format was not detected", zap.String("id", id))
		default:
			log.Warn("Unable to apply label", zap.String("id", id), zap.Error(err))
		}
	}
	return applied
}
