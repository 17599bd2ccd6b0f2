package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	validator "github.com/go-playground/validator/v10"
	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	// ThemeConfig describes computed style of an empty editing surface for
	// a single theme. Values use the same notation computed style does.
	ThemeConfig struct {
		Color      string `yaml:"color" validate:"required"`
		TextAlign  string `yaml:"text_align" validate:"required,oneof=start end left right center justify"`
		FontWeight string `yaml:"font_weight" validate:"omitempty,numeric"`
	}

	DocumentConfig struct {
		Theme                 string                 `yaml:"theme" validate:"required"`
		Themes                map[string]ThemeConfig `yaml:"themes" validate:"required,min=1,dive"`
		StylesheetPath        string                 `yaml:"stylesheet_path" sanitize:"assure_file_access"`
		Sanitize              bool                   `yaml:"sanitize"`
		InputCharset          string                 `yaml:"input_charset"`
		OutputNameTemplate    string                 `yaml:"output_name_template"`
		FileNameTransliterate bool                   `yaml:"file_name_transliterate"`
		Labels                map[string]string      `yaml:"labels"`
	}

	FeedbackConfig struct {
		Enable   bool         `yaml:"enable"`
		Database string       `yaml:"database,omitempty" validate:"omitempty,filepath"`
		ClientID SecretString `yaml:"client_id,omitempty"`
	}

	ServerConfig struct {
		Listen       string `yaml:"listen" validate:"required,hostname_port"`
		MaxBodyBytes int64  `yaml:"max_body_bytes" validate:"min=1024"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Document  DocumentConfig `yaml:"document"`
		Feedback  FeedbackConfig `yaml:"feedback"`
		Server    ServerConfig   `yaml:"server"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above, alternative is to use struct
	// field name and reflection which I want to avoid for now
	OutputNameTemplateFieldName TemplateFieldName = "output_name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
)

// ThemeByName returns baseline of the currently selected theme, or of the named
// one if name is not empty.
func (conf *DocumentConfig) ThemeByName(name string) (ThemeConfig, bool) {
	if len(name) == 0 {
		name = conf.Theme
	}
	t, ok := conf.Themes[name]
	return t, ok
}

// checkTheme makes sure selected theme is actually defined.
func checkTheme(sl validator.StructLevel) {
	cfg, ok := sl.Current().Interface().(Config)
	if !ok {
		return
	}
	if _, ok := cfg.Document.Themes[cfg.Document.Theme]; !ok {
		sl.ReportError(cfg.Document.Theme, "theme", "Theme", "theme_defined", "")
	}
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg, gencfg.WithAdditionalChecks(checkTheme)); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
