package internal

import (
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/vaultprep/internal/prepare"
	"github.com/starford/vaultprep/internal/publish"
)

// Log formats.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Content ContentConfig     `yaml:"content"`
	Prepare PrepareConfig     `yaml:"prepare"`
	Ledger  LedgerConfig      `yaml:"ledger"`
	Watch   WatchConfig       `yaml:"watch"`
	Publish PublishConfig     `yaml:"publish"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return err
	}
	if err := c.Prepare.Validate(); err != nil {
		return err
	}
	if err := c.Watch.Validate(); err != nil {
		return err
	}
	return c.Publish.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
	Color     string     `yaml:"color"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.Required, validation.In(LogFormatJSON, LogFormatText)),
		validation.Field(&c.Color, validation.In(ColorAuto, ColorAlways, ColorNever)),
	)
}

// ContentConfig holds the content tree location.
type ContentConfig struct {
	Root string `yaml:"root"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
	)
}

// FlattenConfig is one flatten rule.
type FlattenConfig struct {
	Dir    string `yaml:"dir"`
	Nested string `yaml:"nested"`
}

// Validate validates the flatten rule.
func (c FlattenConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.Nested, validation.Required),
	)
}

// ExportedConfig controls relocation of exported images.
type ExportedConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Prefix      string `yaml:"prefix"`
	FallbackDir string `yaml:"fallback_dir"`
}

// PrepareConfig holds the opt-in steps that run before the core pipeline.
type PrepareConfig struct {
	Flatten         []FlattenConfig `yaml:"flatten"`
	PruneExtensions []string        `yaml:"prune_extensions"`
	Exported        ExportedConfig  `yaml:"exported_images"`
}

// Validate validates the prepare configuration.
func (c *PrepareConfig) Validate() error {
	if err := validation.Validate(c.Flatten); err != nil {
		return err
	}
	return validation.ValidateStruct(&c.Exported,
		validation.Field(&c.Exported.Prefix, validation.When(c.Exported.Enabled, validation.Required)),
		validation.Field(&c.Exported.FallbackDir, validation.When(c.Exported.Enabled, validation.Required)),
	)
}

// Options converts the configuration to pipeline prepare options.
func (c *PrepareConfig) Options() prepare.Options {
	opts := prepare.Options{
		PruneExtensions: c.PruneExtensions,
		Exported: prepare.ExportedImages{
			Enabled:     c.Exported.Enabled,
			Prefix:      c.Exported.Prefix,
			FallbackDir: c.Exported.FallbackDir,
		},
	}
	for _, f := range c.Flatten {
		opts.Flatten = append(opts.Flatten, prepare.FlattenRule{Dir: f.Dir, Nested: f.Nested})
	}
	return opts
}

// LedgerConfig holds the run-history database location. Empty disables it.
type LedgerConfig struct {
	Path string `yaml:"path"`
}

// WatchConfig holds watch mode settings.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

// PublishConfig holds the vault-to-site publish settings.
type PublishConfig struct {
	Vault     string         `yaml:"vault"`
	NotesDir  string         `yaml:"notes_dir"`
	AssetsDir string         `yaml:"assets_dir"`
	AssetsURL string         `yaml:"assets_url"`
	NotesURL  string         `yaml:"notes_url"`
	Include   []string       `yaml:"include"`
	Exclude   []string       `yaml:"exclude"`
	Defaults  map[string]any `yaml:"defaults"`
}

// Validate validates the publish configuration. Output dirs are only
// required once a vault is configured.
func (c *PublishConfig) Validate() error {
	configured := c.Vault != ""
	return validation.ValidateStruct(c,
		validation.Field(&c.NotesDir, validation.When(configured, validation.Required)),
		validation.Field(&c.AssetsDir, validation.When(configured, validation.Required)),
	)
}

// Options converts the configuration to publish options.
func (c *PublishConfig) Options() publish.Options {
	return publish.Options{
		NotesDir:  c.NotesDir,
		AssetsDir: c.AssetsDir,
		AssetsURL: c.AssetsURL,
		NotesURL:  c.NotesURL,
		Include:   c.Include,
		Exclude:   c.Exclude,
		Defaults:  c.Defaults,
	}
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatText,
			Color:     ColorAuto,
		},
		Content: ContentConfig{
			Root: "./content",
		},
		Prepare: PrepareConfig{
			Exported: ExportedConfig{
				Prefix:      "Exported image",
				FallbackDir: "OneNote/attachments",
			},
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Publish: PublishConfig{
			NotesDir:  "_notes",
			AssetsDir: "assets/images",
			AssetsURL: "/assets/images",
			NotesURL:  "/notes",
			Include:   []string{"**/*.md"},
			Defaults:  map[string]any{"layout": "note"},
		},
	}
}
