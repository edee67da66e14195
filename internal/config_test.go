package internal

import (
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestApplicationConfig_InvalidFormat(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.LogFormat = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown log format should fail validation")
	}
}

func TestApplicationConfig_InvalidColor(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.Color = "sometimes"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown color mode should fail validation")
	}
}

func TestContentConfig_RootRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Content.Root = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty content root should fail validation")
	}
}

func TestPrepareConfig_FlattenRuleRequiresDirs(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Prepare.Flatten = []FlattenConfig{{Dir: "OneNote"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("flatten rule without nested dir should fail validation")
	}
}

func TestPrepareConfig_ExportedRequiresPrefixWhenEnabled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Prepare.Exported = ExportedConfig{Enabled: false}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled exported images need no prefix: %v", err)
	}
	cfg.Prepare.Exported.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("enabled exported images without prefix should fail validation")
	}
}

func TestPrepareConfig_Options(t *testing.T) {
	cfg := PrepareConfig{
		Flatten:         []FlattenConfig{{Dir: "A", Nested: "B"}},
		PruneExtensions: []string{".pdf"},
		Exported:        ExportedConfig{Enabled: true, Prefix: "Exported image", FallbackDir: "x"},
	}
	opts := cfg.Options()
	if len(opts.Flatten) != 1 || opts.Flatten[0].Nested != "B" {
		t.Errorf("flatten = %+v", opts.Flatten)
	}
	if !opts.Enabled() || !opts.Exported.Enabled {
		t.Error("options should be enabled")
	}
}

func TestWatchConfig_NegativeDebounce(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Watch.Debounce = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative debounce should fail validation")
	}
}

func TestPublishConfig_DirsRequiredOnlyWithVault(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Publish.NotesDir = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("publish without vault should not require dirs: %v", err)
	}
	cfg.Publish.Vault = "./vault"
	if err := cfg.Validate(); err == nil {
		t.Fatal("publish with vault but no notes dir should fail validation")
	}
}
