package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/slidemarks/internal/bundle"
	"github.com/ironsheep/slidemarks/internal/config"
	"github.com/ironsheep/slidemarks/internal/detection"
)

func TestSplitExtractArgs(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantInput  string
		wantClean  string
		wantOutput string
	}{
		{"input only", []string{"deck.pdf"}, "deck.pdf", "", ""},
		{"clean document", []string{"deck.pdf", "clean.PDF"}, "deck.pdf", "clean.PDF", ""},
		{"output path", []string{"deck.pdf", "out.pdfannotations"}, "deck.pdf", "", "out.pdfannotations"},
		{"clean and output", []string{"deck.pdf", "clean.pdf", "out.json"}, "deck.pdf", "clean.pdf", "out.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, clean, output := splitExtractArgs(tt.args)
			if input != tt.wantInput || clean != tt.wantClean || output != tt.wantOutput {
				t.Errorf("got (%q, %q, %q), want (%q, %q, %q)",
					input, clean, output, tt.wantInput, tt.wantClean, tt.wantOutput)
			}
		})
	}
}

func TestApplyExtractFlags(t *testing.T) {
	cmd := newExtractCmd(&rootOptions{})
	if err := cmd.ParseFlags([]string{"--remove", "overpaint", "--zoom", "3", "--mask-dir", "masks"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}

	cfg := config.Default()
	cfg.ClusterThreshold = 0.2
	applyExtractFlags(cmd, &extractFlags{remove: "overpaint", zoom: 3, maskDir: "masks"}, &cfg)

	if cfg.Remove != "overpaint" || cfg.Zoom != 3 || cfg.MaskDir != "masks" {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if cfg.ClusterThreshold != 0.2 {
		t.Errorf("unset flag overrode config: threshold %v", cfg.ClusterThreshold)
	}
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slidemarks.yaml")
	if err := os.WriteFile(path, []byte("zoom: 3\nclusterThreshold: 0.02\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.EnvZoom, "4")
	t.Setenv(config.EnvThreshold, "")
	t.Setenv(config.EnvRemove, "")

	cfg, err := (&rootOptions{configPath: path}).loadConfig()
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Zoom != 4 {
		t.Errorf("zoom: got %v, want environment value 4", cfg.Zoom)
	}
	if cfg.ClusterThreshold != 0.02 {
		t.Errorf("threshold: got %v, want file value 0.02", cfg.ClusterThreshold)
	}
}

func TestExtractCmd_RequiresInput(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"extract"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	err := root.Execute()
	if err == nil {
		t.Fatal("extract without input should fail")
	}
	if !strings.Contains(err.Error(), "Usage: slidemarks extract <input.pdf>") {
		t.Errorf("error should carry the usage line, got %q", err.Error())
	}
}

func TestExtractCmd_TooManyPaths(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"extract", "a.pdf", "b.pdf", "c.pdfannotations", "d"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	err := root.Execute()
	if err == nil {
		t.Fatal("extract with four paths should fail")
	}
	if !strings.Contains(err.Error(), "Usage: slidemarks extract") {
		t.Errorf("error should carry the usage line, got %q", err.Error())
	}
}

func TestExtractCmd_MissingDocument(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "out.pdfannotations")

	root := newRootCmd()
	root.SetArgs([]string{"extract", filepath.Join(dir, "missing.pdf"), output})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	if err := root.Execute(); err == nil {
		t.Fatal("expected error for missing document")
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Error("no bundle should be written")
	}
}

func TestInspectCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.pdfannotations")
	anns := []detection.Annotation{
		{ID: "SLIDE-001", Page: 1, X: 0.125, Y: 0.1125},
		{ID: "SLIDE-002", Page: 3, X: 0.5, Y: 0.75},
	}
	if err := bundle.WriteFile(path, bundle.Build([]byte("%PDF-1.4"), anns)); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs([]string{"inspect", path})
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})

	if err := root.Execute(); err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	for _, want := range []string{"annotations: 2", "pages:       [1 3]", "SLIDE-001", "0.1125", "SLIDE-002"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestInspectCmd_InvalidBundle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pdfannotations")
	if err := os.WriteFile(path, []byte(`{"version":1}`), 0o600); err != nil {
		t.Fatal(err)
	}

	root := newRootCmd()
	root.SetArgs([]string{"inspect", path})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	if err := root.Execute(); err == nil {
		t.Error("expected error for invalid bundle")
	}
}
