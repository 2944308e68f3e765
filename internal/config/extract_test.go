package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "extract.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_EmptyPathGivesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GetRadius() != DefaultRadius {
		t.Errorf("radius = %g, want default %g", cfg.GetRadius(), DefaultRadius)
	}
	if cfg.GetSpacing() != DefaultSpacing {
		t.Errorf("spacing = %g, want default %g", cfg.GetSpacing(), DefaultSpacing)
	}
	if cfg.GetWorkers() != DefaultWorkers {
		t.Errorf("workers = %d, want default %d", cfg.GetWorkers(), DefaultWorkers)
	}
	if cfg.GetMetadataBackend() != DefaultBackend {
		t.Errorf("backend = %q, want default %q", cfg.GetMetadataBackend(), DefaultBackend)
	}
}

func TestLoad_PartialConfigKeepsOtherDefaults(t *testing.T) {
	path := writeConfig(t, `{"radius": 25.5, "metadata_backend": "sqlite"}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GetRadius() != 25.5 {
		t.Errorf("radius = %g", cfg.GetRadius())
	}
	if cfg.GetMetadataBackend() != "sqlite" {
		t.Errorf("backend = %q", cfg.GetMetadataBackend())
	}
	if cfg.GetSpacing() != DefaultSpacing {
		t.Errorf("spacing should default, got %g", cfg.GetSpacing())
	}
}

func TestLoad_RejectsNonJSONExtension(t *testing.T) {
	if _, err := Load("extract.yaml"); err == nil {
		t.Error("expected error for non-json extension")
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	for _, content := range []string{
		`{"workers": 0}`,
		`{"metadata_backend": "mongodb"}`,
		`{"radius": "ten"}`,
	} {
		path := writeConfig(t, content)
		if _, err := Load(path); err == nil {
			t.Errorf("expected error for config %s", content)
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
