package tickets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "dashboard.yaml"))
	if err != nil {
		t.Fatalf("missing config must not error: %v", err)
	}
	def := DefaultConfig()
	if cfg != def {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if cfg.ThresholdDefault != 180 || cfg.ThresholdMin != 60 || cfg.ThresholdMax != 300 {
		t.Fatalf("unexpected threshold defaults: %+v", cfg)
	}
	if cfg.CompareGroupA != "Chatbot" || cfg.CompareGroupB != "Live Agent" {
		t.Fatalf("unexpected comparison defaults: %+v", cfg)
	}
}

func TestLoadConfigOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	body := "csv_path: data/my_tickets.csv\nthreshold_default: 200\ncompare_group_b: Phone\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.CSVPath != "data/my_tickets.csv" || cfg.ThresholdDefault != 200 {
		t.Fatalf("overlay not applied: %+v", cfg)
	}
	// untouched keys keep their defaults
	if cfg.ThresholdStep != 10 || cfg.CompareGroupA != "Chatbot" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	if cfg.CompareGroupB != "Phone" {
		t.Fatalf("compare_group_b not applied: %+v", cfg)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	cases := []string{
		"threshold_min: 400\n", // min > max
		"threshold_step: 0\n",
		"compare_group_a: Chatbot\ncompare_group_b: Chatbot\n",
		"threshold_min: [nope\n",
	}
	for i, body := range cases {
		path := filepath.Join(t.TempDir(), "dashboard.yaml")
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Fatalf("case %d: expected error for %q", i, body)
		}
	}
}
