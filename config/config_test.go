package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `notify:
  enabled: true
  broker: "tcp://localhost:1883"
  client_id: "cli"
  username: "user"
  password: "pass"
  topic_prefix: "cafe"
  use_tls: false
dispatch:
  offer_deadline_seconds: 15
  sweep_interval_seconds: 30
match:
  disambiguation_gap_meters: 2.5
metrics:
  prometheus_enabled: true
  prometheus_port: ":9100"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"broker", cfg.Notify.Broker, "tcp://localhost:1883"},
		{"client_id", cfg.Notify.ClientID, "cli"},
		{"username", cfg.Notify.Username, "user"},
		{"topic_prefix", cfg.Notify.TopicPrefix, "cafe"},
		{"claim_topic_default", cfg.Notify.ClaimTopic, "cafe/claims"},
		{"use_tls", cfg.Notify.UseTLS, false},
		{"offer_deadline_seconds", cfg.Dispatch.OfferDeadlineSeconds, 15},
		{"sweep_interval_seconds", cfg.Dispatch.SweepIntervalSeconds, 30},
		{"sweep_grace_default", cfg.Dispatch.SweepGraceSeconds, 5},
		{"disambiguation_gap", cfg.Match.DisambiguationGapMeters, 2.5},
		{"uncertainty_default", cfg.Match.DefaultUncertaintyMeters, 30.0},
		{"prometheus_enabled", cfg.Metrics.PrometheusEnabled, true},
		{"prometheus_port", cfg.Metrics.PrometheusPort, ":9100"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	data := `{"dispatch": {"offer_deadline_seconds": 8}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Dispatch.OfferDeadlineSeconds != 8 {
		t.Errorf("offer deadline: %d", cfg.Dispatch.OfferDeadlineSeconds)
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	if _, err := Load("config.toml"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `dispatch:
  offer_deadline_seconds: 10
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("MAITRE_DISPATCH__OFFER_DEADLINE_SECONDS", "20")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Dispatch.OfferDeadlineSeconds != 20 {
		t.Errorf("env override not applied: %d", cfg.Dispatch.OfferDeadlineSeconds)
	}
}

func TestLoadInvalidThresholds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `match:
  high_confidence_meters: 25
  medium_confidence_meters: 10
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error")
	}
}
