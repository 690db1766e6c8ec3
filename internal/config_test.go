package internal

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.Import.ExportedFrom = "acme"
	return cfg
}

func TestConfigValidate_DryRunDefaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("dry-run config should not need credentials: %v", err)
	}
}

func TestConfigValidate_ExportedFromRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error without exported-from")
	}
}

func TestConfigValidate_ExportedFromShape(t *testing.T) {
	for _, bad := range []string{"acme corp", "acme.corp", "a_b", "acme!"} {
		cfg := validConfig()
		cfg.Import.ExportedFrom = bad
		if err := cfg.Validate(); err == nil {
			t.Errorf("exported-from %q should be rejected", bad)
		}
	}
	cfg := validConfig()
	cfg.Import.ExportedFrom = "acme-corp-2"
	if err := cfg.Validate(); err != nil {
		t.Errorf("exported-from acme-corp-2 should be accepted: %v", err)
	}
}

func TestConfigValidate_ApplyNeedsCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.Import.Apply = true
	err := cfg.Validate()
	if err == nil {
		t.Fatal("apply mode without team and token should fail")
	}
	if !strings.Contains(err.Error(), "team") {
		t.Errorf("error = %v", err)
	}

	cfg.Kibela.Team = "dest"
	if err := cfg.Validate(); err == nil {
		t.Fatal("apply mode without a token should fail")
	}

	cfg.Kibela.Token = "secret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("apply mode with team and token should pass: %v", err)
	}
}

func TestConfigValidate_PageSizeBounds(t *testing.T) {
	for _, bad := range []int{0, -1, 101} {
		cfg := validConfig()
		cfg.Kibela.PageSize = bad
		if err := cfg.Validate(); err == nil {
			t.Errorf("page size %d should be rejected", bad)
		}
	}
}

func TestEndpointURL(t *testing.T) {
	cfg := validConfig()
	cfg.Kibela.Team = "dest"
	if got := cfg.Kibela.EndpointURL(); got != "https://dest.kibe.la/api/v1" {
		t.Errorf("endpoint = %q", got)
	}
	cfg.Kibela.Endpoint = "http://127.0.0.1:8080/graphql"
	if got := cfg.Kibela.EndpointURL(); got != "http://127.0.0.1:8080/graphql" {
		t.Errorf("endpoint override = %q", got)
	}
}
