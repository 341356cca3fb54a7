package internal

import (
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestAgendaConfig_RequiresPath(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Agenda.DBPath = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty db_path should fail validation")
	}
}

func TestAgendaConfig_NegativeLimit(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Agenda.Limit = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative limit should fail validation")
	}
}

func TestAgendaConfig_ResolvedPathExpandsHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	cfg := AgendaConfig{DBPath: "~/Agenda.sqlite"}
	if got := cfg.ResolvedPath(); got != "/home/tester/Agenda.sqlite" {
		t.Errorf("ResolvedPath = %q", got)
	}
	cfg.DBPath = "/abs/Agenda.sqlite"
	if got := cfg.ResolvedPath(); got != "/abs/Agenda.sqlite" {
		t.Errorf("ResolvedPath = %q", got)
	}
}

func TestSearchConfig_Timezone(t *testing.T) {
	cfg := SearchConfig{Timezone: "Not/AZone", Workers: 1}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "timezone") {
		t.Fatalf("unknown timezone should fail, got %v", err)
	}

	cfg.Timezone = "UTC"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("UTC should pass: %v", err)
	}

	cfg.Workers = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero workers should fail")
	}
}
