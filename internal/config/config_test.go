package config

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"bodymetrics/internal/domain"
)

var configKeys = []string{
	"ADDR", "WEB_DIR", "HISTORY_STORE", "HISTORY_FILE", "DATABASE_URL", "ACTIVITY_LEVEL",
	"LOG_FORMAT", "LOG_LEVEL", "OWNER_USERNAME", "OWNER_PASSWORD_HASH", "OWNER_EMAIL",
	"OIDC_ISSUER", "OIDC_CLIENT_ID", "OIDC_CLIENT_SECRET", "OIDC_REDIRECT_URL", "DISABLE_AUTH",
}

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
	for k, v := range kv {
		t.Setenv(k, v)
	}
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, map[string]string{"DISABLE_AUTH": "true"})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Addr: got %q", cfg.Addr)
	}
	if cfg.HistoryStore != StoreFile || cfg.HistoryFile != "bmi_history.json" {
		t.Errorf("store: got %q %q", cfg.HistoryStore, cfg.HistoryFile)
	}
	if cfg.ActivityLevel != domain.Sedentary {
		t.Errorf("ActivityLevel: got %q", cfg.ActivityLevel)
	}
	if !cfg.DisableAuth {
		t.Error("DisableAuth should be set")
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name: "postgres store",
			env:  map[string]string{"HISTORY_STORE": "Postgres", "DATABASE_URL": "postgres://x", "OWNER_PASSWORD_HASH": "$2a$"},
		},
		{
			name:    "postgres without url",
			env:     map[string]string{"HISTORY_STORE": "postgres", "DISABLE_AUTH": "1"},
			wantErr: "DATABASE_URL",
		},
		{
			name:    "unknown store",
			env:     map[string]string{"HISTORY_STORE": "s3", "DISABLE_AUTH": "1"},
			wantErr: "HISTORY_STORE",
		},
		{
			name:    "unknown activity",
			env:     map[string]string{"ACTIVITY_LEVEL": "couch", "DISABLE_AUTH": "1"},
			wantErr: "ACTIVITY_LEVEL",
		},
		{
			name:    "bad bool",
			env:     map[string]string{"DISABLE_AUTH": "maybe"},
			wantErr: "DISABLE_AUTH",
		},
		{
			name:    "no login method",
			env:     map[string]string{},
			wantErr: "OWNER_PASSWORD_HASH",
		},
		{
			name:    "oidc without owner email",
			env:     map[string]string{"OIDC_ISSUER": "https://id.example", "OIDC_CLIENT_ID": "c", "OIDC_REDIRECT_URL": "http://localhost/cb"},
			wantErr: "OWNER_EMAIL",
		},
		{
			name: "oidc only",
			env: map[string]string{
				"OIDC_ISSUER": "https://id.example", "OIDC_CLIENT_ID": "c",
				"OIDC_REDIRECT_URL": "http://localhost/cb", "OWNER_EMAIL": "me@example.com",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			setEnv(t, tc.env)
			_, err := Load()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "json", "warn")

	logger.Info("hidden")
	logger.Warn("shown", "records", 3)

	out := strings.TrimSpace(buf.String())
	if strings.Contains(out, "hidden") {
		t.Errorf("info should be filtered at warn level: %s", out)
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		t.Fatalf("expected one JSON record, got %q: %v", out, err)
	}
	if rec["msg"] != "shown" || rec["records"] != 3.0 {
		t.Errorf("unexpected record %v", rec)
	}

	buf.Reset()
	newLogger(&buf, "text", "bogus").Info("fallback")
	if !strings.Contains(buf.String(), "msg=fallback") {
		t.Errorf("text handler at info expected, got %q", buf.String())
	}
}
