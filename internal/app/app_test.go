package app

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit_WithValidConfig_Succeeds(t *testing.T) {
	setTestEnv(t, "http://localhost:3001")

	var buf bytes.Buffer
	cfg, log, err := Init(&buf, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg == nil || log == nil {
		t.Fatal("expected non-nil config and logger")
	}
	if cfg.APIBaseURL != "http://localhost:3001" {
		t.Errorf("APIBaseURL = %q, want http://localhost:3001", cfg.APIBaseURL)
	}

	// グローバルロガーがJSON出力になっていること
	slog.Default().Info("init test")
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log output, got error: %v\nraw: %s", err, buf.String())
	}
	if entry["msg"] != "init test" {
		t.Errorf("msg = %q, want %q", entry["msg"], "init test")
	}
}

func TestInit_WithMissingConfig_ReturnsError(t *testing.T) {
	setTestEnv(t, "")

	var buf bytes.Buffer
	cfg, _, err := Init(&buf, "")
	if err == nil {
		t.Fatal("expected error for missing API_BASE_URL, got nil")
	}
	if cfg != nil {
		t.Error("expected nil config on error")
	}
}

func TestInit_AppliesLogLevel(t *testing.T) {
	setTestEnv(t, "http://localhost:3001")
	t.Setenv("LOG_LEVEL", "debug")

	var buf bytes.Buffer
	_, log, err := Init(&buf, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	log.Debug("debug visible")
	if !strings.Contains(buf.String(), "debug visible") {
		t.Errorf("debug entry should be written when LOG_LEVEL=debug, got %q", buf.String())
	}
}

func TestInit_InvalidLogLevel_FallsBackToInfo(t *testing.T) {
	setTestEnv(t, "http://localhost:3001")
	t.Setenv("LOG_LEVEL", "verbose")

	var buf bytes.Buffer
	_, log, err := Init(&buf, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(buf.String(), "invalid LOG_LEVEL") {
		t.Errorf("expected warning about LOG_LEVEL, got %q", buf.String())
	}

	buf.Reset()
	log.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug entry should be suppressed at info level, got %q", buf.String())
	}
}

func TestInit_ReadsEnvFile(t *testing.T) {
	setTestEnv(t, "")
	// godotenvは既存の環境変数を上書きしないため、未設定状態にする
	os.Unsetenv("API_BASE_URL")

	path := filepath.Join(t.TempDir(), "teamfinder.env")
	if err := os.WriteFile(path, []byte("API_BASE_URL=http://api.example.test\n"), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("API_BASE_URL") })

	var buf bytes.Buffer
	cfg, _, err := Init(&buf, path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.APIBaseURL != "http://api.example.test" {
		t.Errorf("APIBaseURL = %q, want value from env file", cfg.APIBaseURL)
	}
}

func TestInit_MissingEnvFile_ReturnsError(t *testing.T) {
	setTestEnv(t, "http://localhost:3001")

	var buf bytes.Buffer
	_, _, err := Init(&buf, filepath.Join(t.TempDir(), "missing.env"))
	if err == nil {
		t.Fatal("expected error for missing env file, got nil")
	}
}

// setTestEnv はテストに必要な環境変数を設定する。
// 実行環境の値がテスト結果に影響しないよう、関連する変数をすべて上書きする。
func setTestEnv(t *testing.T, apiBaseURL string) {
	t.Helper()
	t.Setenv("API_BASE_URL", apiBaseURL)
	t.Setenv("SERVER_PORT", "3002")
	t.Setenv("BASE_URL", "")
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("STORAGE_PATH", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("SESSION_BOOTSTRAP", "optimistic")
	t.Setenv("BOOTSTRAP_TIMEOUT", "2s")
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("METRICS_ENABLED", "true")
}
