package permissions_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"filelink/internal/permissions"
)

func parseConfig(t *testing.T, data string) *permissions.Config {
	t.Helper()
	var cfg permissions.Config
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	return &cfg
}

func TestWildcardGrantsEveryone(t *testing.T) {
	cfg := parseConfig(t, `{"allow_all": "*", "chats": {}}`)

	if !cfg.UserHasAccess("any_chat", "any_user") {
		t.Fatal("wildcard must grant any user in any chat")
	}
}

func TestSingleUserRule(t *testing.T) {
	cfg := parseConfig(t, `{"allow_all": 123, "chats": {}}`)

	if !cfg.UserHasAccess("any_chat", "123") {
		t.Fatal("expected user 123 granted")
	}
	if cfg.UserHasAccess("any_chat", "456") {
		t.Fatal("expected user 456 denied")
	}
}

func TestCommaSeparatedRule(t *testing.T) {
	cfg := parseConfig(t, `{"allow_all": "user1, user2", "chats": {}}`)

	for _, id := range []string{"user1", "user2"} {
		if !cfg.UserHasAccess("any_chat", id) {
			t.Fatalf("expected %s granted", id)
		}
	}
	if cfg.UserHasAccess("any_chat", "user3") {
		t.Fatal("expected user3 denied")
	}
}

func TestArrayRuleMixesStringsAndIntegers(t *testing.T) {
	cfg := parseConfig(t, `{"allow_all": ["alice", 123], "chats": {}}`)

	if !cfg.UserHasAccess("any_chat", "alice") {
		t.Fatal("expected alice granted")
	}
	if !cfg.UserHasAccess("any_chat", "123") {
		t.Fatal("expected 123 granted")
	}
	if cfg.UserHasAccess("any_chat", "bob") {
		t.Fatal("expected bob denied")
	}
}

func TestChatRules(t *testing.T) {
	cfg := parseConfig(t, `{
		"allow_all": "",
		"chats": {
			"chat1": 123,
			"chat2": "user1, user2",
			"chat3": ["user1", 123]
		}
	}`)

	tests := []struct {
		chat, user string
		want       bool
	}{
		{"chat1", "123", true},
		{"chat1", "999", false},
		{"chat2", "user1", true},
		{"chat2", "user2", true},
		{"chat2", "user3", false},
		{"chat3", "user1", true},
		{"chat3", "123", true},
		{"chat3", "user2", false},
		{"unlisted", "user1", false},
	}
	for _, tc := range tests {
		if got := cfg.UserHasAccess(tc.chat, tc.user); got != tc.want {
			t.Errorf("UserHasAccess(%q, %q) = %v, want %v", tc.chat, tc.user, got, tc.want)
		}
	}
}

func TestAbsenceDenies(t *testing.T) {
	cfg := parseConfig(t, `{"allow_all": "", "chats": {}}`)
	if cfg.UserHasAccess("chat", "user") {
		t.Fatal("expected denial when no rule matches")
	}
}

func TestLoadCreatesInitialAllowAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "permissions.json")

	cfg, err := permissions.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.AllowAll.IsWildcard() {
		t.Fatal("expected initial config to allow everyone")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("initial file not written: %v", err)
	}
	var round permissions.Config
	if err := json.Unmarshal(data, &round); err != nil {
		t.Fatalf("initial file not parseable: %v", err)
	}
	if !round.UserHasAccess("any", "one") {
		t.Fatal("expected persisted initial config to allow everyone")
	}
}

func TestManagerReloadSwapsRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "permissions.json")
	if err := os.WriteFile(path, []byte(`{"allow_all": "*", "chats": {}}`), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	mgr, err := permissions.NewManager(path, nil)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	if !mgr.UserHasAccess("c", "u") {
		t.Fatal("expected wildcard grant before reload")
	}

	if err := os.WriteFile(path, []byte(`{"allow_all": "", "chats": {"c": "other"}}`), 0o644); err != nil {
		t.Fatalf("rewrite file: %v", err)
	}
	if err := mgr.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if mgr.UserHasAccess("c", "u") {
		t.Fatal("expected denial after reload")
	}
	if !mgr.UserHasAccess("c", "other") {
		t.Fatal("expected new rule to grant")
	}
}

func TestManagerReloadKeepsOldConfigOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "permissions.json")
	if err := os.WriteFile(path, []byte(`{"allow_all": "*", "chats": {}}`), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	mgr, err := permissions.NewManager(path, nil)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	if err := os.WriteFile(path, []byte(`{not json`), 0o644); err != nil {
		t.Fatalf("rewrite file: %v", err)
	}
	if err := mgr.Reload(); err == nil {
		t.Fatal("expected reload error for invalid JSON")
	}
	if !mgr.UserHasAccess("c", "u") {
		t.Fatal("expected previous config to stay active after failed reload")
	}
}

func TestRuleRejectsInvalidJSONShapes(t *testing.T) {
	var cfg permissions.Config
	if err := json.Unmarshal([]byte(`{"allow_all": {"nested": true}}`), &cfg); err == nil {
		t.Fatal("expected error for object rule")
	}
	if err := json.Unmarshal([]byte(`{"allow_all": [true]}`), &cfg); err == nil {
		t.Fatal("expected error for boolean array entry")
	}
}
