package media

import "testing"

func TestObjectKey(t *testing.T) {
	got := ObjectKey("game-1", "cover.png")
	if got != "images/game-1/cover.png" {
		t.Fatalf("unexpected key: %s", got)
	}
}

func TestObjectKey_StripsPathComponents(t *testing.T) {
	got := ObjectKey("game-1", "../../etc/passwd")
	if got != "images/game-1/passwd" {
		t.Fatalf("expected traversal to be stripped, got %s", got)
	}
	got = ObjectKey("game-1", "a\\b\\evil.png")
	if got != "images/game-1/evil.png" {
		t.Fatalf("expected backslash path to be stripped, got %s", got)
	}
}

func TestObjectKey_EmptyFilename(t *testing.T) {
	got := ObjectKey("game-1", "  ")
	if got != "images/game-1/cover" {
		t.Fatalf("expected fallback name, got %s", got)
	}
}

func TestPublicURL(t *testing.T) {
	got := PublicURL("https://cdn.example.com/", "/images/game-1/cover.png")
	if got != "https://cdn.example.com/images/game-1/cover.png" {
		t.Fatalf("unexpected url: %s", got)
	}
}

func TestConfigEnabled(t *testing.T) {
	if (Config{}).Enabled() {
		t.Fatal("empty config must be disabled")
	}
	if !(Config{Bucket: "covers"}).Enabled() {
		t.Fatal("config with bucket must be enabled")
	}
}
