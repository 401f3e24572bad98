package storage

import (
	"strings"
	"testing"
)

func TestResolveKey(t *testing.T) {
	cases := []struct {
		raw string
		key string
		ok  bool
	}{
		{"https://cdn.example.com/menu/abc/photo.jpg", "menu/abc/photo.jpg", true},
		{"https://acct.r2.cloudflarestorage.com/foodtruck/receipts/2026/order_X.pdf", "receipts/2026/order_X.pdf", true},
		{"https://elsewhere.example.com/other/key.jpg", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		key, ok := resolveKey("https://cdn.example.com", "foodtruck", tc.raw)
		if ok != tc.ok || key != tc.key {
			t.Fatalf("%q: expected (%q,%v), got (%q,%v)", tc.raw, tc.key, tc.ok, key, ok)
		}
	}
}

func TestMenuPhotoKey(t *testing.T) {
	key := MenuPhotoKey("item-1")
	if !strings.HasPrefix(key, "menu/item-1/") || !strings.HasSuffix(key, ".jpg") {
		t.Fatalf("unexpected key %s", key)
	}
	if MenuPhotoKey("item-1") == key {
		t.Fatalf("expected unique keys")
	}
}

func TestConfigEnabled(t *testing.T) {
	if (Config{Endpoint: "r2", Bucket: "b"}).Enabled() {
		t.Fatalf("expected disabled without public base url")
	}
	if !(Config{Endpoint: "r2", Bucket: "b", PublicBaseURL: "https://cdn"}).Enabled() {
		t.Fatalf("expected enabled")
	}
}
