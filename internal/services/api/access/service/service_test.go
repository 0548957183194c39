package service

import (
	"testing"
)

func TestHash32_DeterministicAnd32Chars(t *testing.T) {
	a := Hash32("203.0.113.7")
	b := Hash32("203.0.113.7")
	if a != b {
		t.Fatalf("hash not deterministic: %q vs %q", a, b)
	}
	if len(a) != 32 {
		t.Fatalf("hash length=%d want 32", len(a))
	}
	for _, r := range a {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			t.Fatalf("hash %q is not lowercase hex", a)
		}
	}
	if Hash32("other") == a {
		t.Fatal("distinct inputs should not collide")
	}
}

func TestVisitorHash_SeparatesComponents(t *testing.T) {
	ip := Hash32("203.0.113.7")
	ua := Hash32("Mozilla/5.0")

	v1 := VisitorHash("client-a", ip, ua)
	v2 := VisitorHash("client-a", ip, ua)
	if v1 != v2 {
		t.Fatal("visitor hash not deterministic")
	}
	if len(v1) != 32 {
		t.Fatalf("visitor hash length=%d want 32", len(v1))
	}
	if VisitorHash("client-b", ip, ua) == v1 {
		t.Fatal("client id must change the visitor hash")
	}
	if VisitorHash("client-a", Hash32("198.51.100.1"), ua) == v1 {
		t.Fatal("ip hash must change the visitor hash")
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/title/fanza/ssis001", "/title/fanza/ssis001"},
		{"/search?q=abc", "/search"},
		{"/page#frag", "/page"},
		{"title/x", "/title/x"},
		{"  ", "/"},
		{"", "/"},
	}
	for _, tt := range tests {
		if got := normalizePath(tt.in); got != tt.want {
			t.Fatalf("normalizePath(%q)=%q want %q", tt.in, got, tt.want)
		}
	}
}

func TestClampInt(t *testing.T) {
	tests := []struct {
		v, want int
	}{
		{0, 24},
		{-3, 1},
		{1, 1},
		{100, 100},
		{99999, 720},
	}
	for _, tt := range tests {
		if got := clampInt(tt.v, 1, 720, 24); got != tt.want {
			t.Fatalf("clampInt(%d)=%d want %d", tt.v, got, tt.want)
		}
	}
}
