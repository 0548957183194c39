package resolve

import (
	"strings"
	"testing"
)

func TestResolve_URLs(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		in       string
		wantID   string
		wantPlat Platform
		wantOK   bool
	}{
		{
			name:     "fanza id query param lowercased",
			in:       "https://video.dmm.co.jp/av/content/?id=SSIS001",
			wantID:   "ssis001",
			wantPlat: PlatformFanza,
			wantOK:   true,
		},
		{
			name:     "fanza cid query param",
			in:       "https://www.dmm.co.jp/digital/videoa/-/detail/=/cid=abc00123/",
			wantID:   "abc00123",
			wantPlat: PlatformFanza,
			wantOK:   true,
		},
		{
			name:     "fantia posts path digits kept as-is",
			in:       "https://fantia.jp/posts/12345",
			wantID:   "12345",
			wantPlat: PlatformFantia,
			wantOK:   true,
		},
		{
			name:     "fantia products path",
			in:       "https://fantia.jp/products/777",
			wantID:   "777",
			wantPlat: PlatformFantia,
			wantOK:   true,
		},
		{
			name:     "fantia item_id param",
			in:       "https://fantia.jp/mypage?item_id=4242",
			wantID:   "4242",
			wantPlat: PlatformFantia,
			wantOK:   true,
		},
		{
			name:     "unknown http host becomes external",
			in:       "https://example.com/watch?v=xyz",
			wantPlat: PlatformExternal,
			wantOK:   true,
		},
		{
			name:   "not a url at all",
			in:     "not a url at all",
			wantOK: false,
		},
		{
			name:   "empty input",
			in:     "",
			wantOK: false,
		},
		{
			name:   "whitespace-only input",
			in:     "   \t ",
			wantOK: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Resolve(tc.in)
			if ok != tc.wantOK {
				t.Fatalf("Resolve(%q) ok=%v want %v", tc.in, ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if got.Platform != tc.wantPlat {
				t.Fatalf("platform=%q want %q", got.Platform, tc.wantPlat)
			}
			if tc.wantID != "" && got.ID != tc.wantID {
				t.Fatalf("id=%q want %q", got.ID, tc.wantID)
			}
		})
	}
}

func TestResolve_RawTextFallback(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in       string
		wantID   string
		wantPlat Platform
	}{
		{"cid=SSIS001", "ssis001", PlatformFanza},
		{"something id=ABC123 trailing", "abc123", PlatformFanza},
		{"posts/9981", "9981", PlatformFantia},
		{"item_id=555", "555", PlatformFantia},
	}

	for _, tc := range cases {
		got, ok := Resolve(tc.in)
		if !ok {
			t.Fatalf("Resolve(%q) missed", tc.in)
		}
		if got.ID != tc.wantID || got.Platform != tc.wantPlat {
			t.Fatalf("Resolve(%q) = %+v, want id=%q platform=%q", tc.in, got, tc.wantID, tc.wantPlat)
		}
	}
}

func TestResolve_CanonicalRoundTrip(t *testing.T) {
	t.Parallel()

	products := []Product{
		{ID: "ssis001", Platform: PlatformFanza},
		{ID: "12345", Platform: PlatformFantia},
	}
	for _, p := range products {
		got, ok := Resolve(CanonicalURL(p.Platform, p.ID))
		if !ok {
			t.Fatalf("canonical URL for %+v did not resolve", p)
		}
		if got != p {
			t.Fatalf("round trip mismatch: got %+v want %+v", got, p)
		}
	}
}

func TestResolve_ExternalIDStable(t *testing.T) {
	t.Parallel()

	a, ok1 := Resolve("https://example.org/page")
	b, ok2 := Resolve("https://example.org/page")
	if !ok1 || !ok2 {
		t.Fatal("external URL should resolve")
	}
	if a != b {
		t.Fatalf("external id not deterministic: %+v vs %+v", a, b)
	}
	if !strings.HasPrefix(a.ID, "ext-") || len(a.ID) != len("ext-")+16 {
		t.Fatalf("unexpected external id shape: %q", a.ID)
	}

	c, _ := Resolve("https://example.org/other")
	if c.ID == a.ID {
		t.Fatal("distinct external URLs must get distinct ids")
	}
}

func TestImageURL(t *testing.T) {
	t.Parallel()

	if got := ImageURL(PlatformFanza, "ssis001"); got != "https://pics.dmm.co.jp/digital/video/ssis001/ssis001pl.jpg" {
		t.Fatalf("unexpected fanza image url: %q", got)
	}
	if got := ImageURL(PlatformFantia, "123"); got != "" {
		t.Fatalf("fantia has no image url, got %q", got)
	}
	if got := ImageURL(PlatformFanza, ""); got != "" {
		t.Fatalf("empty id must yield empty url, got %q", got)
	}
}

func TestValidPlatform(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"fanza", "fantia", "external"} {
		if !ValidPlatform(s) {
			t.Fatalf("%q should be valid", s)
		}
	}
	if ValidPlatform("dmm") || ValidPlatform("") {
		t.Fatal("unknown platforms must be invalid")
	}
}
