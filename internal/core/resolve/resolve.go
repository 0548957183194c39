// Package resolve turns arbitrary user-supplied URLs or text fragments into
// canonical product keys. Pure functions, no dependencies beyond hashing
package resolve

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"
)

// Platform identifies the originating site of a product URL
type Platform string

const (
	// PlatformFanza is the video storefront with alphanumeric content ids
	PlatformFanza Platform = "fanza"
	// PlatformFantia is the creator platform with numeric post ids
	PlatformFantia Platform = "fantia"
	// PlatformExternal is the catch-all bucket for unrecognized http(s) URLs
	PlatformExternal Platform = "external"
)

// Product is the canonical aggregation key a raw input resolves to
type Product struct {
	ID       string
	Platform Platform
}

var (
	reFantiaPosts    = regexp.MustCompile(`/posts/(\d+)`)
	reFantiaProducts = regexp.MustCompile(`/products/(\d+)`)

	// fallback patterns applied to raw text when URL parsing fails
	reRawCID    = regexp.MustCompile(`cid=([a-zA-Z0-9]+)`)
	reRawID     = regexp.MustCompile(`\bid=([a-zA-Z0-9]+)`)
	reRawPosts  = regexp.MustCompile(`posts/(\d+)`)
	reRawItemID = regexp.MustCompile(`item_id=(\d+)`)

	reAlnum = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
)

// Resolve parses raw input into a product key.
// Returns ok=false when nothing recognizable is found
func Resolve(raw string) (Product, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Product{}, false
	}

	if u, err := url.Parse(raw); err == nil && u.Host != "" && (u.Scheme == "http" || u.Scheme == "https") {
		host := strings.ToLower(u.Hostname())

		if host == "fantia.jp" || strings.HasSuffix(host, ".fantia.jp") {
			if m := reFantiaPosts.FindStringSubmatch(u.Path); m != nil {
				return Product{ID: m[1], Platform: PlatformFantia}, true
			}
			if m := reFantiaProducts.FindStringSubmatch(u.Path); m != nil {
				return Product{ID: m[1], Platform: PlatformFantia}, true
			}
			if v := u.Query().Get("item_id"); v != "" && reAlnum.MatchString(v) {
				return Product{ID: v, Platform: PlatformFantia}, true
			}
			// fantia host but no id shape we know
			return external(raw), true
		}

		if strings.HasSuffix(host, "dmm.co.jp") || strings.Contains(host, "fanza") {
			if v := u.Query().Get("cid"); v != "" && reAlnum.MatchString(v) {
				return Product{ID: strings.ToLower(v), Platform: PlatformFanza}, true
			}
			if v := u.Query().Get("id"); v != "" && reAlnum.MatchString(v) {
				return Product{ID: strings.ToLower(v), Platform: PlatformFanza}, true
			}
			return external(raw), true
		}

		// any other http(s) URL gets a stable synthetic identity
		return external(raw), true
	}

	// not an absolute URL, fall back to regex extraction on the raw text
	if m := reRawCID.FindStringSubmatch(raw); m != nil {
		return Product{ID: strings.ToLower(m[1]), Platform: PlatformFanza}, true
	}
	if m := reRawID.FindStringSubmatch(raw); m != nil {
		return Product{ID: strings.ToLower(m[1]), Platform: PlatformFanza}, true
	}
	if m := reRawPosts.FindStringSubmatch(raw); m != nil {
		return Product{ID: m[1], Platform: PlatformFantia}, true
	}
	if m := reRawItemID.FindStringSubmatch(raw); m != nil {
		return Product{ID: m[1], Platform: PlatformFantia}, true
	}

	return Product{}, false
}

// external derives a stable synthetic product id from the URL text
func external(raw string) Product {
	sum := sha256.Sum256([]byte(raw))
	return Product{
		ID:       "ext-" + hex.EncodeToString(sum[:])[:16],
		Platform: PlatformExternal,
	}
}

// CanonicalURL builds the official outbound link for a product key.
// External products have no canonical target and return ""
func CanonicalURL(platform Platform, id string) string {
	switch platform {
	case PlatformFanza:
		return "https://video.dmm.co.jp/av/content/?id=" + id
	case PlatformFantia:
		return "https://fantia.jp/posts/" + id
	default:
		return ""
	}
}

// ImageURL builds the package-image URL for a product key when the
// platform exposes a predictable CDN layout
func ImageURL(platform Platform, id string) string {
	if platform != PlatformFanza || id == "" {
		return ""
	}
	return "https://pics.dmm.co.jp/digital/video/" + id + "/" + id + "pl.jpg"
}

// ValidPlatform reports whether s names a known platform
func ValidPlatform(s string) bool {
	switch Platform(s) {
	case PlatformFanza, PlatformFantia, PlatformExternal:
		return true
	}
	return false
}
