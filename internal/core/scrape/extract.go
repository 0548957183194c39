package scrape

import (
	"encoding/json"
	"html"
	"regexp"
	"strings"

	"github.com/k3a/html2text"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

const (
	maxNameLen = 120
	maxNames   = 10
)

var (
	reOGTitle = regexp.MustCompile(`(?is)<meta[^>]+property=["']og:title["'][^>]+content=["']([^"']+)["']`)
	reOGAlt   = regexp.MustCompile(`(?is)<meta[^>]+content=["']([^"']+)["'][^>]+property=["']og:title["']`)
	reTwTitle = regexp.MustCompile(`(?is)<meta[^>]+name=["']twitter:title["'][^>]+content=["']([^"']+)["']`)
	reTitle   = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

	reLDJSON   = regexp.MustCompile(`(?is)<script[^>]+type=["']application/ld\+json["'][^>]*>(.*?)</script>`)
	reKeywords = regexp.MustCompile(`(?is)<meta[^>]+name=["']keywords["'][^>]+content=["']([^"']+)["']`)

	// labelled text like 出演者: 名前A、名前B
	reLabelled = regexp.MustCompile(`(?:出演者|女優|キャスト|モデル)\s*[::]?\s*([^<\n]{1,200})`)

	reNumeric = regexp.MustCompile(`^[0-9,.\s]+$`)
	reURLish  = regexp.MustCompile(`https?://|www\.|\.(com|jp|net|org)\b`)

	nameSeps = regexp.MustCompile(`[、,/・／]+`)
)

// Extract pulls a title and performer names out of raw HTML.
// Age-gate titles are rejected here so they can never be persisted
func Extract(page string) Metadata {
	title := extractTitle(page)

	var names []string
	names = append(names, ldJSONNames(page)...)
	names = append(names, labelledNames(page)...)
	names = append(names, keywordNames(page)...)

	return Metadata{
		Title:          title,
		PerformerNames: NormalizeNames(names),
	}
}

func extractTitle(page string) string {
	for _, re := range []*regexp.Regexp{reOGTitle, reOGAlt, reTwTitle, reTitle} {
		if m := re.FindStringSubmatch(page); m != nil {
			t := strings.TrimSpace(html2text.HTML2Text(m[1]))
			if t != "" {
				return t
			}
		}
	}
	return ""
}

// ldJSONNames walks application/ld+json blocks for actor/performer entries.
// Malformed blocks are skipped silently, upstream markup is unreliable
func ldJSONNames(page string) []string {
	var out []string
	for _, m := range reLDJSON.FindAllStringSubmatch(page, -1) {
		var doc any
		if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &doc); err != nil {
			continue
		}
		out = append(out, walkLD(doc)...)
	}
	return out
}

func walkLD(doc any) []string {
	var out []string
	switch v := doc.(type) {
	case map[string]any:
		for _, key := range []string{"actor", "actors", "performer", "performers"} {
			if inner, ok := v[key]; ok {
				out = append(out, namesFromLDValue(inner)...)
			}
		}
		// graphs and nested structures
		for _, key := range []string{"@graph", "itemListElement", "mainEntity"} {
			if inner, ok := v[key]; ok {
				out = append(out, walkLD(inner)...)
			}
		}
	case []any:
		for _, item := range v {
			out = append(out, walkLD(item)...)
		}
	}
	return out
}

// namesFromLDValue handles the shapes actor/performer fields come in:
// a string, an object with a name, or a list of either
func namesFromLDValue(v any) []string {
	switch x := v.(type) {
	case string:
		return []string{x}
	case map[string]any:
		if n, ok := x["name"].(string); ok {
			return []string{n}
		}
	case []any:
		var out []string
		for _, item := range x {
			out = append(out, namesFromLDValue(item)...)
		}
		return out
	}
	return nil
}

func labelledNames(page string) []string {
	text := html2text.HTML2Text(page)
	var out []string
	for _, m := range reLabelled.FindAllStringSubmatch(text, -1) {
		out = append(out, splitNames(m[1])...)
	}
	return out
}

func keywordNames(page string) []string {
	m := reKeywords.FindStringSubmatch(page)
	if m == nil {
		return nil
	}
	return splitNames(html.UnescapeString(m[1]))
}

// NamesFromTitle takes the title segment before the first separator as a
// performer-name candidate, used for pages that put names in the title
func NamesFromTitle(title string) []string {
	if title == "" {
		return nil
	}
	for _, sep := range []string{" - ", "|", "【"} {
		if idx := strings.Index(title, sep); idx > 0 {
			return splitNames(title[:idx])
		}
	}
	return nil
}

func splitNames(s string) []string {
	parts := nameSeps.Split(s, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// NormalizeNames trims, folds width variants (NFKC), drops empty, overlong,
// numeric and URL-looking entries, dedupes case-insensitively and caps the list
func NormalizeNames(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, maxNames)
	for _, raw := range in {
		name := strings.TrimSpace(width.Fold.String(norm.NFKC.String(raw)))
		if name == "" || len([]rune(name)) > maxNameLen {
			continue
		}
		if reNumeric.MatchString(name) || reURLish.MatchString(strings.ToLower(name)) {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
		if len(out) == maxNames {
			break
		}
	}
	return out
}
