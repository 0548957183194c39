// Package scoring computes aggregate statistics over review scores and
// decides when stored display metadata is stale enough to re-scrape
package scoring

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// Summary holds the aggregate statistics for one product key.
// Average and Median are nil when there are no scores
type Summary struct {
	Average *float64 `json:"average"`
	Median  *float64 `json:"median"`
	Total   int      `json:"total"`
}

// Bucket is one fixed-width histogram bucket
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// bucket labels are fixed: ten buckets covering 0-100, the last one
// open-ended upward so a score of 100 lands in 90-100
var bucketLabels = []string{
	"0-9", "10-19", "20-29", "30-39", "40-49",
	"50-59", "60-69", "70-79", "80-89", "90-100",
}

// Summarize computes mean (2dp) and continuous-percentile median
func Summarize(scores []int) Summary {
	n := len(scores)
	if n == 0 {
		return Summary{Total: 0}
	}

	sum := 0
	for _, s := range scores {
		sum += s
	}
	avg := math.Round(float64(sum)/float64(n)*100) / 100

	sorted := make([]int, n)
	copy(sorted, scores)
	sort.Ints(sorted)

	var med float64
	if n%2 == 1 {
		med = float64(sorted[n/2])
	} else {
		med = (float64(sorted[n/2-1]) + float64(sorted[n/2])) / 2
	}

	return Summary{Average: &avg, Median: &med, Total: n}
}

// Distribution partitions scores into the ten fixed buckets.
// All ten buckets are always present and counts sum to len(scores)
func Distribution(scores []int) []Bucket {
	out := make([]Bucket, len(bucketLabels))
	for i, label := range bucketLabels {
		out[i] = Bucket{Label: label}
	}
	for _, s := range scores {
		idx := s / 10
		if idx < 0 {
			idx = 0
		}
		if idx > 9 {
			idx = 9
		}
		out[idx].Count++
	}
	return out
}

var (
	// short alphanumeric code shapes like ssis-001, abc00123, mide777
	reShortCode = regexp.MustCompile(`^[a-z]{2,6}-?\d{2,6}$`)
	reBareAlnum = regexp.MustCompile(`^[a-z0-9]{4,}$`)

	reNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
)

// agePhrases are title fragments of verification interstitials.
// Pages behind an age wall serve these instead of the real product title
var agePhrases = []string{
	"年齢認証",
	"age verification",
	"age check",
	"18歳未満",
	"18+",
}

// LooksLikeAgeGate reports whether a scraped title is an age-verification
// interstitial rather than a real product title
func LooksLikeAgeGate(title string) bool {
	t := strings.ToLower(strings.TrimSpace(title))
	if t == "" {
		return false
	}
	for _, p := range agePhrases {
		if strings.Contains(t, p) {
			return true
		}
	}
	// brand name combined with a verify/authentication word
	if (strings.Contains(t, "fanza") || strings.Contains(t, "dmm") || strings.Contains(t, "fantia")) &&
		(strings.Contains(t, "認証") || strings.Contains(t, "verify") || strings.Contains(t, "authentication")) {
		return true
	}
	return false
}

// TitleLooksLikeProductCode reports whether title is just the product code.
// Both sides are normalized to lowercase alphanumerics before comparison
func TitleLooksLikeProductCode(title, productID string) bool {
	t := normalizeCode(title)
	if t == "" {
		return false
	}
	if t == normalizeCode(productID) {
		return true
	}
	return reShortCode.MatchString(strings.ToLower(strings.TrimSpace(title)))
}

// ShouldRefreshMetadata reports whether the current best-known title is a
// placeholder the orchestrator should try to replace via scraping
func ShouldRefreshMetadata(title, productID string) bool {
	t := strings.TrimSpace(title)
	if t == "" {
		return true
	}
	if strings.EqualFold(t, productID) {
		return true
	}
	lower := strings.ToLower(t)
	if reShortCode.MatchString(lower) || reBareAlnum.MatchString(lower) {
		return true
	}
	return LooksLikeAgeGate(t)
}

func normalizeCode(s string) string {
	return reNonAlnum.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "")
}
