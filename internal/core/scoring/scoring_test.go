package scoring

import "testing"

func TestSummarize(t *testing.T) {
	t.Parallel()

	t.Run("empty yields nil average and median", func(t *testing.T) {
		t.Parallel()
		s := Summarize(nil)
		if s.Total != 0 || s.Average != nil || s.Median != nil {
			t.Fatalf("unexpected summary for empty input: %+v", s)
		}
	})

	t.Run("odd count median is middle element", func(t *testing.T) {
		t.Parallel()
		s := Summarize([]int{10, 50, 90})
		if s.Total != 3 {
			t.Fatalf("total=%d want 3", s.Total)
		}
		if *s.Average != 50 {
			t.Fatalf("average=%v want 50", *s.Average)
		}
		if *s.Median != 50 {
			t.Fatalf("median=%v want 50", *s.Median)
		}
	})

	t.Run("even count median interpolates", func(t *testing.T) {
		t.Parallel()
		s := Summarize([]int{40, 60})
		if *s.Median != 50 {
			t.Fatalf("median=%v want 50", *s.Median)
		}
	})

	t.Run("average rounds to 2dp", func(t *testing.T) {
		t.Parallel()
		s := Summarize([]int{1, 1, 1}) // 1.0
		if *s.Average != 1 {
			t.Fatalf("average=%v want 1", *s.Average)
		}
		s = Summarize([]int{0, 0, 1}) // 0.3333 -> 0.33
		if *s.Average != 0.33 {
			t.Fatalf("average=%v want 0.33", *s.Average)
		}
	})

	t.Run("average always within 0..100 for valid scores", func(t *testing.T) {
		t.Parallel()
		s := Summarize([]int{0, 100, 37, 99})
		if *s.Average < 0 || *s.Average > 100 {
			t.Fatalf("average out of range: %v", *s.Average)
		}
	})
}

func TestDistribution(t *testing.T) {
	t.Parallel()

	t.Run("all ten buckets present even when empty", func(t *testing.T) {
		t.Parallel()
		d := Distribution(nil)
		if len(d) != 10 {
			t.Fatalf("bucket count=%d want 10", len(d))
		}
		for _, b := range d {
			if b.Count != 0 {
				t.Fatalf("expected zero counts, got %+v", b)
			}
		}
	})

	t.Run("counts sum to total", func(t *testing.T) {
		t.Parallel()
		scores := []int{0, 5, 9, 10, 55, 89, 90, 99, 100, 100}
		d := Distribution(scores)
		sum := 0
		for _, b := range d {
			sum += b.Count
		}
		if sum != len(scores) {
			t.Fatalf("bucket sum=%d want %d", sum, len(scores))
		}
	})

	t.Run("100 lands in the last bucket", func(t *testing.T) {
		t.Parallel()
		d := Distribution([]int{100})
		if d[9].Count != 1 {
			t.Fatalf("expected score 100 in bucket %q, got %+v", d[9].Label, d)
		}
		if d[9].Label != "90-100" {
			t.Fatalf("last bucket label=%q want 90-100", d[9].Label)
		}
	})
}

func TestLooksLikeAgeGate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		title string
		want  bool
	}{
		{"年齢認証 - FANZA", true},
		{"Age Verification Required", true},
		{"FANZA 認証ページ", true},
		{"18+ content warning", true},
		{"普通の作品タイトル", false},
		{"", false},
		{"My Great Movie", false},
	}
	for _, tc := range cases {
		if got := LooksLikeAgeGate(tc.title); got != tc.want {
			t.Fatalf("LooksLikeAgeGate(%q)=%v want %v", tc.title, got, tc.want)
		}
	}
}

func TestTitleLooksLikeProductCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		title string
		id    string
		want  bool
	}{
		{"SSIS-001", "ssis001", true},
		{"ssis001", "ssis001", true},
		{"素敵な作品タイトル", "ssis001", false},
		{"MIDE-777", "other999", true}, // short code shape alone is enough
		{"", "ssis001", false},
	}
	for _, tc := range cases {
		if got := TitleLooksLikeProductCode(tc.title, tc.id); got != tc.want {
			t.Fatalf("TitleLooksLikeProductCode(%q,%q)=%v want %v", tc.title, tc.id, got, tc.want)
		}
	}
}

func TestShouldRefreshMetadata(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		title string
		id    string
		want  bool
	}{
		{"empty title", "", "ssis001", true},
		{"title equals id case-insensitively", "SSIS001", "ssis001", true},
		{"bare code shape", "ssis-001", "ssis001", true},
		{"bare code for a different product", "ssis123", "midv002", true},
		{"long bare alphanumeric run", "abcd1234efgh", "midv002", true},
		{"age gate title", "年齢認証 - FANZA", "ssis001", true},
		{"real title", "ちゃんとした作品名", "ssis001", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ShouldRefreshMetadata(tc.title, tc.id); got != tc.want {
				t.Fatalf("ShouldRefreshMetadata(%q,%q)=%v want %v", tc.title, tc.id, got, tc.want)
			}
		})
	}
}
