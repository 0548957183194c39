package scrape

import (
	"reflect"
	"strings"
	"testing"
)

func TestExtract_TitlePriority(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "og wins over twitter and title",
			html: `<meta property="og:title" content="OG"><meta name="twitter:title" content="TW"><title>TT</title>`,
			want: "OG",
		},
		{
			name: "og with swapped attribute order",
			html: `<meta content="OG" property="og:title"><title>TT</title>`,
			want: "OG",
		},
		{
			name: "twitter wins over title",
			html: `<meta name="twitter:title" content="TW"><title>TT</title>`,
			want: "TW",
		},
		{
			name: "title element last",
			html: `<title>TT</title>`,
			want: "TT",
		},
		{
			name: "entities decoded",
			html: `<title>A &amp; B&#39;s</title>`,
			want: "A & B's",
		},
		{
			name: "no title at all",
			html: `<p>hello</p>`,
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Extract(tt.html)
			if m.Title != tt.want {
				t.Fatalf("Extract title=%q want %q", m.Title, tt.want)
			}
		})
	}
}

func TestExtract_DecodesNumericEntities(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "decimal references",
			html: `<title>&#24180;&#40802;&#35469;&#35388; - FANZA</title>`,
			want: "年齢認証 - FANZA",
		},
		{
			name: "hex references",
			html: `<title>&#x5E74;&#x9F62;&#x8A8D;&#x8A3C; - FANZA</title>`,
			want: "年齢認証 - FANZA",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Extract(tt.html)
			if m.Title != tt.want {
				t.Fatalf("Extract title=%q want %q", m.Title, tt.want)
			}
			if titleQualifies(m.Title, "ssis001") {
				t.Fatalf("encoded age-gate title must not qualify: %q", m.Title)
			}
		})
	}
}

func TestExtract_LDJSONShapes(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []string
	}{
		{
			name: "actor as single object",
			html: `<script type="application/ld+json">{"actor":{"name":"山田花子"}}</script>`,
			want: []string{"山田花子"},
		},
		{
			name: "actor as string list",
			html: `<script type="application/ld+json">{"actors":["山田花子","鈴木一郎"]}</script>`,
			want: []string{"山田花子", "鈴木一郎"},
		},
		{
			name: "performer nested in graph",
			html: `<script type="application/ld+json">{"@graph":[{"performer":[{"name":"山田花子"}]}]}</script>`,
			want: []string{"山田花子"},
		},
		{
			name: "malformed block skipped, next block read",
			html: `<script type="application/ld+json">{oops</script>` +
				`<script type="application/ld+json">{"actor":{"name":"山田花子"}}</script>`,
			want: []string{"山田花子"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Extract(tt.html)
			if !reflect.DeepEqual(m.PerformerNames, tt.want) {
				t.Fatalf("names=%v want %v", m.PerformerNames, tt.want)
			}
		})
	}
}

func TestExtract_LabelledNames(t *testing.T) {
	m := Extract(`<div>出演者: 山田花子、鈴木一郎</div>`)
	want := []string{"山田花子", "鈴木一郎"}
	if !reflect.DeepEqual(m.PerformerNames, want) {
		t.Fatalf("names=%v want %v", m.PerformerNames, want)
	}

	m = Extract(`<span>女優:佐藤美咲</span>`)
	if len(m.PerformerNames) != 1 || m.PerformerNames[0] != "佐藤美咲" {
		t.Fatalf("names=%v want single 佐藤美咲", m.PerformerNames)
	}
}

func TestNormalizeNames(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "fullwidth folded to halfwidth",
			in:   []string{"ＡＢＣ"},
			want: []string{"ABC"},
		},
		{
			name: "numeric-only dropped",
			in:   []string{"12345", "山田花子"},
			want: []string{"山田花子"},
		},
		{
			name: "url-ish dropped",
			in:   []string{"https://example.com", "山田花子"},
			want: []string{"山田花子"},
		},
		{
			name: "case-insensitive dedupe keeps first",
			in:   []string{"Hanako", "hanako", "HANAKO"},
			want: []string{"Hanako"},
		},
		{
			name: "overlong dropped",
			in:   []string{strings.Repeat("あ", 121), "山田花子"},
			want: []string{"山田花子"},
		},
		{
			name: "blank and whitespace dropped",
			in:   []string{"", "  ", "山田花子"},
			want: []string{"山田花子"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeNames(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("NormalizeNames(%v)=%v want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeNames_Cap(t *testing.T) {
	in := make([]string, 0, 15)
	for r := 'a'; r < 'a'+15; r++ {
		in = append(in, "name"+string(r))
	}
	got := NormalizeNames(in)
	if len(got) != maxNames {
		t.Fatalf("len=%d want cap %d", len(got), maxNames)
	}
}

func TestNamesFromTitle(t *testing.T) {
	tests := []struct {
		title string
		want  []string
	}{
		// segment before the site marker is kept whole
		{"素敵な作品 - FANZA", []string{"素敵な作品"}},
		{"山田花子、鈴木一郎 | 作品ページ", []string{"山田花子", "鈴木一郎"}},
		// no separator means no candidate at all
		{"山田花子", nil},
		{"", nil},
	}
	for _, tt := range tests {
		got := NamesFromTitle(tt.title)
		if !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("NamesFromTitle(%q)=%v want %v", tt.title, got, tt.want)
		}
	}
}
