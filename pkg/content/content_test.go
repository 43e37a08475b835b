package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"System Design!", "system-design"},
		{"  Dynamic   Programming  ", "dynamic-programming"},
		{"C++ / Go & Rust", "c-go-rust"},
		{"---Graphs---", "graphs"},
		{"Top 100 Liked", "top-100-liked"},
		{"Árboles", "rboles"},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestSlugifyIsDeterministic(t *testing.T) {
	assert.Equal(t, Slugify("Binary Search Trees"), Slugify("Binary Search Trees"))
}

func TestReadTime(t *testing.T) {
	assert.Equal(t, 2, ReadTime(strings.Repeat("word ", 400)))
	assert.Equal(t, 1, ReadTime(strings.Repeat("word ", 200)))
	assert.Equal(t, 2, ReadTime(strings.Repeat("word ", 201)))
	assert.Equal(t, 1, ReadTime("<p>hello <strong>world</strong></p>"))
	assert.Equal(t, 0, ReadTime(""))
}

func TestWordCountIgnoresMarkup(t *testing.T) {
	assert.Equal(t, 3, WordCount("<h1>One</h1><p>two</p><div>three</div>"))
	assert.Equal(t, 2, WordCount("# Title - here"))
}

func TestExcerpt(t *testing.T) {
	short := "<p>Short <em>note</em></p>"
	assert.Equal(t, "Short note", Excerpt(short))

	long := strings.Repeat("abcd ", 100)
	got := Excerpt(long)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.LessOrEqual(t, len([]rune(got)), ExcerptLength+1)
}

func TestSanitizeHTML(t *testing.T) {
	got := SanitizeHTML(`<p onclick="x()">hi</p><script>alert(1)</script>`)
	assert.Equal(t, "<p>hi</p>", got)
	assert.Equal(t, "", SanitizeHTML("<script>alert(1)</script>"))
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"go", "graphs"}, NormalizeTags([]string{" go ", "", "graphs", "go"}))
	assert.Equal(t, []string{}, NormalizeTags(nil))
}
