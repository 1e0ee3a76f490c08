package htmltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestToText tests HTML flattening.
func TestToText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "paragraphs become lines",
			in:   "<h1>IFC Export</h1><p>Choose   <b>File</b> &gt; Export.</p><p>Pick IFC4.</p>",
			want: "IFC Export\nChoose File > Export.\nPick IFC4.",
		},
		{
			name: "scripts and styles dropped",
			in:   "<style>p{}</style><p>Visible</p><script>alert(1)</script>",
			want: "Visible",
		},
		{
			name: "line breaks and lists",
			in:   "<ul><li>One</li><li>Two</li></ul>Line<br>Next",
			want: "One\nTwo\nLine\nNext",
		},
		{
			name: "image alt text kept",
			in:   `<p>See <img src="x.png" alt="export dialog"> below</p>`,
			want: "See export dialog below",
		},
		{
			name: "plain text passes through",
			in:   "  already   plain\n\n text ",
			want: "already plain\ntext",
		},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToText(tt.in))
		})
	}
}

// TestToMarkdown tests structure-preserving conversion.
func TestToMarkdown(t *testing.T) {
	out := ToMarkdown(`<h2>Rule Sets</h2><p>Open the <a href="https://example.com/rules">rule manager</a>.</p>` +
		`<ul><li>Add</li><li>Remove</li></ul><script>x()</script>`)

	assert.Contains(t, out, "## Rule Sets")
	assert.Contains(t, out, "[rule manager](https://example.com/rules)")
	assert.Contains(t, out, "- Add")
	assert.NotContains(t, out, "x()")
	assert.NotContains(t, out, "\n\n\n")

	assert.Equal(t, "plain body", ToMarkdown("  plain body  "))
}

// TestTitle tests heading extraction.
func TestTitle(t *testing.T) {
	assert.Equal(t, "Clash Detection", Title("<div><h1> Clash Detection </h1><h2>Intro</h2></div>"))
	assert.Empty(t, Title("<p>no heading</p>"))
}
