package rendering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeHTML(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"plain", "plain"},
		{"R&D", "R&amp;D"},
		{"<script>", "&lt;script&gt;"},
		{`"quoted" it's`, "&#34;quoted&#34; it&#39;s"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeHTML(tt.input))
		})
	}
}

func TestTextToHTML(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "single paragraph",
			text: "Hello",
			want: "<p>Hello</p>",
		},
		{
			name: "line breaks",
			text: "Best regards,\nJane",
			want: "<p>Best regards,<br>Jane</p>",
		},
		{
			name: "multiple paragraphs with blanks dropped",
			text: "Dear Team,\n\n\n\nBody\n   \nBye",
			want: "<p>Dear Team,</p>\n<p>Body</p>\n<p>Bye</p>",
		},
		{
			name: "escaped",
			text: "Tom & Jerry <3",
			want: "<p>Tom &amp; Jerry &lt;3</p>",
		},
		{
			name: "empty",
			text: "  \n\n ",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TextToHTML(tt.text))
		})
	}
}

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "paragraphs",
			html: "<p>Dear Team,</p>\n<p>Body<br/>More</p>",
			want: "Dear Team,\n\nBody\nMore",
		},
		{
			name: "upper case tags",
			html: "<P>One<BR>Two</P>",
			want: "One\nTwo",
		},
		{
			name: "entities decoded",
			html: "<p>R&amp;D &lt;team&gt;</p>",
			want: "R&D <team>",
		},
		{
			name: "inline markup stripped",
			html: "<div><strong>Bold</strong> and <a href=\"x\">link</a></div>",
			want: "Bold and link",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTMLToText(tt.html))
		})
	}
}

func TestRoundTrip_SingleParagraph(t *testing.T) {
	paragraphs := []string{
		"Hello world",
		"I am Jane, and I am writing to apply.",
		"Line one\nLine two",
		`Tom & Jerry <3 "quotes" it's`,
	}
	for _, p := range paragraphs {
		assert.Equal(t, p, HTMLToText(TextToHTML(p)))
	}
}

func TestRoundTrip_MultipleParagraphs(t *testing.T) {
	text := "Dear Acme Hiring Team,\n\nI am writing to apply.\n\nBest regards,\nJane"
	assert.Equal(t, text, HTMLToText(TextToHTML(text)))
}
