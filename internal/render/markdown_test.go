package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdown(t *testing.T) {
	out, err := Markdown("Olá, **Marcelo**.\n\n- Perdão\n- Aliança")
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "<strong>Marcelo</strong>")
	assert.Contains(t, html, "<li>Perdão</li>")
}

func TestMarkdownHardWrapsAndTables(t *testing.T) {
	out, err := Markdown("linha um\nlinha dois\n\n| a | b |\n|---|---|\n| 1 | 2 |")
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "<br")
	assert.Contains(t, html, "<table>")
}

func TestMarkdownDropsRawHTML(t *testing.T) {
	out, err := Markdown("antes <script>alert(1)</script> depois")
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(out), "<script>"))
}

func TestMarkdownOrEscaped(t *testing.T) {
	assert.Contains(t, string(MarkdownOrEscaped("*itálico*")), "<em>itálico</em>")
}

func TestClock(t *testing.T) {
	ts := time.Date(2026, 3, 1, 14, 5, 0, 0, time.Local)
	assert.Equal(t, "14:05", Clock(ts))
}
