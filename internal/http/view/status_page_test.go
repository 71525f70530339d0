package view

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderStatusPage(t *testing.T) {
	html, err := RenderStatusPage(StatusPageData{
		Status:  410,
		Title:   "Link expired",
		Message: "This short link is no longer active.",
		Code:    "<script>",
	})
	require.NoError(t, err)

	assert.True(t, strings.Contains(html, "<title>Link expired</title>"))
	assert.True(t, strings.Contains(html, "410"))
	assert.True(t, strings.Contains(html, "/&lt;script&gt;"), "code must be escaped")
}

func TestRenderStatusPage_DefaultTitle(t *testing.T) {
	html, err := RenderStatusPage(StatusPageData{Status: 404})
	require.NoError(t, err)
	assert.True(t, strings.Contains(html, "<title>Link unavailable</title>"))
}
