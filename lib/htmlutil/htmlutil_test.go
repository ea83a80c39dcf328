package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestGetText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<div><b>Hello</b> <span>there <i>world</i></span></div>`,
	))
	require.NoError(t, err)

	node := doc.Find("div").Nodes[0]
	require.Equal(t, "Hello there world", GetText(node))
}

func TestCleanText(t *testing.T) {
	require.Equal(t, "A Great Song", CleanText("  A Great\n\tSong "))
	require.Equal(t, "", CleanText(" \n\t"))
	require.Equal(t, "plain", CleanText("plain"))
}
