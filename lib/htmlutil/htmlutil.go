package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// GetText returns the concatenated text content of a node, unlike
// goquery's Text() it does not require wrapping the node in a selection.
func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		getTextRecursive(child, buffer)
	}
}

var whitespaceRegex = regexp.MustCompile(`\s+`)

func removeNonPrintable(s string) string {
	out := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			out.WriteRune(c)
		}
	}
	return out.String()
}

// CleanText normalizes scraped display text: collapses runs of whitespace
// (including newlines) to a single space, trims the result and drops any
// remaining non-printable runes.
func CleanText(s string) string {
	s = whitespaceRegex.ReplaceAllString(s, " ")
	s = strings.Trim(s, " ")
	return removeNonPrintable(s)
}
