package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestGetAnchors(t *testing.T) {
	page := `<html><body>
		<a href="index.php?route=/server/export&amp;server=1">
			<span>  Export
			</span> page
		</a>
		<a href="://not-a-url">broken</a>
		<a>no href at all</a>
	</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	anchors := GetAnchors(doc.Find("a"))
	require.Len(t, anchors, 2)
	require.Equal(t, Anchor{
		Name: "Export page",
		Href: "index.php?route=/server/export&server=1",
	}, anchors[0])
	require.Equal(t, Anchor{Name: "no href at all", Href: ""}, anchors[1])
}

func TestGetText(t *testing.T) {
	page := `<html><body><div id="x">a<b>b</b><i>c<u>d</u></i></div></body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	sel := doc.Find("#x")
	require.Len(t, sel.Nodes, 1)
	require.Equal(t, "abcd", GetText(sel.Nodes[0]))
}
