package htmlutil

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// GetText returns the concatenated text of a node's text descendants.
func GetText(node *html.Node) string {
	var buf bytes.Buffer
	collectText(node, &buf)
	return buf.String()
}

func collectText(node *html.Node, buf *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buf.WriteString(node.Data)
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, buf)
	}
}

type Anchor struct {
	Name string
	Href string
}

// GetAnchors collects name/href pairs from a selection of <a> nodes,
// dropping anchors whose href does not parse as a url. Names are trimmed
// with inner whitespace runs collapsed to a single space.
func GetAnchors(sel *goquery.Selection) []Anchor {
	anchors := []Anchor{}
	for _, node := range sel.Nodes {
		var href string
		for _, attr := range node.Attr {
			if attr.Key == "href" {
				href = attr.Val
				break
			}
		}
		link, err := url.Parse(href)
		if err != nil {
			continue
		}

		name := strings.Join(strings.Fields(GetText(node)), " ")
		anchors = append(anchors, Anchor{
			Name: name,
			Href: link.String(),
		})
	}
	return anchors
}
