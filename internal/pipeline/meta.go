package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrMetaParse indicates the document could not be parsed for meta tags.
var ErrMetaParse = errors.New("meta tag parsing failed")

// MetaOption is one <meta name="PREFIXkey" content="value"> entry with the
// prefix stripped from Name.
type MetaOption struct {
	Name    string
	Content string
}

// FindMetaOptions returns, in document order, every meta element in the
// document head whose name starts with prefix. Names keep their case.
// An empty prefix matches nothing.
func FindMetaOptions(content, prefix string) ([]MetaOption, error) {
	if prefix == "" {
		return nil, nil
	}

	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetaParse, err)
	}

	head := findHead(doc)
	if head == nil {
		return nil, nil
	}

	var found []MetaOption
	for n := head.FirstChild; n != nil; n = n.NextSibling {
		if n.Type != html.ElementNode || n.DataAtom != atom.Meta {
			continue
		}
		name, ok := attr(n, "name")
		if !ok || !strings.HasPrefix(name, prefix) || len(name) == len(prefix) {
			continue
		}
		value, _ := attr(n, "content")
		found = append(found, MetaOption{Name: strings.TrimPrefix(name, prefix), Content: value})
	}
	return found, nil
}

// findHead returns the html > head element. The parser always synthesizes
// one, even for fragments.
func findHead(doc *html.Node) *html.Node {
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type != html.ElementNode || n.DataAtom != atom.Html {
			continue
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == atom.Head {
				return c
			}
		}
	}
	return nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
