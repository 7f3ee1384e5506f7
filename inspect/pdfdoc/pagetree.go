package pdfdoc

import (
	"regexp"

	"github.com/ledongthuc/pdf"

	"doc-inspector/logger"
)

const maxPageTreeDepth = 64

var kidRefPattern = regexp.MustCompile(`(\d+ \d+) R`)

// pageLeaves walks /Kids from the catalog's page tree root and returns the
// /Page leaves in document order. /Count is never consulted. Each indirect
// node is visited once, and at most maxNodes nodes are visited overall.
func pageLeaves(reader *pdf.Reader, maxNodes int) (leaves []pdf.Value) {
	defer func() {
		if r := recover(); r != nil {
			logger.Debug("pdf page tree unreadable", "pages_found", len(leaves), "panic", r)
		}
	}()

	visited := make(map[string]bool)
	budget := maxNodes
	var walk func(node pdf.Value, depth int)
	walk = func(node pdf.Value, depth int) {
		if budget <= 0 || depth > maxPageTreeDepth || node.Kind() != pdf.Dict {
			return
		}
		budget--
		if node.Key("Type").Name() == "Page" {
			leaves = append(leaves, node)
			return
		}
		kids := node.Key("Kids")
		n := kids.Len()
		// The array prints unresolved references, which identify each kid.
		refs := kidRefPattern.FindAllStringSubmatch(kids.String(), -1)
		identified := len(refs) == n
		for i := 0; i < n && budget > 0; i++ {
			if identified {
				id := refs[i][1]
				if visited[id] {
					continue
				}
				visited[id] = true
			}
			walk(kids.Index(i), depth+1)
		}
	}
	walk(reader.Trailer().Key("Root").Key("Pages"), 0)
	return leaves
}
