package mesh

import "sort"

// Page is the minimal view of a content page the mesh needs.
type Page struct {
	ID    int
	Title string
	URL   string
}

// Node is one index entry: a page reduced to its title tokens. Relevance
// is transient, recomputed per query.
type Node struct {
	ID        int
	Title     string
	URL       string
	Tokens    map[string]struct{}
	Relevance float64
}

// Build constructs the index from all known pages. The result is treated
// as read-only by every concurrent pipeline run.
func Build(pages []Page) []Node {
	nodes := make([]Node, 0, len(pages))
	for _, p := range pages {
		nodes = append(nodes, Node{
			ID:     p.ID,
			Title:  p.Title,
			URL:    p.URL,
			Tokens: Tokenize(p.Title),
		})
	}
	return nodes
}

// Neighbors returns up to k nodes ranked by token overlap with the target
// title, excluding the target itself. If fewer than k nodes rank above
// zero, the remainder is backfilled in index order so a sparse site still
// yields a full inventory for the strategy prompt.
func Neighbors(nodes []Node, targetID int, targetTitle string, k int) []Node {
	targetTokens := Tokenize(targetTitle)

	ranked := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n.ID == targetID {
			continue
		}
		n.Relevance = Relevance(targetTokens, n.Tokens)
		ranked = append(ranked, n)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Relevance > ranked[j].Relevance
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

// FindByID looks up a node in the inventory.
func FindByID(nodes []Node, id int) (Node, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
