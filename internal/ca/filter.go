package ca

// FilterWithContent flattens a catalog tree into the nodes flagged hasContent.
// Each node's descendants are emitted before the node itself, in input order.
// Returned nodes still carry their own Child slices.
func FilterWithContent(nodes []CatalogNode) []CatalogNode {
	found := []CatalogNode{}
	return collect(found, nodes, func(n CatalogNode) bool { return bool(n.HasContent) })
}

func collect(found, nodes []CatalogNode, keep func(CatalogNode) bool) []CatalogNode {
	for _, n := range nodes {
		if len(n.Child) > 0 {
			found = collect(found, n.Child, keep)
		}
		if keep(n) {
			found = append(found, n)
		}
	}
	return found
}

// FindArtifact returns the first node in a flattened list with the given
// artifact type, or false.
func FindArtifact(nodes []CatalogNode, t ArtifactType) (CatalogNode, bool) {
	for _, n := range nodes {
		if n.ArtifactType == t {
			return n, true
		}
	}
	return CatalogNode{}, false
}
