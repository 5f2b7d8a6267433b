package services

import "github.com/terraincognita07/tempo/internal/models"

type ProjectNode struct {
	models.Project
	Permission   *PermissionLevel `json:"permission"`
	Stats        *ProjectStats    `json:"stats,omitempty"`
	SubtreeStats *ProjectStats    `json:"subtreeStats,omitempty"`
	Children     []*ProjectNode   `json:"children"`
}

// FlatProjectNode is a tree node without its children, used for id lookups
// on the client.
type FlatProjectNode struct {
	models.Project
	Permission   *PermissionLevel `json:"permission"`
	Stats        *ProjectStats    `json:"stats,omitempty"`
	SubtreeStats *ProjectStats    `json:"subtreeStats,omitempty"`
	ChildIDs     []uint           `json:"childIds"`
}

type ProjectTree struct {
	Roots []*ProjectNode
	ByID  map[uint]*ProjectNode

	order []*ProjectNode
}

// BuildProjectTree links projects into a forest in one pass. The input must
// be ordered by depth so parents precede children; children keep the input
// order. A project whose parent is not in the input becomes a root.
func BuildProjectTree(projects []VisibleProject) ProjectTree {
	tree := ProjectTree{
		Roots: make([]*ProjectNode, 0),
		ByID:  make(map[uint]*ProjectNode, len(projects)),
		order: make([]*ProjectNode, 0, len(projects)),
	}

	for _, visible := range projects {
		node := &ProjectNode{
			Project:    visible.Project,
			Permission: visible.Permission,
			Children:   make([]*ProjectNode, 0),
		}
		tree.ByID[node.ID] = node
		tree.order = append(tree.order, node)

		if node.ParentID != nil {
			if parent, ok := tree.ByID[*node.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		tree.Roots = append(tree.Roots, node)
	}
	return tree
}

func (tree ProjectTree) IDs() []uint {
	ids := make([]uint, 0, len(tree.order))
	for _, node := range tree.order {
		ids = append(ids, node.ID)
	}
	return ids
}

// ApplyStats attaches direct stats to every node and sums them bottom-up
// into subtree stats over the nodes present in the tree.
func (tree ProjectTree) ApplyStats(direct map[uint]ProjectStats) {
	for _, node := range tree.order {
		own := direct[node.ID]
		subtree := own
		node.Stats = &own
		node.SubtreeStats = &subtree
	}
	for index := len(tree.order) - 1; index >= 0; index-- {
		node := tree.order[index]
		for _, child := range node.Children {
			total := node.SubtreeStats.Add(*child.SubtreeStats)
			node.SubtreeStats = &total
		}
	}
}

func (tree ProjectTree) Flat() map[uint]FlatProjectNode {
	flat := make(map[uint]FlatProjectNode, len(tree.order))
	for _, node := range tree.order {
		childIDs := make([]uint, 0, len(node.Children))
		for _, child := range node.Children {
			childIDs = append(childIDs, child.ID)
		}
		flat[node.ID] = FlatProjectNode{
			Project:      node.Project,
			Permission:   node.Permission,
			Stats:        node.Stats,
			SubtreeStats: node.SubtreeStats,
			ChildIDs:     childIDs,
		}
	}
	return flat
}
