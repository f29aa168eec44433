package search

import (
	"slices"

	"github.com/roach88/jfa/internal/model"
)

// noParent marks the root node.
const noParent int32 = -1

// node is one search tree vertex. It owns its state snapshot; parent is a
// non-owning arena index.
type node struct {
	state       model.State
	key         model.StateKey
	priority    float64
	action      model.Action
	reward      float64
	parent      int32
	terminal    bool
	revalidated bool
}

// arena stores every node created during one search run.
type arena struct {
	nodes []node
}

func newArena() *arena {
	return &arena{nodes: make([]node, 0, 256)}
}

// add appends n and returns its index.
func (a *arena) add(n node) int32 {
	a.nodes = append(a.nodes, n)
	return int32(len(a.nodes) - 1)
}

// at returns the node at idx. The pointer is invalidated by the next add.
func (a *arena) at(idx int32) *node {
	return &a.nodes[idx]
}

// path walks parent links from idx to the root and returns the actions in
// root-to-node order. The root contributes no action.
func (a *arena) path(idx int32) []model.Action {
	actions := []model.Action{}
	for i := idx; a.nodes[i].parent != noParent; i = a.nodes[i].parent {
		actions = append(actions, a.nodes[i].action)
	}
	slices.Reverse(actions)
	return actions
}
