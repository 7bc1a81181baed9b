package model

import (
	"errors"
	"fmt"
)

var (
	errNilRoot = errors.New("model: tree root is nil")
)

// Walk visits root and every descendant in depth-first, document order. The
// visitor returning false prunes the subtree below the current node.
func Walk(root *ComponentNode, visit func(node *ComponentNode, parent *ComponentNode) bool) {
	if root == nil || visit == nil {
		return
	}
	walk(root, nil, visit)
}

func walk(node, parent *ComponentNode, visit func(node *ComponentNode, parent *ComponentNode) bool) {
	if !visit(node, parent) {
		return
	}
	for _, child := range node.Children {
		if child == nil {
			continue
		}
		walk(child, node, visit)
	}
}

// FindByID returns the first node in document order with the given id.
func FindByID(root *ComponentNode, id string) *ComponentNode {
	if root == nil || id == "" {
		return nil
	}
	var found *ComponentNode
	Walk(root, func(node *ComponentNode, _ *ComponentNode) bool {
		if found != nil {
			return false
		}
		if node.ID == id {
			found = node
			return false
		}
		return true
	})
	return found
}

// ValidateTree checks the structural invariants of a component tree: the root
// is non-nil, node ids are unique, no node instance appears twice (exclusive
// child ownership, which also rules out cycles), and only container kinds
// carry children.
func ValidateTree(root *ComponentNode, reg *Registry) error {
	if root == nil {
		return errNilRoot
	}
	if reg == nil {
		reg = DefaultRegistry()
	}

	seenIDs := make(map[string]struct{})
	seenNodes := make(map[*ComponentNode]struct{})
	var walkErr error

	Walk(root, func(node *ComponentNode, _ *ComponentNode) bool {
		if walkErr != nil {
			return false
		}
		if _, dup := seenNodes[node]; dup {
			walkErr = fmt.Errorf("model: node %q appears more than once in the tree", node.ID)
			return false
		}
		seenNodes[node] = struct{}{}

		if node.ID != "" {
			if _, dup := seenIDs[node.ID]; dup {
				walkErr = fmt.Errorf("model: duplicate component id %q", node.ID)
				return false
			}
			seenIDs[node.ID] = struct{}{}
		}

		if len(node.Children) > 0 {
			spec, known := reg.Lookup(node.Type)
			if known && !spec.Container {
				walkErr = fmt.Errorf("model: component %q of type %q cannot have children", node.ID, node.Type)
				return false
			}
		}
		return true
	})

	return walkErr
}

// CollectDataKeys returns every bound data key in the tree, in document order
// without duplicates.
func CollectDataKeys(root *ComponentNode) []string {
	var keys []string
	seen := make(map[string]struct{})
	Walk(root, func(node *ComponentNode, _ *ComponentNode) bool {
		if key := node.DataKey(); key != "" {
			if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				keys = append(keys, key)
			}
		}
		return true
	})
	return keys
}
