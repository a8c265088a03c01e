package behavior

import (
	"errors"
	"fmt"
)

// ErrSharedNode is returned by Validate when a node has more than one parent
// or appears on its own ancestor chain.
var ErrSharedNode = errors.New("behavior: node appears more than once in tree")

// ErrNilNode is returned by Validate for nil roots or children.
var ErrNilNode = errors.New("behavior: nil node")

// Validate checks that root is a tree: every node is owned by exactly one
// parent, so there is no sharing and no cycle.
func Validate(root Node) error {
	seen := make(map[Node]struct{})
	return validate(root, seen, "root")
}

func validate(n Node, seen map[Node]struct{}, path string) error {
	if n == nil {
		return fmt.Errorf("%s: %w", path, ErrNilNode)
	}

	var children []Node
	switch v := n.(type) {
	case *Sequence:
		children = v.Children
	case *Fallback:
		children = v.Children
	case *Condition, *Action:
	default:
		// Value leaves (Always) carry no identity and may repeat.
		return nil
	}

	if _, dup := seen[n]; dup {
		return fmt.Errorf("%s: %w", path, ErrSharedNode)
	}
	seen[n] = struct{}{}

	for i, child := range children {
		if err := validate(child, seen, fmt.Sprintf("%s/%d", path, i)); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of nodes in the tree rooted at n.
func Count(n Node) int {
	switch v := n.(type) {
	case *Sequence:
		total := 1
		for _, c := range v.Children {
			total += Count(c)
		}
		return total
	case *Fallback:
		total := 1
		for _, c := range v.Children {
			total += Count(c)
		}
		return total
	case nil:
		return 0
	default:
		return 1
	}
}
