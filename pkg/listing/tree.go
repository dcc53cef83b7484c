package listing

import (
	"fmt"
	"io"
	"strings"
)

// Node is one entry in the derived tree view of a Listing.
type Node struct {
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	IsDir    bool    `json:"is_dir"`
	Children []*Node `json:"children,omitempty"`
}

// BuildTree derives a read-only tree from a listing. Selection never uses the
// tree; it exists for display.
func BuildTree(l Listing) *Node {
	root := &Node{Name: "", Path: Root, IsDir: true}
	index := map[string]*Node{Root: root}

	for _, p := range l {
		parent := root
		current := ""
		segs := Segments(p)
		for i, seg := range segs {
			current = Join(current, seg)
			node, ok := index[current]
			if !ok {
				last := i == len(segs)-1
				node = &Node{Name: seg, Path: current, IsDir: !last || !IsFile(seg)}
				parent.Children = append(parent.Children, node)
				index[current] = node
			}
			parent = node
		}
	}
	return root
}

// FindByPath resolves a path in the tree (recursive). It returns nil when
// the path is not in the tree.
func FindByPath(root *Node, path string) *Node {
	if root == nil {
		return nil
	}
	if root.Path == path {
		return root
	}
	for _, child := range root.Children {
		if found := FindByPath(child, path); found != nil {
			return found
		}
	}
	return nil
}

// Print writes an indented rendering of the tree.
func Print(w io.Writer, root *Node) {
	for _, child := range root.Children {
		printNode(w, child, 0)
	}
}

func printNode(w io.Writer, n *Node, depth int) {
	name := n.Name
	if n.IsDir {
		name += "/"
	}
	fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), name)
	for _, child := range n.Children {
		printNode(w, child, depth+1)
	}
}
