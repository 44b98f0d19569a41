// Package vfs is the read-only filesystem the shell navigates. The tree is
// immutable after Load; a working directory is a Path, resolved again from
// the root on every command, so nodes carry no parent links.
package vfs

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrNotFound = errors.New("no such file or directory")
	ErrNotDir   = errors.New("not a directory")
	ErrIsDir    = errors.New("is a directory")
)

// Kind distinguishes files from directories
type Kind uint8

const (
	File Kind = iota
	Dir
)

// Node is one entry of the tree. Children are sorted by name.
type Node struct {
	Name     string
	Kind     Kind
	Content  string
	Children []*Node
}

// IsDir reports whether n is a directory
func (n *Node) IsDir() bool { return n.Kind == Dir }

// Child returns the direct child named name
func (n *Node) Child(name string) (*Node, bool) {
	i, ok := slices.BinarySearchFunc(n.Children, name, func(c *Node, name string) int {
		return strings.Compare(c.Name, name)
	})
	if !ok {
		return nil, false
	}
	return n.Children[i], true
}

// Path is a sequence of names from the root; the empty Path is "/"
type Path []string

func (p Path) String() string {
	return "/" + strings.Join(p, "/")
}

// FS is a loaded tree plus the home directory used for "~"
type FS struct {
	root *Node
	home Path
}

// yamlNode is the on-disk shape: a node with content is a file, anything
// else is a directory
type yamlNode struct {
	Name     string     `yaml:"name"`
	Content  *string    `yaml:"content"`
	Children []yamlNode `yaml:"children"`
}

// Load parses a YAML tree. home must name an existing directory.
func Load(data []byte, home string) (*FS, error) {
	var raw yamlNode
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse filesystem: %w", err)
	}
	raw.Name = ""
	root, err := build(raw, "/")
	if err != nil {
		return nil, err
	}
	if !root.IsDir() {
		return nil, fmt.Errorf("filesystem root must be a directory")
	}

	fs := &FS{root: root}
	homePath, node, err := fs.Resolve(nil, home)
	if err != nil {
		return nil, fmt.Errorf("home %q: %w", home, err)
	}
	if !node.IsDir() {
		return nil, fmt.Errorf("home %q: %w", home, ErrNotDir)
	}
	fs.home = homePath
	return fs, nil
}

func build(raw yamlNode, where string) (*Node, error) {
	n := &Node{Name: raw.Name}
	if raw.Content != nil {
		if len(raw.Children) > 0 {
			return nil, fmt.Errorf("%s: file with children", where)
		}
		n.Kind = File
		n.Content = *raw.Content
		return n, nil
	}

	n.Kind = Dir
	n.Children = make([]*Node, 0, len(raw.Children))
	for _, rc := range raw.Children {
		if rc.Name == "" || rc.Name == "." || rc.Name == ".." || strings.ContainsRune(rc.Name, '/') {
			return nil, fmt.Errorf("%s: invalid name %q", where, rc.Name)
		}
		child, err := build(rc, strings.TrimSuffix(where, "/")+"/"+rc.Name)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}
	slices.SortFunc(n.Children, func(a, b *Node) int { return strings.Compare(a.Name, b.Name) })
	for i := 1; i < len(n.Children); i++ {
		if n.Children[i].Name == n.Children[i-1].Name {
			return nil, fmt.Errorf("%s: duplicate entry %q", where, n.Children[i].Name)
		}
	}
	return n, nil
}

// Root returns the root directory
func (fs *FS) Root() *Node { return fs.root }

// Home returns the home directory path
func (fs *FS) Home() Path { return slices.Clone(fs.home) }

// Resolve interprets target relative to cwd and walks it from the root.
// Supports absolute paths, ".", "..", "~" and "~/..."; ".." at the root stays
// at the root. Every intermediate component must be a directory.
func (fs *FS) Resolve(cwd Path, target string) (Path, *Node, error) {
	var segs Path
	switch {
	case target == "~" || strings.HasPrefix(target, "~/"):
		segs = slices.Clone(fs.home)
		target = strings.TrimPrefix(target[1:], "/")
	case strings.HasPrefix(target, "/"):
		segs = Path{}
	default:
		segs = slices.Clone(cwd)
	}

	for _, part := range strings.Split(target, "/") {
		switch part {
		case "", ".":
		case "..":
			if len(segs) > 0 {
				segs = segs[:len(segs)-1]
			}
		default:
			segs = append(segs, part)
		}
	}

	node := fs.root
	for i, name := range segs {
		if !node.IsDir() {
			return nil, nil, fmt.Errorf("%s: %w", Path(segs[:i]), ErrNotDir)
		}
		next, ok := node.Child(name)
		if !ok {
			return nil, nil, fmt.Errorf("%s: %w", target, ErrNotFound)
		}
		node = next
	}
	return segs, node, nil
}

// Lookup returns the node at an already resolved path
func (fs *FS) Lookup(p Path) (*Node, error) {
	_, n, err := fs.Resolve(nil, p.String())
	return n, err
}
