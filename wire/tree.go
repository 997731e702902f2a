/*
 * MIT License
 *
 * Copyright (c) 2026 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package wire

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Session is the minimal I/O contract a command handler needs beyond its
// argument tokens: raw writes for streaming watch payloads, line reads for
// the watch sub-protocol's per-message ack, and a hangup probe for the
// watch loop's idle poll. A session package implementation is handed to
// Dispatch by the caller.
type Session interface {
	// WriteRaw writes b to the client connection unmodified - no added
	// newline, no prompt.
	WriteRaw(b []byte) error
	// ReadLine blocks for the client's next newline-terminated line, with
	// the trailing newline stripped.
	ReadLine() (string, error)
	// PollClosed waits up to timeout for the client to close the
	// connection, without consuming any line the client may later send.
	// It returns true only if the connection was observed closed.
	PollClosed(timeout time.Duration) bool
}

// Result is a command's outcome: either a reply to print before the next
// prompt, or a request to close the session after writing Final verbatim.
// Modeling the close path as a plain return value (rather than the
// exception-for-quit trick of the original dispatcher) keeps the control
// flow explicit.
type Result struct {
	Reply string
	Close bool
	Final string
}

// Handler runs a resolved leaf command against the tokens left over after
// the tree walk consumed the command path.
type Handler func(sess Session, args []string) (Result, error)

// Node is one entry of the command tree: a Branch carries named children
// and no handler of its own (bare "make" is a branch); a Leaf carries a
// Handler and no children ("quit" is a leaf).
type Node struct {
	Doc      string
	Handler  Handler
	Children map[string]*Node

	// NoAbbrev forbids prefix-abbreviation of this node's own key. Only
	// "exit-if-idle" sets this: it is destructive enough that typing it in
	// full is the only way to invoke it.
	NoAbbrev bool
}

// Leaf builds a command-tree leaf.
func Leaf(doc string, h Handler) *Node {
	return &Node{Doc: doc, Handler: h}
}

// Branch builds a command-tree branch with the given named children.
func Branch(doc string, children map[string]*Node) *Node {
	return &Node{Doc: doc, Children: children}
}

// Tree is the root of the command tree: a single top-level Branch.
type Tree struct {
	root map[string]*Node
	doc  string
}

// NewTree builds a Tree from the given top-level command set.
func NewTree(doc string, top map[string]*Node) *Tree {
	return &Tree{root: top, doc: doc}
}

// Dispatch walks args against the tree one token at a time, resolving each
// token to a child by exact match or unique prefix, descending through
// Branches and finally invoking the Handler of the Leaf it lands on with
// whatever tokens remain.
func (t *Tree) Dispatch(sess Session, args []string) (Result, error) {
	if len(args) == 0 {
		return Result{}, fmt.Errorf("no command given")
	}

	level := t.root
	path := make([]string, 0, 2)

	for {
		name, node, err := resolve(level, args[0], path)
		if err != nil {
			return Result{}, err
		}
		path = append(path, name)
		args = args[1:]

		if node.Children != nil {
			if len(args) == 0 {
				return Result{}, fmt.Errorf(`"%s" must be followed by one of: %s`, strings.Join(path, " "), strings.Join(sortedKeys(node.Children), ", "))
			}
			level = node.Children
			continue
		}

		return node.Handler(sess, args)
	}
}

// HelpText returns the doc string reached by walking path through the tree.
// An empty path returns the root's doc string. HelpText allows partial
// paths that land on a Branch: it then returns that branch's own doc,
// summarizing its children, rather than erroring as Dispatch would.
func (t *Tree) HelpText(path []string) (string, error) {
	if len(path) == 0 {
		return t.doc, nil
	}

	level := t.root
	var node *Node
	var err error

	for i, token := range path {
		var name string
		name, node, err = resolve(level, token, path[:i])
		if err != nil {
			return "", err
		}
		if node.Children != nil {
			level = node.Children
		}
		_ = name
	}

	return node.Doc, nil
}

func resolve(level map[string]*Node, token string, path []string) (string, *Node, error) {
	key := strings.ToLower(token)

	if n, ok := level[key]; ok {
		return key, n, nil
	}

	var candidates []string
	for name := range level {
		if strings.HasPrefix(name, key) {
			candidates = append(candidates, name)
		}
	}
	sort.Strings(candidates)

	switch len(candidates) {
	case 0:
		if len(path) > 0 {
			return "", nil, fmt.Errorf(`bad "%s" command; the following word must be one of: %s`, strings.Join(path, " "), strings.Join(sortedKeys(level), ", "))
		}
		return "", nil, fmt.Errorf("unknown command %q", token)
	case 1:
		name := candidates[0]
		if level[name].NoAbbrev && name != key {
			return "", nil, fmt.Errorf(`"%s" cannot be abbreviated`, name)
		}
		return name, level[name], nil
	default:
		return "", nil, fmt.Errorf("ambiguous command %q; could be: %s", token, strings.Join(candidates, ", "))
	}
}

func sortedKeys(m map[string]*Node) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
