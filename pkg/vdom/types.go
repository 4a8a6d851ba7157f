package vdom

import "strings"

// VKind represents the type of virtual node
type VKind uint8

const (
	// KindElement represents an element node
	KindElement VKind = iota
	// KindText represents a text node
	KindText
	// KindFragment groups children without a parent element
	KindFragment
)

// Props holds the attributes of an element
type Props map[string]any

// VNode is a node of a markup tree built by components and rendered to HTML
type VNode struct {
	Kind  VKind
	Tag   string
	Props Props
	Kids  []VNode
	Text  string
}

// NewElement creates an element node. Nil children are skipped.
func NewElement(tag string, props Props, children ...*VNode) *VNode {
	return &VNode{
		Kind:  KindElement,
		Tag:   tag,
		Props: props,
		Kids:  collect(children),
	}
}

// NewText creates a text node
func NewText(text string) *VNode {
	return &VNode{
		Kind: KindText,
		Text: text,
	}
}

// NewFragment creates a fragment node
func NewFragment(children ...*VNode) *VNode {
	return &VNode{
		Kind: KindFragment,
		Kids: collect(children),
	}
}

func collect(children []*VNode) []VNode {
	kids := make([]VNode, 0, len(children))
	for _, child := range children {
		if child != nil {
			kids = append(kids, *child)
		}
	}
	return kids
}

// Class joins class name strings into one attribute value, dropping the
// empty tokens InsertStyles output may carry
func Class(parts ...string) string {
	var tokens []string
	for _, p := range parts {
		tokens = append(tokens, strings.Fields(p)...)
	}
	return strings.Join(tokens, " ")
}

// Attr returns the string value of an attribute
func (v VNode) Attr(key string) (string, bool) {
	if v.Props == nil {
		return "", false
	}
	s, ok := v.Props[key].(string)
	return s, ok
}

// Find returns the first element in the tree with the given tag, depth first
func (v *VNode) Find(tag string) *VNode {
	if v == nil {
		return nil
	}
	if v.Kind == KindElement && v.Tag == tag {
		return v
	}
	for i := range v.Kids {
		if found := v.Kids[i].Find(tag); found != nil {
			return found
		}
	}
	return nil
}
