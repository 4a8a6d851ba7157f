package html

import (
	"fmt"
	"html"
	"io"
	"sort"
	"strings"

	"github.com/recera/rulesheet/pkg/vdom"
)

// voidElements are HTML elements that cannot have children
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// booleanAttributes are HTML attributes that are boolean flags
var booleanAttributes = map[string]bool{
	"checked":  true,
	"disabled": true,
	"hidden":   true,
	"readonly": true,
	"required": true,
	"selected": true,
}

// Renderer writes VNode trees as HTML
type Renderer struct {
	w   io.Writer
	err error
}

// NewRenderer creates a renderer writing to w
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

// Render writes node and its children
func (r *Renderer) Render(node *vdom.VNode) error {
	r.renderNode(node, false)
	return r.err
}

// write helper that tracks errors
func (r *Renderer) write(s string) {
	if r.err != nil {
		return
	}
	_, r.err = io.WriteString(r.w, s)
}

func (r *Renderer) renderNode(node *vdom.VNode, raw bool) {
	if node == nil || r.err != nil {
		return
	}

	switch node.Kind {
	case vdom.KindText:
		if raw {
			r.write(node.Text)
		} else {
			r.write(html.EscapeString(node.Text))
		}

	case vdom.KindElement:
		r.renderElement(node)

	case vdom.KindFragment:
		for i := range node.Kids {
			r.renderNode(&node.Kids[i], raw)
		}
	}
}

func (r *Renderer) renderElement(node *vdom.VNode) {
	r.write("<")
	r.write(node.Tag)

	// Sorted so output is stable across renders
	keys := make([]string, 0, len(node.Props))
	for key := range node.Props {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := node.Props[key]

		if booleanAttributes[key] {
			if v, ok := value.(bool); ok && v {
				r.write(" ")
				r.write(key)
			}
			continue
		}

		valueStr := fmt.Sprintf("%v", value)
		if key == "class" && valueStr == "" {
			continue
		}

		// Security: prevent javascript: URLs in href/src attributes
		if (key == "href" || key == "src") && strings.HasPrefix(strings.ToLower(strings.TrimSpace(valueStr)), "javascript:") {
			valueStr = "#"
		}

		r.write(" ")
		r.write(key)
		r.write(`="`)
		r.write(html.EscapeString(valueStr))
		r.write(`"`)
	}

	r.write(">")

	if voidElements[node.Tag] {
		return
	}

	// Style and script content is written unescaped
	raw := node.Tag == "style" || node.Tag == "script"
	for i := range node.Kids {
		r.renderNode(&node.Kids[i], raw)
	}

	r.write("</")
	r.write(node.Tag)
	r.write(">")
}

// RenderToString renders a VNode to a string
func RenderToString(node *vdom.VNode) (string, error) {
	var buf strings.Builder
	if err := NewRenderer(&buf).Render(node); err != nil {
		return "", err
	}
	return buf.String(), nil
}
