package components

import (
	"github.com/recera/rulesheet/pkg/styling"
	"github.com/recera/rulesheet/pkg/vdom"
)

// StatusState is a predefined status value
type StatusState string

const (
	StatusSuccess StatusState = "success"
	StatusInfo    StatusState = "info"
	StatusWarning StatusState = "warning"
	StatusError   StatusState = "error"
	StatusUnknown StatusState = "unknown"
)

// StatusClassName is the static class on every status root
const StatusClassName = "ui-status"

var statusRootStyles = styling.MakeStyles(append([]styling.VariantRule{
	{Styles: styling.Declarations{
		styling.Decl("display", "inline-flex"),
		styling.Decl("align-items", "center"),
		styling.Decl("justify-content", "center"),
		styling.Decl("width", pxToRem(10)),
		styling.Decl("height", pxToRem(10)),
		styling.Decl("border-radius", "9999px"),
		styling.Decl("background-color", "#8a8886"),
	}},
	{When: styling.Props{"state": "success"}, Styles: styling.Declarations{styling.Decl("background-color", "#6bb700")}},
	{When: styling.Props{"state": "info"}, Styles: styling.Declarations{styling.Decl("background-color", "#6264a7")}},
	{When: styling.Props{"state": "warning"}, Styles: styling.Declarations{styling.Decl("background-color", "#ffaa44")}},
	{When: styling.Props{"state": "error"}, Styles: styling.Declarations{styling.Decl("background-color", "#c4314b")}},
}, sized(map[Size]float64{
	SizeSmallest: 8, SizeSmaller: 8, SizeSmall: 8, SizeMedium: 10, SizeLarge: 12, SizeLarger: 14, SizeLargest: 16,
}, func(v float64) styling.Declarations {
	return styling.Declarations{styling.Decl("width", pxToRem(v)), styling.Decl("height", pxToRem(v))}
})...)...)

var statusIconStyles = styling.MakeStyles(
	styling.VariantRule{Styles: styling.Declarations{
		styling.Decl("display", "inline-flex"),
		styling.Decl("color", "#ffffff"),
	}},
	styling.VariantRule{When: styling.Props{"state": "success"}, Styles: styling.Declarations{styling.Decl("color", "#237b4b")}},
	styling.VariantRule{When: styling.Props{"state": "info"}, Styles: styling.Declarations{styling.Decl("color", "#484644")}},
	styling.VariantRule{When: styling.Props{"state": "warning"}, Styles: styling.Declarations{styling.Decl("color", "#835b00")}},
	styling.VariantRule{When: styling.Props{"state": "error"}, Styles: styling.Declarations{styling.Decl("color", "#a4373a")}},
)

// StatusProps configures a Status
type StatusProps struct {
	State StatusState
	Size  Size

	// Icon is optional glyph text rendered inside the status
	Icon string

	// Class is appended to the root class names
	Class string
}

func (p *StatusProps) applyDefaults() {
	if p.State == "" {
		p.State = StatusUnknown
	}
	if p.Size == "" {
		p.Size = SizeMedium
	}
}

// Status renders a small state indicator
func Status(ctx Context, p StatusProps) (*vdom.VNode, error) {
	r := &resolver{ctx: ctx}
	return r.status(p, ""), r.err
}

func (r *resolver) status(p StatusProps, extraClass string) *vdom.VNode {
	p.applyDefaults()
	props := styling.Props{"state": string(p.State), "size": string(p.Size)}

	root := r.rootProps(r.classes(statusRootStyles, props, StatusClassName, extraClass, p.Class))
	root["role"] = "status"
	root["title"] = string(p.State)

	var icon *vdom.VNode
	if p.Icon != "" {
		icon = vdom.NewElement("span", vdom.Props{
			"class":       r.classes(statusIconStyles, props),
			"aria-hidden": "true",
		}, vdom.NewText(p.Icon))
	}

	return vdom.NewElement("span", root, icon)
}
