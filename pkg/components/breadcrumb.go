package components

import (
	"github.com/recera/rulesheet/pkg/styling"
	"github.com/recera/rulesheet/pkg/vdom"
)

// BreadcrumbItemClassName is the static class on every breadcrumb item
const BreadcrumbItemClassName = "ui-breadcrumb-item"

var breadcrumbItemStyles = styling.MakeStyles(
	styling.VariantRule{Styles: styling.Declarations{
		styling.Decl("display", "flex"),
		styling.Decl("align-items", "center"),
		styling.Decl("color", "#616161"),
		styling.Decl("box-sizing", "border-box"),
		styling.Decl("text-wrap", "nowrap"),
	}},
	styling.VariantRule{When: styling.Props{"size": "small"}, Styles: styling.Declarations{styling.Decl("font-size", pxToRem(12))}},
	styling.VariantRule{When: styling.Props{"size": "medium"}, Styles: styling.Declarations{styling.Decl("font-size", pxToRem(14))}},
	styling.VariantRule{When: styling.Props{"size": "large"}, Styles: styling.Declarations{styling.Decl("font-size", pxToRem(16))}},
	styling.VariantRule{When: styling.Props{"current": "true"}, Styles: styling.Declarations{
		styling.Decl("color", "#242424"),
		styling.Decl("font-weight", "600"),
	}},
	styling.VariantRule{When: styling.Props{"disabled": "true"}, Styles: styling.Declarations{
		styling.Decl("color", "#bdbdbd"),
		styling.Decl("cursor", "not-allowed"),
	}},
)

var breadcrumbIconStyles = styling.MakeStyles(
	styling.VariantRule{Styles: styling.Declarations{styling.Decl("display", "flex")}},
	styling.VariantRule{When: styling.Props{"iconPosition": "before", "iconOnly": "false"}, Styles: styling.Declarations{styling.Decl("margin-right", pxToRem(4))}},
	styling.VariantRule{When: styling.Props{"iconPosition": "after", "iconOnly": "false"}, Styles: styling.Declarations{styling.Decl("margin-left", pxToRem(4))}},
)

// BreadcrumbItemProps configures a BreadcrumbItem
type BreadcrumbItemProps struct {
	Content  string
	Current  bool
	Disabled bool
	Size     Size

	// Icon is glyph text; IconPosition is "before" (default) or "after"
	Icon         string
	IconPosition string

	Class string
}

// BreadcrumbItem renders one <li> of a breadcrumb trail
func BreadcrumbItem(ctx Context, p BreadcrumbItemProps) (*vdom.VNode, error) {
	if p.Size == "" {
		p.Size = SizeMedium
	}
	if p.IconPosition == "" {
		p.IconPosition = "before"
	}
	iconOnly := p.Icon != "" && p.Content == ""

	r := &resolver{ctx: ctx}
	root := r.rootProps(r.classes(breadcrumbItemStyles, styling.Props{
		"size":    string(p.Size),
		"current":  boolProp(p.Current),
		"disabled": boolProp(p.Disabled),
	}, BreadcrumbItemClassName, p.Class))
	if p.Current {
		root["aria-current"] = "page"
	}
	if p.Disabled {
		root["aria-disabled"] = "true"
	}

	var icon *vdom.VNode
	if p.Icon != "" {
		icon = vdom.NewElement("span", vdom.Props{
			"class": r.classes(breadcrumbIconStyles, styling.Props{
				"iconPosition": p.IconPosition,
				"iconOnly":     boolProp(iconOnly),
			}, BreadcrumbItemClassName+"__icon"),
		}, vdom.NewText(p.Icon))
	}

	var content *vdom.VNode
	if p.Content != "" {
		content = vdom.NewText(p.Content)
	}

	if p.IconPosition == "after" {
		return vdom.NewElement("li", root, content, icon), r.err
	}
	return vdom.NewElement("li", root, icon, content), r.err
}
