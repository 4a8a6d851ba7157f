package components

import (
	"github.com/recera/rulesheet/pkg/styling"
	"github.com/recera/rulesheet/pkg/vdom"
)

// LabelClassName is the static class on every label root
const LabelClassName = "ui-label"

// Position places an icon or image before or after the content
type Position string

const (
	PositionStart Position = "start"
	PositionEnd   Position = "end"
)

var labelRootStyles = styling.MakeStyles(
	styling.VariantRule{Styles: styling.Declarations{
		styling.Decl("align-items", "center"),
		styling.Decl("display", "inline-flex"),
		styling.Decl("overflow", "hidden"),
		styling.Decl("height", pxToRem(16)),
		styling.Decl("line-height", pxToRem(16)),
		styling.Decl("background-color", "rgb(232, 232, 232)"),
		styling.Decl("color", "rgba(0, 0, 0, 0.6)"),
		styling.Decl("font-size", pxToRem(14)),
		styling.Decl("border-radius", pxToRem(3)),
		styling.Decl("padding", "0 "+pxToRem(4)+" 0 "+pxToRem(4)),
	}},
	styling.VariantRule{When: styling.Props{"hasImage": "true"}, Styles: styling.Declarations{styling.Decl("padding-right", "0px")}},
	styling.VariantRule{When: styling.Props{"hasImage": "true", "imagePosition": "start"}, Styles: styling.Declarations{styling.Decl("padding-left", "0px")}},
	styling.VariantRule{When: styling.Props{"circular": "true"}, Styles: styling.Declarations{styling.Decl("border-radius", pxToRem(9999))}},
)

var labelContentStyles = styling.MakeStyles(
	styling.VariantRule{When: styling.Props{"hasStart": "true"}, Styles: styling.Declarations{styling.Decl("margin-left", pxToRem(3))}},
	styling.VariantRule{When: styling.Props{"hasEnd": "true"}, Styles: styling.Declarations{styling.Decl("margin-right", pxToRem(3))}},
)

var labelIconStyles = styling.MakeStyles(styling.VariantRule{Styles: styling.Declarations{
	styling.Decl("align-items", "center"),
	styling.Decl("display", "inline-flex"),
	styling.Decl("justify-content", "center"),
	styling.Decl("width", pxToRem(16)),
	styling.Decl("height", pxToRem(16)),
}})

var labelImageStyles = styling.MakeStyles(styling.VariantRule{Styles: styling.Declarations{
	styling.Decl("height", pxToRem(20)),
	styling.Decl("width", pxToRem(20)),
}})

// LabelProps configures a Label
type LabelProps struct {
	Content string

	Circular bool

	// Icon is glyph text; IconPosition defaults to end
	Icon         string
	IconPosition Position

	// Image is an image URL; ImagePosition defaults to start
	Image         string
	ImagePosition Position

	Title string
	Class string
}

// Label renders short text with an optional icon and image
func Label(ctx Context, p LabelProps) (*vdom.VNode, error) {
	if p.IconPosition == "" {
		p.IconPosition = PositionEnd
	}
	if p.ImagePosition == "" {
		p.ImagePosition = PositionStart
	}

	hasImage := p.Image != ""
	hasIcon := p.Icon != ""

	r := &resolver{ctx: ctx}
	root := r.rootProps(r.classes(labelRootStyles, styling.Props{
		"hasImage":      boolProp(hasImage),
		"imagePosition": string(p.ImagePosition),
		"circular":      boolProp(p.Circular),
	}, LabelClassName, p.Class))
	if p.Title != "" {
		root["title"] = p.Title
	}

	var image, icon *vdom.VNode
	if hasImage {
		image = vdom.NewElement("img", vdom.Props{
			"class": r.classes(labelImageStyles, nil, LabelClassName+"__image"),
			"src":   p.Image,
			"alt":   "",
		})
	}
	if hasIcon {
		icon = vdom.NewElement("span", vdom.Props{
			"class": r.classes(labelIconStyles, nil, LabelClassName+"__icon"),
		}, vdom.NewText(p.Icon))
	}

	content := vdom.NewElement("span", vdom.Props{
		"class": r.classes(labelContentStyles, styling.Props{
			"hasStart": boolProp((hasImage && p.ImagePosition == PositionStart) || (hasIcon && p.IconPosition == PositionStart)),
			"hasEnd":   boolProp((hasImage && p.ImagePosition == PositionEnd) || (hasIcon && p.IconPosition == PositionEnd)),
		}, LabelClassName+"__content"),
	}, vdom.NewText(p.Content))

	var start, end []*vdom.VNode
	place := func(n *vdom.VNode, pos Position) {
		if n == nil {
			return
		}
		if pos == PositionStart {
			start = append(start, n)
		} else {
			end = append(end, n)
		}
	}
	place(image, p.ImagePosition)
	place(icon, p.IconPosition)

	kids := append(append(start, content), end...)
	return vdom.NewElement("span", root, kids...), r.err
}
