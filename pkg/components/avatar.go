package components

import (
	"regexp"
	"strings"

	"github.com/recera/rulesheet/pkg/styling"
	"github.com/recera/rulesheet/pkg/vdom"
)

// AvatarClassName is the static class on every avatar root
const AvatarClassName = "ui-avatar"

var avatarSizes = map[Size]float64{
	SizeSmallest: 20, SizeSmaller: 24, SizeSmall: 28, SizeMedium: 32, SizeLarge: 44, SizeLarger: 64, SizeLargest: 96,
}

func square(v float64) styling.Declarations {
	return styling.Declarations{styling.Decl("height", pxToRem(v)), styling.Decl("width", pxToRem(v))}
}

var squareCorners = styling.VariantRule{
	When:   styling.Props{"square": "true"},
	Styles: styling.Declarations{styling.Decl("border-radius", pxToRem(3))},
}

var avatarRootStyles = styling.MakeStyles(append([]styling.VariantRule{
	{Styles: styling.Declarations{
		styling.Decl("background-color", "inherit"),
		styling.Decl("display", "inline-block"),
		styling.Decl("position", "relative"),
		styling.Decl("vertical-align", "middle"),
	}},
}, sized(avatarSizes, square)...)...)

var avatarIconStyles = styling.MakeStyles(append([]styling.VariantRule{
	{Styles: styling.Declarations{
		styling.Decl("align-items", "center"),
		styling.Decl("border-radius", "50%"),
		styling.Decl("display", "inline-flex"),
		styling.Decl("justify-content", "center"),
		styling.Decl("color", "#ffffff"),
		styling.Decl("background", "#6264a7"),
		{Property: "margin", Value: "0 auto", Pseudo: " > :first-child"},
	}},
	squareCorners,
}, sized(avatarSizes, square)...)...)

var avatarImageStyles = styling.MakeStyles(
	styling.VariantRule{Styles: styling.Declarations{
		styling.Decl("height", "100%"),
		styling.Decl("object-fit", "cover"),
		styling.Decl("vertical-align", "top"),
		styling.Decl("width", "100%"),
		styling.Decl("border-radius", "50%"),
	}},
	squareCorners,
)

var avatarLabelStyles = styling.MakeStyles(append([]styling.VariantRule{
	{Styles: styling.Declarations{
		styling.Decl("display", "inline-block"),
		styling.Decl("text-align", "center"),
		styling.Decl("padding", "0"),
		styling.Decl("vertical-align", "top"),
		styling.Decl("border-radius", "9999px"),
	}},
	squareCorners,
}, sized(avatarSizes, func(v float64) styling.Declarations {
	return styling.Declarations{
		styling.Decl("font-size", pxToRem(v/2.333)),
		styling.Decl("line-height", pxToRem(v)),
		styling.Decl("height", pxToRem(v)),
		styling.Decl("width", pxToRem(v)),
	}
})...)...)

var avatarStatusStyles = styling.MakeStyles(styling.VariantRule{Styles: styling.Declarations{
	styling.Decl("position", "absolute"),
	styling.Decl("bottom", "0"),
	styling.Decl("right", "0"),
	styling.Decl("box-shadow", "0 0 0 2px #ffffff"),
}})

// AvatarProps configures an Avatar
type AvatarProps struct {
	// Name is used for the title and for initials when there is no glyph
	Name string

	// Image is an image URL; it wins over Icon
	Image string

	// Icon is glyph text shown when there is no image
	Icon string

	Square bool
	Size   Size

	// Status renders a status badge when set
	Status *StatusProps

	// Initials overrides GetInitials
	Initials func(name string) string

	Class string
}

var (
	spaceRun    = regexp.MustCompile(`\s+`)
	parenGroup  = regexp.MustCompile(`\s*\(.*?\)\s*`)
	braceGroup  = regexp.MustCompile(`\s*\{.*?\}\s*`)
	squareGroup = regexp.MustCompile(`\s*\[.*?\]\s*`)
)

// GetInitials returns up to two initials of name, ignoring bracketed parts
func GetInitials(name string) string {
	if name == "" {
		return ""
	}

	reduced := spaceRun.ReplaceAllString(name, " ")
	reduced = parenGroup.ReplaceAllString(reduced, " ")
	reduced = braceGroup.ReplaceAllString(reduced, " ")
	reduced = squareGroup.ReplaceAllString(reduced, " ")

	var initials []rune
	for _, word := range strings.Split(reduced, " ") {
		if word == "" {
			continue
		}
		initials = append(initials, []rune(word)[0])
	}

	if len(initials) > 2 {
		return string([]rune{initials[0], initials[len(initials)-1]})
	}
	return string(initials)
}

// Avatar renders an image, icon or initials with an optional status badge
func Avatar(ctx Context, p AvatarProps) (*vdom.VNode, error) {
	if p.Size == "" {
		p.Size = SizeMedium
	}
	if p.Initials == nil {
		p.Initials = GetInitials
	}

	r := &resolver{ctx: ctx}
	props := styling.Props{"size": string(p.Size), "square": boolProp(p.Square)}

	root := r.rootProps(r.classes(avatarRootStyles, props, AvatarClassName, p.Class))

	var glyph *vdom.VNode
	switch {
	case p.Image != "":
		glyph = vdom.NewElement("img", vdom.Props{
			"class": r.classes(avatarImageStyles, props, AvatarClassName+"__image"),
			"src":   p.Image,
			"alt":   p.Name,
			"title": p.Name,
		})
	case p.Icon != "":
		glyph = vdom.NewElement("span", vdom.Props{
			"class": r.classes(avatarIconStyles, props, AvatarClassName+"__icon"),
			"title": p.Name,
		}, vdom.NewElement("span", nil, vdom.NewText(p.Icon)))
	default:
		glyph = vdom.NewElement("span", vdom.Props{
			"class": r.classes(avatarLabelStyles, props, AvatarClassName+"__label"),
			"title": p.Name,
		}, vdom.NewText(p.Initials(p.Name)))
	}

	var status *vdom.VNode
	if p.Status != nil {
		sp := *p.Status
		if sp.Size == "" {
			sp.Size = p.Size
		}
		status = r.status(sp, r.classes(avatarStatusStyles, nil))
	}

	return vdom.NewElement("div", root, glyph, status), r.err
}
