package components

import (
	"strconv"
	"strings"

	"github.com/recera/rulesheet/pkg/styling"
	"github.com/recera/rulesheet/pkg/vdom"
)

// Size is the shared size scale of the components
type Size string

const (
	SizeSmallest Size = "smallest"
	SizeSmaller  Size = "smaller"
	SizeSmall    Size = "small"
	SizeMedium   Size = "medium"
	SizeLarge    Size = "large"
	SizeLarger   Size = "larger"
	SizeLargest  Size = "largest"
)

// Sizes lists the size scale from smallest to largest
var Sizes = []Size{SizeSmallest, SizeSmaller, SizeSmall, SizeMedium, SizeLarge, SizeLarger, SizeLargest}

// Context carries the style registry and direction a component renders with
type Context struct {
	Registry *styling.Registry

	// RTL selects right-to-left rule variants and sets dir="rtl" on roots
	RTL bool

	// Sheet is the target sheet; nil uses the registry default.
	// A nil Registry uses styling.Default().
	Sheet *styling.Sheet
}

// resolver inserts style concerns for one render and keeps the first error
type resolver struct {
	ctx Context
	err error
}

func (r *resolver) classes(hook styling.StyleHook, props styling.Props, base ...string) string {
	if r.err != nil {
		return vdom.Class(base...)
	}
	reg := r.ctx.Registry
	if reg == nil {
		reg = styling.Default()
	}
	classes, err := hook.Apply(reg, props, r.ctx.RTL, r.ctx.Sheet)
	if err != nil {
		r.err = err
	}
	return vdom.Class(append(base, classes)...)
}

func (r *resolver) rootProps(class string) vdom.Props {
	props := vdom.Props{"class": class}
	if r.ctx.RTL {
		props["dir"] = "rtl"
	}
	return props
}

// pxToRem converts pixels to rem with a 16px base
func pxToRem(px float64) string {
	s := strconv.FormatFloat(px/16, 'f', 4, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "" || s == "-" {
		s = "0"
	}
	return s + "rem"
}

func boolProp(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func sized(px map[Size]float64, decls func(v float64) styling.Declarations) []styling.VariantRule {
	rules := make([]styling.VariantRule, 0, len(px))
	for _, s := range Sizes {
		v, ok := px[s]
		if !ok {
			continue
		}
		rules = append(rules, styling.VariantRule{
			When:   styling.Props{"size": string(s)},
			Styles: decls(v),
		})
	}
	return rules
}
