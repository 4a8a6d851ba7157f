package components

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/recera/rulesheet/pkg/vdom"
)

// ErrUnknownComponent is returned by ByName for names it does not know
var ErrUnknownComponent = errors.New("unknown component")

var byName = map[string]func(Context, url.Values) (*vdom.VNode, error){
	"avatar": func(ctx Context, q url.Values) (*vdom.VNode, error) {
		p := AvatarProps{
			Name:   q.Get("name"),
			Image:  q.Get("image"),
			Icon:   q.Get("icon"),
			Square: flag(q, "square"),
			Size:   Size(q.Get("size")),
			Class:  q.Get("class"),
		}
		if state := q.Get("status"); state != "" {
			p.Status = &StatusProps{State: StatusState(state)}
		}
		return Avatar(ctx, p)
	},
	"label": func(ctx Context, q url.Values) (*vdom.VNode, error) {
		return Label(ctx, LabelProps{
			Content:       q.Get("content"),
			Circular:      flag(q, "circular"),
			Icon:          q.Get("icon"),
			IconPosition:  Position(q.Get("iconPosition")),
			Image:         q.Get("image"),
			ImagePosition: Position(q.Get("imagePosition")),
			Title:         q.Get("title"),
			Class:         q.Get("class"),
		})
	},
	"status": func(ctx Context, q url.Values) (*vdom.VNode, error) {
		return Status(ctx, StatusProps{
			State: StatusState(q.Get("state")),
			Size:  Size(q.Get("size")),
			Icon:  q.Get("icon"),
			Class: q.Get("class"),
		})
	},
	"breadcrumb-item": func(ctx Context, q url.Values) (*vdom.VNode, error) {
		return BreadcrumbItem(ctx, BreadcrumbItemProps{
			Content:      q.Get("content"),
			Current:      flag(q, "current"),
			Disabled:     flag(q, "disabled"),
			Size:         Size(q.Get("size")),
			Icon:         q.Get("icon"),
			IconPosition: q.Get("iconPosition"),
			Class:        q.Get("class"),
		})
	},
}

// ByName renders the named component from string parameters
func ByName(ctx Context, name string, params url.Values) (*vdom.VNode, error) {
	fn, ok := byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownComponent, name)
	}
	return fn(ctx, params)
}

// Names lists the components ByName accepts
func Names() []string {
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func flag(q url.Values, key string) bool {
	b, _ := strconv.ParseBool(q.Get(key))
	return b
}
