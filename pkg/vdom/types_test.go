package vdom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClass(t *testing.T) {
	assert.Equal(t, "ui-status a b", Class("ui-status", " a b", ""))
	assert.Equal(t, "", Class(" ", ""))
}

func TestNewElementSkipsNil(t *testing.T) {
	n := NewElement("span", nil, NewText("a"), nil, NewText("b"))
	assert.Len(t, n.Kids, 2)
}

func TestFind(t *testing.T) {
	tree := NewElement("div", nil,
		NewFragment(NewElement("img", Props{"src": "x.png"})),
		NewElement("span", nil),
	)

	img := tree.Find("img")
	if assert.NotNil(t, img) {
		src, ok := img.Attr("src")
		assert.True(t, ok)
		assert.Equal(t, "x.png", src)
	}
	assert.Nil(t, tree.Find("table"))
}
