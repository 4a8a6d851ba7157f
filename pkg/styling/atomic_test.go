package styling

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlipDeclaration(t *testing.T) {
	tests := []struct {
		prop, value         string
		wantProp, wantValue string
	}{
		{"margin-left", "4px", "margin-right", "4px"},
		{"border-top-right-radius", "2px", "border-top-left-radius", "2px"},
		{"left", "0", "right", "0"},
		{"text-align", "left", "text-align", "right"},
		{"float", "right", "float", "left"},
		{"padding", "1px 2px 3px 4px", "padding", "1px 4px 3px 2px"},
		{"padding", "1px 2px", "padding", "1px 2px"},
		{"border-radius", "1px 2px 3px 4px", "border-radius", "2px 1px 4px 3px"},
		{"color", "red", "color", "red"},
	}

	for _, tt := range tests {
		t.Run(tt.prop+":"+tt.value, func(t *testing.T) {
			prop, value := FlipDeclaration(tt.prop, tt.value)
			assert.Equal(t, tt.wantProp, prop)
			assert.Equal(t, tt.wantValue, value)
		})
	}
}

func TestAtomize(t *testing.T) {
	defs := Atomize(Declarations{
		Decl("color", "red"),
		Decl("margin-left", "4px"),
		{Property: "color", Value: "blue", Pseudo: ":hover"},
	})

	slots := defs.Slots()
	require.Len(t, slots, 3)
	assert.Equal(t, "color", slots[0].Key)
	assert.Equal(t, "margin-left", slots[1].Key)
	assert.Equal(t, ":hovercolor", slots[2].Key)

	color := slots[0].Definition
	assert.True(t, strings.HasPrefix(color.ClassName, "f"))
	assert.Len(t, color.ClassName, 8)
	assert.Equal(t, "."+color.ClassName+"{color:red;}", color.CSS)
	assert.Empty(t, color.RTLClassName)

	margin := slots[1].Definition
	assert.Equal(t, AtomicClass("", "margin-right", "4px"), margin.RTLClassName)
	assert.Equal(t, "."+margin.RTLClassName+"{margin-right:4px;}", margin.RTLCSS)

	hover := slots[2].Definition
	assert.Equal(t, "."+hover.ClassName+":hover{color:blue;}", hover.CSS)
	assert.NotEqual(t, AtomicClass("", "color", "blue"), hover.ClassName)
}

func TestAtomicClassIsContentAddressed(t *testing.T) {
	assert.Equal(t, AtomicClass("", "width", "8px"), AtomicClass("", "width", "8px"))
	assert.NotEqual(t, AtomicClass("", "width", "8px"), AtomicClass("", "width", "10px"))
}

func TestDeclarationsMerge(t *testing.T) {
	base := Declarations{Decl("width", "8px"), Decl("height", "8px")}
	merged := base.Merge(Declarations{Decl("color", "red"), Decl("width", "10px")})

	assert.Equal(t, Declarations{
		Decl("width", "10px"),
		Decl("height", "8px"),
		Decl("color", "red"),
	}, merged)
	assert.Equal(t, "8px", base[0].Value)
}

func TestMakeStyles(t *testing.T) {
	hook := MakeStyles(
		VariantRule{Styles: Declarations{Decl("display", "inline-flex"), Decl("width", "10px")}},
		VariantRule{When: Props{"size": "small"}, Styles: Declarations{Decl("width", "8px")}},
		VariantRule{When: Props{"state": "error", "size": "small"}, Styles: Declarations{Decl("color", "red")}},
	)

	defs := hook(Props{"size": "small", "state": "error"})
	require.Equal(t, 3, defs.Len())
	width, ok := defs.Get("width")
	require.True(t, ok)
	assert.Equal(t, AtomicClass("", "width", "8px"), width.ClassName)

	defs = hook(Props{"size": "large"})
	assert.Equal(t, 2, defs.Len())
	_, ok = defs.Get("color")
	assert.False(t, ok)
}

func TestStyleHookApply(t *testing.T) {
	reg := NewRegistry()
	hook := MakeStyles(VariantRule{Styles: Declarations{Decl("padding-left", "2px")}})

	ltr, err := hook.Apply(reg, nil, false, nil)
	require.NoError(t, err)
	rtl, err := hook.Apply(reg, nil, true, nil)
	require.NoError(t, err)

	assert.Equal(t, " "+AtomicClass("", "padding-left", "2px"), ltr)
	assert.Equal(t, " "+AtomicClass("", "padding-right", "2px"), rtl)
	assert.Equal(t, 2, reg.DefaultSheet().Len())
}
