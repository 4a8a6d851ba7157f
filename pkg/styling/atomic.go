package styling

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Declaration is a single CSS declaration, optionally scoped to a pseudo
// selector such as ":hover"
type Declaration struct {
	Property string
	Value    string
	Pseudo   string
}

// Declarations is an ordered declaration list
type Declarations []Declaration

// Decl is shorthand for a Declaration without a pseudo selector
func Decl(property, value string) Declaration {
	return Declaration{Property: property, Value: value}
}

// key identifies the slot a declaration fills
func (d Declaration) key() string {
	return d.Pseudo + d.Property
}

// Merge returns d overridden by other. A property keeps the position of
// its first appearance and the value of its last.
func (d Declarations) Merge(other Declarations) Declarations {
	out := make(Declarations, 0, len(d)+len(other))
	pos := make(map[string]int, len(d)+len(other))
	for _, decl := range append(append(Declarations{}, d...), other...) {
		if i, ok := pos[decl.key()]; ok {
			out[i] = decl
			continue
		}
		pos[decl.key()] = len(out)
		out = append(out, decl)
	}
	return out
}

// AtomicClass returns the content-addressed class name for a declaration
func AtomicClass(pseudo, property, value string) string {
	h := sha256.New()
	h.Write([]byte(pseudo))
	h.Write([]byte{0})
	h.Write([]byte(property))
	h.Write([]byte{':'})
	h.Write([]byte(value))
	return "f" + hex.EncodeToString(h.Sum(nil))[:7]
}

func atomicRule(className, pseudo, property, value string) string {
	var b strings.Builder
	b.WriteString(".")
	b.WriteString(className)
	b.WriteString(pseudo)
	b.WriteString("{")
	b.WriteString(property)
	b.WriteString(":")
	b.WriteString(value)
	b.WriteString(";}")
	return b.String()
}

// Atomize turns declarations into one definition per declaration, keyed
// by pseudo selector and property. The RTL pair is only filled when
// mirroring changes the declaration.
func Atomize(decls Declarations) *Definitions {
	defs := &Definitions{}
	for _, d := range decls {
		className := AtomicClass(d.Pseudo, d.Property, d.Value)
		def := Definition{
			ClassName: className,
			CSS:       atomicRule(className, d.Pseudo, d.Property, d.Value),
		}

		if prop, value := FlipDeclaration(d.Property, d.Value); prop != d.Property || value != d.Value {
			def.RTLClassName = AtomicClass(d.Pseudo, prop, value)
			def.RTLCSS = atomicRule(def.RTLClassName, d.Pseudo, prop, value)
		}

		defs.Set(d.key(), def)
	}
	return defs
}

// Props are the values variant rules are matched against
type Props map[string]string

// VariantRule applies Styles when every key in When equals the prop value.
// An empty When always applies.
type VariantRule struct {
	When   Props
	Styles Declarations
}

func (v VariantRule) matches(props Props) bool {
	for k, want := range v.When {
		if props[k] != want {
			return false
		}
	}
	return true
}

// StyleHook resolves props to the definitions of one style concern
type StyleHook func(props Props) *Definitions

// MakeStyles merges the matching variant rules, in order, and atomizes
// the result
func MakeStyles(rules ...VariantRule) StyleHook {
	return func(props Props) *Definitions {
		var merged Declarations
		for _, r := range rules {
			if r.matches(props) {
				merged = merged.Merge(r.Styles)
			}
		}
		return Atomize(merged)
	}
}

// Apply resolves props and inserts the result into reg
func (h StyleHook) Apply(reg *Registry, props Props, rtl bool, target *Sheet) (string, error) {
	return reg.InsertStyles(h(props), rtl, target)
}
