package styling

// Definition describes one style slot: the LTR class name and rule text,
// plus optional RTL variants that fall back to the LTR pair when empty
type Definition struct {
	ClassName    string
	CSS          string
	RTLClassName string
	RTLCSS       string
}

// Tuple builds a Definition from the positional form
// [className, css, rtlClassName, rtlCSS]. Missing fields stay empty.
func Tuple(fields ...string) Definition {
	var d Definition
	for i, f := range fields {
		switch i {
		case 0:
			d.ClassName = f
		case 1:
			d.CSS = f
		case 2:
			d.RTLClassName = f
		case 3:
			d.RTLCSS = f
		}
	}
	return d
}

// Class returns the class name for the given direction
func (d Definition) Class(rtl bool) string {
	if rtl && d.RTLClassName != "" {
		return d.RTLClassName
	}
	return d.ClassName
}

// Rule returns the rule text for the given direction
func (d Definition) Rule(rtl bool) string {
	if rtl && d.RTLCSS != "" {
		return d.RTLCSS
	}
	return d.CSS
}

// Fields returns the positional form, trimming empty trailing RTL fields
func (d Definition) Fields() []string {
	switch {
	case d.RTLCSS != "":
		return []string{d.ClassName, d.CSS, d.RTLClassName, d.RTLCSS}
	case d.RTLClassName != "":
		return []string{d.ClassName, d.CSS, d.RTLClassName}
	default:
		return []string{d.ClassName, d.CSS}
	}
}

// Slot pairs a slot key with its definition
type Slot struct {
	Key        string
	Definition Definition
}

// Definitions is an insertion-ordered mapping from slot key to definition.
// The zero value is ready to use.
type Definitions struct {
	slots []Slot
	index map[string]int
}

// NewDefinitions creates a Definitions table from slots in order
func NewDefinitions(slots ...Slot) *Definitions {
	d := &Definitions{}
	for _, s := range slots {
		d.Set(s.Key, s.Definition)
	}
	return d
}

// Set adds or replaces the definition for key. A replaced key keeps its
// original position.
func (d *Definitions) Set(key string, def Definition) *Definitions {
	if d.index == nil {
		d.index = make(map[string]int)
	}
	if i, ok := d.index[key]; ok {
		d.slots[i].Definition = def
		return d
	}
	d.index[key] = len(d.slots)
	d.slots = append(d.slots, Slot{Key: key, Definition: def})
	return d
}

// Get returns the definition for key
func (d *Definitions) Get(key string) (Definition, bool) {
	if d == nil || d.index == nil {
		return Definition{}, false
	}
	i, ok := d.index[key]
	if !ok {
		return Definition{}, false
	}
	return d.slots[i].Definition, true
}

// Len returns the number of slots
func (d *Definitions) Len() int {
	if d == nil {
		return 0
	}
	return len(d.slots)
}

// Slots returns a copy of the slots in insertion order
func (d *Definitions) Slots() []Slot {
	if d == nil {
		return nil
	}
	out := make([]Slot, len(d.slots))
	copy(out, d.slots)
	return out
}

// Merge appends or replaces every slot of other, in other's order
func (d *Definitions) Merge(other *Definitions) *Definitions {
	for _, s := range other.Slots() {
		d.Set(s.Key, s.Definition)
	}
	return d
}
