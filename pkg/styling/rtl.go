package styling

import "strings"

// boxShorthands take up to four values ordered top, right, bottom, left
var boxShorthands = map[string]bool{
	"margin":       true,
	"padding":      true,
	"border-width": true,
	"border-style": true,
	"border-color": true,
	"inset":        true,
}

// directionalValues are properties whose keyword values name a side
var directionalValues = map[string]bool{
	"text-align": true,
	"float":      true,
	"clear":      true,
}

// FlipDeclaration mirrors a declaration for right-to-left layouts. It
// returns the input unchanged when nothing is directional.
func FlipDeclaration(property, value string) (string, string) {
	prop := flipProperty(property)

	switch {
	case directionalValues[prop]:
		return prop, swapSide(value)
	case boxShorthands[prop]:
		fields := strings.Fields(value)
		if len(fields) == 4 {
			fields[1], fields[3] = fields[3], fields[1]
			return prop, strings.Join(fields, " ")
		}
	case prop == "border-radius":
		fields := strings.Fields(value)
		if len(fields) == 4 && !strings.Contains(value, "/") {
			return prop, strings.Join([]string{fields[1], fields[0], fields[3], fields[2]}, " ")
		}
	}
	return prop, value
}

func flipProperty(property string) string {
	parts := strings.Split(property, "-")
	for i, p := range parts {
		parts[i] = swapSide(p)
	}
	return strings.Join(parts, "-")
}

func swapSide(s string) string {
	switch s {
	case "left":
		return "right"
	case "right":
		return "left"
	}
	return s
}
