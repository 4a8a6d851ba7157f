package styling

import (
	"fmt"
	"testing"
)

func benchDefinitions(n int) *Definitions {
	defs := &Definitions{}
	for i := 0; i < n; i++ {
		cls := fmt.Sprintf("c%d", i)
		defs.Set(fmt.Sprintf("slot%d", i), Tuple(cls, "."+cls+"{margin-left:1px}"))
	}
	return defs
}

// BenchmarkInsertStyles_Hit measures the steady state where every class
// is already cached
func BenchmarkInsertStyles_Hit(b *testing.B) {
	defs := benchDefinitions(20)
	cache := NewRuleCache()
	sheet := NewSheet("bench")
	if _, err := InsertStyles(defs, cache, false, sheet); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		InsertStyles(defs, cache, false, sheet)
	}
}

func BenchmarkInsertStyles_Miss(b *testing.B) {
	defs := benchDefinitions(20)

	for i := 0; i < b.N; i++ {
		InsertStyles(defs, NewRuleCache(), false, NewSheet("bench"))
	}
}

func BenchmarkMakeStyles(b *testing.B) {
	hook := MakeStyles(
		VariantRule{Styles: Declarations{Decl("display", "inline-flex"), Decl("margin-left", "4px")}},
		VariantRule{When: Props{"size": "large"}, Styles: Declarations{Decl("width", "48px"), Decl("height", "48px")}},
	)
	props := Props{"size": "large"}

	for i := 0; i < b.N; i++ {
		hook(props)
	}
}
