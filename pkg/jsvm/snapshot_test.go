package jsvm

import (
	"fmt"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/require"
)

// TestValueStringSnapshots snapshots spec.md §6's "value string form" across
// each runtime value kind, the way the teacher's own fixture_test.go
// snapshots DWScript program output with go-snaps.
func TestValueStringSnapshots(t *testing.T) {
	scripts := []struct {
		name   string
		source string
	}{
		{"number", "42"},
		{"nan", "NaN"},
		{"infinity", "Infinity"},
		{"string", `"foo"`},
		{"boolean", "true"},
		{"undefined", "undefined"},
		{"null", "null"},
		{"array", "[1, 2, 3]"},
		{"object", "({a: 1, b: 2})"},
		{"bigint", "10n"},
	}

	for _, sc := range scripts {
		t.Run(sc.name, func(t *testing.T) {
			eng, err := New()
			require.NoError(t, err)

			v, err := eng.EvaluateScript(sc.source, "")
			require.NoError(t, err)

			snaps.MatchSnapshot(t, fmt.Sprintf("%s_value", sc.name), eng.String(v))
		})
	}
}

// TestRuntimeErrorFormatSnapshots snapshots the "<Kind>: <message>" error
// string form spec.md §7 requires, for the scenarios spec.md §8's table
// names explicitly.
func TestRuntimeErrorFormatSnapshots(t *testing.T) {
	scripts := []struct {
		name   string
		source string
	}{
		{"call_non_function", `try { let a = 1; a(); } catch (e) { e.toString() }`},
		{"reference_error", `try { nonExistent; } catch (e) { e.toString() }`},
		{"bigint_number_mix", `try { 1n + 1; } catch (e) { e.toString() }`},
		{"readonly_accessor_write", `
			class C { get r() { return 1; } }
			let c = new C();
			try { c.r = 2; } catch (e) { e.toString() }
		`},
	}

	for _, sc := range scripts {
		t.Run(sc.name, func(t *testing.T) {
			eng, err := New()
			require.NoError(t, err)

			v, err := eng.EvaluateScript(sc.source, "")
			require.NoError(t, err)

			snaps.MatchSnapshot(t, fmt.Sprintf("%s_error", sc.name), eng.String(v))
		})
	}
}
