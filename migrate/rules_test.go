package migrate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verilab/cocomig/types"
)

func migrateText(t *testing.T, src string) *Result {
	t.Helper()
	res, err := Run([]byte(src), Catalogue(DefaultRules()))
	require.NoError(t, err)
	return res
}

func TestCatalogueScenarios(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		out       string
		wantDiags []string // expected pass names, in order
	}{
		{
			name: "start_soon_unwrap",
			in:   "cocotb.start_soon(clock.start())\n",
			out:  "clock.start()\n",
		},
		{
			name: "clock_units_rename",
			in:   `c = Clock(sig, 10, units="ns")` + "\n",
			out:  `c = Clock(sig, 10, unit="ns")` + "\n",
		},
		{
			name:      "start_cycles_removed",
			in:        "clk.start(cycles=4)\n",
			out:       "clk.start()\n",
			wantDiags: []string{"keyword-removal"},
		},
		{
			name:      "cycles_removed_before_positional_stays",
			in:        "clk.start(4, cycles=2)\n",
			out:       "clk.start(4)\n",
			wantDiags: []string{"keyword-removal"},
		},
		{
			name:      "sole_cycles_with_trailing_comma",
			in:        "clk.start(cycles=4,)\n",
			out:       "clk.start()\n",
			wantDiags: []string{"keyword-removal"},
		},
		{
			name:      "last_cycles_with_trailing_comma",
			in:        "clk.start(4, cycles=2,)\n",
			out:       "clk.start(4,)\n",
			wantDiags: []string{"keyword-removal"},
		},
		{
			name:      "cycles_removed_first_of_several",
			in:        "clk.start(cycles=2, other=1)\n",
			out:       "clk.start(other=1)\n",
			wantDiags: []string{"keyword-removal"},
		},
		{
			name: "raise_return_value",
			in:   "async def t(dut):\n    raise ReturnValue(42)\n",
			out:  "async def t(dut):\n    return 42\n",
		},
		{
			name: "raise_return_bare",
			in:   "async def t(dut):\n    raise ReturnValue()\n",
			out:  "async def t(dut):\n    return\n",
		},
		{
			name: "fork_rename",
			in:   "fork(coro)\n",
			out:  "cocotb.start_soon(coro)\n",
		},
		{
			name: "fork_then_unwrap",
			in:   "fork(clock.start())\n",
			out:  "clock.start()\n",
		},
		{
			name: "trigger_qualified",
			in:   "RisingEdge(clk)\n",
			out:  "cocotb.triggers.RisingEdge(clk)\n",
		},
		{
			name: "already_qualified_untouched",
			in:   "cocotb.triggers.RisingEdge(clk)\n",
			out:  "cocotb.triggers.RisingEdge(clk)\n",
		},
		{
			name: "coroutine_marker",
			in: `@cocotb.test()
@cocotb.coroutine
def my_test(dut):
    yield Timer(10)
    raise ReturnValue(1)
`,
			out: `@cocotb.test()
async def my_test(dut):
    await cocotb.triggers.Timer(10)
    return 1
`,
		},
		{
			name: "marker_on_already_async_def",
			in:   "@cocotb.coroutine\nasync def t(dut):\n    pass\n",
			out:  "async def t(dut):\n    pass\n",
		},
		{
			name: "compound_yield_untouched",
			in:   "def g():\n    yield [foo, bar]\n",
			out:  "def g():\n    yield [foo, bar]\n",
		},
		{
			name: "yield_from_untouched",
			in:   "def g():\n    yield from gen\n",
			out:  "def g():\n    yield from gen\n",
		},
		{
			name: "trivia_preserved_around_rewrite",
			in:   "# setup\ncocotb.start_soon(clock.start())  # go\n",
			out:  "# setup\nclock.start()  # go\n",
		},
		{
			name: "unrelated_keyword_untouched",
			in:   "c = Clock(sig, 10, period=5)\n",
			out:  "c = Clock(sig, 10, period=5)\n",
		},
		{
			name:      "frequency_advisory_once",
			in:        "a = clk.frequency\nb = clk2.frequency\n",
			out:       "# WARNING: Clock.frequency was removed in cocotb 2.0 (manual fix required)\na = clk.frequency\nb = clk2.frequency\n",
			wantDiags: []string{"removed-attribute", "removed-attribute"},
		},
		{
			name:      "advisory_goes_below_shebang",
			in:        "#!/usr/bin/env python\nx = c.frequency\n",
			out:       "#!/usr/bin/env python\n# WARNING: Clock.frequency was removed in cocotb 2.0 (manual fix required)\nx = c.frequency\n",
			wantDiags: []string{"removed-attribute"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := migrateText(t, tc.in)
			require.Equal(t, tc.out, string(res.Output))
			require.Equal(t, tc.in != tc.out, res.Changed)

			var passes []string
			for _, d := range res.Diagnostics {
				passes = append(passes, d.Pass)
			}
			require.Equal(t, tc.wantDiags, passes)

			// A second run over the output must be a fixed point.
			again := migrateText(t, string(res.Output))
			require.False(t, again.Changed, "second run must not change the output:\n%s", again.Output)
		})
	}
}

func TestCyclesDiagnosticIsWarning(t *testing.T) {
	res := migrateText(t, "clk.start(cycles=4)\n")

	require.Len(t, res.Diagnostics, 1)
	d := res.Diagnostics[0]
	require.Equal(t, types.SeverityWarning, d.Severity)
	require.Contains(t, d.Message, "cycles=")
	require.Contains(t, d.Message, "dropped")
	require.Equal(t, 1, d.Range.Start.Line)
}

func TestFrequencyDiagnosticPerOccurrence(t *testing.T) {
	res := migrateText(t, "a = clk.frequency\nb = clk.frequency\nc = clk.frequency\n")

	require.Len(t, res.Diagnostics, 3, "one diagnostic per access")
	lines := 0
	for _, b := range res.Output {
		if b == '\n' {
			lines++
		}
	}
	require.Equal(t, 4, lines, "exactly one advisory comment for three accesses")
}

func TestUnwrapThenCyclesRemoval(t *testing.T) {
	// Pass order is a contract: the unwrap runs before keyword removal,
	// so the unwrapped call still loses its dead argument.
	res := migrateText(t, "cocotb.start_soon(clock.start(cycles=3))\n")

	require.Equal(t, "clock.start()\n", string(res.Output))
	require.Len(t, res.Diagnostics, 1)
	require.Equal(t, "keyword-removal", res.Diagnostics[0].Pass)
}

func TestMarkerKeepsOtherDecorators(t *testing.T) {
	res := migrateText(t, "@cocotb.test()\n@cocotb.coroutine\ndef t(dut):\n    pass\n")

	require.Equal(t, "@cocotb.test()\nasync def t(dut):\n    pass\n", string(res.Output))
}

func TestIndentedMarkerRemoval(t *testing.T) {
	in := `class TB:
    @cocotb.coroutine
    def run(self):
        yield Timer(1)
`
	want := `class TB:
    async def run(self):
        await cocotb.triggers.Timer(1)
`
	res := migrateText(t, in)
	require.Equal(t, want, string(res.Output))
}
