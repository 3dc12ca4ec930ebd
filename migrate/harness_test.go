package migrate

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
)

// TestDataDriven runs the golden migration cases under testdata. Each
// "migrate" command feeds its input through the full default catalogue
// and renders the rewritten text, the changed verdict, and any
// diagnostics; "detect" runs the pattern-presence pre-scan only.
func TestDataDriven(t *testing.T) {
	datadriven.Walk(t, "testdata", func(t *testing.T, path string) {
		datadriven.RunTest(t, path, func(t *testing.T, d *datadriven.TestData) string {
			src := []byte(d.Input + "\n")

			switch d.Cmd {
			case "migrate":
				res, err := Run(src, Catalogue(DefaultRules()))
				if err != nil {
					return fmt.Sprintf("error: %s\n", err)
				}

				var sb strings.Builder
				sb.Write(res.Output)
				fmt.Fprintf(&sb, "changed: %t\n", res.Changed)
				for _, diag := range res.Diagnostics {
					fmt.Fprintf(&sb, "%s: %s [%s]\n", diag.Severity, diag.Message, diag.Pass)
				}
				return sb.String()

			case "detect":
				would, err := Detect(src, Catalogue(DefaultRules()))
				if err != nil {
					return fmt.Sprintf("error: %s\n", err)
				}
				return fmt.Sprintf("would change: %t\n", would)

			default:
				t.Fatalf("unknown command: %s", d.Cmd)
				return ""
			}
		})
	})
}
