// Package report renders a finished run for people (Text) and for tools (JSON).
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/talgya/econsim/internal/engine"
)

// Text writes the root sensitivity, the per-horizon history, every period's
// agents and the solver counters.
func Text(w io.Writer, res engine.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "Sensitivity to initial capital:")
	for i, v := range res.Sensitivity {
		fmt.Fprintf(tw, "  agent %d\tdV/dC = %.6f\n", i, v)
	}

	if len(res.History) > 1 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "By horizon length:")
		for n, dv := range res.History {
			fmt.Fprintf(tw, "  %s\t%s\n", periods(n+1), vector(dv))
		}
	}

	for _, rec := range res.Trajectory {
		fmt.Fprintln(tw)
		fmt.Fprintf(tw, "Period %d\n", rec.Period)
		fmt.Fprintln(tw, "  agent\tlands\tcapital\tt\tc\tcapital_plus\tutility_yielded\tnext_capital")
		for i, a := range rec.Agents {
			fmt.Fprintf(tw, "  %d\t%v\t%.6f\t%.4f\t%.4f\t%.6f\t%.6f\t%.6f\n",
				i, a.State.Lands, a.State.Capital,
				a.Action.Labor, a.Action.Savings,
				a.Outcome.CapitalPlus, a.Outcome.UtilityYielded, a.Outcome.NextCapital)
		}
	}

	s := res.Stats
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "Solver: %s solves, %s steps, %s refinements, %s corner optima, %s clamped actions\n",
		humanize.Comma(int64(s.Solves)),
		humanize.Comma(int64(s.Steps)),
		humanize.Comma(int64(s.Refinements)),
		humanize.Comma(int64(s.Corners)),
		humanize.Comma(int64(s.Clamps)),
	)
	return tw.Flush()
}

// JSON writes res as indented JSON.
func JSON(w io.Writer, res engine.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func periods(n int) string {
	if n == 1 {
		return "1 period"
	}
	return fmt.Sprintf("%d periods", n)
}

func vector(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%.6f", x)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
