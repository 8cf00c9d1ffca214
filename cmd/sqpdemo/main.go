// Command sqpdemo runs the driver against one of the fixed problems in the
// problems package and reports its exit status on stdout, using the exit
// flag's ExitCode() as the process exit code.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/restartsqp/sqpcore/driver"
	"github.com/restartsqp/sqpcore/nlp"
	"github.com/restartsqp/sqpcore/problems"
	"github.com/rs/zerolog"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("sqpdemo", flag.ContinueOnError)
	fs.SetOutput(stderr)

	problemName := fs.String("problem", problems.Names[0], "problem to solve, one of: "+strings.Join(problems.Names, ", "))
	iterMax := fs.Int("iter-max", 200, "outer iteration cap")
	printLevel := fs.Int("print-level", 0, "logging verbosity 0..4 (0 silent)")
	printOptions := fs.Bool("print-options", false, "print the resolved Options and exit")
	printLatexOptions := fs.Bool("print-latex-options", false, "print the resolved Options as a LaTeX table and exit")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	opts := []driver.Option{
		driver.WithIterMax(*iterMax),
		driver.WithPrintLevel(*printLevel),
	}
	if *printLevel > 0 {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr}).With().Timestamp().Logger()
		opts = append(opts, driver.WithLogger(logger))
	}
	resolved := driver.NewOptions(opts...)

	if *printOptions {
		printOptionsTable(stdout, resolved)
		return 0
	}
	if *printLatexOptions {
		printOptionsLatex(stdout, resolved)
		return 0
	}

	p, ok := problems.ByName(*problemName)
	if !ok {
		fmt.Fprintf(stderr, "sqpdemo: unknown problem %q, known problems: %s\n", *problemName, strings.Join(problems.Names, ", "))
		return 2
	}

	d, err := driver.New(opts...)
	if err != nil {
		fmt.Fprintf(stderr, "sqpdemo: invalid options: %v\n", err)
		return 2
	}

	status, err := d.Optimize(p)
	if err != nil {
		fmt.Fprintf(stderr, "sqpdemo: %v\n", err)
	}
	fmt.Fprintf(stdout, "problem=%s status=%s\n", *problemName, status.String())

	if res, ok := resultOf(p); ok {
		fmt.Fprintf(stdout, "f=%.10g\n", res.F)
		fmt.Fprintf(stdout, "x=%v\n", res.X)
	}
	return status.ExitCode()
}

// resultOf recovers the problems.Result from any of the fixed problem
// types via the shared Result() accessor, without exporting a second
// interface from the problems package for this one CLI concern.
func resultOf(p nlp.Problem) (problems.Result, bool) {
	type resulter interface{ Result() problems.Result }
	r, ok := p.(resulter)
	if !ok {
		return problems.Result{}, false
	}
	return r.Result(), true
}

func printOptionsTable(w io.Writer, o driver.Options) {
	rows := optionRows(o)
	width := 0
	for _, r := range rows {
		if len(r[0]) > width {
			width = len(r[0])
		}
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%-*s  %s\n", width, r[0], r[1])
	}
}

func printOptionsLatex(w io.Writer, o driver.Options) {
	rows := optionRows(o)
	sort.Slice(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })
	fmt.Fprintln(w, `\begin{tabular}{ll}`)
	fmt.Fprintln(w, `\textbf{Option} & \textbf{Value} \\`)
	for _, r := range rows {
		fmt.Fprintf(w, "%s & %s \\\\\n", latexEscape(r[0]), latexEscape(r[1]))
	}
	fmt.Fprintln(w, `\end{tabular}`)
}

func optionRows(o driver.Options) [][2]string {
	return [][2]string{
		{"delta_0", fmt.Sprintf("%g", o.Delta0)},
		{"delta_min", fmt.Sprintf("%g", o.DeltaMin)},
		{"delta_max", fmt.Sprintf("%g", o.DeltaMax)},
		{"eta_c", fmt.Sprintf("%g", o.EtaC)},
		{"eta_s", fmt.Sprintf("%g", o.EtaS)},
		{"eta_e", fmt.Sprintf("%g", o.EtaE)},
		{"gamma_c", fmt.Sprintf("%g", o.GammaC)},
		{"gamma_e", fmt.Sprintf("%g", o.GammaE)},
		{"rho_0", fmt.Sprintf("%g", o.Rho0)},
		{"rho_max", fmt.Sprintf("%g", o.RhoMax)},
		{"gamma_rho", fmt.Sprintf("%g", o.GammaRho)},
		{"eps_1", fmt.Sprintf("%g", o.Eps1)},
		{"eps_2", fmt.Sprintf("%g", o.Eps2)},
		{"iter_max_rho", fmt.Sprintf("%d", o.IterMaxRho)},
		{"enable_penalty_update", fmt.Sprintf("%t", o.EnablePenaltyUpdate)},
		{"enable_penalty_reduction", fmt.Sprintf("%t", o.EnablePenaltyReduction)},
		{"tau_prim", fmt.Sprintf("%g", o.TauPrim)},
		{"tau_dual", fmt.Sprintf("%g", o.TauDual)},
		{"tau_comp", fmt.Sprintf("%g", o.TauComp)},
		{"tau_stat", fmt.Sprintf("%g", o.TauStat)},
		{"active_set_tol", fmt.Sprintf("%g", o.ActiveSetTol)},
		{"iter_max", fmt.Sprintf("%d", o.IterMax)},
		{"qp_iter_max", fmt.Sprintf("%d", o.QPIterMax)},
		{"lp_iter_max", fmt.Sprintf("%d", o.LPIterMax)},
		{"max_cpu_seconds", fmt.Sprintf("%g", o.MaxCPUSeconds)},
		{"max_wall_seconds", fmt.Sprintf("%g", o.MaxWallSeconds)},
		{"second_order_correction", fmt.Sprintf("%t", o.SecondOrderCorrection)},
		{"print_level", fmt.Sprintf("%d", o.PrintLevel)},
	}
}

func latexEscape(s string) string {
	return strings.ReplaceAll(s, "_", `\_`)
}
