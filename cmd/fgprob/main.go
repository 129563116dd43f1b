// Command fgprob prints the make probability of a single field-goal attempt.
//
// Usage:
//
//	fgprob --home DEN --offense DEN --temp 50 --wind 5 --yfog 67 --chanceOfRain 0
//	fgprob --kicker_code AH-2600 --temp 40 --wind 10 --yfog 67 --chanceOfRain 10 --is_dome 1 --is_turf 1
//
// Only the flags that are passed are set on the attempt. --home fills the
// venue flags from the team table and --offense fills the kicker code. With
// --wp_made and --wp_missed the expected win probability of kicking is
// printed on a second line.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/couchcryptid/fg-probability-service/internal/domain"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("fgprob", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		a                domain.Attempt
		wpMade, wpMissed *float64
		modelPath        string
	)
	fs.Func("kicker_code", "kicker identifier, e.g. AH-2600", stringVar(&a.KickerCode))
	fs.Func("temp", "game temperature in degrees Fahrenheit", floatVar(&a.Temp))
	fs.Func("wind", "wind speed in mph", floatVar(&a.Wind))
	fs.Func("yfog", "yards from own goal line (0-100)", floatVar(&a.YFOG))
	fs.Func("chanceOfRain", "chance of rain in percent", floatVar(&a.ChanceOfRain))
	fs.Func("is_dome", "indoor venue (0/1)", boolVar(&a.IsDome))
	fs.Func("is_turf", "artificial surface (0/1)", boolVar(&a.IsTurf))
	fs.Func("home", "home team code; sets is_dome and is_turf", stringVar(&a.Home))
	fs.Func("offense", "kicking team code; sets kicker_code", stringVar(&a.Offense))
	fs.Func("wp_made", "win probability if the kick is made", floatVar(&wpMade))
	fs.Func("wp_missed", "win probability if the kick is missed", floatVar(&wpMissed))
	fs.StringVar(&modelPath, "model", "", "YAML model tables replacing the built-in ones")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return 2
	}
	if (wpMade == nil) != (wpMissed == nil) {
		fmt.Fprintln(stderr, "--wp_made and --wp_missed must be given together")
		return 2
	}

	model, err := domain.LoadModel(modelPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	p, err := model.Probability(a)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, formatFloat(p))

	if wpMade != nil {
		wp, err := domain.ExpectedWinProbability(p, *wpMade, *wpMissed)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, formatFloat(wp))
	}
	return 0
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func stringVar(dst **string) func(string) error {
	return func(s string) error {
		*dst = domain.Ptr(s)
		return nil
	}
}

func floatVar(dst **float64) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return errors.New("expected a number")
		}
		*dst = domain.Ptr(v)
		return nil
	}
}

func boolVar(dst **bool) func(string) error {
	return func(s string) error {
		v, err := domain.ParseFlag(s)
		if err != nil {
			return err
		}
		*dst = domain.Ptr(v)
		return nil
	}
}
