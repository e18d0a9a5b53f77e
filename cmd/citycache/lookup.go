package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/citylookup/citycache"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup CODE CITY",
	Short: "Look up the population of a city",
	Long: `Look up the population of a city given its country code and name.

Both fields are matched exactly, including case.

Examples:
  citycache lookup jp Tokyo
  citycache lookup us "New York" --json --timing`,
	Args: cobra.ExactArgs(2),
	RunE: runLookup,
}

var (
	outputJSON bool
	showTiming bool
)

func init() {
	lookupCmd.Flags().BoolVar(&outputJSON, "json", false, "output result as JSON")
	lookupCmd.Flags().BoolVar(&showTiming, "timing", false, "show lookup timing")
	rootCmd.AddCommand(lookupCmd)
}

var errCityNotFound = errors.New("city not found in dataset")

func runLookup(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	client, err := openClient(cmd.Context(), logger, nil)
	if err != nil {
		return err
	}
	defer client.Close()

	start := time.Now()
	res, err := client.Query(args[0], args[1])
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}
	elapsed := time.Since(start)

	out := cmd.OutOrStdout()
	if outputJSON {
		return printResultJSON(out, res, elapsed)
	}
	if !res.Found() {
		return errCityNotFound
	}
	printResultText(out, res, elapsed)
	return nil
}

func printResultText(w io.Writer, res citycache.Result, elapsed time.Duration) {
	fmt.Fprintf(w, "City:       %s\n", res.City)
	fmt.Fprintf(w, "Country:    %s\n", res.CountryCode)
	fmt.Fprintf(w, "Population: %d\n", res.Population)
	if showTiming {
		fmt.Fprintf(w, "Time:       %s\n", elapsed)
	}
}

func printResultJSON(w io.Writer, res citycache.Result, elapsed time.Duration) error {
	out := struct {
		citycache.Result
		Found     bool   `json:"found"`
		ElapsedUS *int64 `json:"elapsed_us,omitempty"`
	}{Result: res, Found: res.Found()}
	if showTiming {
		us := elapsed.Microseconds()
		out.ElapsedUS = &us
	}
	return json.NewEncoder(w).Encode(out)
}
