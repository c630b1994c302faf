package main

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/rhuss/cortex/pkg/dataset"
	"github.com/rhuss/cortex/pkg/engine"
)

var (
	flagChartHint  string
	flagShowScript bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [question]",
	Short: "Answer a single question about a dataset",
	Example: `  cortex analyze -f tolls.csv "which toll collected the most revenue?"
  cortex analyze -f sales.json --chart "as a bar chart" "monthly revenue by region"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&flagChartHint, "chart", "", `chart hint appended to the question, e.g. "as a bar chart"`)
	analyzeCmd.Flags().BoolVar(&flagShowScript, "show-script", false, "print the script that produced the answer")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if flagDataFile == "" {
		return fmt.Errorf("a dataset file is required (-f)")
	}
	question := trimQuery(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("the question must not be empty")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ds, err := dataset.LoadFile(flagDataFile)
	if err != nil {
		return err
	}

	eng, reasoner, err := newLocalEngine(cfg)
	if err != nil {
		return err
	}
	defer reasoner.Close()

	sess, err := eng.Sessions().Create(ds)
	if err != nil {
		return err
	}
	defer eng.Sessions().Delete(sess.ID())

	spinner, _ := pterm.DefaultSpinner.Start("Analyzing...")
	resp, err := eng.Ask(cmd.Context(), engine.Query{
		SessionID: sess.ID(),
		Text:      question,
		ChartHint: flagChartHint,
	})
	if err != nil {
		if spinner != nil {
			spinner.Fail("Analysis failed")
		}
		return err
	}
	if spinner != nil {
		spinner.Stop()
	}

	renderResponse(resp, flagShowScript)
	return nil
}
