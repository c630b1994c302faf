package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/rhuss/cortex/pkg/dataset"
	"github.com/rhuss/cortex/pkg/engine"
)

var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"repl"},
	Short:   "Start an interactive analysis session over a dataset",
	Example: `  cortex interactive -f tolls.csv`,
	RunE:    runInteractive,
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

func runInteractive(cmd *cobra.Command, _ []string) error {
	if flagDataFile == "" {
		return fmt.Errorf("a dataset file is required (-f)")
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

	pterm.DefaultHeader.WithFullWidth().Println("cortex interactive")
	renderSchema(sess.Schema())
	pterm.Println()
	pterm.Println(pterm.NewStyle(pterm.FgGray).Sprint(
		"Ask questions in plain language. Commands: /schema /chart [hint] /script /quit"))
	pterm.Println()

	chartHint := ""
	showScript := false
	scanner := bufio.NewScanner(os.Stdin)
	for {
		pterm.Print(promptStyle())
		if !scanner.Scan() {
			pterm.Println()
			return scanner.Err()
		}
		line := trimQuery(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			name, rest, _ := strings.Cut(line, " ")
			switch name {
			case "/quit", "/exit", "/q":
				return nil
			case "/schema":
				renderSchema(sess.Schema())
			case "/chart":
				// "/chart as a pie chart" sets the hint, bare "/chart" clears it.
				chartHint = strings.TrimSpace(rest)
				if chartHint == "" {
					pterm.Println(pterm.NewStyle(pterm.FgGray).Sprint("chart hint cleared"))
				} else {
					pterm.Println(pterm.NewStyle(pterm.FgGray).Sprintf("chart hint: %q", chartHint))
				}
			case "/script":
				showScript = !showScript
				pterm.Println(pterm.NewStyle(pterm.FgGray).Sprintf("show script: %v", showScript))
			default:
				pterm.Println(pterm.NewStyle(pterm.FgYellow).Sprintf("unknown command %s", line))
			}
			continue
		}

		spinner, _ := pterm.DefaultSpinner.Start("Analyzing...")
		resp, err := eng.Ask(cmd.Context(), engine.Query{
			SessionID: sess.ID(),
			Text:      line,
			ChartHint: chartHint,
		})
		if err != nil {
			if spinner != nil {
				spinner.Fail("Analysis failed")
			}
			pterm.Println(pterm.NewStyle(pterm.FgRed).Sprint(err.Error()))
			continue
		}
		if spinner != nil {
			spinner.Stop()
		}
		renderResponse(resp, showScript)
		pterm.Println()
	}
}
