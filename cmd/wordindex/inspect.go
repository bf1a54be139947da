package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/bastiangx/wordindex/pkg/store"
	"github.com/bastiangx/wordindex/pkg/verify"
	"github.com/charmbracelet/log"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <artifact>",
	Short: "Check an artifact's invariants",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := store.Open(args[0])
		if err != nil {
			return err
		}
		defer r.Close()

		report, err := verify.New(r).Run(cmd.Context())
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Check", "Status", "Violations"})
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for _, c := range report.Checks {
			status := "ok"
			switch {
			case c.Skipped:
				status = "skipped"
			case !c.Passed():
				status = "FAILED"
			}
			table.Append([]string{c.Name, status, strconv.Itoa(c.Violations)})
		}
		table.Render()

		for _, c := range report.Checks {
			for _, s := range c.Samples {
				log.Warn(s, "check", c.Name)
			}
		}
		if report.Failed() {
			log.Error("Artifact failed verification", "path", args[0])
			return errChecksFailed
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats <artifact>",
	Short: "Print row counts and metadata of an artifact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := store.Open(args[0])
		if err != nil {
			return err
		}
		defer r.Close()

		counts, err := r.TableCounts()
		if err != nil {
			return err
		}
		kv, err := r.KV()
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Table", "Rows"})
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for _, c := range counts {
			table.Append([]string{c.Table, strconv.FormatInt(c.Rows, 10)})
		}
		table.Render()

		for _, key := range []string{store.MetaFuzzyStrategy, store.MetaMaxEditDistance, store.MetaPrefixCap, store.MetaWordCount} {
			if v, ok := kv[key]; ok {
				fmt.Fprintf(os.Stdout, "%s = %s\n", key, v)
			}
		}
		return nil
	},
}
