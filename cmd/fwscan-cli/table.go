package main

import (
	"fmt"
	"sort"

	"github.com/ecudiag/fwscan/fingerprint"
	"github.com/spf13/cobra"
)

func init() {
	tableCmd.AddCommand(exportTableCmd)
	tableCmd.AddCommand(listModelsCmd)
	tableCmd.PersistentFlags().StringVar(&tableFile, "table", "", "fingerprint table YAML file (default is the built-in table)")

	rootCmd.AddCommand(tableCmd)
}

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Inspect the vehicle fingerprint table",
}

var exportTableCmd = &cobra.Command{
	Use:          "export",
	Short:        "Write the fingerprint table as YAML to stdout",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadFingerprintTable()
		if err != nil {
			return err
		}
		return fingerprint.WriteTable(cmd.OutOrStdout(), table)
	},
}

var listModelsCmd = &cobra.Command{
	Use:          "models",
	Short:        "List the vehicle models in the fingerprint table",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadFingerprintTable()
		if err != nil {
			return err
		}
		models := table.Models()
		sort.Slice(models, func(i, j int) bool { return models[i] < models[j] })
		for _, m := range models {
			fmt.Fprintln(cmd.OutOrStdout(), m)
		}
		return nil
	},
}
