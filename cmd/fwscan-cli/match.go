package main

import (
	"os"

	"github.com/ecudiag/fwscan/fingerprint"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var matchInputFile string

func init() {
	matchCmd.Flags().StringVar(&matchInputFile, "input", "", "firmware versions YAML file from a previous scan (required)")
	matchCmd.Flags().StringVar(&tableFile, "table", "", "fingerprint table YAML file (default is the built-in table)")

	rootCmd.AddCommand(matchCmd)
}

var matchCmd = &cobra.Command{
	Use:          "match",
	Short:        "Match previously scanned firmware versions against known vehicles.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if matchInputFile == "" {
			return errors.New("the input setting is required")
		}

		table, err := loadFingerprintTable()
		if err != nil {
			return err
		}

		f, err := os.Open(matchInputFile)
		if err != nil {
			return errors.Wrap(err, "opening firmware versions file")
		}
		defer f.Close()
		firmwares, err := fingerprint.LoadFirmwares(f)
		if err != nil {
			return errors.Wrapf(err, "loading firmware versions from %s", matchInputFile)
		}

		stdOut := cmd.OutOrStdout()
		printFirmwares(stdOut, firmwares)
		printCandidates(stdOut, fingerprint.Match(firmwares, table, fingerprint.DefaultMatchOptions()))
		return nil
	},
}
