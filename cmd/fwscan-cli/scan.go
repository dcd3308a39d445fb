package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/ecudiag/fwscan/fingerprint"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	green  = color.New(color.FgGreen).SprintfFunc()
	yellow = color.New(color.FgHiBlue).SprintfFunc()
	red    = color.New(color.FgRed).SprintfFunc()
)

var scanTimeout time.Duration
var scanSweep bool
var scanHex bool
var scanOutputFile string
var tableFile string

func init() {
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", fingerprint.DefaultBaseTimeout, "per-exchange response timeout")
	scanCmd.Flags().BoolVar(&scanSweep, "scan", false, "probe the full diagnostic address range, not just known addresses")
	scanCmd.Flags().BoolVar(&scanHex, "hex", false, "print firmware versions as hex instead of ASCII")
	scanCmd.Flags().StringVar(&scanOutputFile, "output", "", "write the discovered firmware versions to a YAML file")
	scanCmd.Flags().StringVar(&tableFile, "table", "", "fingerprint table YAML file (default is the built-in table)")

	rootCmd.AddCommand(scanCmd)
}

var scanCmd = &cobra.Command{
	Use:          "scan",
	Short:        "Discover ECU firmware versions on the bus and match them against known vehicles.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadFingerprintTable()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		ctx, _ = signal.NotifyContext(ctx, os.Interrupt, os.Kill)
		defer cancel()

		dev, err := openDevice(ctx)
		if err != nil {
			return errors.Wrap(err, "opening CAN device")
		}
		defer dev.Close()

		stdOut := cmd.OutOrStdout()
		tp := fingerprint.NewIsoTpTransport(dev)

		addr, vin, err := fingerprint.GetVIN(ctx, tp, scanTimeout, 3)
		if err != nil {
			if !quiet {
				fmt.Fprintln(stdOut, yellow("no VIN response: %v", err))
			}
		} else if !quiet {
			fmt.Fprintf(stdOut, "VIN: %s (from %s)\n", green("%s", vin), addr)
		}

		opts := &fingerprint.ScanOptions{
			BaseTimeout: scanTimeout,
			Logger:      scanLogger(cmd),
		}
		if scanSweep {
			opts.Extra = fingerprint.ScanProbes()
		}
		if !quiet {
			var bar *progressbar.ProgressBar
			opts.Progress = func(done, total int) {
				if bar == nil {
					bar = newBar(total, "scanning")
				}
				bar.Set(done)
			}
		}

		firmwares := fingerprint.GetVersions(ctx, tp, table, opts)
		if !quiet {
			fmt.Fprintln(stdOut)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if len(firmwares) == 0 {
			fmt.Fprintln(stdOut, red("no ECUs answered"))
			return nil
		}

		printFirmwares(stdOut, firmwares)
		printCandidates(stdOut, fingerprint.Match(firmwares, table, fingerprint.DefaultMatchOptions()))

		if scanOutputFile != "" {
			if err := writeFirmwareFile(scanOutputFile, firmwares); err != nil {
				return err
			}
			if !quiet {
				fmt.Fprintf(stdOut, "wrote firmware versions to %s\n", scanOutputFile)
			}
		}
		return nil
	},
}

func loadFingerprintTable() (fingerprint.Table, error) {
	if tableFile == "" {
		return fingerprint.Fingerprints, nil
	}
	f, err := os.Open(tableFile)
	if err != nil {
		return nil, errors.Wrap(err, "opening fingerprint table")
	}
	defer f.Close()
	table, err := fingerprint.LoadTable(f)
	if err != nil {
		return nil, errors.Wrapf(err, "loading fingerprint table from %s", tableFile)
	}
	return table, nil
}

func writeFirmwareFile(name string, firmwares []fingerprint.Firmware) error {
	f, err := os.OpenFile(name, os.O_CREATE|os.O_TRUNC|os.O_RDWR, os.ModePerm)
	if err != nil {
		return errors.Wrap(err, "opening output file")
	}
	defer f.Close()
	return fingerprint.WriteFirmwares(f, firmwares)
}

func printFirmwares(w io.Writer, firmwares []fingerprint.Firmware) {
	for _, fw := range firmwares {
		fmt.Fprintf(w, "%s\t%s\t%s\n", fw.Addr(), fw.Ecu, formatVersion(fw.Version))
	}
}

func printCandidates(w io.Writer, candidates fingerprint.CandidateSet) {
	if len(candidates) == 0 {
		fmt.Fprintln(w, red("no matching vehicle"))
		return
	}
	models := make([]string, 0, len(candidates))
	for m := range candidates {
		models = append(models, string(m))
	}
	sort.Strings(models)
	if len(models) == 1 {
		fmt.Fprintf(w, "matched vehicle: %s\n", green("%s", models[0]))
		return
	}
	fmt.Fprintln(w, yellow("multiple candidate vehicles:"))
	for _, m := range models {
		fmt.Fprintf(w, "  %s\n", m)
	}
}

// formatVersion renders a firmware version for the terminal. Versions are
// mostly ASCII part numbers but can carry arbitrary bytes.
func formatVersion(version []byte) string {
	if scanHex || !printable(version) {
		return hex.EncodeToString(version)
	}
	return string(version)
}

func printable(b []byte) bool {
	for _, c := range b {
		if c < 0x20 || c > 0x7E {
			return false
		}
	}
	return len(b) > 0
}
