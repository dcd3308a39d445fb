package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/ecudiag/fwscan/fingerprint"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var vinTimeout time.Duration
var vinAttempts uint

func init() {
	vinCmd.Flags().DurationVar(&vinTimeout, "timeout", fingerprint.DefaultBaseTimeout, "per-attempt response timeout")
	vinCmd.Flags().UintVar(&vinAttempts, "attempts", 3, "number of query attempts before giving up")

	rootCmd.AddCommand(vinCmd)
}

var vinCmd = &cobra.Command{
	Use:          "vin",
	Short:        "Read the vehicle identification number over OBD.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		ctx, _ = signal.NotifyContext(ctx, os.Interrupt, os.Kill)
		defer cancel()

		dev, err := openDevice(ctx)
		if err != nil {
			return errors.Wrap(err, "opening CAN device")
		}
		defer dev.Close()

		addr, vin, err := fingerprint.GetVIN(ctx, fingerprint.NewIsoTpTransport(dev), vinTimeout, vinAttempts)
		if err != nil {
			return errors.Wrap(err, "reading VIN")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "VIN: %s (from %s)\n", green("%s", vin), addr)
		return nil
	},
}
