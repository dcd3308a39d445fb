package main

import (
	"context"
	"log"
	"os"
	"path"

	"github.com/ecudiag/fwscan/adapter"
	"github.com/ecudiag/fwscan/can"
	"github.com/ecudiag/fwscan/fingerprint"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	portSettingName    = "port"
	adapterSettingName = "adapter"
)

var configFile string
var port string
var adapterName string
var portBaudrate int
var canBitrate float64
var quiet bool
var verbose bool

func init() {
	cobra.OnInitialize(func() {
		initConfig()
		postInitCommands(rootCmd.Commands())
	})

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.fwscan.yaml)")
	rootCmd.PersistentFlags().StringVar(&port, portSettingName, "", "serial port to connect to. Example: /dev/ttyUSB0")
	rootCmd.PersistentFlags().StringVar(&adapterName, adapterSettingName, "slcan", "CAN adapter type")
	rootCmd.PersistentFlags().IntVar(&portBaudrate, "baudrate", 115200, "serial port baudrate")
	rootCmd.PersistentFlags().Float64Var(&canBitrate, "bitrate", 500, "CAN bus bitrate in kbit/s")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "quiet all log output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "provide verbose output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

var rootCmd = &cobra.Command{
	Use:           "fwscan-cli",
	Short:         "A CLI for discovering ECU firmware versions over CAN and matching them against known vehicles.",
	SilenceErrors: true,
}

func initConfig() {
	if configFile != "" {
		viper.SetConfigFile(path.Base(configFile))
		viper.AddConfigPath(path.Dir(configFile))
	} else {
		home, err := homedir.Dir()
		if err != nil {
			log.Fatalf("finding home directory: %v\n", err)
		}

		viper.AddConfigPath(home)
		viper.SetConfigName(".fwscan")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok || os.IsNotExist(err) {
			if err = viper.SafeWriteConfig(); err != nil {
				log.Fatalf("creating config file: %v\n", err)
			}
		} else {
			log.Fatalf("reading config file: %v\n", err)
		}
	}
}

func postInitCommands(commands []*cobra.Command) {
	for _, cmd := range commands {
		presetRequiredFlags(cmd)
		if cmd.HasSubCommands() {
			postInitCommands(cmd.Commands())
		}
	}
}

func presetRequiredFlags(cmd *cobra.Command) {
	viper.BindPFlags(cmd.Flags())
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			cmd.Flags().Set(f.Name, viper.GetString(f.Name))
		}
	})
}

func scanLogger(cmd *cobra.Command) fingerprint.Logger {
	if !verbose {
		return fingerprint.NopLogger
	}
	return fingerprint.DefaultLogger(cmd.OutOrStdout())
}

func openDevice(ctx context.Context) (can.Device, error) {
	if port == "" {
		return nil, errors.New("the port setting is required. Use 'fwscan-cli ports set' or --port")
	}
	return adapter.New(ctx, adapterName, &adapter.Config{
		Port:         port,
		PortBaudrate: portBaudrate,
		BitRate:      canBitrate,
	})
}
