package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/loopcast/loopcast/internal/driverinstall"
)

var (
	logLevel      string
	correlationID string
	validateAll   bool

	rootCmd = &cobra.Command{
		Use:          "driverctl",
		Short:        "Manage the bundled virtual audio driver",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %v", logLevel, err)
			}
			log.SetLevel(level)
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")

	installCmd.Flags().StringVar(&correlationID, "correlation-id", "", "correlation id echoed in the result (generated when empty)")
	validateCmd.Flags().BoolVar(&validateAll, "all", false, "validate every known provider bundle")

	rootCmd.AddCommand(validateCmd, installCmd, stateCmd, watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func providerArg(args []string) driverinstall.Provider {
	if len(args) > 0 {
		return driverinstall.Provider(args[0])
	}
	return ""
}

var validateCmd = &cobra.Command{
	Use:   "validate [provider]",
	Short: "Pre-flight check bundle integrity without installing",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := driverinstall.New()
		if validateAll {
			if err := c.ValidateAll(); err != nil {
				return err
			}
			cmd.Println("all bundles verified")
			return nil
		}

		report := c.ValidateBundle(providerArg(args))
		cmd.Println(report.Message)
		if !report.OK {
			return errors.New("bundle validation failed")
		}
		return nil
	},
}

var installCmd = &cobra.Command{
	Use:   "install [provider]",
	Short: "Install the virtual audio driver with OS elevation",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cid := correlationID
		if cid == "" {
			cid = uuid.New().String()
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		res := driverinstall.New().Install(ctx, providerArg(args), cid)
		printJSON(cmd, res)
		if res.State == driverinstall.StateFailed || res.State == driverinstall.StateUnsupported {
			return fmt.Errorf("install finished with state %s", res.State)
		}
		return nil
	},
}

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Print the installer runtime state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printJSON(cmd, driverinstall.New().State())
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch [provider]",
	Short: "Re-validate the bundle whenever it changes on disk",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		err := driverinstall.New().WatchBundle(ctx, providerArg(args), func(r driverinstall.ValidationReport) {
			cmd.Println(r.Message)
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func printJSON(cmd *cobra.Command, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Errorf("failed to render output: %v", err)
		return
	}
	cmd.Println(string(data))
}
