// Command ev6core boots an Alpha AXP 21264 (EV6) core against a
// configuration file, or reports what the core supports, replacing the
// teacher's flag-based cmd/vm and cmd/interp trio with a cobra CLI in the
// style bobuhiro11/gokvm's boot/probe subcommand split suggests.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/alphacore/ev6/internal/config"
	"github.com/alphacore/ev6/internal/grain"
	"github.com/alphacore/ev6/internal/memiface"
	"github.com/alphacore/ev6/internal/system"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.Fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "ev6core",
		Short: "Alpha AXP 21264 (EV6) core emulator",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable per-instruction debug tracing")

	root.AddCommand(newRunCmd(), newProbeCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "boot a configured system and run it to completion or halt",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}

			mem := memiface.NewFlat(uint64(cfg.MemorySizeGB) << 30)
			sys := system.New(cfg, mem, logrus.WithField("component", "ev6core"))
			sys.Boot()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if err := sys.Run(ctx); err != nil && ctx.Err() == nil {
				return fmt.Errorf("run: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "f", "", "path to the INI system configuration file")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func newProbeCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "report the supported grain table and configured CPU count",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if cfgPath != "" {
				loaded, err := loadConfig(cfgPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			registry := grain.NewRegistry()
			fmt.Printf("ev6core: platform EV%d, %d CPU(s), %d grains registered\n",
				cfg.PlatformEV, cfg.CpuCount, registry.Len())
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "f", "", "optional path to an INI system configuration file")
	return cmd
}

func loadConfig(path string) (config.SystemConfig, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
