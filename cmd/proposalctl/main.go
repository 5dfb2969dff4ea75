// Package main proposalctl: работа с предложениями из командной строки
// без HTTP сервера. Использует ту же конфигурацию окружения, что и сервер.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/proposal-backend/internal/logger"
)

const (
	Version = "0.1.0"
	appName = "proposalctl"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Normalize, validate, render and deliver business proposals",
		Long: `proposalctl reads a proposal draft (JSON or YAML), validates it and
renders the email, CSV row or webhook payload. With --id it works on a
record already stored in the configured backend (STORAGE_DRIVER).`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(logLevel)
			logger.SetTextFormatter()
			logger.Log.SetOutput(cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		normalizeCmd(),
		commitCmd(),
		listCmd(),
		emailCmd(),
		csvCmd(),
		payloadCmd(),
		sendCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)

	return cmd
}
