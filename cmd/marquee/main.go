// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/autobrr/marquee/internal/buildinfo"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string
	a := &app{configPath: &configPath}

	rootCmd := &cobra.Command{
		Use:           "marquee",
		Short:         "Classify torznab releases and fetch their posters",
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.Close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	rootCmd.SetVersionTemplate(buildinfo.String())
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file or directory")

	rootCmd.AddCommand(RunReleaseCommand(a))
	rootCmd.AddCommand(RunClassifyCommand(a))
	rootCmd.AddCommand(RunFetchCommand(a))
	rootCmd.AddCommand(RunCacheCommand(a))
	rootCmd.AddCommand(RunCorrectCommand(a))
	rootCmd.AddCommand(RunCategoriesCommand(a))
	rootCmd.AddCommand(RunCapsCommand(a))
	rootCmd.AddCommand(RunConfigCommand(a))
	rootCmd.AddCommand(RunVersionCommand())

	return rootCmd
}
