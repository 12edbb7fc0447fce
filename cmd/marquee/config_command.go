// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"errors"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/autobrr/marquee/internal/buildinfo"
	"github.com/autobrr/marquee/internal/domain"
	"github.com/autobrr/marquee/internal/logger"
)

func RunConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and update the config file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective config with keys redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.Config()
			if err != nil {
				return err
			}
			cmd.Printf("Config file: %s\n", a.cfg.ConfigPath())
			cmd.Print(renderTable([]string{"Key", "Value"}, configRows(cfg.Redacted()), nil))
			return nil
		},
	})

	cmd.AddCommand(runConfigLogCommand(a))
	return cmd
}

func runConfigLogCommand(a *app) *cobra.Command {
	var (
		level      string
		path       string
		maxSize    int
		maxBackups int
	)

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Persist log settings to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.Config()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("level") {
				level = cfg.LogLevel
			}
			if !cmd.Flags().Changed("max-size") {
				maxSize = cfg.LogMaxSize
			}
			if !cmd.Flags().Changed("max-backups") {
				maxBackups = cfg.LogMaxBackups
			}
			level = strings.ToUpper(strings.TrimSpace(level))
			if maxSize <= 0 {
				return errors.New("--max-size must be positive")
			}
			if maxBackups < 0 {
				return errors.New("--max-backups must not be negative")
			}

			if err := a.cfg.UpdateLogSettings(level, path, maxSize, maxBackups); err != nil {
				return err
			}
			logger.SetLevel(level)
			cmd.Printf("Log settings written to %s\n", a.cfg.ConfigPath())
			return nil
		},
	}

	cmd.Flags().StringVar(&level, "level", "", "Log level: ERROR, WARN, INFO, DEBUG or TRACE")
	cmd.Flags().StringVar(&path, "path", "", "Log file path; empty keeps the current one")
	cmd.Flags().IntVar(&maxSize, "max-size", 0, "Megabytes before a log file is rotated")
	cmd.Flags().IntVar(&maxBackups, "max-backups", 0, "Rotated files to keep, 0 keeps all")
	return cmd
}

func configRows(cfg domain.Config) [][]string {
	return [][]string{
		{"logLevel", cfg.LogLevel},
		{"logPath", orDash(cfg.LogPath)},
		{"logMaxSize", strconv.Itoa(cfg.LogMaxSize)},
		{"logMaxBackups", strconv.Itoa(cfg.LogMaxBackups)},
		{"dataDir", cfg.DataDir},
		{"databasePath", cfg.DatabasePath},
		{"posterDir", cfg.PosterDir},
		{"preferredLang", cfg.PreferredLang},
		{"minConfidence", strconv.FormatFloat(cfg.MinConfidence, 'f', -1, 64)},
		{"fetchConcurrency", strconv.Itoa(cfg.FetchConcurrency)},
		{"httpTimeout", strconv.Itoa(cfg.HTTPTimeout)},
		{"providerIntervalMs", strconv.Itoa(cfg.ProviderIntervalMs)},
		{"rateLimitMaxWait", strconv.Itoa(cfg.RateLimitMaxWait)},
		{"tmdbApiKey", orDash(cfg.TMDBAPIKey)},
		{"fanartApiKey", orDash(cfg.FanartAPIKey)},
		{"rawgApiKey", orDash(cfg.RAWGAPIKey)},
		{"comicVineApiKey", orDash(cfg.ComicVineAPIKey)},
		{"torznabUrl", orDash(cfg.TorznabURL)},
		{"torznabApiKey", orDash(cfg.TorznabAPIKey)},
		{"metricsTextfile", orDash(cfg.MetricsTextfile)},
		{"notifyUrls", strconv.Itoa(len(cfg.NotifyURLs)) + " configured"},
	}
}

func RunVersionCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !asJSON {
				cmd.Print(buildinfo.String())
				return nil
			}
			out, err := buildinfo.JSON()
			if err != nil {
				return err
			}
			cmd.Println(string(out))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}
