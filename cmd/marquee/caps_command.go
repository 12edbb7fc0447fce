// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/autobrr/marquee/internal/torznab"
)

func RunCapsCommand(a *app) *cobra.Command {
	var (
		endpoint string
		apiKey   string
		source   string
		merge    bool
	)

	cmd := &cobra.Command{
		Use:   "caps",
		Short: "Fetch a torznab caps document and show its categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.Config()
			if err != nil {
				return err
			}
			if endpoint == "" {
				endpoint = cfg.TorznabURL
			}
			if apiKey == "" {
				apiKey = cfg.TorznabAPIKey
			}
			if endpoint == "" {
				return errors.New("no torznab endpoint (set torznabUrl or --url)")
			}

			client, err := a.HTTP()
			if err != nil {
				return err
			}
			caps, err := torznab.NewClient(client).FetchCaps(cmd.Context(), endpoint, apiKey)
			if err != nil {
				return errors.Wrap(err, "could not fetch caps")
			}

			svc, err := a.Service()
			if err != nil {
				return err
			}
			resolver, err := svc.Resolver(cmd.Context())
			if err != nil {
				return err
			}

			list := caps.Categories
			if merge {
				list = torznab.MergeWithStandard(list)
			}
			rows := make([][]string, 0, len(list))
			for _, c := range list {
				kind := "vendor"
				if c.Standard {
					kind = "standard"
				}
				rows = append(rows, []string{
					strconv.Itoa(c.ID),
					intOrDash(c.ParentID),
					c.Name,
					kind,
					c.Unified(source, resolver).String(),
				})
			}

			cmd.Printf("Capabilities: %s\n", strings.Join(caps.Capabilities, ", "))
			cmd.Printf("Limits: default %d, max %d\n", caps.DefaultLimit, caps.MaxLimit)
			cmd.Println(renderTable([]string{"ID", "Parent", "Name", "Kind", "Unified"}, rows,
				[]columnAlignment{alignRight, alignRight}))
			return nil
		},
	}

	cmd.Flags().StringVar(&endpoint, "url", "", "Torznab endpoint (defaults to torznabUrl)")
	cmd.Flags().StringVar(&apiKey, "apikey", "", "Torznab api key (defaults to torznabApiKey)")
	cmd.Flags().StringVar(&source, "source", "", "Indexer name used for override lookup")
	cmd.Flags().BoolVar(&merge, "merge", true, "Include the full standard catalog")
	return cmd
}
