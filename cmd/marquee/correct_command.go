// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/autobrr/marquee/internal/services/notifications"
)

func RunCorrectCommand(a *app) *cobra.Command {
	var refetch bool

	cmd := &cobra.Command{
		Use:   "correct <release-id> <provider> <provider-id>",
		Short: "Record a confirmed external id and drop the stale cached match",
		Example: `  marquee correct 42 tmdb 603
  marquee correct 42 tvdb 81189 --refetch`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args[:1])
			if err != nil {
				return err
			}
			provider := strings.ToLower(strings.TrimSpace(args[1]))
			providerID := strings.TrimSpace(args[2])
			if provider == "" || providerID == "" {
				return errors.New("provider and provider id are required")
			}

			svc, err := a.Service()
			if err != nil {
				return err
			}
			if err := svc.ApplyExternalCorrection(cmd.Context(), ids[0], provider, providerID); err != nil {
				return errors.Wrapf(err, "could not correct release %d", ids[0])
			}
			cmd.Printf("Release %d now points at %s:%s\n", ids[0], provider, providerID)
			a.Notify(cmd.Context(), notifications.Event{
				Type:       notifications.EventCorrectionApplied,
				ReleaseID:  ids[0],
				Provider:   provider,
				ProviderID: providerID,
			})

			if !refetch {
				return nil
			}
			defer a.WriteMetrics()
			out := svc.FetchPoster(cmd.Context(), ids[0], false)
			if !out.OK {
				return errors.Wrapf(out.Err, "refetch failed with status %d", out.Status)
			}
			cmd.Printf("Poster refetched from %s\n", out.Provider)
			return nil
		},
	}

	cmd.Flags().BoolVar(&refetch, "refetch", false, "Fetch a new poster right away")
	return cmd
}
