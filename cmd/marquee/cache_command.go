// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/autobrr/marquee/internal/matchcache"
)

func RunCacheCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Poster match cache operations",
	}

	cmd.AddCommand(runCacheShowCommand(a))
	cmd.AddCommand(runCacheInvalidateCommand(a))
	return cmd
}

func runCacheShowCommand(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "show",
		Short: "List cached poster matches, most recently seen first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.DB()
			if err != nil {
				return err
			}
			cache := matchcache.New(db)
			rows, err := cache.List(cmd.Context(), limit)
			if err != nil {
				return errors.Wrap(err, "could not list poster matches")
			}
			total, err := cache.Count(cmd.Context())
			if err != nil {
				return errors.Wrap(err, "could not count poster matches")
			}

			out := make([][]string, 0, len(rows))
			for _, m := range rows {
				out = append(out, []string{
					m.Fingerprint[:min(12, len(m.Fingerprint))],
					m.MediaType,
					m.NormalizedTitle,
					intOrDash(m.Year),
					fmt.Sprintf("%.2f", m.Confidence),
					orDash(m.MatchSource),
					orDash(m.PosterProvider),
					humanize.Time(m.LastSeenAt),
				})
			}
			cmd.Println(renderTable(
				[]string{"Fingerprint", "Media", "Title", "Year", "Conf", "Source", "Poster", "Seen"},
				out,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
			))
			cmd.Printf("%d of %d rows\n", len(rows), total)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum rows to show")
	return cmd
}

func runCacheInvalidateCommand(a *app) *cobra.Command {
	var fingerprint string

	cmd := &cobra.Command{
		Use:   "invalidate [release-id]",
		Short: "Drop the cached match of a release or fingerprint",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fingerprint != "" {
				db, err := a.DB()
				if err != nil {
					return err
				}
				deleted, err := matchcache.New(db).Delete(cmd.Context(), fingerprint)
				if err != nil {
					return errors.Wrap(err, "could not delete poster match")
				}
				cmd.Printf("Deleted: %t\n", deleted)
				return nil
			}
			if len(args) == 0 {
				return errors.New("a release id or --fingerprint is required")
			}

			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			svc, err := a.Service()
			if err != nil {
				return err
			}
			deleted, err := svc.Invalidate(cmd.Context(), ids[0])
			if err != nil {
				return errors.Wrapf(err, "could not invalidate release %s", strconv.FormatInt(ids[0], 10))
			}
			cmd.Printf("Deleted: %t\n", deleted)
			return nil
		},
	}

	cmd.Flags().StringVar(&fingerprint, "fingerprint", "", "Delete this fingerprint instead of a release's")
	return cmd
}
