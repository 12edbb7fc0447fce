// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/autobrr/marquee/internal/models"
	"github.com/autobrr/marquee/internal/services/notifications"
	"github.com/autobrr/marquee/internal/services/posters"
)

func RunFetchCommand(a *app) *cobra.Command {
	var (
		missing      bool
		limit        int
		concurrency  int
		skipExisting bool
		timeout      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "fetch [id...]",
		Short: "Fetch posters for releases",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			cfg, err := a.Config()
			if err != nil {
				return err
			}
			svc, err := a.Service()
			if err != nil {
				return err
			}
			db, err := a.DB()
			if err != nil {
				return err
			}
			releases := models.NewReleaseStore(db)

			if missing {
				if ids, err = releases.ListIDs(cmd.Context(), true, limit); err != nil {
					return errors.Wrap(err, "could not list releases")
				}
			}
			if len(ids) == 0 {
				cmd.Println("Nothing to fetch.")
				return nil
			}
			if concurrency <= 0 {
				concurrency = cfg.FetchConcurrency
			}

			ctx, cancel := withTimeout(cmd.Context(), timeout)
			defer cancel()

			started := time.Now()
			outcomes := svc.FetchMany(ctx, ids, concurrency, skipExisting)
			defer a.WriteMetrics()

			stored, err := releases.GetMany(cmd.Context(), ids)
			if err != nil {
				return errors.Wrap(err, "could not reload releases")
			}

			summary := summarize(outcomes)
			summary.Cancelled = ctx.Err() != nil
			a.Notify(cmd.Context(), summary)

			rows := make([][]string, 0, len(ids))
			for i, id := range ids {
				o := outcomes[i]
				size := "-"
				if r, found := stored[id]; found && r.HasPoster() {
					if n, err := svc.PosterSize(r.PosterFile); err == nil {
						size = humanize.Bytes(uint64(n))
					}
				}
				detail := ""
				if o.Err != nil {
					detail = o.Err.Error()
				} else if o.FromCache {
					detail = "cached"
				}
				rows = append(rows, []string{
					strconv.FormatInt(id, 10),
					strconv.Itoa(o.Status),
					orDash(o.Provider),
					size,
					detail,
				})
			}
			cmd.Println(renderTable([]string{"ID", "Status", "Provider", "Size", "Detail"}, rows,
				[]columnAlignment{alignRight, alignRight, alignLeft, alignRight}))
			cmd.Printf("%d of %d posters in %s\n", summary.Stored+summary.FromCache, len(ids), time.Since(started).Round(time.Millisecond))

			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&missing, "missing", false, "Fetch every release without a poster")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum releases with --missing (0 for all)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Concurrent fetches (defaults to fetchConcurrency)")
	cmd.Flags().BoolVar(&skipExisting, "skip-existing", true, "Keep posters that are already stored")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Abort the batch after this long")
	return cmd
}

// summarize folds batch outcomes into a notification event.
func summarize(outcomes []posters.Outcome) notifications.Event {
	ev := notifications.Event{Type: notifications.EventFetchCompleted, Total: len(outcomes)}
	for _, o := range outcomes {
		switch {
		case o.OK && o.FromCache:
			ev.FromCache++
		case o.OK:
			ev.Stored++
		case o.Status == posters.StatusNotFound:
			ev.NotFound++
		default:
			ev.Failed++
			if ev.ErrorMessage == "" && o.Err != nil {
				ev.ErrorMessage = o.Err.Error()
			}
		}
	}
	if ev.Total > 0 && ev.Stored+ev.FromCache == 0 {
		ev.Type = notifications.EventFetchFailed
	}
	return ev
}
