// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/autobrr/marquee/internal/models"
	"github.com/autobrr/marquee/pkg/categories"
	"github.com/autobrr/marquee/pkg/releases"
	"github.com/autobrr/marquee/pkg/stringutils"
)

func RunReleaseCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "release",
		Short: "Release operations",
	}

	cmd.AddCommand(runReleaseAddCommand(a))
	cmd.AddCommand(runReleaseShowCommand(a))
	cmd.AddCommand(runReleaseStatsCommand(a))
	return cmd
}

// parseCategoryIDs reads a comma separated id list such as "2000,2040,105000".
func parseCategoryIDs(raw string) ([]int, error) {
	var ids []int
	for part := range strings.SplitSeq(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil || id <= 0 {
			return nil, errors.Errorf("invalid category id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func runReleaseAddCommand(a *app) *cobra.Command {
	var (
		source string
		cats   string
		year   int
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Insert a release the way an indexer sync would",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(args[0])
			ids, err := parseCategoryIDs(cats)
			if err != nil {
				return err
			}
			db, err := a.DB()
			if err != nil {
				return err
			}

			hints := releases.NewDefaultParser().Hints(title)
			r := &models.Release{
				SourceName:      source,
				Title:           title,
				NormalizedTitle: stringutils.NormalizeTitle(hints.Title),
				CategoryIDs:     categories.NormalizeCategoryIDs(ids),
			}
			if year == 0 {
				year = hints.Year
			}
			if year > 0 {
				r.Year = &year
			}

			created, err := models.NewReleaseStore(db).Create(cmd.Context(), r)
			if err != nil {
				return errors.Wrap(err, "could not add release")
			}
			cmd.Printf("Added release %d (%s)\n", created.ID, created.NormalizedTitle)
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Indexer name")
	cmd.Flags().StringVar(&cats, "categories", "", "Comma separated torznab category ids")
	cmd.Flags().IntVar(&year, "year", 0, "Release year (parsed from the title when omitted)")
	return cmd
}

func runReleaseShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>...",
		Short: "Show stored releases",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			db, err := a.DB()
			if err != nil {
				return err
			}
			found, err := models.NewReleaseStore(db).GetMany(cmd.Context(), ids)
			if err != nil {
				return errors.Wrap(err, "could not load releases")
			}

			rows := make([][]string, 0, len(ids))
			for _, id := range ids {
				r, ok := found[id]
				if !ok {
					rows = append(rows, []string{strconv.FormatInt(id, 10), "(not found)"})
					continue
				}
				rows = append(rows, []string{
					strconv.FormatInt(r.ID, 10),
					r.Title,
					intOrDash(r.Year),
					r.UnifiedCategory.String(),
					r.MediaType,
					orDash(r.PosterProvider),
					orDash(r.PosterFile),
				})
			}
			cmd.Println(renderTable(
				[]string{"ID", "Title", "Year", "Category", "Media", "Provider", "Poster"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight},
			))
			return nil
		},
	}
}

func runReleaseStatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count releases and posters by category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.DB()
			if err != nil {
				return err
			}
			stats, err := models.NewReleaseStore(db).PosterStats(cmd.Context())
			if err != nil {
				return errors.Wrap(err, "could not load stats")
			}
			rows := make([][]string, 0, len(stats))
			for _, s := range stats {
				rows = append(rows, []string{
					s.Unified.String(),
					strconv.Itoa(s.Total),
					strconv.Itoa(s.WithPoster),
				})
			}
			cmd.Println(renderTable([]string{"Category", "Releases", "With poster"}, rows,
				[]columnAlignment{alignLeft, alignRight, alignRight}))
			return nil
		},
	}
}
