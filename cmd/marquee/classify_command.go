// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/autobrr/marquee/internal/models"
)

func RunClassifyCommand(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "classify [id...]",
		Short: "Resolve unified categories for releases",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			svc, err := a.Service()
			if err != nil {
				return err
			}
			if all {
				db, err := a.DB()
				if err != nil {
					return err
				}
				if ids, err = models.NewReleaseStore(db).ListIDs(cmd.Context(), false, 0); err != nil {
					return errors.Wrap(err, "could not list releases")
				}
			}
			if len(ids) == 0 {
				return errors.New("no release ids given (use --all for every release)")
			}

			rows := make([][]string, 0, len(ids))
			for _, id := range ids {
				c, err := svc.Classify(cmd.Context(), id)
				if err != nil {
					return errors.Wrapf(err, "could not classify release %d", id)
				}
				rows = append(rows, []string{
					strconv.FormatInt(id, 10),
					intOrDash(c.StdID),
					intOrDash(c.SpecID),
					c.Unified.String(),
					c.MediaType,
				})
			}
			cmd.Println(renderTable([]string{"ID", "Std", "Spec", "Category", "Media"}, rows,
				[]columnAlignment{alignRight, alignRight, alignRight}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Classify every stored release")
	return cmd
}
