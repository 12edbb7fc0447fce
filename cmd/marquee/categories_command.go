// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/autobrr/marquee/internal/models"
	"github.com/autobrr/marquee/pkg/categories"
)

func RunCategoriesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List the standard catalog and manage indexer overrides",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.Println(renderStandardCatalog())
			return nil
		},
	}

	cmd.AddCommand(runCategoriesGroupsCommand())
	cmd.AddCommand(runCategoriesResolveCommand(a))
	cmd.AddCommand(runCategoriesOverrideCommand(a))
	return cmd
}

func renderStandardCatalog() string {
	all := categories.AllStandard()
	rows := make([][]string, 0, len(all))
	for _, c := range all {
		unified, _ := categories.UnifiedForStd(c.ID)
		rows = append(rows, []string{
			strconv.Itoa(c.ID),
			intOrDash(c.ParentID),
			c.Label,
			unified.String(),
		})
	}
	return renderTable([]string{"ID", "Parent", "Label", "Unified"}, rows,
		[]columnAlignment{alignRight, alignRight})
}

func runCategoriesGroupsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List canonical category groups and their aliases",
		RunE: func(cmd *cobra.Command, _ []string) error {
			groups := categories.Groups()
			rows := make([][]string, 0, len(groups))
			for _, g := range groups {
				unified, _ := categories.UnifiedForKey(g.Key)
				rows = append(rows, []string{g.Key, g.Label, unified.String(), strings.Join(g.Aliases, ", ")})
			}
			cmd.Println(renderTable([]string{"Key", "Label", "Unified", "Aliases"}, rows, nil))
			return nil
		},
	}
}

func runCategoriesResolveCommand(a *app) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:     "resolve <id[,id...]>",
		Short:   "Show how an indexer's category ids resolve",
		Example: "  marquee categories resolve --source C411 2000,105000",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseCategoryIDs(args[0])
			if err != nil {
				return err
			}
			svc, err := a.Service()
			if err != nil {
				return err
			}
			resolver, err := svc.Resolver(cmd.Context())
			if err != nil {
				return err
			}

			normalized := categories.NormalizeCategoryIDs(ids)
			std, spec := categories.ResolveStdSpec(nil, nil, normalized)
			unified := resolver.Resolve(source, nil, nil, normalized)
			cmd.Println(renderTable(
				[]string{"Ids", "Std", "Spec", "Unified", "Media"},
				[][]string{{
					formatIDs(normalized),
					intOrDash(std),
					intOrDash(spec),
					unified.String(),
					unified.MediaType(),
				}},
				nil,
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Indexer name")
	return cmd
}

func runCategoriesOverrideCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "override",
		Short: "Map indexer vendor categories onto unified categories",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List built-in and stored overrides",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.DB()
			if err != nil {
				return err
			}
			stored, err := models.NewCategoryOverrideStore(db).List(cmd.Context())
			if err != nil {
				return errors.Wrap(err, "could not list overrides")
			}
			rows := make([][]string, 0, len(categories.DefaultOverrides)+len(stored))
			for _, o := range categories.DefaultOverrides {
				rows = append(rows, []string{o.Source, strconv.Itoa(o.SpecID), o.Unified.String(), "built-in"})
			}
			for _, o := range stored {
				rows = append(rows, []string{o.Source, strconv.Itoa(o.SpecID), o.Unified.String(), "stored"})
			}
			cmd.Println(renderTable([]string{"Source", "Spec", "Unified", "Origin"}, rows,
				[]columnAlignment{alignLeft, alignRight}))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "set <source> <spec-id> <unified>",
		Short:   "Store an override",
		Example: "  marquee categories override set torr9 110000 Emission",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			specID, err := strconv.Atoi(args[1])
			if err != nil {
				return errors.Errorf("invalid spec id %q", args[1])
			}
			unified, err := categories.ParseUnified(args[2])
			if err != nil {
				return err
			}
			db, err := a.DB()
			if err != nil {
				return err
			}
			o := categories.Override{Source: args[0], SpecID: specID, Unified: unified}
			if err := models.NewCategoryOverrideStore(db).Upsert(cmd.Context(), o); err != nil {
				return errors.Wrap(err, "could not store override")
			}
			cmd.Printf("%s/%d -> %s\n", o.Source, o.SpecID, o.Unified)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <source> <spec-id>",
		Short: "Remove a stored override",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			specID, err := strconv.Atoi(args[1])
			if err != nil {
				return errors.Errorf("invalid spec id %q", args[1])
			}
			db, err := a.DB()
			if err != nil {
				return err
			}
			if err := models.NewCategoryOverrideStore(db).Delete(cmd.Context(), args[0], specID); err != nil {
				return errors.Wrap(err, "could not delete override")
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "export",
		Short: "Print stored overrides as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.DB()
			if err != nil {
				return err
			}
			stored, err := models.NewCategoryOverrideStore(db).List(cmd.Context())
			if err != nil {
				return errors.Wrap(err, "could not list overrides")
			}
			data, err := yaml.Marshal(overrideFile{Overrides: stored})
			if err != nil {
				return err
			}
			cmd.Print(string(data))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Store every override of a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides, err := readOverrideFile(args[0])
			if err != nil {
				return err
			}
			db, err := a.DB()
			if err != nil {
				return err
			}
			if err := models.NewCategoryOverrideStore(db).UpsertMany(cmd.Context(), overrides); err != nil {
				return errors.Wrapf(err, "could not import %s", args[0])
			}
			cmd.Printf("Imported %d overrides\n", len(overrides))
			return nil
		},
	})

	return cmd
}

// overrideFile is the YAML layout of override import and export:
//
//	overrides:
//	  - source: torr9
//	    specId: 110000
//	    unified: Emission
type overrideFile struct {
	Overrides []categories.Override `yaml:"overrides"`
}

func readOverrideFile(path string) ([]categories.Override, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not read override file")
	}
	var f overrideFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "could not parse %s", path)
	}
	for i, o := range f.Overrides {
		u, err := categories.ParseUnified(string(o.Unified))
		if err != nil {
			return nil, errors.Wrapf(err, "override %d", i+1)
		}
		f.Overrides[i].Unified = u
	}
	return f.Overrides, nil
}

func formatIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
