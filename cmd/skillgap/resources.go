package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"skillgap-backend/internal/catalog"
)

func newResourcesCmd(build appBuilder) *cobra.Command {
	var skill string
	cmd := &cobra.Command{
		Use:   "resources",
		Short: "Show learning resources, optionally for one skill",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := build(ctx)
			if err != nil {
				return fmt.Errorf("bootstrap: %w", err)
			}
			defer app.Close()

			var list []catalog.Resource
			if skill = strings.TrimSpace(skill); skill != "" {
				list, err = app.Catalog.Lookup(ctx, skill)
			} else {
				list, err = app.Catalog.List(ctx)
			}
			if err != nil {
				return fmt.Errorf("load resources: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintf(out, "No resources found for %q.\n", skill)
				return nil
			}
			for _, r := range list {
				fmt.Fprintf(out, "[%s] %s (%s) - %s\n     -> %s\n", r.Skill, r.Title, r.Platform, r.Difficulty, r.URL)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&skill, "skill", "s", "", "Skill name, case-insensitive")
	return cmd
}
