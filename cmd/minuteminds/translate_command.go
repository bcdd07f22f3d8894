package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"minuteminds/internal/language"
)

func newTranslateCommand(ctx *commandContext) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate the current transcript",
		RunE: func(cmd *cobra.Command, args []string) error {
			requested := target
			if strings.TrimSpace(requested) == "" {
				requested = ctx.config.Translate.DefaultTarget
			}
			lang, err := language.Normalize(requested)
			if err != nil {
				return err
			}
			if !language.Supported(lang, ctx.config.Translate.Targets) {
				return fmt.Errorf("%s is not in the configured target set (%s)",
					language.DisplayName(lang), strings.Join(ctx.config.Translate.Targets, ", "))
			}

			if err := ctx.pipeline.Translate(cmd.Context(), lang); err != nil {
				return userError(err)
			}

			doc := ctx.pipeline.Document()
			translated, ok := doc.Translations[lang]
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Translation already in progress")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s:\n%s\n", language.DisplayName(lang), translated)
			return nil
		},
	}

	cmd.Flags().StringVarP(&target, "to", "t", "", "Target language (defaults to translate.default_target)")
	return cmd
}
