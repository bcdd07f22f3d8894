package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newItemsCommand(ctx *commandContext) *cobra.Command {
	itemsCmd := &cobra.Command{
		Use:   "items",
		Short: "Decisions and action items",
	}

	itemsCmd.AddCommand(newItemsExtractCommand(ctx))
	itemsCmd.AddCommand(newItemsListCommand(ctx))
	itemsCmd.AddCommand(newItemsToggleCommand(ctx))

	return itemsCmd
}

func newItemsExtractCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "extract",
		Short: "Extract decisions and action items from the transcript",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.pipeline.ExtractItems(cmd.Context()); err != nil {
				return userError(err)
			}
			return printItems(cmd, ctx)
		},
	}
}

func newItemsListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the extracted items",
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				return writeJSON(cmd, ctx.pipeline.Document().KeyItems)
			}
			return printItems(cmd, ctx)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newItemsToggleCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <number|id>",
		Short: "Toggle an item between open and done",
		Long: "Flips the item's status immediately and persists the change. When " +
			"persistence fails the local flip is kept and the error is reported.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arg := strings.TrimSpace(args[0])
			var err error
			if number, convErr := strconv.Atoi(arg); convErr == nil {
				err = ctx.pipeline.ToggleItem(cmd.Context(), number-1)
			} else {
				err = ctx.pipeline.ToggleItemByID(cmd.Context(), arg)
			}
			if err != nil {
				// The flip may have applied locally; show the list regardless.
				if listErr := printItems(cmd, ctx); listErr != nil {
					return listErr
				}
				return userError(err)
			}
			return printItems(cmd, ctx)
		},
	}
}

func printItems(cmd *cobra.Command, ctx *commandContext) error {
	items := ctx.pipeline.Document().KeyItems
	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No items extracted")
		return nil
	}

	rows := make([][]string, 0, len(items))
	for i, item := range items {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			itemMarker(item.Done()),
			truncate(item.Text, 60),
			item.Assignee,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"#", "Done", "Item", "Assignee"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	))
	return nil
}
