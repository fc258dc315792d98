package cli

import (
	"github.com/danielholmes839/pagi-login/internal/pagi"
	"github.com/spf13/cobra"
)

func newSelectorsCommand(app *App) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "selectors",
		Short: "Print the page selectors as yaml, ready to edit and pass to --selectors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			selectors, err := app.selectors(file)
			if err != nil {
				return err
			}
			return pagi.WriteSelectors(cmd.OutOrStdout(), selectors)
		},
	}

	cmd.Flags().StringVar(&file, "selectors", "", "yaml file to merge over the defaults")
	return cmd
}
