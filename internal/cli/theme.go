package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newThemeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or toggle the dark-mode preference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			toggle, _ := cmd.Flags().GetBool("toggle")
			return withApp(func(a *app) error {
				var (
					dark bool
					err  error
				)
				if toggle {
					dark, err = a.theme.Toggle(cmd.Context())
				} else {
					dark, err = a.theme.IsDark(cmd.Context())
				}
				if err != nil {
					return err
				}
				if dark {
					fmt.Fprintln(cmd.OutOrStdout(), "dark")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "light")
				}
				return nil
			})
		},
	}
	cmd.Flags().Bool("toggle", false, "Flip the preference")
	return cmd
}
