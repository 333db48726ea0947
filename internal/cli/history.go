package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show completions for a day and its month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetString("date")
			return withApp(func(a *app) error {
				day := time.Now().In(a.cfg.Location)
				if raw != "" {
					parsed, err := time.ParseInLocation("2006-01-02", raw, a.cfg.Location)
					if err != nil {
						return fmt.Errorf("date must be YYYY-MM-DD")
					}
					day = parsed
				}

				month, err := a.history.Month(cmd.Context(), day)
				if err != nil {
					return err
				}
				tasks, err := a.history.CompletedOn(cmd.Context(), day)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s\n", month.Month.Format("January 2006"))
				fmt.Fprintf(out, "  completed:     %d\n", month.TotalCompleted)
				fmt.Fprintf(out, "  active days:   %d\n", month.ActiveDays)
				fmt.Fprintf(out, "  daily average: %.1f\n\n", month.DailyAverage)

				fmt.Fprintf(out, "%s:\n", day.Format("2006-01-02"))
				if len(tasks) == 0 {
					fmt.Fprintln(out, "  No task was completed on this day.")
					return nil
				}
				for _, task := range tasks {
					fmt.Fprintf(out, "  %s  %s\n", task.CompletedAt.In(day.Location()).Format("15:04"), task.Title)
				}
				return nil
			})
		},
	}
	cmd.Flags().String("date", "", "Day to show (YYYY-MM-DD), defaults to today")
	return cmd
}
