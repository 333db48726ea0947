package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"taskflow/internal/model"
	"taskflow/internal/service"
)

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			description, _ := cmd.Flags().GetString("description")
			category, _ := cmd.Flags().GetString("category")
			return withApp(func(a *app) error {
				task, err := a.tasks.Add(cmd.Context(), service.TaskInput{
					Title:       strings.Join(args, " "),
					Description: description,
					Category:    category,
				})
				if err != nil {
					return err
				}
				service.NoticeAdded(task).Send(cmd.Context(), printNotifier{cmd.OutOrStdout()})
				fmt.Fprintf(cmd.OutOrStdout(), "id: %s\n", task.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringP("description", "d", "", "Task description")
	cmd.Flags().StringP("category", "c", "", "Task category")
	return cmd
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks of a view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rawFilter, _ := cmd.Flags().GetString("filter")
			term, _ := cmd.Flags().GetString("search")
			filter, err := model.ParseFilter(rawFilter)
			if err != nil {
				return err
			}
			return withApp(func(a *app) error {
				tasks, err := a.tasks.Search(cmd.Context(), filter, term)
				if err != nil {
					return err
				}
				printTasks(cmd.OutOrStdout(), filter, tasks)
				return nil
			})
		},
	}
	cmd.Flags().StringP("filter", "f", string(model.FilterAll), "View: all, today, completed, archived, history")
	cmd.Flags().StringP("search", "s", "", "Only tasks whose title or description contains this text")
	return cmd
}

func newEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a task's title, description or category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch model.Patch
			if cmd.Flags().Changed("title") {
				title, _ := cmd.Flags().GetString("title")
				patch.Title = &title
			}
			if cmd.Flags().Changed("description") {
				description, _ := cmd.Flags().GetString("description")
				patch.Description = &description
			}
			if cmd.Flags().Changed("category") {
				category, _ := cmd.Flags().GetString("category")
				patch.Category = &category
			}
			if patch == (model.Patch{}) {
				return fmt.Errorf("nothing to change, pass --title, --description or --category")
			}
			return runOnTask(cmd, args[0], func(ctx context.Context, a *app, id string) (service.Notice, error) {
				_, err := a.tasks.Update(ctx, id, patch)
				return service.NoticeUpdated(), err
			})
		},
	}
	cmd.Flags().StringP("title", "t", "", "New title")
	cmd.Flags().StringP("description", "d", "", "New description")
	cmd.Flags().StringP("category", "c", "", "New category")
	return cmd
}

func newDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Complete a task, or reopen a completed one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnTask(cmd, args[0], func(ctx context.Context, a *app, id string) (service.Notice, error) {
				task, err := a.tasks.ToggleCompletion(ctx, id)
				return service.NoticeCompletion(task), err
			})
		},
	}
}

func newTodayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today <id>",
		Short: "Add a task to today, or remove it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnTask(cmd, args[0], func(ctx context.Context, a *app, id string) (service.Notice, error) {
				task, err := a.tasks.ToggleToday(ctx, id)
				return service.NoticeToday(task), err
			})
		},
	}
}

func newArchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive <id>",
		Short: "Archive a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnTask(cmd, args[0], func(ctx context.Context, a *app, id string) (service.Notice, error) {
				task, err := a.tasks.Archive(ctx, id)
				return service.NoticeArchived(task), err
			})
		},
	}
}

func newUnarchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unarchive <id>",
		Short: "Restore an archived task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnTask(cmd, args[0], func(ctx context.Context, a *app, id string) (service.Notice, error) {
				task, err := a.tasks.Unarchive(ctx, id)
				return service.NoticeUnarchived(task), err
			})
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task permanently (fixed tasks are refused)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnTask(cmd, args[0], func(ctx context.Context, a *app, id string) (service.Notice, error) {
				task, err := a.tasks.Get(ctx, id)
				if err != nil {
					return service.Notice{}, err
				}
				return service.NoticeDeleted(task), a.tasks.Delete(ctx, id)
			})
		},
	}
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear today's selection and every completion mark",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				if err := a.tasks.ResetToday(cmd.Context()); err != nil {
					return err
				}
				service.NoticeReset().Send(cmd.Context(), printNotifier{cmd.OutOrStdout()})
				return nil
			})
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show task counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				stats, err := a.tasks.Stats(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "all:       %d\n", stats.Total)
				fmt.Fprintf(out, "today:     %d\n", stats.Today)
				fmt.Fprintf(out, "completed: %d\n", stats.Completed)
				fmt.Fprintf(out, "archived:  %d\n", stats.Archived)
				return nil
			})
		},
	}
}

// runOnTask resolves ref to a task id and prints the notice of a successful action.
func runOnTask(cmd *cobra.Command, ref string, action func(ctx context.Context, a *app, id string) (service.Notice, error)) error {
	return withApp(func(a *app) error {
		ctx := cmd.Context()
		task, err := a.tasks.Find(ctx, ref)
		if err != nil {
			return err
		}
		notice, err := action(ctx, a, task.ID)
		if err != nil {
			return err
		}
		notice.Send(ctx, printNotifier{cmd.OutOrStdout()})
		return nil
	})
}

func printTasks(w io.Writer, filter model.Filter, tasks []model.Task) {
	if len(tasks) == 0 {
		fmt.Fprintf(w, "No %s tasks.\n", filter)
		return
	}
	fmt.Fprintf(w, "%s (%d):\n\n", strings.ToUpper(string(filter)), len(tasks))
	for _, task := range tasks {
		marks := []byte("[    ]")
		if task.IsCompleted {
			marks[1] = 'x'
		}
		if task.IsSelectedForToday {
			marks[2] = 't'
		}
		if task.IsArchived {
			marks[3] = 'a'
		}
		if task.IsFixed {
			marks[4] = 'f'
		}
		fmt.Fprintf(w, "  %s  %s  %s\n", shortID(task.ID), marks, task.Title)
		if task.Description != "" {
			fmt.Fprintf(w, "            %s\n", task.Description)
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
