package main

import (
	"github.com/spf13/cobra"

	"github.com/example/portfolio/internal/models"
	"github.com/example/portfolio/internal/state"
)

func tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage the signed-in user's tasks",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List tasks, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, _ := cmd.Flags().GetString("filter")
			return withTasks(cmd, state.SetTaskFilter{Filter: models.TaskFilter(filter)})
		},
	}
	list.Flags().StringP("filter", "f", "all", "Filter (all, active, completed)")
	addCredentialFlags(list)

	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			description, _ := cmd.Flags().GetString("description")
			return withTasks(cmd, state.CreateTask{Input: models.TaskInput{Title: args[0], Description: description}})
		},
	}
	add.Flags().StringP("description", "d", "", "Task description")
	addCredentialFlags(add)

	toggle := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a task's completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTasks(cmd, state.ToggleTask{ID: args[0]})
		},
	}
	addCredentialFlags(toggle)

	remove := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTasks(cmd, state.DeleteTask{ID: args[0]})
		},
	}
	addCredentialFlags(remove)

	cmd.AddCommand(list, add, toggle, remove)
	return cmd
}

// withTasks signs in, loads the task list, runs action and prints the
// visible tasks.
func withTasks(cmd *cobra.Command, action state.Action) error {
	c, err := openClient(cmd, true)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx := cmd.Context()
	if err := c.store.Dispatch(ctx, state.LoadTasks{}); err != nil {
		return err
	}
	if err := c.store.Dispatch(ctx, action); err != nil {
		return err
	}
	return render(cmd, c.store.Snapshot().Tasks.Visible())
}
