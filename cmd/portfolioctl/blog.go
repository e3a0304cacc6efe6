package main

import (
	"github.com/spf13/cobra"

	"github.com/example/portfolio/internal/state"
)

func blogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blog",
		Short: "Read blog posts",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List posts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openClient(cmd, false)
			if err != nil {
				return err
			}
			defer c.Close()

			var action state.Action = state.FetchBlogPosts{}
			published, _ := cmd.Flags().GetBool("published")
			tag, _ := cmd.Flags().GetString("tag")
			recent, _ := cmd.Flags().GetInt("recent")
			switch {
			case recent > 0:
				action = state.FetchRecentPosts{Count: recent}
			case published || tag != "":
				action = state.FetchPublishedPosts{Tag: tag}
			}
			if err := c.store.Dispatch(cmd.Context(), action); err != nil {
				return err
			}
			return render(cmd, c.store.Snapshot().Blog.Posts)
		},
	}
	list.Flags().Bool("published", false, "Only published posts")
	list.Flags().String("tag", "", "Only published posts with this tag")
	list.Flags().Int("recent", 0, "Only the N most recent published posts")

	show := &cobra.Command{
		Use:   "show <slug>",
		Short: "Show the post with a slug",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openClient(cmd, false)
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.store.Dispatch(cmd.Context(), state.FetchPostBySlug{Slug: args[0]}); err != nil {
				return err
			}
			return render(cmd, c.store.Snapshot().Blog.CurrentPost)
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}
