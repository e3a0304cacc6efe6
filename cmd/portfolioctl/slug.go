package main

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/portfolio/internal/core"
)

type slugResult struct {
	Slug    string `json:"slug"`
	Excerpt string `json:"excerpt,omitempty"`
}

func slugCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slug <title>",
		Short: "Preview the slug and excerpt a post would get",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := slugResult{Slug: core.Slugify(strings.Join(args, " "))}

			contentFile, _ := cmd.Flags().GetString("content")
			if contentFile != "" {
				var (
					raw []byte
					err error
				)
				if contentFile == "-" {
					raw, err = io.ReadAll(cmd.InOrStdin())
				} else {
					raw, err = os.ReadFile(contentFile)
				}
				if err != nil {
					return err
				}
				length, _ := cmd.Flags().GetInt("length")
				result.Excerpt = core.GenerateExcerpt(string(raw), length)
			}
			return render(cmd, result)
		},
	}
	cmd.Flags().StringP("content", "c", "", "Markdown file to excerpt (- for stdin)")
	cmd.Flags().IntP("length", "n", core.DefaultExcerptLength, "Excerpt length in characters")
	return cmd
}
