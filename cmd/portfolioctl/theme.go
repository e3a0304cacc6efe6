package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/portfolio/internal/config"
	"github.com/example/portfolio/internal/models"
	"github.com/example/portfolio/internal/state"
	"github.com/example/portfolio/internal/storage"
	"github.com/example/portfolio/internal/theme"
)

type themeResult struct {
	Mode models.ThemeMode `json:"mode"`
	Dark bool             `json:"dark"`
	File string           `json:"file"`
}

func themeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or change the persisted theme preference",
	}
	cmd.PersistentFlags().String("file", "", "Storage file (default $THEME_FILE or the user config dir)")
	cmd.PersistentFlags().Bool("prefers-dark", false, "Treat the platform preference as dark")

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the current theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTheme(cmd, nil)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:       "set <light|dark|system>",
		Short:     "Set the theme",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"light", "dark", "system"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTheme(cmd, state.SetTheme{Mode: models.ThemeMode(args[0])})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Cycle system -> light -> dark -> light",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTheme(cmd, state.ToggleTheme{})
		},
	})
	return cmd
}

// runTheme loads the persisted mode into a store, lets a theme manager apply
// and persist it, then dispatches action when set.
func runTheme(cmd *cobra.Command, action state.Action) error {
	ctx := context.Background()
	path := themeFile(cmd)
	prefersDark, _ := cmd.Flags().GetBool("prefers-dark")

	local := storage.NewFileStorage(path)
	store := state.NewStore(state.Services{}, theme.InitialMode(ctx, local), zap.NewNop())
	doc := theme.NewClassList()
	manager := theme.NewManager(store, doc, theme.NewStaticPreference(prefersDark), local, zap.NewNop())
	manager.Start()
	defer manager.Stop()

	if action != nil {
		if err := store.Dispatch(ctx, action); err != nil {
			return err
		}
	}
	return render(cmd, themeResult{
		Mode: store.Snapshot().Theme.Mode,
		Dark: doc.Has(theme.ClassDark),
		File: path,
	})
}

func themeFile(cmd *cobra.Command) string {
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		return path
	}
	return config.ThemeFile()
}
