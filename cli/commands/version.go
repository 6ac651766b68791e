package commands

import (
	"github.com/satishbabariya/neodb/cli/internal/ui"
	"github.com/satishbabariya/neodb/cli/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	var latest string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// no config needed
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			ui.PrintKV(info.Pairs())

			if latest == "" {
				return nil
			}
			outdated, err := info.Outdated(latest)
			if err != nil {
				return err
			}
			if outdated {
				ui.PrintWarning("A new version is available: %s", latest)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&latest, "latest", "", "compare against this released version")
	return cmd
}
