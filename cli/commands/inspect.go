package commands

import (
	"fmt"

	"github.com/satishbabariya/neodb/cli/internal/ui"
	"github.com/satishbabariya/neodb/runtime/client"
	"github.com/spf13/cobra"
)

func newDescribeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <table>",
		Short: "Print the columns of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(c *client.Client) error {
				result, err := c.DB().Describe(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				ui.PrintResult(result)
				return nil
			})
		},
	}
}

func newExplainCommand(a *app) *cobra.Command {
	var args []string

	cmd := &cobra.Command{
		Use:   "explain <sql>",
		Short: "Print the query plan of a statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, sql []string) error {
			return a.withClient(cmd, func(c *client.Client) error {
				result, err := c.DB().Explain(cmd.Context(), sql[0], stringArgs(args)...)
				if err != nil {
					return err
				}
				return ui.PrintMarkdown(fmt.Sprintf("## Plan\n\n```sql\n%s\n```\n\n%s", sql[0], ui.MarkdownTable(result)))
			})
		},
	}

	cmd.Flags().StringArrayVarP(&args, "arg", "a", nil, "bind value, repeatable")
	return cmd
}

func newShowCreateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show-create <table>",
		Short: "Print the DDL of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(c *client.Client) error {
				ddl, err := c.DB().ShowCreateTable(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if ddl == "" {
					return fmt.Errorf("table %s does not exist", args[0])
				}
				ui.PrintSQL(ddl)
				return nil
			})
		},
	}
}

func newPingCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Connect and print the topology and server version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			spinner := ui.Spinner("Connecting...")
			c, err := a.open(cmd)
			ui.StopSpinner(spinner)
			if err != nil {
				return err
			}
			defer c.Close(cmd.Context())

			top := c.Topology()
			replica := "none"
			if ep, ok := top.Replica(); ok {
				replica = fmt.Sprintf("#%d %s", top.ReplicaIndex, ep.Address())
			}

			pairs := [][2]string{
				{"driver", top.Driver},
				{"primary", top.Primary.Address()},
				{"replica", replica},
				{"client", a.settings.ClientIP},
				{"prefix", top.Prefix},
			}

			v, err := c.DB().CheckServerVersion(cmd.Context())
			if v != nil {
				pairs = append(pairs, [2]string{"server", v.String()})
			}
			ui.PrintKV(pairs)
			if err != nil {
				return err
			}

			ui.PrintSuccess("Connected")
			return nil
		},
	}
}
