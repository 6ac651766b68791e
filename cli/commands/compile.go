package commands

import (
	"github.com/satishbabariya/neodb/cli/internal/ui"
	"github.com/satishbabariya/neodb/cli/internal/watch"
	"github.com/satishbabariya/neodb/query/sqlgen"
	"github.com/spf13/cobra"
)

func newCompileCommand(a *app) *cobra.Command {
	var (
		op     string
		expand bool
		follow bool
	)

	cmd := &cobra.Command{
		Use:   "compile <file.yaml>",
		Short: "Print the SQL and binds of a query document",
		Long: `Compile a query document without connecting to a database.

The operation is taken from the document unless --op is given: a literal sql
key runs as is, data with conditions is an update, data alone an insert and
anything else a select.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run := func() error {
				return a.compile(args[0], op, expand)
			}
			if !follow {
				return run()
			}

			w, err := watch.New(args[0], run, a.log)
			if err != nil {
				return err
			}
			ui.PrintHeader("Watching "+args[0], "press Ctrl+C to stop")
			return w.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&op, "op", "", "select, insert, replace, update or delete")
	cmd.Flags().BoolVar(&expand, "expand", false, "expand array binds into placeholder lists")
	cmd.Flags().BoolVarP(&follow, "watch", "w", false, "recompile when the file changes")

	return cmd
}

func (a *app) compile(path, op string, expand bool) error {
	doc, err := readDocument(path)
	if err != nil {
		return err
	}

	dialect, err := sqlgen.NewDialect(a.settings.Database.Driver)
	if err != nil {
		return err
	}

	c := sqlgen.NewCompiler(a.settings.Database.Prefix)
	c.SetDialect(dialect)
	sql, err := doc.Compile(c, op)
	if err != nil {
		return err
	}

	values, types := c.Binds().Values(), c.Binds().Types()
	if expand {
		sql, values, err = c.Expand(sql)
		if err != nil {
			return err
		}
		types = nil
		for _, v := range values {
			types = append(types, sqlgen.TypeOf(v))
		}
	}

	ui.PrintSQL(sql)
	ui.PrintBinds(values, types)
	return nil
}
