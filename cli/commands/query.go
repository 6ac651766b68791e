package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/satishbabariya/neodb/cli/internal/ui"
	"github.com/satishbabariya/neodb/query/mapper"
	"github.com/satishbabariya/neodb/runtime/client"
	"github.com/spf13/cobra"
)

var errNoStatement = errors.New("give a query document or --sql")

func newQueryCommand(a *app) *cobra.Command {
	var (
		literal string
		args    []string
		primary bool
	)

	cmd := &cobra.Command{
		Use:   "query [file.yaml]",
		Short: "Run a select and print the rows",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, files []string) error {
			return a.withClient(cmd, func(c *client.Client) error {
				db := c.DB()
				db.SetFromMaster(primary)

				var (
					sql     string
					element string
					key     string
					err     error
				)
				switch {
				case literal != "":
					sql = literal
					db.ClearBinds()
					db.Bind(stringArgs(args)...)
				case len(files) == 1:
					doc, err := readDocument(files[0])
					if err != nil {
						return err
					}
					op := "select"
					if doc.SQL != "" {
						op = "sql"
					}
					if sql, err = doc.Compile(db.Compiler(), op); err != nil {
						return err
					}
					element, key = doc.Projection.Element, doc.Projection.Key
				default:
					return errNoStatement
				}

				result, err := db.FetchArray(cmd.Context(), sql, element, key)
				if err != nil {
					return err
				}

				printProjection(result, element, key)
				ui.PrintSuccess("%d rows", len(result.Rows))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&literal, "sql", "", "run this statement instead of a document")
	cmd.Flags().StringArrayVarP(&args, "arg", "a", nil, "bind value for --sql, repeatable")
	cmd.Flags().BoolVar(&primary, "primary", false, "read from the primary")

	return cmd
}

// printProjection prints the rows, or the key/value pairs when the
// document asks for a projection
func printProjection(result *mapper.Result, element, key string) {
	if element == "" || len(result.Pairs) == 0 {
		ui.PrintResult(result)
		return
	}

	rows := make([][]string, len(result.Pairs))
	for i, p := range result.Pairs {
		rows[i] = []string{fmt.Sprint(p.Key), fmt.Sprint(p.Value)}
	}
	header := key
	if header == "" {
		header = "#"
	}
	ui.PrintTable([]string{header, element}, rows)
}

func newExecCommand(a *app) *cobra.Command {
	var (
		literal string
		args    []string
		op      string
	)

	cmd := &cobra.Command{
		Use:   "exec [file.yaml]",
		Short: "Run a write and print the affected rows",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, files []string) error {
			return a.withClient(cmd, func(c *client.Client) error {
				db := c.DB()

				var (
					sql string
					err error
				)
				switch {
				case literal != "":
					sql = literal
					db.ClearBinds()
					db.Bind(stringArgs(args)...)
				case len(files) == 1:
					doc, err := readDocument(files[0])
					if err != nil {
						return err
					}
					if op == "" && doc.Op() == "select" {
						return fmt.Errorf("%s describes a select, use query", files[0])
					}
					if sql, err = doc.Compile(db.Compiler(), op); err != nil {
						return err
					}
				default:
					return errNoStatement
				}

				affected, err := db.Write(cmd.Context(), sql)
				if err != nil {
					return err
				}

				pairs := [][2]string{
					{"affected", affected.String()},
					{"legacy", fmt.Sprint(affected.Legacy())},
				}
				if isInsert(sql) {
					if id, err := db.LastInsertID(); err == nil {
						pairs = append(pairs, [2]string{"insert id", fmt.Sprint(id)})
					}
				}
				ui.PrintKV(pairs)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&literal, "sql", "", "run this statement instead of a document")
	cmd.Flags().StringArrayVarP(&args, "arg", "a", nil, "bind value for --sql, repeatable")
	cmd.Flags().StringVar(&op, "op", "", "insert, replace, update or delete")

	return cmd
}

func isInsert(sql string) bool {
	verb := strings.ToUpper(strings.TrimSpace(sql))
	return strings.HasPrefix(verb, "INSERT") || strings.HasPrefix(verb, "REPLACE")
}
