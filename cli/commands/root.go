// Package commands implements the neodb CLI commands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/satishbabariya/neodb/cli/internal/config"
	"github.com/satishbabariya/neodb/cli/internal/ui"
	"github.com/satishbabariya/neodb/internal/logger"
	"github.com/satishbabariya/neodb/query/executor"
	"github.com/satishbabariya/neodb/query/querydoc"
	"github.com/satishbabariya/neodb/runtime/client"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// app holds the global flags and what they load
type app struct {
	configPath string
	clientIP   string
	logLevel   string

	settings *config.Settings
	log      *slog.Logger
}

// Execute is the main entry point for the CLI
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		ui.PrintError("%v", err)
		return err
	}
	return nil
}

// NewRootCommand builds the command tree
func NewRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "neodb",
		Short: "Compile and run neodb query documents",
		Long: `neodb compiles YAML query documents to SQL and runs them against the
configured primary and replicas.

Configuration is read from .neodb.yaml in the current directory, $HOME or
$HOME/.config/neodb. NEODB_* environment variables override it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "config file (default searches "+config.FileName+")")
	flags.StringVar(&a.clientIP, "client-ip", "", "client address used to pick a replica")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(
		newInitCommand(a),
		newCompileCommand(a),
		newQueryCommand(a),
		newExecCommand(a),
		newDescribeCommand(a),
		newExplainCommand(a),
		newShowCreateCommand(a),
		newPingCommand(a),
		newVersionCommand(),
	)

	return cmd
}

func (a *app) setup() error {
	s, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	if a.clientIP != "" {
		s.ClientIP = a.clientIP
	}
	if a.logLevel != "" {
		s.Log.Level = a.logLevel
	}

	l, err := logger.New(logger.Options{Level: s.Log.Level, Format: s.Log.Format})
	if err != nil {
		return err
	}
	logger.Init(l)

	a.settings = s
	a.log = l
	return nil
}

// open connects the configured topology for this invocation
func (a *app) open(cmd *cobra.Command) (*client.Client, error) {
	req := executor.RequestContext{
		ClientIP: a.settings.ClientIP,
		URI:      cmd.CommandPath(),
	}
	return client.Open(cmd.Context(), a.settings.Database, req, client.WithLogger(a.log))
}

// withClient runs fn with an open client and closes it afterwards
func (a *app) withClient(cmd *cobra.Command, fn func(c *client.Client) error) error {
	c, err := a.open(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(context.Background()); err != nil {
			a.log.Warn("close database", "error", err)
		}
	}()
	return fn(c)
}

func readDocument(path string) (*querydoc.Document, error) {
	data, err := afero.ReadFile(config.AppFs, path)
	if err != nil {
		return nil, err
	}

	doc, err := querydoc.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// stringArgs converts --arg values to bind values
func stringArgs(args []string) []interface{} {
	out := make([]interface{}, len(args))
	for i, a := range args {
		out[i] = a
	}
	return out
}
