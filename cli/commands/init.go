package commands

import (
	"fmt"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/satishbabariya/neodb/cli/internal/config"
	"github.com/satishbabariya/neodb/cli/internal/ui"
	"github.com/satishbabariya/neodb/database"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newInitCommand(a *app) *cobra.Command {
	var (
		output string
		yes    bool
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a " + config.FileName + " configuration",
		Long:  "Create a configuration file with the database connection settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exists, err := afero.Exists(config.AppFs, output)
			if err != nil {
				return err
			}
			if exists && !force {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", output)
			}

			s := config.Default()
			if !yes {
				if err := prompt(s); err != nil {
					return err
				}
			}

			if err := config.Save(output, s); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}

			ui.PrintSuccess("Created %s", output)
			ui.PrintKV([][2]string{
				{"driver", s.Database.Driver},
				{"primary", s.Database.Primary.Address()},
			})
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", config.FileName, "file to write")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "write the defaults without prompting")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}

// prompt asks for the connection settings, starting from s
func prompt(s *config.Settings) error {
	db := &s.Database

	if err := survey.AskOne(&survey.Select{
		Message: "Database driver:",
		Options: []string{database.MySQL, database.SQLite},
		Default: db.Driver,
	}, &db.Driver); err != nil {
		return err
	}

	if db.Driver == database.SQLite {
		db.Primary = database.Endpoint{Path: "neodb.sqlite"}
		if err := survey.AskOne(&survey.Input{
			Message: "Database file:",
			Default: db.Primary.Path,
		}, &db.Primary.Path, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	} else {
		port := strconv.Itoa(db.Primary.Port)
		questions := []*survey.Question{
			{Name: "host", Prompt: &survey.Input{Message: "Primary host:", Default: db.Primary.Host}, Validate: survey.Required},
			{Name: "port", Prompt: &survey.Input{Message: "Port:", Default: port}, Validate: validPort},
			{Name: "dbname", Prompt: &survey.Input{Message: "Database name:", Default: db.Primary.DBName}},
			{Name: "user", Prompt: &survey.Input{Message: "User:", Default: db.Primary.User}},
			{Name: "password", Prompt: &survey.Password{Message: "Password:"}},
		}

		answers := struct {
			Host     string
			Port     string
			DBName   string `survey:"dbname"`
			User     string
			Password string
		}{}
		if err := survey.Ask(questions, &answers); err != nil {
			return err
		}

		db.Primary.Host = answers.Host
		db.Primary.Port, _ = strconv.Atoi(answers.Port)
		db.Primary.DBName = answers.DBName
		db.Primary.User = answers.User
		db.Primary.Password = answers.Password
	}

	return survey.AskOne(&survey.Input{
		Message: "Table prefix:",
		Default: db.Prefix,
	}, &db.Prefix)
}

func validPort(ans interface{}) error {
	s, _ := ans.(string)
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > 65535 {
		return fmt.Errorf("invalid port %q", s)
	}
	return nil
}
