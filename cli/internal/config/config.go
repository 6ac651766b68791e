package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/satishbabariya/neodb/database"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var AppFs = afero.NewOsFs()

const (
	// FileName is the config file searched in ., $HOME and $HOME/.config/neodb
	FileName  = ".neodb.yaml"
	EnvPrefix = "NEODB"
)

// LogSettings configures the CLI logger
type LogSettings struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Settings holds the CLI configuration
type Settings struct {
	Database database.Config `mapstructure:"database" yaml:"database"`
	Log      LogSettings     `mapstructure:"log" yaml:"log"`
	// ClientIP is the client address used to pick a replica
	ClientIP string `mapstructure:"client_ip" yaml:"client_ip,omitempty"`
}

// Default returns the settings written by init
func Default() *Settings {
	return &Settings{
		Database: database.Config{
			Driver: database.MySQL,
			Primary: database.Endpoint{
				Host:    "127.0.0.1",
				Port:    database.DefaultMySQLPort,
				DBName:  "neodb",
				User:    "root",
				Charset: "utf8mb4",
			},
		},
		Log: LogSettings{
			Level:  "info",
			Format: "text",
		},
		ClientIP: "127.0.0.1",
	}
}

// Load reads the settings. An empty path searches FileName in the usual
// places and a missing file is not an error. Environment variables prefixed
// with NEODB_ override file values, e.g. NEODB_DATABASE_PRIMARY_HOST. The
// .env and .env.local files are read first, .env.local winning.
func Load(path string) (*Settings, error) {
	if err := loadDotenv(".env", false); err != nil {
		return nil, err
	}
	if err := loadDotenv(".env.local", true); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetFs(AppFs)
	v.SetConfigType("yaml")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
		v.AddConfigPath(".")
		v.AddConfigPath(home)
		v.AddConfigPath(filepath.Join(home, ".config", "neodb"))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &s, nil
}

// setDefaults registers every key so AutomaticEnv applies to Unmarshal
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.prefix", "")
	v.SetDefault("database.with_replica", false)
	v.SetDefault("database.force_hint", "")
	v.SetDefault("database.log_queries", false)

	for _, section := range []string{"base", "primary"} {
		for _, key := range []string{"host", "dbname", "user", "password", "charset", "path"} {
			v.SetDefault("database."+section+"."+key, "")
		}
		v.SetDefault("database."+section+".port", 0)
	}

	for _, key := range []string{"max_open", "max_idle", "max_lifetime", "max_idle_time", "health_check"} {
		v.SetDefault("database.pool."+key, 0)
	}

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("client_ip", d.ClientIP)
}

// loadDotenv sets the variables of a dotenv file. Existing variables are
// kept unless overload is set. A missing file is ignored.
func loadDotenv(name string, overload bool) error {
	data, err := afero.ReadFile(AppFs, name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	vars, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}

	for key, value := range vars {
		if _, set := os.LookupEnv(key); set && !overload {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return nil
}

// Save writes s as YAML to path, creating its directory
func Save(path string, s *Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := AppFs.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return afero.WriteFile(AppFs, path, data, 0644)
}
