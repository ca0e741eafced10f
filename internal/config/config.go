package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kirsle/configdir"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	appName = "run-bundler"
	envFile = "RUN_BUNDLER_CONFIG"
)

type (
	Config struct {
		// Root of the decoder installation. Exported to tools as $JOSHUA.
		Joshua string            `mapstructure:"joshua"`
		Env    map[string]string `mapstructure:"env"`
		// Log is an optional file receiving JSON logs.
		Log   string `mapstructure:"log"`
		Tools Tools  `mapstructure:"tools"`
	}

	// Tools holds command lines. They may carry extra arguments and
	// shell-style quoting, e.g. `build_binary -s`.
	Tools struct {
		CopyConfig    string `mapstructure:"copy_config"`
		BuildBinary   string `mapstructure:"build_binary"`
		GrammarPacker string `mapstructure:"grammar_packer"`
	}
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("tools.copy_config", "$JOSHUA/scripts/copy-config.pl")
	v.SetDefault("tools.build_binary", "$JOSHUA/src/joshua/decoder/ff/lm/kenlm/build_binary")
	v.SetDefault("tools.grammar_packer", "$JOSHUA/scripts/support/grammar-packer.pl")
}

// DirsLocal lists the per-user directories searched for run-bundler.yml.
func DirsLocal() []string {
	dirs := []string{}
	if home, err := homedir.Dir(); err == nil {
		dirs = append(dirs, filepath.Join(home, "."+appName))
	}
	return append(dirs, configdir.LocalConfig(appName))
}

// Read loads the configuration. configFile wins over $RUN_BUNDLER_CONFIG,
// which wins over searching for run-bundler.yml. A file that was named
// must exist; when searching, finding nothing leaves the defaults.
func Read(configFile string) (config *Config, v *viper.Viper, err error) {
	v = viper.New()
	setDefaults(v)
	err = v.BindEnv("joshua", "JOSHUA")
	if err != nil {
		return nil, nil, err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else if configFileEnv := os.Getenv(envFile); configFileEnv != "" {
		v.SetConfigFile(configFileEnv)
	} else {
		v.SetConfigName(appName)
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		for _, dir := range DirsLocal() {
			v.AddConfigPath(dir)
		}
	}

	err = v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("config: %w", err)
		}
		err = nil
	}

	config = new(Config)
	err = v.Unmarshal(config)
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	return config, v, nil
}

// PlaceEnvironmentVariables exports Env and $JOSHUA, then expands
// environment references in the log path.
func (c *Config) PlaceEnvironmentVariables() error {
	for key, value := range c.Env {
		err := os.Setenv(strings.ToUpper(key), os.ExpandEnv(value))
		if err != nil {
			return err
		}
	}

	if c.Joshua != "" {
		joshua, err := homedir.Expand(os.ExpandEnv(c.Joshua))
		if err != nil {
			return err
		}
		c.Joshua = joshua
		err = os.Setenv("JOSHUA", joshua)
		if err != nil {
			return err
		}
	}

	// Tool commands are expanded word by word once they are split.
	c.Log = os.ExpandEnv(c.Log)
	return nil
}

func (c *Config) Check() error {
	check := func(key, command string) error {
		if strings.TrimSpace(command) == "" {
			return fmt.Errorf("config: `tools.%s` is empty. set it to the program's path", key)
		}
		return nil
	}
	if err := check("copy_config", c.Tools.CopyConfig); err != nil {
		return err
	}
	if err := check("build_binary", c.Tools.BuildBinary); err != nil {
		return err
	}
	return check("grammar_packer", c.Tools.GrammarPacker)
}
