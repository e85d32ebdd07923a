package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/matzehuels/reqstack/pkg/errors"
	"github.com/matzehuels/reqstack/pkg/manifest"
	"github.com/matzehuels/reqstack/pkg/requirements"
	"github.com/matzehuels/reqstack/pkg/target"
)

// Setting keys. They double as persistent flag names; the environment form
// is REQSTACK_<KEY> with dashes turned into underscores.
const (
	keyRoot             = "root"
	keyLayout           = "layout"
	keyTarget           = "target"
	keyTargetEnv        = "target-env"
	keyDefaultTarget    = "default-target"
	keyCUDA             = "cuda"
	keyNoVersion        = "no-version"
	keyRelativeIncludes = "relative-includes"
)

const (
	defaultTargetEnv = target.DefaultEnvVar
	defaultTarget    = target.DefaultTarget

	// layoutFile is looked up in the project root when --layout is not given.
	layoutFile = "reqstack.toml"
)

// settings is the merged runtime configuration.
type settings struct {
	Root             string `mapstructure:"root"`
	Layout           string `mapstructure:"layout"`
	Target           string `mapstructure:"target"`
	TargetEnv        string `mapstructure:"target-env"`
	DefaultTarget    string `mapstructure:"default-target"`
	CUDA             string `mapstructure:"cuda"`
	NoVersion        bool   `mapstructure:"no-version"`
	RelativeIncludes bool   `mapstructure:"relative-includes"`
}

// loadSettings merges defaults, the config file, REQSTACK_* environment
// variables and the command's flags, lowest precedence first. A missing
// config file is fine unless it was named explicitly.
func loadSettings(cmd *cobra.Command, configFile string) (settings, error) {
	var s settings
	v := viper.New()

	v.SetDefault(keyRoot, ".")
	v.SetDefault(keyLayout, "")
	v.SetDefault(keyTarget, "")
	v.SetDefault(keyTargetEnv, defaultTargetEnv)
	v.SetDefault(keyDefaultTarget, defaultTarget)
	v.SetDefault(keyCUDA, "")
	v.SetDefault(keyNoVersion, false)
	v.SetDefault(keyRelativeIncludes, false)

	if configFile != "" {
		if _, err := os.Stat(configFile); err != nil {
			return s, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config file %s", configFile)
		}
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return s, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config")
		}
	}

	v.SetEnvPrefix(appName)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return s, errors.Wrap(errors.ErrCodeInternal, err, "bind flags")
	}

	if err := v.Unmarshal(&s); err != nil {
		return s, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	return s, nil
}

// configDir returns the config directory using XDG standard (~/.config/reqstack/).
func configDir() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

// layout loads the layout file named in the settings, or <root>/reqstack.toml
// when present, or falls back to the default layout.
func (s settings) layout() (manifest.Layout, error) {
	if s.Layout != "" {
		return manifest.LoadLayout(s.Layout)
	}
	path := filepath.Join(s.Root, layoutFile)
	if _, err := os.Stat(path); err == nil {
		return manifest.LoadLayout(path)
	}
	return manifest.DefaultLayout(), nil
}

func (s settings) selector() target.Selector {
	return target.Selector{
		EnvVar:   s.TargetEnv,
		Default:  s.DefaultTarget,
		Override: s.Target,
	}
}

func (s settings) manifestOptions(logf func(string, ...any)) manifest.Options {
	return manifest.Options{
		Root:             s.Root,
		Target:           s.selector(),
		CUDA:             s.CUDA,
		NoVersion:        s.NoVersion,
		RelativeIncludes: s.RelativeIncludes,
		Logger:           logf,
	}
}

func (s settings) requirementOptions(logf func(string, ...any)) requirements.Options {
	return requirements.Options{
		Root:               s.Root,
		RelativeToIncluder: s.RelativeIncludes,
		NoVersion:          s.NoVersion,
		Logger:             logf,
	}
}
