// Package cli implements the reqstack command-line interface.
//
// # Commands
//
//   - resolve: resolve every dependency group of a project (or one with --group)
//   - parse: resolve individual requirement files
//   - explain: show how each requirement line is classified
//   - targets: show the selected hardware target and the files it maps to
//   - completion: shell completion scripts
//
// # Configuration
//
// Settings come from flags, REQSTACK_* environment variables and an optional
// config file, in that order of precedence. See loadSettings.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging of every file
// read and include followed.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/reqstack/pkg/buildinfo"
	"github.com/matzehuels/reqstack/pkg/observability"
)

// appName is the application name used for directories, env prefix and display.
const appName = "reqstack"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configFile string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "reqstack resolves requirement files into dependency lists",
		Long: `reqstack reads plain-text requirement files, follows their includes and
renders flat, version-annotated dependency lists for every group of a Python
package build: build, test, install and the named extras.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			observability.SetResolveHooks(&logHooks{logger: c.Logger})
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.configFile, "config", "", "config file (default: $XDG_CONFIG_HOME/reqstack/config.yaml)")
	pf.StringP(keyRoot, "C", ".", "project directory")
	pf.String(keyLayout, "", "layout file (default: <root>/reqstack.toml if present)")
	pf.String(keyTarget, "", "hardware target (overrides the environment)")
	pf.String(keyTargetEnv, defaultTargetEnv, "environment variable naming the target")
	pf.String(keyDefaultTarget, defaultTarget, "target used when the environment variable is unset")
	pf.String(keyCUDA, "", "CUDA major version whose runtime packages are appended (11 or 12)")
	pf.Bool(keyNoVersion, false, "strip version constraints")
	pf.Bool(keyRelativeIncludes, false, "resolve -r paths against the including file")

	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.parseCommand())
	root.AddCommand(c.explainCommand())
	root.AddCommand(c.targetsCommand())
	root.AddCommand(c.completionCommand())

	return root
}
