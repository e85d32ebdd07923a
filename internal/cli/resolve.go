package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reqstack/pkg/errors"
	"github.com/matzehuels/reqstack/pkg/manifest"
	"github.com/matzehuels/reqstack/pkg/target"
)

// formatText is the human-readable output format; the others come from manifest.
const formatText = "text"

// resolveOpts holds the flags of the resolve command.
type resolveOpts struct {
	group  string // single group to print (all if empty)
	format string // text, json, toml, yaml
	output string // output file path (stdout if empty)
}

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	opts := resolveOpts{format: formatText}

	cmd := &cobra.Command{
		Use:   "resolve [-- installer-args...]",
		Short: "Resolve every dependency group of a project",
		Long: `Resolve the build, test, install and extras groups of a project.

Installer arguments after "--" are scanned for a --cuda=<version> flag, which
is used when --cuda is not given; the remaining arguments are left untouched.

Examples:
  reqstack resolve                          # all groups, human-readable
  reqstack resolve --format json -o deps.json
  reqstack resolve --group install          # one requirement per line
  LMDEPLOY_TARGET_DEVICE=ascend reqstack resolve --group all
  reqstack resolve -- bdist_wheel --cuda=12`,
		Args: installerArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runResolve(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.group, "group", "g", "", "resolve a single group (build, test, install or an extras name)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: text, json, toml, yaml")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}

func (c *CLI) runResolve(cmd *cobra.Command, opts resolveOpts, installerArgs []string) error {
	if opts.format != formatText && !manifest.ValidFormats[opts.format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: text, json, toml, yaml)", opts.format)
	}

	s, err := loadSettings(cmd, c.configFile)
	if err != nil {
		return err
	}
	if v, rest, ok := target.StripCUDAFlag(installerArgs); ok {
		if s.CUDA == "" {
			s.CUDA = v
		}
		c.Logger.Debug("installer args", "cuda", v, "forwarded", strings.Join(rest, " "))
	}
	c.warnUnknownCUDA(cmd.ErrOrStderr(), s.CUDA)

	layout, err := s.layout()
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	mopts := s.manifestOptions(debugf(c.Logger))

	var buf bytes.Buffer
	if opts.group != "" {
		pkgs, err := manifest.ResolveGroup(cmd.Context(), layout, opts.group, mopts)
		if err != nil {
			return err
		}
		if err := writeGroup(&buf, opts.group, pkgs, opts.format); err != nil {
			return err
		}
		prog.done(fmt.Sprintf("Resolved %s: %d entries", opts.group, len(pkgs)))
	} else {
		res, err := manifest.Resolve(cmd.Context(), layout, mopts)
		if err != nil {
			return err
		}
		if err := writeResult(&buf, res, layout, opts.format); err != nil {
			return err
		}
		prog.done(fmt.Sprintf("Resolved %d groups for %s", len(layout.GroupNames()), res.Target))
	}

	return emit(cmd.OutOrStdout(), cmd.ErrOrStderr(), buf.Bytes(), opts.output)
}

// installerArgs only accepts positional arguments after "--", so a mistyped
// flag or group name is reported instead of being forwarded.
func installerArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	if cmd.ArgsLenAtDash() != 0 {
		return errors.New(errors.ErrCodeInvalidInput, "unexpected argument %q (installer arguments go after \"--\")", args[0])
	}
	return nil
}

// writeResult writes every group of res.
func writeResult(w io.Writer, res *manifest.Result, layout manifest.Layout, format string) error {
	if format != formatText {
		return manifest.Encode(w, res, format)
	}

	header := res.Name
	if res.Version != "" {
		header += " " + res.Version
	}
	printKeyValue(w, "package", header)
	printKeyValue(w, "target", res.Target)
	if res.CUDA != "" {
		printKeyValue(w, "cuda", res.CUDA)
	}
	fmt.Fprintln(w)

	titles := map[string]string{
		manifest.GroupBuild:   "setup_requires",
		manifest.GroupTest:    "tests_require",
		manifest.GroupInstall: "install_requires",
	}
	for _, group := range layout.GroupNames() {
		pkgs, _ := res.Group(group)
		title, ok := titles[group]
		if !ok {
			title = "extras_require[" + group + "]"
		}
		printGroup(w, title, pkgs)
	}
	return nil
}

// writeGroup writes a single group. Text output is one entry per line with no
// styling so it can be fed to an installer.
func writeGroup(w io.Writer, group string, pkgs []string, format string) error {
	switch format {
	case formatText:
		for _, p := range pkgs {
			fmt.Fprintln(w, p)
		}
		return nil
	case manifest.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(pkgs)
	default:
		return manifest.Encode(w, map[string][]string{group: pkgs}, format)
	}
}

// emit writes data to path, or to w when path is empty. Status lines go to
// status so that w only ever carries the dependency list.
func emit(w, status io.Writer, data []byte, path string) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	printSuccess(status, "Wrote dependency list")
	printFile(status, path)
	return nil
}

func (c *CLI) warnUnknownCUDA(w io.Writer, version string) {
	if version == "" || slices.Contains(target.CUDAVersions(), version) {
		return
	}
	printWarning(w, "unknown CUDA version %q: no extra packages appended (known: %s)",
		version, strings.Join(target.CUDAVersions(), ", "))
}
