package manifest

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/reqstack/pkg/errors"
	"github.com/matzehuels/reqstack/pkg/observability"
	"github.com/matzehuels/reqstack/pkg/requirements"
	"github.com/matzehuels/reqstack/pkg/target"
)

// Options configures a resolution pass.
type Options struct {
	Root             string               // Project directory; requirement paths are relative to it
	Target           target.Selector      // Chooses the {target} substitution
	CUDA             string               // CUDA major version whose packages are appended ("" for none)
	NoVersion        bool                 // Drop version constraints
	RelativeIncludes bool                 // Resolve "-r" against the including file
	Logger           func(string, ...any) // Debug callback (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Root == "" {
		opts.Root = "."
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}

// Result holds every resolved dependency group of a project.
type Result struct {
	Name            string              `json:"name" toml:"name" yaml:"name"`
	Version         string              `json:"version,omitempty" toml:"version,omitempty" yaml:"version,omitempty"`
	Target          string              `json:"target" toml:"target" yaml:"target"`
	CUDA            string              `json:"cuda,omitempty" toml:"cuda,omitempty" yaml:"cuda,omitempty"`
	SetupRequires   []string            `json:"setup_requires" toml:"setup_requires" yaml:"setup_requires"`
	TestsRequire    []string            `json:"tests_require" toml:"tests_require" yaml:"tests_require"`
	InstallRequires []string            `json:"install_requires" toml:"install_requires" yaml:"install_requires"`
	ExtrasRequire   map[string][]string `json:"extras_require" toml:"extras_require" yaml:"extras_require"`
}

// Group returns the entries of a group by name.
func (r *Result) Group(name string) ([]string, bool) {
	switch name {
	case GroupBuild:
		return r.SetupRequires, true
	case GroupTest:
		return r.TestsRequire, true
	case GroupInstall:
		return r.InstallRequires, true
	}
	pkgs, ok := r.ExtrasRequire[name]
	return pkgs, ok
}

// Resolve parses every group of layout. The first failing group aborts the
// pass; there is no partial result.
func Resolve(ctx context.Context, layout Layout, opts Options) (*Result, error) {
	layout = layout.WithDefaults()
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	opts = opts.WithDefaults()

	t, err := opts.Target.Target()
	if err != nil {
		return nil, err
	}

	res := &Result{
		Name:          layout.Name,
		Target:        t,
		CUDA:          opts.CUDA,
		ExtrasRequire: make(map[string][]string, len(layout.Extras)),
	}
	if res.Name == "" {
		res.Name = detectName(opts.Root)
	}
	if res.Version, err = resolveVersion(layout, res.Name, opts); err != nil {
		return nil, err
	}

	for _, group := range layout.GroupNames() {
		pkgs, err := resolveGroup(ctx, layout, group, t, opts)
		if err != nil {
			return nil, err
		}
		switch group {
		case GroupBuild:
			res.SetupRequires = pkgs
		case GroupTest:
			res.TestsRequire = pkgs
		case GroupInstall:
			res.InstallRequires = pkgs
		default:
			res.ExtrasRequire[group] = pkgs
		}
	}
	return res, nil
}

// ResolveGroup parses a single group of layout.
func ResolveGroup(ctx context.Context, layout Layout, group string, opts Options) ([]string, error) {
	layout = layout.WithDefaults()
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	opts = opts.WithDefaults()

	t, err := opts.Target.Target()
	if err != nil {
		return nil, err
	}
	return resolveGroup(ctx, layout, group, t, opts)
}

// GroupPath returns the requirement file of group with {target} expanded,
// relative to the project root.
func GroupPath(layout Layout, group, tgt string) (string, error) {
	tmpl, ok := layout.Template(group)
	if !ok {
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown group %q (available: %v)", group, layout.GroupNames())
	}
	return target.Expand(tmpl, tgt), nil
}

func resolveGroup(ctx context.Context, layout Layout, group, tgt string, opts Options) (pkgs []string, err error) {
	path, err := GroupPath(layout, group, tgt)
	if err != nil {
		return nil, err
	}

	hooks := observability.Resolve()
	hooks.OnGroupStart(ctx, group, path)
	start := time.Now()
	defer func() {
		hooks.OnGroupComplete(ctx, group, len(pkgs), time.Since(start), err)
	}()

	if layout.IsOptional(group) && !exists(projectPath(opts.Root, path)) {
		opts.Logger("group %s: %s missing, treating as empty", group, path)
		pkgs = []string{}
	} else {
		pkgs, err = requirements.Parse(ctx, path, requirements.Options{
			Root:               opts.Root,
			RelativeToIncluder: opts.RelativeIncludes,
			NoVersion:          opts.NoVersion,
			Logger:             opts.Logger,
		})
		if err != nil {
			return nil, err
		}
		if pkgs == nil {
			pkgs = []string{}
		}
	}

	pkgs = append(pkgs, target.CUDAPackages(opts.CUDA)...)
	opts.Logger("group %s: %d entries from %s", group, len(pkgs), path)
	return pkgs, nil
}

func resolveVersion(layout Layout, name string, opts Options) (string, error) {
	if layout.VersionFile != "" {
		return ReadVersion(projectPath(opts.Root, layout.VersionFile))
	}
	probe := filepath.Join(opts.Root, name, "version.py")
	if !exists(probe) {
		return "", nil
	}
	v, err := ReadVersion(probe)
	if err != nil {
		opts.Logger("version: %v", err)
		return "", nil
	}
	return v, nil
}

// projectPath resolves path the way the requirement reader does: absolute
// paths are kept, relative ones are taken from root.
func projectPath(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
