package manifest

import (
	"maps"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/reqstack/pkg/errors"
	"github.com/matzehuels/reqstack/pkg/target"
)

// Fixed group names. Extras use their own names.
const (
	GroupBuild   = "build"
	GroupTest    = "test"
	GroupInstall = "install"
)

// Layout describes where a project keeps its requirement files.
type Layout struct {
	Name        string            `toml:"name"`
	VersionFile string            `toml:"version_file"`
	Build       string            `toml:"build"`
	Test        string            `toml:"test"`
	Install     string            `toml:"install"`
	Extras      map[string]string `toml:"extras"`
	Optional    []string          `toml:"optional"`
}

// DefaultLayout returns the conventional requirements/ layout.
func DefaultLayout() Layout {
	return Layout{
		Build:   "requirements/build.txt",
		Test:    "requirements/test.txt",
		Install: "requirements/" + target.RuntimeTemplate,
		Extras: map[string]string{
			"all":   target.AllTemplate,
			"lite":  "requirements/lite.txt",
			"serve": "requirements/serve.txt",
		},
	}
}

// LoadLayout decodes a TOML layout file. Fields left out of the file keep
// their DefaultLayout values; an [extras] table replaces the default extras.
func LoadLayout(path string) (Layout, error) {
	var l Layout
	md, err := toml.DecodeFile(path, &l)
	if err != nil {
		if isNotExist(err) {
			return Layout{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "layout file %s", path)
		}
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode layout %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Layout{}, errors.New(errors.ErrCodeInvalidConfig, "layout %s: unknown key %q", path, undecoded[0].String())
	}

	l = l.WithDefaults()
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// WithDefaults returns a copy of Layout with empty fields taken from
// DefaultLayout.
func (l Layout) WithDefaults() Layout {
	def := DefaultLayout()
	out := l
	if out.Build == "" {
		out.Build = def.Build
	}
	if out.Test == "" {
		out.Test = def.Test
	}
	if out.Install == "" {
		out.Install = def.Install
	}
	if out.Extras == nil {
		out.Extras = def.Extras
	} else {
		out.Extras = maps.Clone(out.Extras)
	}
	out.Optional = slices.Clone(out.Optional)
	return out
}

// Validate checks group names and path templates.
func (l Layout) Validate() error {
	for _, p := range []string{l.Build, l.Test, l.Install} {
		if err := errors.ValidatePath(p); err != nil {
			return err
		}
	}
	for name, p := range l.Extras {
		if err := errors.ValidateGroupName(name); err != nil {
			return err
		}
		if name == GroupBuild || name == GroupTest || name == GroupInstall {
			return errors.New(errors.ErrCodeInvalidConfig, "extras group %q shadows a fixed group", name)
		}
		if err := errors.ValidatePath(p); err != nil {
			return err
		}
	}
	names := l.GroupNames()
	for _, opt := range l.Optional {
		if !slices.Contains(names, opt) {
			return errors.New(errors.ErrCodeInvalidConfig, "optional group %q is not defined", opt)
		}
	}
	return nil
}

// GroupNames lists build, test, install and then the extras sorted by name.
func (l Layout) GroupNames() []string {
	names := []string{GroupBuild, GroupTest, GroupInstall}
	return append(names, l.ExtraNames()...)
}

// ExtraNames lists the extras groups sorted by name.
func (l Layout) ExtraNames() []string {
	return slices.Sorted(maps.Keys(l.Extras))
}

// Template returns the path template of a group.
func (l Layout) Template(group string) (string, bool) {
	switch group {
	case GroupBuild:
		return l.Build, true
	case GroupTest:
		return l.Test, true
	case GroupInstall:
		return l.Install, true
	}
	p, ok := l.Extras[group]
	return p, ok
}

// IsOptional reports whether a missing top-level file is tolerated for group.
func (l Layout) IsOptional(group string) bool {
	return slices.Contains(l.Optional, group)
}
