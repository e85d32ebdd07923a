// Package target selects hardware-specific requirement files.
//
// A build targets one accelerator family ("cuda", "ascend", "maca", ...). The
// family is read from an environment variable, falling back to a default, and
// substituted into file name templates:
//
//	sel := target.Selector{}
//	path, _ := sel.RuntimeFile() // "runtime_cuda.txt" when LMDEPLOY_TARGET_DEVICE is unset
//
// Separately, a CUDA major version ("11" or "12") maps to a fixed list of NVIDIA
// runtime packages appended verbatim to resolved dependency lists. See
// [CUDAPackages] and [StripCUDAFlag].
package target

import (
	"os"
	"strings"

	"github.com/matzehuels/reqstack/pkg/errors"
)

const (
	// DefaultEnvVar names the environment variable holding the target.
	DefaultEnvVar = "LMDEPLOY_TARGET_DEVICE"

	// DefaultTarget is used when the environment variable is unset or empty.
	DefaultTarget = "cuda"

	// Placeholder is replaced by the target in file name templates.
	Placeholder = "{target}"

	// RuntimeTemplate names the install-time requirement file.
	RuntimeTemplate = "runtime_" + Placeholder + ".txt"

	// AllTemplate names the requirement file of the "all" extras group.
	AllTemplate = "requirements_" + Placeholder + ".txt"
)

// LookupFunc reports the value of an environment variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Selector picks the target from the environment.
// The zero value reads DefaultEnvVar from the process environment and falls
// back to DefaultTarget.
type Selector struct {
	EnvVar   string     // Environment variable to consult (default: DefaultEnvVar)
	Default  string     // Fallback target (default: DefaultTarget)
	Override string     // Explicit target; skips the environment when set
	Lookup   LookupFunc // Environment lookup (default: os.LookupEnv)
}

// WithDefaults returns a copy of Selector with zero values replaced by defaults.
func (s Selector) WithDefaults() Selector {
	sel := s
	if sel.EnvVar == "" {
		sel.EnvVar = DefaultEnvVar
	}
	if sel.Default == "" {
		sel.Default = DefaultTarget
	}
	if sel.Lookup == nil {
		sel.Lookup = os.LookupEnv
	}
	return sel
}

// Target returns the selected target identifier. Empty environment values
// count as unset. The result is validated so it can be used in a file name.
func (s Selector) Target() (string, error) {
	sel := s.WithDefaults()
	t := sel.Override
	if t == "" {
		if v, ok := sel.Lookup(sel.EnvVar); ok && v != "" {
			t = v
		} else {
			t = sel.Default
		}
	}
	if err := errors.ValidateTarget(t); err != nil {
		return "", err
	}
	return t, nil
}

// RuntimeFile returns RuntimeTemplate expanded for the selected target.
func (s Selector) RuntimeFile() (string, error) {
	return s.File(RuntimeTemplate)
}

// AllFile returns AllTemplate expanded for the selected target.
func (s Selector) AllFile() (string, error) {
	return s.File(AllTemplate)
}

// File expands template for the selected target.
func (s Selector) File(template string) (string, error) {
	t, err := s.Target()
	if err != nil {
		return "", err
	}
	return Expand(template, t), nil
}

// Expand substitutes target for every Placeholder in template.
func Expand(template, target string) string {
	return strings.ReplaceAll(template, Placeholder, target)
}

// SelectRequirementFile returns the install-time requirement file name for the
// target named by envVar, or by def when the variable is unset.
func SelectRequirementFile(envVar, def string) (string, error) {
	return Selector{EnvVar: envVar, Default: def}.RuntimeFile()
}
