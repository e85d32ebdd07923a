package manifest

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/reqstack/pkg/errors"
)

// versionRE matches a single-line __version__ assignment with a string literal.
var versionRE = regexp.MustCompile(`(?m)^__version__\s*(?::\s*str\s*)?=\s*(['"])([^'"\n]+)['"]`)

// ReadVersion extracts the __version__ string from a Python source file
// without executing it. Only a literal assignment is recognized.
func ReadVersion(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if isNotExist(err) {
			return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "version file %s", path)
		}
		return "", errors.Wrap(errors.ErrCodeFileRead, err, "read %s", path)
	}
	m := versionRE.FindSubmatch(data)
	if m == nil {
		return "", errors.New(errors.ErrCodeInvalidFormat, "%s: no __version__ = '<literal>' assignment", path)
	}
	return string(m[2]), nil
}

// detectName returns the [project] name from root/pyproject.toml, or the base
// name of root when that file is missing or unnamed.
func detectName(root string) string {
	var pyproject struct {
		Project struct {
			Name string `toml:"name"`
		} `toml:"project"`
		Tool struct {
			Poetry struct {
				Name string `toml:"name"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if _, err := toml.DecodeFile(filepath.Join(root, "pyproject.toml"), &pyproject); err == nil {
		if pyproject.Project.Name != "" {
			return pyproject.Project.Name
		}
		if pyproject.Tool.Poetry.Name != "" {
			return pyproject.Tool.Poetry.Name
		}
	}
	if abs, err := filepath.Abs(root); err == nil {
		return filepath.Base(abs)
	}
	return filepath.Base(root)
}

func isNotExist(err error) bool {
	return stderrors.Is(err, fs.ErrNotExist)
}
