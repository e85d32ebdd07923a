package requirements

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/reqstack/pkg/errors"
	"github.com/matzehuels/reqstack/pkg/observability"
)

// Options configures how requirement files are read and rendered.
type Options struct {
	Root               string               // Base directory for relative paths (default: working directory)
	RelativeToIncluder bool                 // Resolve "-r" paths against the including file's directory
	NoVersion          bool                 // Drop version constraints when rendering (Parse only)
	Logger             func(string, ...any) // Debug callback (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}

// Parse reads path, follows includes and renders every entry.
func Parse(ctx context.Context, path string, opts Options) ([]string, error) {
	lines, err := Read(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	return RenderAll(lines, !opts.NoVersion), nil
}

// Read returns the classified lines of path with every include expanded in
// place. The result never contains KindInclude entries.
func Read(ctx context.Context, path string, opts Options) ([]Line, error) {
	r := &reader{ctx: ctx, opts: opts.WithDefaults()}
	return r.read(r.join(opts.Root, path), "", 0)
}

// reader carries the chain of files currently being expanded so that a file
// reappearing in its own include chain is reported instead of recursing.
type reader struct {
	ctx   context.Context
	opts  Options
	chain []string // cleaned absolute paths, outermost first
	names []string // the same paths as written, for error messages
}

type rawLine struct {
	text string
	no   int
}

// read expands path. site is "file:line" of the include directive that led
// here, empty for the top-level file.
func (r *reader) read(path, site string, depth int) ([]Line, error) {
	key := canonical(path)
	if i := slices.Index(r.chain, key); i >= 0 {
		loop := append(slices.Clone(r.names[i:]), path)
		return nil, errors.New(errors.ErrCodeCyclicInclude, "cyclic include: %s", strings.Join(loop, " -> "))
	}
	r.chain = append(r.chain, key)
	r.names = append(r.names, path)
	defer func() {
		r.chain = r.chain[:len(r.chain)-1]
		r.names = r.names[:len(r.names)-1]
	}()

	raw, err := readLines(path)
	if err != nil {
		if site != "" {
			return nil, errors.Wrap(errors.GetCode(err), err, "included from %s", site)
		}
		return nil, err
	}
	r.opts.Logger("read %s (%d requirement lines)", path, len(raw))
	observability.Resolve().OnFileRead(r.ctx, path, len(raw))

	var out []Line
	for _, rl := range raw {
		l, err := Classify(rl.text)
		if err != nil {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "%s:%d: %s", path, rl.no, errors.UserMessage(err))
		}
		l.Source = path
		l.LineNo = rl.no

		if l.Kind != KindInclude {
			out = append(out, l)
			continue
		}

		target := r.includePath(path, l.Include)
		r.opts.Logger("include %s -> %s", path, target)
		observability.Resolve().OnInclude(r.ctx, path, target, depth+1)

		sub, err := r.read(target, fmt.Sprintf("%s:%d", path, rl.no), depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

// includePath resolves an include target. By default it is relative to the
// configured root rather than to the including file.
func (r *reader) includePath(from, target string) string {
	if filepath.IsAbs(target) {
		return target
	}
	if r.opts.RelativeToIncluder {
		return filepath.Join(filepath.Dir(from), target)
	}
	return r.join(r.opts.Root, target)
}

func (r *reader) join(root, path string) string {
	if root == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// readLines returns the trimmed lines of path that are neither blank nor
// full-line comments. The file is closed before returning.
func readLines(path string) ([]rawLine, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "requirements file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeFileRead, err, "open %s", path)
	}
	defer f.Close()

	var lines []rawLine
	br := bufio.NewReader(f)
	for no := 1; ; no++ {
		text, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, errors.Wrap(errors.ErrCodeFileRead, err, "read %s", path)
		}
		if line := strings.TrimSpace(text); line != "" && line[0] != '#' {
			lines = append(lines, rawLine{text: line, no: no})
		}
		if err == io.EOF {
			break
		}
	}
	return lines, nil
}

func canonical(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
