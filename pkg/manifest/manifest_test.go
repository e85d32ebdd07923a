package manifest

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/reqstack/pkg/errors"
	"github.com/matzehuels/reqstack/pkg/observability"
	"github.com/matzehuels/reqstack/pkg/target"
)

// project writes a requirement tree shaped like a typical inference package.
func project(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"requirements/build.txt":          "cmake_build_extension\nsetuptools\n",
		"requirements/test.txt":           "pytest\ncoverage>=7.0\n",
		"requirements/runtime_cuda.txt":   "accelerate>=0.29.3\ntorch<=2.5.1,>=2.0.0\ntriton==3.0.0; sys_platform == \"linux\"\n",
		"requirements/runtime_ascend.txt": "torch-npu==2.3.1\n",
		"requirements/lite.txt":           "auto_gptq\n",
		"requirements/serve.txt":          "fastapi\nuvicorn\n",
		"requirements_cuda.txt":           "-r requirements/build.txt\n-r requirements/runtime_cuda.txt\n-r requirements/lite.txt\n-r requirements/serve.txt\n",
		"requirements_ascend.txt":         "-r requirements/build.txt\n-r requirements/runtime_ascend.txt\n",
		"demo/version.py":                 "# Copyright\nfrom typing import Tuple\n\n__version__ = '0.7.1'\nshort_version = __version__\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func noEnv(string) (string, bool) { return "", false }

func TestResolveDefaultLayout(t *testing.T) {
	dir := project(t)
	layout := DefaultLayout()
	layout.Name = "demo"

	res, err := Resolve(context.Background(), layout, Options{
		Root:   dir,
		Target: target.Selector{Lookup: noEnv},
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if res.Name != "demo" || res.Version != "0.7.1" || res.Target != "cuda" {
		t.Errorf("header = (%q, %q, %q), want (demo, 0.7.1, cuda)", res.Name, res.Version, res.Target)
	}

	checks := []struct {
		group string
		want  []string
	}{
		{GroupBuild, []string{"cmake_build_extension", "setuptools"}},
		{GroupTest, []string{"pytest", "coverage>=7.0"}},
		{GroupInstall, []string{"accelerate>=0.29.3", "torch<=2.5.1,>=2.0.0", `triton==3.0.0;sys_platform == "linux"`}},
		{"lite", []string{"auto_gptq"}},
		{"serve", []string{"fastapi", "uvicorn"}},
		{"all", []string{
			"cmake_build_extension", "setuptools",
			"accelerate>=0.29.3", "torch<=2.5.1,>=2.0.0", `triton==3.0.0;sys_platform == "linux"`,
			"auto_gptq", "fastapi", "uvicorn",
		}},
	}
	for _, c := range checks {
		got, ok := res.Group(c.group)
		if !ok {
			t.Errorf("group %s missing", c.group)
			continue
		}
		if !slices.Equal(got, c.want) {
			t.Errorf("group %s = %q, want %q", c.group, got, c.want)
		}
	}
}

func TestResolveTargetFromEnvironment(t *testing.T) {
	dir := project(t)
	t.Setenv(target.DefaultEnvVar, "ascend")

	res, err := Resolve(context.Background(), DefaultLayout(), Options{Root: dir})
	if err != nil {
		t.Fatal(err)
	}
	if res.Target != "ascend" {
		t.Errorf("Target = %q, want ascend", res.Target)
	}
	if want := []string{"torch-npu==2.3.1"}; !slices.Equal(res.InstallRequires, want) {
		t.Errorf("InstallRequires = %q, want %q", res.InstallRequires, want)
	}
	if want := []string{"cmake_build_extension", "setuptools", "torch-npu==2.3.1"}; !slices.Equal(res.ExtrasRequire["all"], want) {
		t.Errorf("extras all = %q, want %q", res.ExtrasRequire["all"], want)
	}
}

func TestResolveAppendsCUDAPackagesToEveryGroup(t *testing.T) {
	dir := project(t)

	res, err := Resolve(context.Background(), DefaultLayout(), Options{
		Root:   dir,
		Target: target.Selector{Lookup: noEnv},
		CUDA:   "11",
	})
	if err != nil {
		t.Fatal(err)
	}

	cuda := target.CUDAPackages("11")
	for _, group := range DefaultLayout().GroupNames() {
		pkgs, _ := res.Group(group)
		if len(pkgs) < len(cuda) || !slices.Equal(pkgs[len(pkgs)-len(cuda):], cuda) {
			t.Errorf("group %s = %q, want CUDA packages at the end", group, pkgs)
		}
	}
}

func TestResolveUnknownCUDAVersion(t *testing.T) {
	dir := project(t)

	pkgs, err := ResolveGroup(context.Background(), DefaultLayout(), GroupBuild, Options{Root: dir, CUDA: "9"})
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"cmake_build_extension", "setuptools"}; !slices.Equal(pkgs, want) {
		t.Errorf("ResolveGroup() = %q, want %q", pkgs, want)
	}
}

func TestResolveNoVersion(t *testing.T) {
	dir := project(t)

	pkgs, err := ResolveGroup(context.Background(), DefaultLayout(), GroupInstall, Options{
		Root:      dir,
		Target:    target.Selector{Lookup: noEnv},
		NoVersion: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"accelerate", "torch<=2.5.1,", `triton;sys_platform == "linux"`}
	if !slices.Equal(pkgs, want) {
		t.Errorf("ResolveGroup(NoVersion) = %q, want %q", pkgs, want)
	}
}

func TestResolveMissingGroupFileIsFatal(t *testing.T) {
	dir := project(t)
	if err := os.Remove(filepath.Join(dir, "requirements", "lite.txt")); err != nil {
		t.Fatal(err)
	}

	_, err := Resolve(context.Background(), DefaultLayout(), Options{Root: dir, Target: target.Selector{Lookup: noEnv}})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Fatalf("Resolve() error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}

func TestResolveOptionalGroup(t *testing.T) {
	dir := project(t)
	if err := os.Remove(filepath.Join(dir, "requirements", "test.txt")); err != nil {
		t.Fatal(err)
	}

	layout := DefaultLayout()
	layout.Optional = []string{GroupTest}

	res, err := Resolve(context.Background(), layout, Options{
		Root:   dir,
		Target: target.Selector{Lookup: noEnv},
		CUDA:   "12",
	})
	if err != nil {
		t.Fatal(err)
	}
	if want := target.CUDAPackages("12"); !slices.Equal(res.TestsRequire, want) {
		t.Errorf("TestsRequire = %q, want only CUDA packages %q", res.TestsRequire, want)
	}
}

func TestResolveOptionalGroupAbsolutePath(t *testing.T) {
	dir := project(t)
	serve := filepath.Join(dir, "requirements", "serve.txt")

	layout := DefaultLayout()
	layout.Extras = map[string]string{"serve": serve}
	layout.Optional = []string{"serve"}

	// Root points elsewhere so only the absolute path can find the file.
	got, err := ResolveGroup(context.Background(), layout, "serve", Options{
		Root:   t.TempDir(),
		Target: target.Selector{Lookup: noEnv},
	})
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"fastapi", "uvicorn"}; !slices.Equal(got, want) {
		t.Errorf("ResolveGroup(serve) = %q, want %q", got, want)
	}

	if err := os.Remove(serve); err != nil {
		t.Fatal(err)
	}
	got, err = ResolveGroup(context.Background(), layout, "serve", Options{
		Root:   dir,
		Target: target.Selector{Lookup: noEnv},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("ResolveGroup(missing optional) = %q, want empty", got)
	}
}

func TestResolveUnknownGroup(t *testing.T) {
	_, err := ResolveGroup(context.Background(), DefaultLayout(), "nope", Options{Root: t.TempDir()})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ResolveGroup(nope) error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
}

func TestResolveDetectsName(t *testing.T) {
	dir := project(t)
	pyproject := "[project]\nname = \"demo\"\n"
	if err := os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte(pyproject), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := Resolve(context.Background(), DefaultLayout(), Options{Root: dir, Target: target.Selector{Lookup: noEnv}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Name != "demo" {
		t.Errorf("Name = %q, want demo", res.Name)
	}
	// demo/version.py is found by probing <name>/version.py.
	if res.Version != "0.7.1" {
		t.Errorf("Version = %q, want 0.7.1", res.Version)
	}
}

type recordingHooks struct {
	observability.NoopResolveHooks
	mu     sync.Mutex
	groups []string
	files  int
}

func (h *recordingHooks) OnGroupComplete(_ context.Context, group string, _ int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.groups = append(h.groups, group)
}

func (h *recordingHooks) OnFileRead(context.Context, string, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.files++
}

func TestResolveEmitsHooks(t *testing.T) {
	dir := project(t)
	hooks := &recordingHooks{}
	observability.SetResolveHooks(hooks)
	t.Cleanup(observability.Reset)

	if _, err := Resolve(context.Background(), DefaultLayout(), Options{Root: dir, Target: target.Selector{Lookup: noEnv}}); err != nil {
		t.Fatal(err)
	}

	want := []string{"build", "test", "install", "all", "lite", "serve"}
	if !slices.Equal(hooks.groups, want) {
		t.Errorf("completed groups = %q, want %q", hooks.groups, want)
	}
	// 5 single-file groups plus all.txt and its 4 includes.
	if hooks.files != 10 {
		t.Errorf("files read = %d, want 10", hooks.files)
	}
}

func TestEncode(t *testing.T) {
	res := &Result{
		Name:            "demo",
		Version:         "0.7.1",
		Target:          "cuda",
		SetupRequires:   []string{"setuptools"},
		TestsRequire:    []string{},
		InstallRequires: []string{"torch>=2.0.0", `triton;sys_platform == "linux"`},
		ExtrasRequire:   map[string][]string{"serve": {"fastapi"}},
	}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Encode(&buf, res, FormatJSON); err != nil {
			t.Fatal(err)
		}
		var got Result
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(got.InstallRequires, res.InstallRequires) {
			t.Errorf("install_requires = %q", got.InstallRequires)
		}
		if strings.Contains(buf.String(), `"cuda":`) {
			t.Errorf("empty cuda should be omitted:\n%s", buf.String())
		}
	})

	t.Run("toml", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Encode(&buf, res, FormatTOML); err != nil {
			t.Fatal(err)
		}
		var got Result
		if _, err := toml.Decode(buf.String(), &got); err != nil {
			t.Fatalf("decode: %v\n%s", err, buf.String())
		}
		if !slices.Equal(got.ExtrasRequire["serve"], []string{"fastapi"}) {
			t.Errorf("extras_require.serve = %q", got.ExtrasRequire["serve"])
		}
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Encode(&buf, res, FormatYAML); err != nil {
			t.Fatal(err)
		}
		var got Result
		if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatal(err)
		}
		if got.Name != "demo" || got.Version != "0.7.1" {
			t.Errorf("header = (%q, %q)", got.Name, got.Version)
		}
		if !strings.Contains(buf.String(), "install_requires:") {
			t.Errorf("missing install_requires key:\n%s", buf.String())
		}
	})

	t.Run("invalid", func(t *testing.T) {
		err := Encode(&bytes.Buffer{}, res, "xml")
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Encode(xml) error = %v", err)
		}
	})
}
