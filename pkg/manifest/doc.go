// Package manifest assembles the dependency groups of a Python package build
// from its requirement files.
//
// # Overview
//
// A [Layout] maps each group to a requirement file template:
//
//   - build:   setup-time requirements
//   - test:    test requirements
//   - install: runtime requirements, usually target specific
//   - extras:  named optional bundles ("all", "lite", "serve", ...)
//
// Templates may contain "{target}", replaced by the hardware target chosen by
// a [target.Selector]. [DefaultLayout] reproduces the conventional layout:
//
//	requirements/build.txt
//	requirements/test.txt
//	requirements/runtime_{target}.txt
//	requirements_{target}.txt   (extras "all")
//	requirements/lite.txt       (extras "lite")
//	requirements/serve.txt      (extras "serve")
//
// # Resolving
//
//	res, err := manifest.Resolve(ctx, manifest.DefaultLayout(), manifest.Options{
//	    Root: ".",
//	    CUDA: "12",
//	})
//
// Every group is parsed with [requirements.Parse]; the CUDA packages for
// [Options.CUDA] are appended to each group afterwards. A missing top-level
// file fails the whole resolution unless the group is listed in
// [Layout.Optional].
//
// # Layout files
//
// [LoadLayout] reads a TOML layout:
//
//	name = "lmdeploy"
//	version_file = "lmdeploy/version.py"
//	build = "requirements/build.txt"
//	install = "requirements/runtime_{target}.txt"
//	optional = ["test"]
//
//	[extras]
//	all = "requirements_{target}.txt"
//	serve = "requirements/serve.txt"
//
// [target.Selector]: github.com/matzehuels/reqstack/pkg/target.Selector
// [requirements.Parse]: github.com/matzehuels/reqstack/pkg/requirements.Parse
package manifest
