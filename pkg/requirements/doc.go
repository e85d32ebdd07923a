// Package requirements parses plain-text requirement files into flat,
// version-annotated dependency strings.
//
// # Overview
//
// A requirement file lists one dependency per line. Four line kinds are
// recognized, checked in this order:
//
//   - Include: "-r other.txt" splices another file in place
//   - Editable: "-e git+https://host/repo.git#egg=name" yields "name"
//   - VCS direct: any line containing "@git+" is kept verbatim
//   - Plain: "name<op>version[; condition]" with op one of ">=", "==", ">"
//
// Blank lines and lines starting with "#" are skipped. Inline comments are not
// stripped.
//
// # Parsing
//
// [Parse] reads a file, follows includes depth-first and renders every entry:
//
//	pkgs, err := requirements.Parse(ctx, "requirements/runtime_cuda.txt", requirements.Options{})
//
// The result keeps the order in which lines were encountered and is never
// deduplicated. Lower-level access is available through [Classify], [Read]
// and [Render].
//
// # Includes
//
// Include paths are resolved against [Options.Root] (the working directory by
// default), not against the including file, unless
// [Options.RelativeToIncluder] is set. A file that includes itself, directly
// or through other files, fails with a CYCLIC_INCLUDE error. Two files that
// include the same third file are not a cycle; its entries appear twice.
package requirements
