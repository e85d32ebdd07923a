package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// targetRegex matches hardware target identifiers such as "cuda", "ascend",
// "maca" or "rocm6".
var targetRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateTarget validates a target identifier before it is substituted into a
// requirement file name. It rejects anything that could escape the requirements
// directory.
func ValidateTarget(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "target cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidInput, "target too long (max 64 characters)")
	}
	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "target contains invalid characters: %q", "..")
	}
	if !targetRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid target: %q", name)
	}
	return nil
}

// groupRegex matches extras group names (PEP 685 normalized form plus underscores).
var groupRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9_-]*[a-z0-9])?$`)

// ValidateGroupName validates the name of a dependency group.
func ValidateGroupName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidConfig, "group name cannot be empty")
	}
	if !groupRegex.MatchString(name) {
		return New(ErrCodeInvalidConfig, "invalid group name: %q", name)
	}
	return nil
}

// ValidatePath validates a requirement file path template.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidConfig, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidConfig, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidConfig, "path contains invalid characters")
		}
	}

	return nil
}
