package requirements

// Render turns a classified line back into a dependency string.
//
// Editable and VCS lines render as their package unchanged. Plain lines render
// as the package, followed by the constraint when withVersion is set, followed
// by ";" and the platform condition whenever one was present. Include lines are
// expanded by Read and never rendered; Render returns "" for them.
func Render(l Line, withVersion bool) string {
	switch l.Kind {
	case KindEditable, KindVCS:
		return l.Package
	case KindInclude:
		return ""
	}

	s := l.Package
	if withVersion && l.Constraint != nil {
		s += l.Constraint.String()
	}
	if l.HasPlatform {
		s += platformSep + l.Platform
	}
	return s
}

// RenderAll renders every line in order.
func RenderAll(lines []Line, withVersion bool) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, Render(l, withVersion))
	}
	return out
}
