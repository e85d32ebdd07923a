package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/reqstack/pkg/requirements"
	"github.com/matzehuels/reqstack/pkg/target"
)

// parseCommand creates the parse command, which resolves individual files
// outside of any layout.
func (c *CLI) parseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file>...",
		Short: "Resolve requirement files into a dependency list",
		Long: `Resolve one or more requirement files, following "-r" includes, and print
one dependency per line in the order encountered. Entries are not
deduplicated. CUDA packages selected with --cuda are appended once at the end.

Examples:
  reqstack parse requirements/runtime_cuda.txt
  reqstack parse --no-version requirements/serve.txt requirements/lite.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd, c.configFile)
			if err != nil {
				return err
			}
			c.warnUnknownCUDA(cmd.ErrOrStderr(), s.CUDA)

			ropts := s.requirementOptions(debugf(c.Logger))
			var pkgs []string
			for _, path := range args {
				got, err := requirements.Parse(cmd.Context(), path, ropts)
				if err != nil {
					return err
				}
				pkgs = append(pkgs, got...)
			}
			pkgs = append(pkgs, target.CUDAPackages(s.CUDA)...)

			w := cmd.OutOrStdout()
			for _, p := range pkgs {
				fmt.Fprintln(w, p)
			}
			return nil
		},
	}
}

// explainCommand creates the explain command, a debugging aid that shows how
// every line of a requirement file is classified.
func (c *CLI) explainCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "explain <file>",
		Short: "Show how each requirement line is classified",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd, c.configFile)
			if err != nil {
				return err
			}
			lines, err := requirements.Read(cmd.Context(), args[0], s.requirementOptions(debugf(c.Logger)))
			if err != nil {
				return err
			}
			renderExplain(cmd.OutOrStdout(), lines, !s.NoVersion)
			return nil
		},
	}
}

// renderExplain prints a table of classified lines.
func renderExplain(w io.Writer, lines []requirements.Line, withVersion bool) {
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		constraint := ""
		if l.Constraint != nil {
			constraint = l.Constraint.String()
		}
		platform := ""
		if l.HasPlatform {
			platform = ";" + l.Platform
		}
		rows = append(rows, []string{
			fmt.Sprintf("%s:%d", l.Source, l.LineNo),
			l.Kind.String(),
			l.Package,
			constraint,
			platform,
			requirements.Render(l, withVersion),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("Source", "Kind", "Package", "Constraint", "Platform", "Rendered").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader.Padding(0, 1)
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			switch col {
			case 0:
				return base.Inherit(StyleDim)
			case 1:
				if row >= 0 && row < len(rows) {
					return base.Inherit(kindStyles[rows[row][1]])
				}
			}
			return base
		})

	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("%d entries", len(lines))))
}
