package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reqstack/pkg/manifest"
	"github.com/matzehuels/reqstack/pkg/target"
)

// targetsCommand creates the targets command, which shows how the hardware
// target was chosen and which files each group maps to.
func (c *CLI) targetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "Show the selected hardware target and its requirement files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd, c.configFile)
			if err != nil {
				return err
			}
			layout, err := s.layout()
			if err != nil {
				return err
			}
			sel := s.selector().WithDefaults()
			t, err := sel.Target()
			if err != nil {
				return err
			}

			source := "default"
			if sel.Override != "" {
				source = "--target"
			} else if v, ok := sel.Lookup(sel.EnvVar); ok && v != "" {
				source = "$" + sel.EnvVar
			}

			w := cmd.OutOrStdout()
			printKeyValue(w, "target", t+" "+StyleDim.Render("("+source+")"))
			printKeyValue(w, "env", sel.EnvVar)
			printKeyValue(w, "default", sel.Default)
			printKeyValue(w, "cuda", strings.Join(target.CUDAVersions(), ", "))
			for _, group := range layout.GroupNames() {
				path, err := manifest.GroupPath(layout, group, t)
				if err != nil {
					return err
				}
				label := group
				if layout.IsOptional(group) {
					label += "?"
				}
				printKeyValue(w, label, StylePath.Render(path))
			}
			return nil
		},
	}
}
