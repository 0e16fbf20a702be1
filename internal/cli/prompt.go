package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/eco-agent/internal/app/triggers"
)

func newPromptCmd(g *globalFlags) *cobra.Command {
	var (
		modules   []string
		forText   string
		intensity int
	)

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the assembled system prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if forText != "" {
				d, err := g.detector()
				if err != nil {
					return err
				}
				in := triggers.Input{
					Text:      forText,
					Intensity: optionalInt(cmd, "intensity", intensity),
				}
				for _, p := range d.Detect(in, triggers.DefaultThreshold) {
					modules = append(modules, p.Module)
				}
				for _, t := range d.MatchTopics(forText, intensity) {
					modules = append(modules, t.Module)
				}
			}

			out, err := g.assembler().BuildWithModules(ctx, modules)
			if err != nil {
				return err
			}

			if g.asJSON {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"modules": modules,
					"prompt":  out,
				})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(out, "\n"))
			return err
		},
	}

	cmd.Flags().StringSliceVar(&modules, "module", nil, "module file under modulos/ to append (repeatable)")
	cmd.Flags().StringVar(&forText, "for", "", "append the modules detected for this message")
	cmd.Flags().IntVar(&intensity, "intensity", 0, "emotional intensity used with --for")
	return cmd
}
