package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/eco-agent/internal/app/triggers"
)

func newDetectCmd(g *globalFlags) *cobra.Command {
	var (
		openness  int
		intensity int
		minutes   int
		threshold float64
	)

	cmd := &cobra.Command{
		Use:   "detect <text>",
		Short: "Score regulation practices and match topic modules for a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := g.detector()
			if err != nil {
				return err
			}

			in := triggers.Input{
				Text:             strings.Join(args, " "),
				OpennessLevel:    optionalInt(cmd, "openness", openness),
				Intensity:        optionalInt(cmd, "intensity", intensity),
				MinutesAvailable: optionalInt(cmd, "minutes", minutes),
			}

			practices := d.Detect(in, threshold)
			topics := d.MatchTopics(in.Text, intensity)

			if g.asJSON {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"practices": practices,
					"topics":    topics,
					"scores":    d.Scores(in),
				})
			}

			out := cmd.OutOrStdout()
			if len(practices) == 0 {
				fmt.Fprintln(out, "no practice above threshold")
			}
			for _, p := range practices {
				fmt.Fprintf(out, "%-10s %.2f  %s  (%s)\n", p.PracticeID, p.Score, p.Module, p.Reason)
			}
			for _, t := range topics {
				fmt.Fprintf(out, "topic      %s  matched %q\n", t.Module, t.MatchedTrigger)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&openness, "openness", 1, "openness level (1-3)")
	cmd.Flags().IntVar(&intensity, "intensity", 0, "emotional intensity (0-10)")
	cmd.Flags().IntVar(&minutes, "minutes", 0, "minutes available (default: extracted from text)")
	cmd.Flags().Float64Var(&threshold, "threshold", triggers.DefaultThreshold, "minimum score")
	return cmd
}
