// Package cli implements the ecoctl commands: offline access to the
// detector, the greeting responder and the prompt assembler.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/eco-agent/internal/app/prompt"
	"github.com/PabloGalante/eco-agent/internal/app/triggers"
	"github.com/PabloGalante/eco-agent/internal/observability"
)

type globalFlags struct {
	assetsDir    string
	triggersFile string
	logLevel     string
	asJSON       bool
}

// NewRootCmd builds the ecoctl command tree.
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "ecoctl",
		Short:         "Inspect Eco's triggers, greetings and system prompt",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			observability.Init(g.logLevel)
		},
	}

	root.PersistentFlags().StringVar(&g.assetsDir, "assets-dir", os.Getenv("ECO_ASSETS_DIR"), "prompt assets directory (default: embedded)")
	root.PersistentFlags().StringVar(&g.triggersFile, "triggers-file", os.Getenv("ECO_TRIGGERS_FILE"), "trigger table YAML (default: embedded)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "log level")
	root.PersistentFlags().BoolVar(&g.asJSON, "json", false, "print JSON")

	root.AddCommand(newDetectCmd(g), newGreetCmd(g), newPromptCmd(g))
	return root
}

// Execute runs ecoctl with os.Args.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (g *globalFlags) detector() (*triggers.Detector, error) {
	return triggers.LoadDetector(g.triggersFile)
}

func (g *globalFlags) assembler() *prompt.Assembler {
	return prompt.NewAssembler(prompt.ContentFS(g.assetsDir))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}

// optionalInt returns nil unless the flag was set explicitly.
func optionalInt(cmd *cobra.Command, name string, v int) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}
