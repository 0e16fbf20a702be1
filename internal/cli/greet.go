package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/eco-agent/internal/app/greeting"
	"github.com/PabloGalante/eco-agent/internal/domain"
)

func newGreetCmd(g *globalFlags) *cobra.Command {
	var (
		name   string
		hour   int
		tz     string
		repeat bool
	)

	cmd := &cobra.Command{
		Use:   "greet <text>",
		Short: "Classify a message and show the canned greeting or farewell",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")

			msgs := []greeting.Message{{Role: domain.RoleUser, Content: text}}
			if repeat {
				msgs = append([]greeting.Message{
					{Role: domain.RoleUser, Content: "oi"},
					{Role: domain.RoleAssistant, Content: "..."},
				}, msgs...)
			}

			reply, ok := greeting.NewResponder().Respond(msgs, greeting.ReplyOptions{
				UserName:   name,
				ClientHour: optionalInt(cmd, "hour", hour),
				ClientTZ:   tz,
			})

			if g.asJSON {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"handled":     ok,
					"substantive": greeting.HasSubstantiveContent(text),
					"reply":       reply,
				})
			}

			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprintln(out, "not a greeting or farewell")
				return nil
			}
			fmt.Fprintf(out, "[%s band=%s tone=%s]\n%s\n", reply.Kind, reply.Band, reply.Tone, reply.Text)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "user name")
	cmd.Flags().IntVar(&hour, "hour", 0, "client hour (0-23)")
	cmd.Flags().StringVar(&tz, "tz", "", "client IANA timezone")
	cmd.Flags().BoolVar(&repeat, "repeat", false, "treat as a returning user")
	return cmd
}
