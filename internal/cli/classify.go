package cli

import (
	"fmt"
	"strings"

	"voice-agent-be/pkg/dialogue"

	"github.com/spf13/cobra"
)

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify TEXT",
		Short: "Print the intent and reply chosen for one utterance",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			utterance := strings.Join(args, " ")
			reply := dialogue.NewEngine().Respond(dialogue.DefaultPersona, nil, utterance)

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "intent: %s\nreply: %s\n", reply.Intent, reply.Text)
			return err
		},
	}
}
