package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"voice-agent-be/internal/config"
	"voice-agent-be/internal/pkg/logger"
	"voice-agent-be/pkg/chatclient"
	"voice-agent-be/pkg/dialogue"
	"voice-agent-be/pkg/interaction"

	"github.com/spf13/cobra"
)

type chatOptions struct {
	server  string
	persona string
	logFile string
}

func newChatCmd() *cobra.Command {
	opts := &chatOptions{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Hold a typed conversation with the agent",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.server, "server", "", "base URL of a running agent server; answers locally when empty")
	cmd.Flags().StringVar(&opts.persona, "persona", "", "system persona for local answers")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "write the coordinator log to this file")

	return cmd
}

func runChat(cmd *cobra.Command, opts *chatOptions) error {
	cfg := config.Load()

	persona := firstNonEmpty(opts.persona, cfg.Agent.Persona, dialogue.DefaultPersona)
	var replier interaction.Replier = interaction.NewLocalReplier(dialogue.NewEngine(), persona)
	if opts.server != "" {
		replier = chatclient.New(opts.server)
	}

	var log logger.ILogger = logger.NewNopLogger()
	if opts.logFile != "" {
		log = logger.NewIsolatedLogger(opts.logFile)
	}
	defer log.Sync()

	icfg := interaction.DefaultConfig()
	icfg.ReplyTimeout = cfg.Session.ReplyTimeout

	out := cmd.OutOrStdout()
	term := newTerminal(out)
	coordinator := interaction.New(icfg, replier, term, term, log, term)
	term.notify = coordinator.Notify

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go func() { _ = coordinator.Run(ctx) }()

	fmt.Fprintln(out, "Type a message and press enter. /quit to leave.")

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			break
		}

		term.drain()
		if err := coordinator.Do(ctx, interaction.SubmitText{Text: line}); err != nil {
			term.Failed(err)
			continue
		}

		select {
		case <-term.idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return scanner.Err()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
