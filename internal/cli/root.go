package cli

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "console",
		Short:         "Talk to the calling agent from a terminal",
		Long:          "console runs a conversation with the calling agent using typed input in place of the microphone and the terminal in place of the speaker.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		newChatCmd(),
		newClassifyCmd(),
	)

	return rootCmd
}
