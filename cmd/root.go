package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "concierge",
		Short:         "Multi-agent travel concierge: plan trips with specialist assistants",
		Long:          "concierge routes a travel planning conversation across specialist agents (planner, legal advisor, local expert) that share session state and live flight, hotel and attraction search tools.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		newChatCmd(),
	)

	return rootCmd
}
