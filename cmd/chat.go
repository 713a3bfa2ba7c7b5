package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	var userID string

	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive travel planning conversation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := wireConcierge()
			if err != nil {
				return err
			}

			sessionID, err := c.StartSession(userID)
			if err != nil {
				return err
			}
			defer c.EndSession(sessionID)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Where would you like to go? (type 'exit' to quit)")

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				text := strings.TrimSpace(scanner.Text())
				if text == "" {
					continue
				}
				if text == "exit" || text == "quit" {
					fmt.Fprintln(out, "Safe travels!")
					return nil
				}

				reply, err := c.PostMessage(cmd.Context(), sessionID, text)
				if err != nil {
					return err
				}
				if reply.ActiveAgent != nil {
					fmt.Fprintf(out, "[%s] %s\n", *reply.ActiveAgent, reply.Text)
				} else {
					fmt.Fprintf(out, "%s\n", reply.Text)
				}
			}
		},
	}

	chatCmd.Flags().StringVar(&userID, "user", "traveler", "user id to attach to the session")

	return chatCmd
}
