package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var conversationsCmd = &cobra.Command{
	Use:   "conversations [id]",
	Short: "List conversations or show one with its messages",
	Long: `Without arguments, lists all conversations newest first. With a
conversation id, prints its messages in order.

Examples:
  flightchat conversations
  flightchat conversations 0d8cbf2e-...`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConversations,
}

func runConversations(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if len(args) == 0 {
		conversations, err := repo.ListConversations(ctx)
		if err != nil {
			return err
		}
		if len(conversations) == 0 {
			fmt.Println("No conversations yet.")
			return nil
		}
		for _, conv := range conversations {
			fmt.Printf("%s  %s  %s\n", conv.ID, conv.CreatedAt.Format("2006-01-02 15:04"), conv.Title)
		}
		return nil
	}

	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid conversation id: %w", err)
	}

	conv, err := repo.GetConversation(ctx, id)
	if err != nil {
		return err
	}
	messages, err := repo.ListMessages(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s)\n\n", conv.Title, conv.CreatedAt.Format("2006-01-02 15:04"))
	for _, msg := range messages {
		role, err := msg.Type.Role()
		if err != nil {
			return err
		}
		fmt.Printf("[%s] %s\n\n", role, msg.Content)
	}
	return nil
}
