package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var askConversationID string

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about flight prices",
	Long: `Ask a natural-language question about flight prices. The question is
converted to SQL, executed, and the result narrated back in the language of
the question.

Pass --conversation to continue an earlier conversation; without it a new
one is started and its id printed.

Examples:
  flightchat ask "Tampilkan semua TIKET"
  flightchat ask "Apakah ada jadwal pesawat dari Jakarta ke Bali?"
  flightchat ask "yang paling murah?" --conversation 0d8cbf2e-...`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askConversationID, "conversation", "c", "", "conversation id to continue")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pipeline, err := getPipeline(ctx)
	if err != nil {
		return err
	}

	result, err := pipeline.HandleTurn(ctx, askConversationID, args[0])
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	fmt.Println(result.Content)
	fmt.Printf("\nconversation: %s\n", result.ConversationID)
	if total, ok := result.TokenUsage["total_tokens"]; ok {
		fmt.Printf("tokens: %d\n", total)
	}
	return nil
}
