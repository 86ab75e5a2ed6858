package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gogoair/flightchat/internal/store"
)

var migrateSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate <up|down>",
	Short: "Apply or roll back database migrations",
	Long: `Apply pending schema migrations or roll back applied ones.

Examples:
  flightchat migrate up
  flightchat migrate up --steps 1
  flightchat migrate down --steps 2`,
	Args: cobra.ExactArgs(1),
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().IntVar(&migrateSteps, "steps", 0, "number of migrations (0 = all pending for up, 1 for down)")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	switch args[0] {
	case "up":
		n, err := store.MigrateUp(ctx, database, migrateSteps)
		if err != nil {
			return err
		}
		fmt.Printf("applied %d migration(s)\n", n)
	case "down":
		n, err := store.MigrateDown(ctx, database, migrateSteps)
		if err != nil {
			return err
		}
		fmt.Printf("rolled back %d migration(s)\n", n)
	default:
		return fmt.Errorf("unknown direction %q, use up or down", args[0])
	}
	return nil
}
