package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	flightsLimit  int
	flightsOffset int
)

var flightsCmd = &cobra.Command{
	Use:   "flights",
	Short: "List fare rows from the flights database",
	Args:  cobra.NoArgs,
	RunE:  runFlights,
}

func init() {
	flightsCmd.Flags().IntVarP(&flightsLimit, "limit", "n", 10, "max rows")
	flightsCmd.Flags().IntVar(&flightsOffset, "offset", 0, "rows to skip")
}

func runFlights(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	flights, err := repo.ListFlights(ctx, flightsLimit, flightsOffset)
	if err != nil {
		return err
	}
	if len(flights) == 0 {
		fmt.Println("No flights found.")
		return nil
	}

	for _, fp := range flights {
		fmt.Printf("%-8s %-10s %s-%s  %.2f %s  valid %s to %s\n",
			fp.FlightNumber, fp.Class, fp.OriginCode, fp.DestinationCode,
			fp.BasePrice, fp.Currency,
			fp.ValidFrom.Format("2006-01-02"), fp.ValidTo.Format("2006-01-02"))
	}
	return nil
}
