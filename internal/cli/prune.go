package cli

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/ygodle/internal/store"
)

var pruneDays int

func init() {
	cmd := &cobra.Command{
		Use:   "prune-devices",
		Short: "Delete stored state of devices idle for more than --days",
		RunE:  runPrune,
	}
	cmd.Flags().IntVar(&pruneDays, "days", 30, "Idle days before a device's state is deleted")
	RootCmd.AddCommand(cmd)
}

func runPrune(cmd *cobra.Command, args []string) error {
	if pruneDays <= 0 {
		return fmt.Errorf("--days must be positive")
	}
	ctx := cmd.Context()
	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	cutoff := time.Now().Add(-time.Duration(pruneDays) * 24 * time.Hour)
	n, err := store.NewSQLStore(db).DeleteIdle(ctx, cutoff)
	if err != nil {
		return err
	}
	log.Info().Int64("rows", n).Time("cutoff", cutoff).Msg("idle devices pruned")
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %d blobs\n", n)
	return nil
}
