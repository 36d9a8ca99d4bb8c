package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var dayAt string

func init() {
	cmd := &cobra.Command{
		Use:   "day",
		Short: "Print the game day for now or for --at",
		RunE:  runDay,
	}
	cmd.Flags().StringVar(&dayAt, "at", "", "Instant to evaluate, RFC3339 (default: now)")
	RootCmd.AddCommand(cmd)
}

func runDay(cmd *cobra.Command, args []string) error {
	clock, err := cfg.Clock()
	if err != nil {
		return err
	}
	at := clock.Now()
	if dayAt != "" {
		if at, err = time.Parse(time.RFC3339, dayAt); err != nil {
			return fmt.Errorf("--at: %w", err)
		}
	}
	day := clock.EffectiveDay(at)
	next := clock.NextRollover(at)
	b, _ := json.MarshalIndent(map[string]any{
		"at":           at,
		"dayKey":       day.Key,
		"dayNumber":    day.Ordinal,
		"zone":         clock.Location().String(),
		"nextRollover": next,
		"remaining":    next.Sub(at).Round(time.Second).String(),
	}, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
