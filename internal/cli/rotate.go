package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robalobadob/ygodle/internal/daily"
)

var rotateDate string

func init() {
	cmd := &cobra.Command{
		Use:   "rotate",
		Short: "Assign the card of the day for every mode that lacks one",
		RunE:  runRotate,
	}
	cmd.Flags().StringVar(&rotateDate, "date", "", "Game day to assign, YYYY-MM-DD (default: today)")
	RootCmd.AddCommand(cmd)
}

func runRotate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	catalog, err := loadCatalog()
	if err != nil {
		return err
	}
	clock, err := cfg.Clock()
	if err != nil {
		return err
	}
	day := clock.Today()
	if rotateDate != "" {
		if day, err = clock.DayOf(rotateDate); err != nil {
			return err
		}
	}

	created, err := daily.NewRotator(daily.NewStore(db), catalog, cfg.DailySalt).Rotate(ctx, day)
	if err != nil {
		return err
	}
	if created == nil {
		created = []daily.Card{}
	}
	b, _ := json.MarshalIndent(map[string]any{"day": day, "assigned": created}, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
