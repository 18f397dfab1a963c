package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/epaper/internal/cache"
	"github.com/matheuskafuri/epaper/internal/config"
)

var flagPruneBefore string

var datesCmd = &cobra.Command{
	Use:   "dates",
	Short: "List the archive dates held in the local store",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := cache.Open(config.CachePath())
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer db.Close()

		dates, err := db.Dates()
		if err != nil {
			return fmt.Errorf("listing archives: %w", err)
		}
		if len(dates) == 0 {
			fmt.Println("No archives stored.")
			return nil
		}
		for _, d := range dates {
			size, err := db.Size(d)
			if err != nil {
				return fmt.Errorf("reading %s: %w", d, err)
			}
			fmt.Printf("%s  %s\n", d, formatBytes(size))
		}
		return nil
	},
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old archives from the local store",
	Long: `Delete stored archives dated before a cutoff.

Uses the retention value from config (default: 30d) unless a date is given
with --before.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := cache.Open(config.CachePath())
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer db.Close()

		var deleted int64
		cutoff := flagPruneBefore
		if cutoff != "" {
			deleted, err = db.DeleteBefore(cutoff)
		} else {
			retention := cfg.RetentionDuration()
			cutoff = time.Now().Add(-retention).Format(cache.DateLayout)
			deleted, err = db.Prune(retention)
		}
		if err != nil {
			return fmt.Errorf("pruning: %w", err)
		}

		if deleted == 0 {
			fmt.Println("Nothing to prune.")
		} else {
			fmt.Printf("Pruned %d archive(s) dated before %s.\n", deleted, cutoff)
		}
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every stored archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := cache.Open(config.CachePath())
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer db.Close()

		deleted, err := db.DeleteAll()
		if err != nil {
			return fmt.Errorf("clearing: %w", err)
		}
		fmt.Printf("Deleted %d archive(s).\n", deleted)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show archive store statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := config.CachePath()
		db, err := cache.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer db.Close()

		count, size, err := db.Stats(dbPath)
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}

		fmt.Printf("Store: %s\n", dbPath)
		fmt.Printf("Archives: %d\n", count)
		fmt.Printf("Size: %s\n", formatBytes(size))
		fmt.Printf("Scrape due: %s\n", yesNo(db.NeedsRefresh(24*time.Hour)))
		return nil
	},
}

func init() {
	pruneCmd.Flags().StringVar(&flagPruneBefore, "before", "", "delete archives dated before YYYY-MM-DD")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
