// Package cmd implements the command-line interface for gtplayer.
package cmd

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/gtplayer-cli/gtplayer/color"
	"github.com/gtplayer-cli/gtplayer/history"
	"github.com/gtplayer-cli/gtplayer/style"
	"github.com/gtplayer-cli/gtplayer/util"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of entries to display")
}

// historyCmd lists recently played tracks.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Display recently played tracks",
	Run: func(cmd *cobra.Command, args []string) {
		limit := lo.Must(cmd.Flags().GetInt("limit"))

		recent, err := history.Recent(limit)
		handleErr(err)

		if len(recent) == 0 {
			fmt.Println(style.Faint("Nothing played yet"))
			return
		}

		for _, record := range recent {
			fmt.Printf("%s %s %s\n",
				style.Fg(color.Purple)(record.Name),
				style.Faint("by "+record.Artist),
				style.Faint(fmt.Sprintf("(%s, %s)",
					util.Quantify(record.PlayCount, "play", "plays"),
					record.LastPlayedAt.Format("2006-01-02"),
				)),
			)
		}
	},
}
