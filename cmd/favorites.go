package cmd

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/gtplayer-cli/gtplayer/color"
	"github.com/gtplayer-cli/gtplayer/icon"
	"github.com/gtplayer-cli/gtplayer/store"
	"github.com/gtplayer-cli/gtplayer/style"
)

func init() {
	rootCmd.AddCommand(favoritesCmd)
	favoritesCmd.Flags().StringP("sort", "s", string(store.SortByDate), "Sort order (date, title, artist)")
	lo.Must0(favoritesCmd.RegisterFlagCompletionFunc(
		"sort",
		func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return []string{
				string(store.SortByDate),
				string(store.SortByTitle),
				string(store.SortByArtist),
			}, cobra.ShellCompDirectiveDefault
		},
	))
}

// favoritesCmd lists favorited tracks.
var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "Display favorited tracks",
	Run: func(cmd *cobra.Command, args []string) {
		order := store.SortOrder(lo.Must(cmd.Flags().GetString("sort")))

		tracks, err := store.FavoritesSorted(order)
		handleErr(err)

		if len(tracks) == 0 {
			fmt.Println(style.Faint("No favorites yet"))
			return
		}

		for _, track := range tracks {
			line := fmt.Sprintf("%s %s %s",
				icon.Get(icon.Heart),
				style.Fg(color.Purple)(track.Name),
				style.Faint("by "+track.Artist),
			)
			if track.DateFavorited != nil {
				line += " " + style.Faint(track.DateFavorited.Format("2006-01-02"))
			}
			fmt.Println(line)
		}
	},
}
