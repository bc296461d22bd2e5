// Package cmd implements the command-line interface for gtplayer.
package cmd

import (
	"fmt"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gtplayer-cli/gtplayer/api"
	"github.com/gtplayer-cli/gtplayer/icon"
	"github.com/gtplayer-cli/gtplayer/key"
	"github.com/gtplayer-cli/gtplayer/playlist"
	"github.com/gtplayer-cli/gtplayer/song"
	"github.com/gtplayer-cli/gtplayer/store"
	"github.com/gtplayer-cli/gtplayer/util"
)

func init() {
	rootCmd.AddCommand(setupCmd)
}

// setupCmd runs the preference wizard. The root command triggers it
// automatically when no user record exists yet.
var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Pick genres and artists to seed recommendations",
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(runSetup())
	},
}

// fuzzyFilter matches survey options the way the search suggestions do,
// against any part of the option rather than its prefix.
func fuzzyFilter(filter string, value string, _ int) bool {
	return fuzzy.MatchNormalizedFold(filter, value)
}

func runSetup() error {
	age, err := askAge()
	if err != nil {
		return err
	}

	page, err := api.GetGenres(age)
	if err != nil {
		return err
	}

	genres, err := askGenres(page.Genres)
	if err != nil {
		return err
	}

	artists, err := askArtists()
	if err != nil {
		return err
	}
	if len(artists) == 0 {
		artists = page.Artists
	}

	mode, err := askPlayMode()
	if err != nil {
		return err
	}

	user := store.User{
		Genres:    genres,
		Artists:   artists,
		PlayMode:  mode,
		SongsPath: viper.GetString(key.DownloadsDir),
		Volume:    viper.GetFloat64(key.PlayerVolume),
	}
	if err = store.SaveUser(user); err != nil {
		return err
	}

	return seedPlaylist(user)
}

func askAge() (mo.Option[int], error) {
	var answer string
	prompt := &survey.Input{
		Message: "How old are you?",
		Help:    "Tunes the genre shortlist. Leave empty to skip",
	}

	err := survey.AskOne(prompt, &answer, survey.WithValidator(func(ans interface{}) error {
		s, _ := ans.(string)
		if s == "" {
			return nil
		}
		if _, err := strconv.Atoi(s); err != nil {
			return fmt.Errorf("%q is not a number", s)
		}
		return nil
	}))
	if err != nil {
		return mo.None[int](), err
	}

	if answer == "" {
		return mo.None[int](), nil
	}
	return mo.Some(lo.Must(strconv.Atoi(answer))), nil
}

func askGenres(available []string) ([]string, error) {
	var genres []string
	prompt := &survey.MultiSelect{
		Message: "Which genres do you listen to?",
		Options: available,
	}

	err := survey.AskOne(prompt, &genres,
		survey.WithFilter(fuzzyFilter),
		survey.WithValidator(survey.MinItems(1)),
	)
	return genres, err
}

// askArtists collects favorite artists one at a time, resolving each against
// the catalog so typos end up as real names.
func askArtists() ([]string, error) {
	var artists []string

	for {
		var answer string
		prompt := &survey.Input{
			Message: "Name a favorite artist",
			Help:    "Leave empty to finish",
		}
		if err := survey.AskOne(prompt, &answer); err != nil {
			return nil, err
		}
		if answer == "" {
			return artists, nil
		}

		match, err := api.FindClosestArtist(answer)
		if err != nil {
			fmt.Printf("%s Could not find %q, try another spelling\n", icon.Get(icon.Fail), answer)
			continue
		}

		if match != answer {
			var confirmed bool
			confirm := &survey.Confirm{
				Message: fmt.Sprintf("Did you mean %s?", match),
				Default: true,
			}
			if err = survey.AskOne(confirm, &confirmed); err != nil {
				return nil, err
			}
			if !confirmed {
				continue
			}
		}

		artists = append(artists, match)
		fmt.Printf("%s Added %s\n", icon.Get(icon.Success), match)
	}
}

func askPlayMode() (string, error) {
	var mode string
	prompt := &survey.Select{
		Message: "How should tracks be played?",
		Options: []string{store.PlayModePreview, store.PlayModeFull, store.PlayModeAny},
		Default: viper.GetString(key.PlayerPlayMode),
	}

	err := survey.AskOne(prompt, &mode)
	return mode, err
}

// seedPlaylist fetches the first batch of recommendations so the player has
// something to start with.
func seedPlaylist(user store.User) error {
	erase := util.PrintErasable(fmt.Sprintf("%s Building your first playlist...", icon.Get(icon.Progress)))
	tracks, err := api.GetRecommendations(user.Genres, user.Artists, user.PlayMode)
	erase()
	if err != nil {
		return err
	}

	snapshot := playlist.Snapshot{
		Tracks: lo.Map(tracks, func(t *song.Song, _ int) song.Song {
			return *t
		}),
		Current: -1,
	}

	if err = store.UpdatePlaylist(snapshot); err != nil {
		return err
	}

	fmt.Printf("%s Playlist ready with %s\n", icon.Get(icon.Success), util.Quantify(len(snapshot.Tracks), "track", "tracks"))
	return nil
}
