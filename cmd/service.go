// Package cmd implements the command-line interface for gtplayer.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gtplayer-cli/gtplayer/audio"
	"github.com/gtplayer-cli/gtplayer/constant"
	"github.com/gtplayer-cli/gtplayer/download"
	"github.com/gtplayer-cli/gtplayer/log"
	"github.com/gtplayer-cli/gtplayer/playlist"
	"github.com/gtplayer-cli/gtplayer/protocol"
	"github.com/gtplayer-cli/gtplayer/service"
	"github.com/gtplayer-cli/gtplayer/store"
)

func init() {
	rootCmd.AddCommand(serviceCmd)
}

// serviceCmd runs the playback service process. The root command spawns it
// automatically; running it by hand is only useful for debugging.
var serviceCmd = &cobra.Command{
	Use:    "service [addresses]",
	Short:  "Run the background playback service",
	Hidden: true,
	Args:   cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		arg := os.Getenv(constant.ServiceArgEnv)
		if len(args) > 0 {
			arg = args[0]
		}

		handleErr(runService(arg))
	},
}

func runService(arg string) error {
	addrs := protocol.ParseServiceArgs(arg)

	transport, err := protocol.Listen(constant.LoopbackHost, addrs.ServicePort)
	if err != nil {
		return err
	}
	if err = transport.SetPeer(addrs.ProxyHost, addrs.ProxyPort); err != nil {
		return err
	}

	backend, err := audio.New()
	if err != nil {
		return err
	}

	snapshot, err := store.GetPlaylist()
	if err != nil {
		return err
	}

	svc := service.New(service.Options{
		Transport: transport,
		Backend:   backend,
		Downloads: download.NewManager(),
		Cursor:    playlist.FromSnapshot(snapshot),
	})
	defer func() {
		if err := svc.Close(); err != nil {
			log.Warn(err)
		}
	}()

	log.Infof("service listening on %d, proxy at %s", transport.LocalPort(), addrs.Proxy())
	svc.Run()
	return nil
}
