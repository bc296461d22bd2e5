// Package cmd implements the command-line interface for gtplayer.
package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gtplayer-cli/gtplayer/color"
	"github.com/gtplayer-cli/gtplayer/constant"
	"github.com/gtplayer-cli/gtplayer/download"
	"github.com/gtplayer-cli/gtplayer/icon"
	"github.com/gtplayer-cli/gtplayer/key"
	"github.com/gtplayer-cli/gtplayer/log"
	"github.com/gtplayer-cli/gtplayer/playlist"
	"github.com/gtplayer-cli/gtplayer/protocol"
	"github.com/gtplayer-cli/gtplayer/proxy"
	"github.com/gtplayer-cli/gtplayer/store"
	"github.com/gtplayer-cli/gtplayer/style"
	"github.com/gtplayer-cli/gtplayer/tui"
	"github.com/gtplayer-cli/gtplayer/util"
	"github.com/gtplayer-cli/gtplayer/version"
	"github.com/gtplayer-cli/gtplayer/where"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, plain)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.Flags().StringP("backend", "b", "", "Audio backend to use (mpv, sim)")
	lo.Must0(viper.BindPFlag(key.PlayerBackend, rootCmd.Flags().Lookup("backend")))

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})

	// Initialize cleanup of localized temporary files on application startup.
	go func() {
		_ = util.Delete(where.Temp())
	}()
}

// rootCmd defines the entry point for the gtplayer application.
var rootCmd = &cobra.Command{
	Use:   constant.GTPlayer,
	Short: "A terminal music player built on personalized recommendations",
	Long: style.New().Italic(true).Foreground(color.HiPurple).
		Render("    - A terminal music player built on personalized recommendations"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		CheckDependencies()

		if store.GetUser().IsAbsent() {
			handleErr(runSetup())
		}

		handleErr(runPlayer())
	},
}

// runPlayer spawns the playback service as a child process and runs the UI
// against it until the user quits.
func runPlayer() error {
	addrs := protocol.Addresses{
		ProxyHost:   constant.LoopbackHost,
		ProxyPort:   viper.GetInt(key.ProtocolProxyPort),
		ServicePort: viper.GetInt(key.ProtocolServicePort),
	}

	transport, err := protocol.Listen(addrs.ProxyHost, addrs.ProxyPort)
	if err != nil {
		return err
	}
	defer util.Ignore(transport.Close)

	// The listener may have fallen back to an ephemeral port; the child is
	// told where the proxy actually lives.
	addrs.ProxyPort = transport.LocalPort()
	if err = transport.SetPeer(addrs.ProxyHost, addrs.ServicePort); err != nil {
		return err
	}

	child, err := spawnService(addrs)
	if err != nil {
		return err
	}
	defer func() {
		_ = child.Process.Kill()
		_, _ = child.Process.Wait()
	}()

	view, err := playlist.NewView(store.GetPlaylist)
	if err != nil {
		return err
	}

	p := proxy.New(proxy.Options{
		Transport: transport,
		View:      view,
	})
	go p.Run()

	if err = tui.Run(&tui.Options{Proxy: p}); err != nil {
		return err
	}

	if viper.GetBool(key.DownloadsEvictOnClose) {
		if err = download.EvictCovers(); err != nil {
			log.Warn(err)
		}
	}

	return nil
}

func spawnService(addrs protocol.Addresses) (*exec.Cmd, error) {
	executable, err := os.Executable()
	if err != nil {
		return nil, err
	}

	child := exec.Command(executable, "service")
	child.Env = append(os.Environ(), constant.ServiceArgEnv+"="+addrs.Arg())
	if err = child.Start(); err != nil {
		return nil, err
	}

	log.Infof("spawned service pid %d at %s", child.Process.Pid, addrs.Service())
	return child, nil
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
