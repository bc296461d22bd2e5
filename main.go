// Package main is the entry point for the gtplayer application.
package main

import (
	"github.com/samber/lo"

	"github.com/gtplayer-cli/gtplayer/cmd"
	"github.com/gtplayer-cli/gtplayer/config"
	"github.com/gtplayer-cli/gtplayer/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
