package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command
type Globals struct {
	Config    string `short:"c" default:"casino.hcl" help:"Path to HCL configuration file"`
	Debug     bool   `help:"Enable debug logging"`
	LogFormat string `enum:"text,json" default:"text" help:"Log output format (text, json)"`
	NoColor   bool   `help:"Disable colored output"`
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Serve    ServeCmd         `cmd:"" help:"Run the websocket casino server"`
	Play     PlayCmd          `cmd:"" help:"Play in the terminal"`
	Simulate SimulateCmd      `cmd:"" help:"Estimate return to player by simulation"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("casino"),
		kong.Description("Blackjack and slot machines over websockets or in the terminal"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
