package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/five82/herald/internal/app"
)

type globalOptions struct {
	Config   string `short:"c" long:"config" env:"HERALD_CONFIG" description:"Config file path (default ~/.config/herald/config.toml)"`
	Endpoint string `long:"endpoint" env:"HERALD_ENDPOINT" description:"GraphQL endpoint, overrides the config file"`
	LogLevel string `long:"log-level" env:"HERALD_LOG_LEVEL" description:"Log level: debug, info, warn or error"`
}

type runner struct {
	ctx  context.Context
	opts globalOptions
}

func (r *runner) options() app.Options {
	return app.Options{
		ConfigPath: r.opts.Config,
		Endpoint:   r.opts.Endpoint,
		LogLevel:   r.opts.LogLevel,
	}
}

type tuiCommand struct {
	Poll int  `long:"poll" env:"HERALD_POLL" description:"Home refresh interval in seconds (default from config)"`
	Push bool `long:"push" description:"Also run the push receiver"`

	r *runner
}

func (c *tuiCommand) Execute([]string) error {
	opts := c.r.options()
	opts.PollEvery = c.Poll
	return app.RunTUI(c.r.ctx, opts, c.Push)
}

type widgetCommand struct {
	Timeline string `long:"timeline" choice:"articles" choice:"flyers" default:"articles" description:"Timeline to print"`

	r *runner
}

func (c *widgetCommand) Execute([]string) error {
	opts := c.r.options()
	opts.LogOutput = os.Stderr
	return app.RunWidget(c.r.ctx, opts, c.Timeline, os.Stdout)
}

type eventsCommand struct {
	Count int `short:"n" long:"count" default:"20" description:"Number of events to print"`

	r *runner
}

func (c *eventsCommand) Execute([]string) error {
	return app.RunEvents(c.r.options(), c.Count, os.Stdout)
}

type pushCommand struct {
	r *runner
}

func (c *pushCommand) Execute([]string) error {
	opts := c.r.options()
	opts.LogOutput = os.Stderr
	return app.RunPush(c.r.ctx, opts)
}

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	r := &runner{ctx: ctx}
	parser := flags.NewParser(&r.opts, flags.Default)
	parser.SubcommandsOptional = true

	tui := &tuiCommand{r: r}
	commands := []struct {
		name, short, long string
		data              any
	}{
		{"tui", "Terminal reader", "Browse articles, magazines and flyers in the terminal (default).", tui},
		{"widget", "Print a widget timeline", "Print the trending articles or flyers timeline and exit.", &widgetCommand{r: r}},
		{"push", "Run the push receiver", "Accept push notification payloads on push_listen.", &pushCommand{r: r}},
		{"events", "Print recent analytics events", "Print the tail of the analytics journal.", &eventsCommand{r: r}},
	}
	for _, c := range commands {
		if _, err := parser.AddCommand(c.name, c.short, c.long, c.data); err != nil {
			fmt.Fprintf(os.Stderr, "herald: %v\n", err)
			return 1
		}
	}

	// flags.Default prints parse and command errors itself.
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return 0
		}
		return 1
	}

	if parser.Active == nil {
		if err := tui.Execute(nil); err != nil {
			fmt.Fprintf(os.Stderr, "herald: %v\n", err)
			return 1
		}
	}
	return 0
}
