package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gophusers/internal/app"
	"github.com/dmitrijs2005/gophusers/internal/cli"
	"github.com/dmitrijs2005/gophusers/internal/config"
	"github.com/dmitrijs2005/gophusers/internal/flagx"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	a, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	code := run(ctx, a, flagx.Positional(os.Args[1:], config.ValueFlags))

	if err := a.Close(); err != nil {
		log.Printf("close: %v", err)
	}
	os.Exit(code)
}

func run(ctx context.Context, a *app.App, args []string) int {
	c, err := cli.New(a, os.Stdin, os.Stdout)
	if err != nil {
		log.Printf("%v", err)
		return 1
	}

	if len(args) == 0 {
		args = []string{"shell"}
	}
	if err := c.Execute(ctx, args); err != nil {
		log.Printf("%v", err)
		return 1
	}
	return 0
}
