// Command occli is an interactive OrderCloud client. "occli serve" runs an
// in-memory fake of the API to try it against.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-ordercloud/client"
	"github.com/jrsteele09/go-ordercloud/config"
	"github.com/jrsteele09/go-ordercloud/token/redisrepo"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "occli: %s\n", err)
		os.Exit(1)
	}
}

func run(args []string) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	if len(args) > 0 && args[0] == "serve" {
		return serve(args[1:])
	}

	flags := flag.NewFlagSet("occli", flag.ContinueOnError)
	baseURL := flags.String("base-url", "", "API base URL (default $ORDERCLOUD_BASE_URL or "+config.DefaultBaseURL+")")
	clientID := flags.String("client-id", "", "API client id (default $ORDERCLOUD_CLIENT_ID)")
	redisAddr := flags.String("redis", "", "keep tokens in Redis at this address instead of memory")
	verbose := flags.Bool("v", false, "log requests to stderr")
	if err := flags.Parse(args); err != nil {
		return err
	}

	var options []config.Option
	if *baseURL != "" {
		options = append(options, config.WithBaseURL(*baseURL))
	}
	if *clientID != "" {
		options = append(options, config.WithClientID(*clientID))
	}
	cfg, err := config.FromEnv(options...)
	if err != nil {
		return err
	}

	logger := newLogger(*verbose)
	clientOptions := []client.Option{client.WithLogger(logger)}
	if *redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: *redisAddr})
		defer rdb.Close()
		clientOptions = append(clientOptions, client.WithRedis(rdb, redisrepo.WithPrefix("occli:")))
	}
	c, err := client.New(cfg, clientOptions...)
	if err != nil {
		return err
	}

	displayAppname("occli")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewApp(c, cfg.GetClientID(), os.Stdin, os.Stdout).Run(ctx)
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
