package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mansoorceksport/fitcoach/internal/client"
)

const usage = `coach - terminal client for the AI Fitness Coach API

Usage:
  coach <command> [flags]

Commands:
  session              open a new session (stored in the session file)
  generate -profile F  submit the profile in F and generate a plan
  regenerate           request a new plan for the stored profile
  watch -profile F     regenerate whenever F is written
  show [-tab T]        print the plan (tabs: workout, diet, motivation)
  view                 interactive plan viewer
  saved [list|save|delete N|load N]
  image -exercise DAY:N | -meal NAME | LABEL
                       generate an image (placeholder URL on failure)
  speak [-section S]   read the plan aloud (sections: workout, diet)
  export [-o DIR] [-archive]
  theme                toggle dark mode
  quote [-refresh]     print the daily quote
  reset                clear the current plan (saved plans are kept)

Environment:
  COACH_SERVER         API base URL (default http://localhost:8080)
  COACH_SESSION_FILE   session file (default <user config dir>/fitcoach/session.json)
`

func main() {
	log.SetFlags(0)
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, args := os.Args[1], os.Args[2:]
	if err := run(ctx, cmd, args); err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			log.Fatalf("Error: %s", apiErr.Message)
		}
		log.Fatalf("Error: %v", err)
	}
}

func run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "session":
		return runSession(ctx, args)
	case "generate":
		return runGenerate(ctx, args)
	case "regenerate":
		return runRegenerate(ctx, args)
	case "watch":
		return runWatch(ctx, args)
	case "show":
		return runShow(ctx, args)
	case "view":
		return runView(ctx, args)
	case "saved":
		return runSaved(ctx, args)
	case "image":
		return runImage(ctx, args)
	case "speak":
		return runSpeak(ctx, args)
	case "export":
		return runExport(ctx, args)
	case "theme":
		return runTheme(ctx, args)
	case "quote":
		return runQuote(ctx, args)
	case "reset":
		return runReset(ctx, args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q (run `coach help`)", cmd)
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}
