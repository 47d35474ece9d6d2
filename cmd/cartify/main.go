package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
)

const usage = `usage: cartify <command> [flags] [args]

commands:
  register <email> <password>   create an account (confirm it by email)
  login <email> <password>      sign in and remember the session
  logout [-all]                 forget the session; -all revokes every session
  products [-category id]       list the catalog
  add [-qty n] [-color c] [-size s] <product-id>
  remove <line-id>
  qty <line-id> <quantity>      quantity 0 removes the line
  cart                          show the local cart
  checkout -email ... -first-name ... -last-name ... -address ... -city ... -state ... -zip ... [-country ...]

environment:
  CARTIFY_API_URL  API base url (default http://localhost:8080)
  CARTIFY_HOME     state directory (default ~/.cartify)
`

func main() {
	logger := log.New(os.Stderr, "[cartify] ", log.LstdFlags|log.LUTC)
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp(envOrDefault("CARTIFY_API_URL", "http://localhost:8080"), stateDir(), os.Stdout, logger)
	if err != nil {
		logger.Fatalf("init: %v", err)
	}
	if err := app.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		if err == errUsage {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func stateDir() string {
	if dir := os.Getenv("CARTIFY_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cartify"
	}
	return filepath.Join(home, ".cartify")
}
