package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"todosome/internal/client"
	"todosome/internal/client/cli"
	"todosome/internal/lib/extensions"
)

func main() {
	var apiURL, tokenFile string

	home, _ := os.UserHomeDir()
	flag.StringVar(&apiURL, "api", extensions.GetEnv("TODOSOME_API", "http://localhost:5000/api"), "API base url")
	flag.StringVar(&tokenFile, "token-file", filepath.Join(home, ".todosome", "session.json"), "file storing session token")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session := client.NewSession(apiURL, client.NewFileTokenStore(tokenFile), nil)
	if err := session.Resume(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := cli.New(session, os.Stdin, os.Stdout).Run(ctx, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
