// Command transportlp solves the transportation problem stored in a text file
// and writes the optimal shipping plan.
//
// Settings come from flags, then TRANSPORTLP_* environment variables, then a
// .env file in the working directory.
package main

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/tebeka/atexit"
)

func main() {
	atexit.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	logger := log.New(stderr, "transportlp: ", 0)

	e, err := loadEnv(".env")
	if err != nil {
		logger.Print(err)
		return 1
	}
	cfg, err := e.defaults()
	if err != nil {
		logger.Print(err)
		return 1
	}

	cmd := newRootCmd(cfg, stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		logger.Print(err)
		return 1
	}
	return 0
}
