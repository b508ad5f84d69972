// SPDX-License-Identifier: GPL-3.0-or-later

// Package connect implements the `conduit connect` command: it assembles
// a tunnel session and keeps it alive, healing pipes as they die, until
// the user interrupts the process.
package connect

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rbmk-project/conduit/internal/config"
	"github.com/rbmk-project/conduit/internal/endpoint"
	"github.com/rbmk-project/conduit/pkg/common/cliutils"
	"github.com/spf13/pflag"
)

//go:embed README.txt
var readme string

// NewCommand creates the `conduit connect` Command.
func NewCommand() cliutils.Command {
	return command{}
}

type command struct{}

// Help implements [cliutils.Command].
func (cmd command) Help(env cliutils.Environment, argv ...string) error {
	fmt.Fprintf(env.Stdout(), "%s\n", readme)
	return nil
}

// Main implements [cliutils.Command].
func (cmd command) Main(ctx context.Context, env cliutils.Environment, argv ...string) error {
	// 1. honour requests for printing the help
	if cliutils.HelpRequested(argv...) {
		return cmd.Help(env, argv...)
	}

	// 2. create initial task with defaults
	task := &Task{
		Policy:     config.DefaultPolicy(),
		LogsWriter: io.Discard,
		Output:     env.Stdout(),
	}

	// 3. create command line parser
	clip := pflag.NewFlagSet("conduit connect", pflag.ContinueOnError)

	// 4. add flags to the parser
	directoryURL := clip.String("directory", "", "directory base URL")
	exitHostname := clip.String("exit", "", "exit hostname hint (\"\" picks the closest exit)")
	endpointFlag := clip.String("endpoint", "", "dial a single pk@host:port endpoint directly")
	bridgesOnly := clip.Bool("bridges-only", false, "only dial bridges outside the direct allocation group")
	logfile := clip.String("logs", "", "path where to write structured logs")

	// 5. parse command line arguments
	if err := clip.Parse(argv[1:]); err != nil {
		fmt.Fprintf(env.Stderr(), "conduit connect: %s\n", err.Error())
		fmt.Fprintf(env.Stderr(), "Run `conduit connect --help` for usage.\n")
		return err
	}

	// 6. validate and wire the endpoint-vs-directory choice
	task.Policy.BridgesOnly = *bridgesOnly
	task.ExitHostname = *exitHostname
	switch {
	case *endpointFlag != "":
		ep, err := endpoint.Parse(*endpointFlag)
		if err != nil {
			err = fmt.Errorf("invalid --endpoint: %w", err)
			fmt.Fprintf(env.Stderr(), "conduit connect: %s\n", err.Error())
			return err
		}
		task.Endpoint = &ep
	case *directoryURL != "":
		task.DirectoryURL = *directoryURL
	default:
		err := errors.New("one of --directory or --endpoint is required")
		fmt.Fprintf(env.Stderr(), "conduit connect: %s\n", err.Error())
		fmt.Fprintf(env.Stderr(), "Run `conduit connect --help` for usage.\n")
		return err
	}

	// 7. handle --logs flag
	switch *logfile {
	case "":
		// nothing
	case "-":
		task.LogsWriter = env.Stdout()
	default:
		filep, err := os.OpenFile(*logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			err = fmt.Errorf("cannot open log file: %w", err)
			fmt.Fprintf(env.Stderr(), "conduit connect: %s\n", err.Error())
			return err
		}
		defer filep.Close()
		task.LogsWriter = io.MultiWriter(task.LogsWriter, filep)
	}

	// 8. run the task until interrupted
	if err := task.Run(ctx); err != nil {
		fmt.Fprintf(env.Stderr(), "conduit connect: %s\n", err.Error())
		return err
	}
	return nil
}
