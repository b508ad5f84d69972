// SPDX-License-Identifier: GPL-3.0-or-later

package connect

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/rbmk-project/conduit/internal/activity"
	"github.com/rbmk-project/conduit/internal/config"
	"github.com/rbmk-project/conduit/internal/directory"
	"github.com/rbmk-project/conduit/internal/endpoint"
	"github.com/rbmk-project/conduit/internal/mux"
	"github.com/rbmk-project/conduit/internal/netcore"
	"github.com/rbmk-project/conduit/internal/session"
)

// touchInterval is how often Task.Run marks the activity oracle as
// touched for the lifetime of the connection. A real data plane would
// touch it on every packet instead; this task has no data plane, so it
// approximates "the user is here" as "the command is still running".
const touchInterval = 5 * time.Second

// Task assembles a tunnel session and keeps it alive until ctx is
// cancelled, reporting pipe-count changes to Output.
type Task struct {
	// DirectoryURL is the directory's base URL. Ignored if Endpoint is set.
	DirectoryURL string

	// ExitHostname is the exit hostname hint ("" picks the closest exit).
	ExitHostname string

	// Endpoint, if non-nil, bypasses the directory and dials this
	// single pre-shared endpoint directly.
	Endpoint *endpoint.Endpoint

	// Policy is the bridge-selection and healing policy.
	Policy config.Policy

	// LogsWriter is where structured logs are written.
	LogsWriter io.Writer

	// Output is where pipe-count changes are reported.
	Output io.Writer
}

// Run assembles the session described by task and blocks until ctx is
// cancelled (normally by SIGINT, via climain's signal handling).
func (task *Task) Run(ctx context.Context) error {
	logger := slog.New(slog.NewJSONHandler(task.LogsWriter, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	netx := netcore.NewNetwork()
	netx.Logger = logger

	oracle := activity.New()
	tctx := session.TunnelCtx{
		Network:  netx,
		Policy:   task.Policy,
		Activity: oracle,
		Logger:   logger,
		Status: func(protocol, addr string) {
			fmt.Fprintf(task.Output, "dialing %s bridge at %s\n", protocol, addr)
		},
	}

	var (
		m   *mux.Multiplex
		err error
	)
	if task.Endpoint != nil {
		m, err = session.AssembleIndependent(ctx, *task.Endpoint, tctx)
	} else {
		tctx.Directory = directory.NewHTTPClient(task.DirectoryURL, netx)
		tctx.Policy.ExitHostname = task.ExitHostname
		m, err = session.Assemble(ctx, tctx)
	}
	if err != nil {
		return fmt.Errorf("cannot assemble session: %w", err)
	}

	fmt.Fprintf(task.Output, "session established: %s\n", mux.FormatSessionID(m.SessionID()))

	return task.watch(ctx, m, oracle)
}

// watch polls m's pipe count, reporting each change, and touches oracle
// periodically so the installed healer keeps treating the session as
// active, until ctx is cancelled.
func (task *Task) watch(ctx context.Context, m *mux.Multiplex, oracle *activity.Oracle) error {
	ticker := time.NewTicker(touchInterval)
	defer ticker.Stop()

	last := -1
	for {
		if count := m.PipeCount(); count != last {
			fmt.Fprintf(task.Output, "pipe count: %d\n", count)
			last = count
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			oracle.Touch()
		}
	}
}
