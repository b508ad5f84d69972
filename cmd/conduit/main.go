// SPDX-License-Identifier: GPL-3.0-or-later

// Command conduit implements the `conduit` command.
package main

import (
	_ "embed"
	"os"

	"github.com/rbmk-project/conduit/pkg/cli/connect"
	"github.com/rbmk-project/conduit/pkg/cli/stun"
	"github.com/rbmk-project/conduit/pkg/common/cliutils"
	"github.com/rbmk-project/conduit/pkg/common/climain"
)

var mainArgs = os.Args

func main() {
	climain.Run(newCommand(), os.Exit, mainArgs...)
}

//go:embed README.txt
var readme string

// newCommand constructs a new [cliutils.Command] for the `conduit` command.
func newCommand() cliutils.Command {
	renderer := cliutils.LazyHelpRendererFunc(func() string { return readme })
	return cliutils.NewCommandWithSubCommands("conduit", renderer, map[string]cliutils.Command{
		"connect": connect.NewCommand(),
		"stun":    stun.NewCommand(),
	})
}
