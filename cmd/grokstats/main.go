// Command grokstats serves source cross references and search, recording
// request statistics for every page it serves.
package main

import (
	"fmt"
	"os"

	cli "github.com/urfave/cli"

	"github.com/heroku/grokstats/cmdutil/hypercmd"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %s\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "grokstats"
	app.Usage = "source browsing with request statistics"
	app.Commands = []cli.Command{
		hypercmd.New("web", "Serve pages and record request statistics", runWeb),
		hypercmd.New("catalog", "Print the project catalog", runCatalog),
	}
	return app
}
