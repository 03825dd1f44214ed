package main

import (
	"context"
	"fmt"
	"syscall"
	"text/tabwriter"

	"github.com/joeshaw/envdecode"
	cli "github.com/urfave/cli"

	"github.com/heroku/grokstats/cmdutil/signals"
)

func runCatalog(c *cli.Context) error {
	var cfg catalogConfig
	if err := envdecode.Decode(&cfg); err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
		return err
	}

	ctx := signals.WithNotifyCancel(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	cat, err := loadCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	if err := cat.Index(ctx); err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tFILES\tPATH")
	for _, p := range cat.Projects() {
		fmt.Fprintf(w, "%s\t%d\t%s\n", p.Name, len(cat.Files(p.Name)), p.Path)
	}
	return w.Flush()
}
