package main

import (
	"context"

	"github.com/alecthomas/kong"
)

var (
	version = "dev"
	cli     struct {
		Version kong.VersionFlag
		Serve   ServeCmd   `cmd:"" default:"1" help:"Run migrations and start the HTTP server."`
		Migrate MigrateCmd `cmd:"" help:"Apply database migrations and exit."`
		Seed    SeedCmd    `cmd:"" help:"Create the demo association and exit."`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("fornet"),
		kong.Description("Websites and booking for Swedish associations."),
		kong.Vars{"version": version},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	cmd.FatalIfErrorf(cmd.Run())
}
