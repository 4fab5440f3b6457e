package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/jaycloud/jaycloud-go/internal/buildinfo"
	"github.com/jaycloud/jaycloud-go/internal/client/cli"
	"github.com/jaycloud/jaycloud-go/internal/client/config"
	"github.com/jaycloud/jaycloud-go/internal/flagx"
)

// parseSSOMarker reads the -sso flag: the terminal analogue of the query
// parameter a browser carries when an external service sent the user here
// to authenticate.
func parseSSOMarker() bool {
	args := flagx.FilterArgs(os.Args[1:], []string{"-sso"})
	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	sso := fs.Bool("sso", false, "launched on behalf of an external service")
	if err := fs.Parse(args); err != nil {
		return false
	}
	return *sso
}

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg, parseSSOMarker())

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
