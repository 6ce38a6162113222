// Command otctl is a terminal client for the OT scheduling backend. It keeps
// the logged in user in a local LevelDB store.
package main

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/otscheduler/portal/config"
	"github.com/urfave/cli/v2"
)

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".otctl"
	}
	return filepath.Join(home, ".otctl")
}

func newApp() *cli.App {
	cfg := config.LoadConfig()
	return &cli.App{
		Name:  "otctl",
		Usage: "book and manage operating theatre appointments",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "store",
				Usage:   "directory of the local session store",
				Value:   defaultStorePath(),
				EnvVars: []string{"OTCTL_STORE"},
			},
			&cli.StringFlag{
				Name:    "backend",
				Usage:   "backend base URL",
				Value:   cfg.BackendURL,
				EnvVars: []string{"BACKENDURL"},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "per request timeout",
				Value: cfg.BackendTimeout,
			},
		},
		Commands: []*cli.Command{
			registerCommand(),
			loginCommand(),
			logoutCommand(),
			whoamiCommand(),
			forgotPasswordCommand(),
			doctorsCommand(),
			doctorCommand(),
			departmentsCommand(),
			conditionCommand(),
			slotsCommand(),
			bookCommand(),
			dashboardCommand(),
			statusCommand(),
			editCommand(),
			uploadCommand(),
			downloadCommand(),
		},
	}
}

func main() {
	log.SetFlags(0)
	app := newApp()
	app.Compiled = time.Now()
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
