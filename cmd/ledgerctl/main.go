package main

import (
	"fmt"
	"os"
	"time"

	"github.com/opendoors/balance-dual/internal/interfaces/cli"
	"github.com/opendoors/balance-dual/pkg/config"
	"github.com/opendoors/balance-dual/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	settings, err := cfg.Fiscal.Settings()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Los logs van a stderr para no mezclarse con la salida JSON.
	log := logger.New(logger.Config{
		Env:    cfg.App.Env,
		Level:  cfg.Log.Level,
		Output: os.Stderr,
	})

	root := cli.NewRootCommand(cli.Deps{
		Settings: settings,
		Clock:    time.Now,
		Log:      log,
	})
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
