package main

import (
	"os"

	"github.com/machibo/backoffice/cmd"
	"github.com/machibo/backoffice/internal/logging"
)

func main() {
	err := cmd.Execute()
	closeRuntime()
	_ = logging.ShutdownGlobal()
	if err != nil {
		os.Exit(1)
	}
}
