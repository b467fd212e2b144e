package main

import (
	"fmt"
	"log"
	"os"

	"github.com/jaffee/commandeer/pflag"

	"c360/pkg/logger"
	"c360/pkg/pipeline"
)

func main() {
	m := pipeline.NewMain()
	if err := pflag.LoadEnv(m, "C360_", nil); err != nil {
		log.Fatal(err)
	}
	if m.DryRun {
		fmt.Printf("%+v\n", m)
		return
	}

	if err := m.Append(); err != nil {
		logger.NewStandardLogger(os.Stderr).Errorf("Error running append: %v", err)
		os.Exit(1)
	}
}
