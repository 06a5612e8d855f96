// Package main runs scripted missions headlessly and exits non-zero if any
// script's expectations fail.
//
// Usage:
//
//	mission-runner                 # every built-in script
//	mission-runner a.yaml b.yaml   # scripts from files
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/MRamiBalles/BioHome/server/internal/platform/logger"
	"github.com/MRamiBalles/BioHome/server/internal/scenario"
)

func main() {
	verbose := flag.Bool("v", false, "log engine activity")
	flag.Parse()

	fmt.Println("BIOHOME - MISSION SCRIPT SUITE")
	fmt.Println(strings.Repeat("=", 60))

	scripts, err := loadScripts(flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := logger.Discard()
	if *verbose {
		log = logger.New(os.Stderr, "debug", false)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	start := time.Now()
	runner := scenario.NewRunner(log)
	passed, failed := 0, 0
	for _, s := range scripts {
		fmt.Printf("\n> %s: %s\n", s.Name, s.Description)
		res := runner.RunScript(ctx, s)
		fmt.Printf("  %s\n", res.Summary())
		if res.Passed {
			passed++
			fmt.Println("  PASS")
			continue
		}
		failed++
		for _, f := range res.Failures {
			fmt.Printf("  FAIL %s\n", f)
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Printf("Passed: %d  Failed: %d  (%v)\n", passed, failed, time.Since(start).Round(time.Millisecond))
	if failed > 0 {
		os.Exit(1)
	}
}

func loadScripts(files []string) ([]*scenario.Script, error) {
	if len(files) == 0 {
		return scenario.Builtin()
	}
	scripts := make([]*scenario.Script, 0, len(files))
	for _, f := range files {
		s, err := scenario.Load(f)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, s)
	}
	return scripts, nil
}
