// Package main provides a tuning checker: it validates a preset and any
// tuning YAML overrides exactly the way the simulation loads them, and
// reports problems before they reach a fight.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kestrelforge/revenant/internal/game/ruleset"
)

func main() {
	start := time.Now()

	dir := flag.String("dir", "", "directory of tuning YAML overrides; empty = preset only")
	preset := flag.String("preset", "default", "base preset the overrides merge over")
	flag.Parse()

	base, err := ruleset.PresetByName(*preset)
	if err != nil {
		log.Fatalf("resolving preset: %v", err)
	}
	fmt.Fprintf(os.Stdout, "preset %s: ok\n", *preset)

	if *dir == "" {
		fmt.Fprintf(os.Stdout, "checked preset only [%s]\n", time.Since(start))
		return
	}

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("reading tuning dir: %v", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		files = append(files, e.Name())
	}

	// Each file alone over the preset, then the full merge in load order.
	failures := 0
	for _, name := range files {
		path := filepath.Join(*dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("reading %s: %v", path, err)
		}
		if _, err := ruleset.LoadBytes(data, base); err != nil {
			failures++
			fmt.Fprintf(os.Stdout, "%s: %v\n", name, err)
			continue
		}
		fmt.Fprintf(os.Stdout, "%s: ok\n", name)
	}
	if _, err := ruleset.LoadDir(*dir, base); err != nil {
		failures++
		fmt.Fprintf(os.Stdout, "merged: %v\n", err)
	} else {
		fmt.Fprintf(os.Stdout, "merged: ok\n")
	}

	elapsed := time.Since(start)
	if failures > 0 {
		fmt.Fprintf(os.Stdout, "%d problem(s) in %d file(s) [%s]\n", failures, len(files), elapsed)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, "checked %d file(s) [%s]\n", len(files), elapsed)
}
