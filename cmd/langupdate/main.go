// Command langupdate downloads the latest game language files and filters
// them down to the keys worth learning: block, item, entity, biome and
// similar names. Results can optionally be loaded into the flashcard
// catalog database.
//
// Flags:
//
//	--phase     comma-separated phases: fetch, filter, store (default: fetch,filter)
//	--locales   comma-separated locales, e.g. en_us,zh_cn (default: from config)
//	--ruleset   key classification rules: canonical or legacy (default: from config)
//	--dry-run   download and classify without writing files or rows
//
// Configuration is read from CONFIG_PATH (default ./config.yaml) and the
// environment; see config.example.yaml.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/heartmarshall/mclang/internal/app"
)

func main() {
	phaseFlag := flag.String("phase", "", "comma-separated phases to run (default: fetch,filter)")
	localesFlag := flag.String("locales", "", "comma-separated locales (default: from config)")
	rulesetFlag := flag.String("ruleset", "", "classification rule set: canonical or legacy")
	dryRunFlag := flag.Bool("dry-run", false, "classify without writing files or rows")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 30-minute context timeout.
	ctx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	ok, err := app.Run(ctx, app.Options{
		Phases:  *phaseFlag,
		Locales: *localesFlag,
		RuleSet: *rulesetFlag,
		DryRun:  *dryRunFlag,
	})
	if err != nil {
		log.Printf("langupdate: %v", err)
		os.Exit(1)
	}
	if !ok {
		log.Print("langupdate: completed with errors")
		os.Exit(1)
	}
}
