// Command models lists the artifacts discoverable under the configured
// registry root, for operators verifying a deployment before it serves.
package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"iclvault/internal/adapters/config"
	"iclvault/internal/registry"
	"iclvault/pkg/logger"
)

func main() {
	root := flag.String("root", "", "registry root (defaults to MODEL_REGISTRY_ROOT)")
	verbose := flag.Bool("v", false, "include declared feature names")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init("warn", cfg.App.Env); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	dir := cfg.Registry.Root
	if *root != "" {
		dir = *root
	}

	reg := registry.New(dir, logger.Get())
	tags := reg.Tags()
	if len(tags) == 0 {
		fmt.Fprintf(os.Stderr, "no artifacts found under %s\n", dir)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TAG\tFEATURES\tVAULT MARGIN\tDESCRIPTION")
	for _, tag := range tags {
		a, err := reg.Get(tag)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t±%.0f µm\t%s\n", a.Tag, a.FeatureCount(), a.VaultMargin, a.Description)
	}
	w.Flush()

	if *verbose {
		for _, tag := range tags {
			a, err := reg.Get(tag)
			if err != nil {
				continue
			}
			fmt.Printf("\n%s:\n", a.Tag)
			for _, name := range a.Features {
				fmt.Printf("  %s\n", name)
			}
		}
	}
}
