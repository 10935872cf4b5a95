package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elitecommand/aura-session/internal/adapt"
	"github.com/elitecommand/aura-session/internal/vault"
)

var (
	inspectStore string
	inspectProv  string
	inspectLimit int
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspect local session storage",
	Long: `Prints what a session left on disk: stored insight keys from the
vault and recent entries from the adaptation log. Record contents stay
sealed; encrypted blobs need the session key that died with the
session.`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectStore, "store", "", "path to the insight vault database")
	inspectCmd.Flags().StringVar(&inspectProv, "provenance", "", "path to the adaptation log database")
	inspectCmd.Flags().IntVar(&inspectLimit, "limit", 20, "maximum entries to print per source")
}

func runInspect(cmd *cobra.Command, args []string) error {
	if inspectStore == "" && inspectProv == "" {
		return fmt.Errorf("nothing to inspect: pass --store and/or --provenance")
	}

	if inspectStore != "" {
		if err := inspectVault(inspectStore); err != nil {
			return err
		}
	}
	if inspectProv != "" {
		if err := inspectProvenance(inspectProv); err != nil {
			return err
		}
	}
	return nil
}

func inspectVault(path string) error {
	store, err := vault.Open(path, vault.DefaultConfig(), nil, logger)
	if err != nil {
		return fmt.Errorf("open vault: %w", err)
	}
	defer store.Close()

	count, err := store.Count()
	if err != nil {
		return fmt.Errorf("count records: %w", err)
	}
	keys, err := store.Keys(inspectLimit)
	if err != nil {
		return fmt.Errorf("list keys: %w", err)
	}

	fmt.Printf("vault %s: %d records\n", path, count)
	for _, k := range keys {
		fmt.Printf("  %s\n", k)
	}
	if count > len(keys) {
		fmt.Printf("  ... %d more\n", count-len(keys))
	}
	return nil
}

func inspectProvenance(path string) error {
	prov, err := adapt.OpenProvenanceLog(path)
	if err != nil {
		return fmt.Errorf("open adaptation log: %w", err)
	}
	defer prov.Close()

	recs, err := prov.Recent(inspectLimit)
	if err != nil {
		return fmt.Errorf("read adaptation log: %w", err)
	}

	fmt.Printf("adaptation log %s: showing %d entries\n", path, len(recs))
	for _, r := range recs {
		kind := string(r.Type)
		if kind == "" {
			kind = "tag_deltas"
		}
		line := fmt.Sprintf("  %s  %-22s %-9s source=%s", r.At.Format("2006-01-02 15:04:05"), kind, r.Outcome, r.Source)
		if r.Detail != "" {
			line += "  " + r.Detail
		}
		fmt.Println(line)
	}
	return nil
}
