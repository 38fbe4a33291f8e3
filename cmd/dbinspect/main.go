// Package main prints the blobs stored by the catalog server.
//
// Usage:
//
//	go run ./cmd/dbinspect -path ~/CatalogServer/data/catalog.badger
//	go run ./cmd/dbinspect -driver sqlite -path ./catalog.sqlite -key books
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"slices"

	"github.com/goccy/go-json"

	"github.com/listenupapp/catalog-server/internal/config"
	"github.com/listenupapp/catalog-server/internal/di/providers"
	"github.com/listenupapp/catalog-server/internal/store"
)

func main() {
	driver := flag.String("driver", "badger", "Store backend: badger or sqlite")
	path := flag.String("path", os.ExpandEnv("$HOME/CatalogServer/data/catalog.badger"), "Path to the database")
	key := flag.String("key", "", "Only print this key")
	flag.Parse()

	keys := store.AllKeys
	if *key != "" {
		if !slices.Contains(store.AllKeys, *key) {
			log.Fatalf("Unknown key %q (known: %v)", *key, store.AllKeys)
		}
		keys = []string{*key}
	}

	kv, err := providers.OpenKV(&config.Config{Store: config.StoreConfig{Driver: *driver, Path: *path}})
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	st := store.New(kv, nil)
	defer st.Close()

	if err := inspect(context.Background(), os.Stdout, st, keys); err != nil {
		log.Fatalf("Inspection failed: %v", err)
	}
}

// inspect writes each key with its size and indented contents.
func inspect(ctx context.Context, w io.Writer, st *store.Store, keys []string) error {
	fmt.Fprintln(w, "=== Database Inspection ===")
	for _, key := range keys {
		raw, err := st.Raw(ctx, key)
		if err != nil {
			return fmt.Errorf("read %s: %w", key, err)
		}

		fmt.Fprintln(w)
		if raw == nil {
			fmt.Fprintf(w, "%s: (not set)\n", key)
			continue
		}
		fmt.Fprintf(w, "%s: %d bytes\n", key, len(raw))

		var out bytes.Buffer
		if err := json.Indent(&out, raw, "  ", "  "); err != nil {
			// Not JSON: the server falls back to defaults for this key.
			fmt.Fprintf(w, "  (undecodable) %q\n", raw)
			continue
		}
		fmt.Fprintf(w, "  %s\n", out.String())
	}
	return nil
}
