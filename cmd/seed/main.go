// Package main provides a tool to load books into the catalog from a YAML file.
//
// The file lists books under a top-level "books" key:
//
//	books:
//	  - title: Emma
//	    author: Jane Austen
//	    genre: Classic
//
// Usage:
//
//	go run ./cmd/seed -path ~/CatalogServer/data/catalog.badger books.yaml
//	go run ./cmd/seed -driver sqlite -path ./catalog.sqlite books.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/listenupapp/catalog-server/internal/config"
	"github.com/listenupapp/catalog-server/internal/di/providers"
	domainerrors "github.com/listenupapp/catalog-server/internal/errors"
	"github.com/listenupapp/catalog-server/internal/service"
	"github.com/listenupapp/catalog-server/internal/store"
	"github.com/listenupapp/catalog-server/internal/validation"
)

// seedFile is the YAML document read by the tool.
type seedFile struct {
	Books []seedBook `yaml:"books"`
}

type seedBook struct {
	Title  string `yaml:"title"`
	Author string `yaml:"author"`
	Genre  string `yaml:"genre"`
}

func main() {
	driver := flag.String("driver", "badger", "Store backend: badger or sqlite")
	path := flag.String("path", os.ExpandEnv("$HOME/CatalogServer/data/catalog.badger"), "Path to the database")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal("usage: seed [-driver badger|sqlite] [-path PATH] books.yaml")
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to open seed file: %v", err)
	}
	books, err := parseSeedFile(f)
	_ = f.Close()
	if err != nil {
		log.Fatalf("Failed to parse seed file: %v", err)
	}

	kv, err := providers.OpenKV(&config.Config{Store: config.StoreConfig{Driver: *driver, Path: *path}})
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	st := store.New(kv, nil)
	defer st.Close()

	library := service.NewLibraryService(st, nil, validation.New(), nil, nil, 0, nil)
	added, skipped, err := seed(context.Background(), library, books)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	fmt.Printf("Added %d books, skipped %d already in the catalog\n", added, skipped)
}

func parseSeedFile(r io.Reader) ([]seedBook, error) {
	var doc seedFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	return doc.Books, nil
}

// seed adds books in order. Titles already in the catalog are skipped; any
// other failure stops the run.
func seed(ctx context.Context, library *service.LibraryService, books []seedBook) (added, skipped int, err error) {
	for _, b := range books {
		_, _, err := library.AddBook(ctx, service.AddBookRequest{Title: b.Title, Author: b.Author, Genre: b.Genre})
		switch {
		case err == nil:
			added++
		case domainerrors.Is(err, domainerrors.ErrAlreadyExists):
			skipped++
		default:
			return added, skipped, fmt.Errorf("add %q: %w", b.Title, err)
		}
	}
	return added, skipped, nil
}
