// Command import-document ingests a plain-text document into the store and
// the vector index from the command line.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"stratgraph/application/commands"
	"stratgraph/domain/core/entities"
	"stratgraph/infrastructure/config"
	"stratgraph/infrastructure/di"
)

func main() {
	var (
		filePath = flag.String("file", "", "path to the text file to import (required)")
		title    = flag.String("title", "", "document title (defaults to the file name)")
		author   = flag.String("author", "", "document author")
		timeout  = flag.Duration("timeout", 30*time.Minute, "overall import timeout")
	)
	flag.Parse()

	if *filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	content, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *filePath, err)
	}
	if strings.TrimSpace(string(content)) == "" {
		log.Fatalf("File %s is empty", *filePath)
	}

	docTitle := *title
	if docTitle == "" {
		base := filepath.Base(*filePath)
		docTitle = strings.TrimSuffix(base, filepath.Ext(base))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer container.Close()

	cmd := commands.IngestDocumentCommand{
		Title:   docTitle,
		Author:  *author,
		Content: string(content),
		Metadata: map[string]string{
			"source_file": filepath.Base(*filePath),
		},
	}

	result, err := container.CommandBus.Send(ctx, cmd)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	if doc, ok := result.(*entities.Document); ok {
		fmt.Printf("Imported %q as document %s\n", doc.Title, doc.ID)
	} else {
		fmt.Println("Import completed")
	}
}
