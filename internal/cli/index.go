package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cynthialmy/llm-decision-flow/internal/model"
	"github.com/cynthialmy/llm-decision-flow/internal/rag"
)

var (
	indexSourceType    string
	indexSourceQuality string
	indexActivate      bool
)

// indexCmd represents the index command group
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the internal evidence index",
}

// indexAddCmd loads documents into the evidence index
var indexAddCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Add documents to the evidence index",
	Long: `Add reads documents from a JSON-lines file and loads them into the
evidence index as a new version. Each line is an object:

  {"text": "...", "source": "WHO", "source_type": "authoritative", "url": "..."}

Plain-text files also work: each non-empty line becomes one document
with the --source-type and --source-quality flags applied.

Example:
  decisionflow index add corpus.jsonl --activate
  decisionflow index add notes.txt --source-type internal`,
	Args: cobra.ExactArgs(1),
	RunE: runIndexAdd,
}

// indexStatsCmd shows index stats
var indexStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show evidence index statistics",
	RunE:  runIndexStats,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(indexAddCmd)
	indexCmd.AddCommand(indexStatsCmd)

	indexAddCmd.Flags().StringVar(&indexSourceType, "source-type", "internal", "source type for plain-text documents")
	indexAddCmd.Flags().StringVar(&indexSourceQuality, "source-quality", "medium", "source quality for plain-text documents")
	indexAddCmd.Flags().BoolVar(&indexActivate, "activate", false, "activate the new index version after loading")
}

func runIndexAdd(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	docs, err := readDocuments(args[0])
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no documents found in %s", args[0])
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	newVersion := rt.index.ActiveVersion() + 1
	for i := range docs {
		docs[i].Version = newVersion
	}

	if err := rt.index.AddDocuments(ctx, docs); err != nil {
		return fmt.Errorf("add documents: %w", err)
	}
	if indexActivate {
		rt.index.SetActiveVersion(newVersion)
	}
	if err := rt.index.Save(); err != nil {
		return fmt.Errorf("save index: %w", err)
	}

	fmt.Printf("Loaded %d documents as version %d", len(docs), newVersion)
	if indexActivate {
		fmt.Print(" (active)")
	}
	fmt.Println()
	return nil
}

func runIndexStats(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	fmt.Printf("Index path:     %s\n", rt.cfg.Index.Path)
	fmt.Printf("Documents:      %d\n", rt.index.Count())
	fmt.Printf("Active version: %d\n", rt.index.ActiveVersion())
	return nil
}

// readDocuments parses a JSONL or plain-text document file
func readDocuments(filePath string) ([]rag.Document, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	classifier := rag.NewDomainClassifier()

	var docs []rag.Document
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}

		var doc rag.Document
		if line[0] == '{' {
			if err := json.Unmarshal([]byte(line), &doc); err != nil {
				return nil, fmt.Errorf("parse document line: %w", err)
			}
		} else {
			doc = rag.Document{
				Text:          line,
				Source:        filePath,
				SourceType:    indexSourceType,
				SourceQuality: indexSourceQuality,
			}
		}
		if doc.Text == "" {
			continue
		}
		if doc.ID == "" {
			doc.ID = uuid.NewString()
		}
		if doc.SourceType == "" {
			if doc.URL != "" {
				doc.SourceType = string(classifier.Classify(doc.URL))
			} else {
				doc.SourceType = indexSourceType
			}
		}
		if doc.SourceQuality == "" {
			if doc.URL != "" {
				doc.SourceQuality = classifier.Quality(model.ParseSourceType(doc.SourceType))
			} else {
				doc.SourceQuality = indexSourceQuality
			}
		}
		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return docs, nil
}
