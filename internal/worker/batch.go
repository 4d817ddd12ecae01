package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cynthialmy/llm-decision-flow/internal/model"
)

// Analyzer defines the interface for analyzing one transcript
type Analyzer interface {
	AnalyzeTranscript(ctx context.Context, transcript string) *model.AnalysisResult
}

// AnalyzeJob represents a single transcript analysis job
type AnalyzeJob struct {
	Transcript string
	Analyzer   Analyzer
}

// Execute executes the analysis job
func (j *AnalyzeJob) Execute(ctx context.Context) Result {
	result := j.Analyzer.AnalyzeTranscript(ctx, j.Transcript)
	return &AnalyzeResult{
		Transcript: j.Transcript,
		Result:     result,
	}
}

// AnalyzeResult represents the result of an analysis job
type AnalyzeResult struct {
	Transcript string
	Result     *model.AnalysisResult
	Error      error
}

// GetError returns the error from the analysis result
func (r *AnalyzeResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes multiple transcripts concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer Analyzer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
	}
}

// ProcessTranscripts analyzes multiple transcripts concurrently.
// Results preserve pool completion order, not input order.
func (b *BatchProcessor) ProcessTranscripts(ctx context.Context, transcripts []string) []*AnalyzeResult {
	if len(transcripts) == 0 {
		return []*AnalyzeResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, transcript := range transcripts {
		job := &AnalyzeJob{
			Transcript: transcript,
			Analyzer:   b.analyzer,
		}
		pool.Submit(job)
	}

	results := pool.Wait()

	analyzeResults := make([]*AnalyzeResult, len(results))
	for i, result := range results {
		analyzeResults[i] = result.(*AnalyzeResult)
	}

	return analyzeResults
}

// ProcessFile reads transcripts from a file and analyzes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*AnalyzeResult, error) {
	transcripts, err := ReadTranscriptsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read transcripts: %w", err)
	}

	return b.ProcessTranscripts(ctx, transcripts), nil
}

// ReadTranscriptsFromFile reads transcripts from a file, one per
// line. Blank lines and comment lines are skipped; duplicates are
// analyzed once.
func ReadTranscriptsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var transcripts []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			transcripts = append(transcripts, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return transcripts, nil
}
