package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/factview/internal/model"
)

// Checker submits text for fact-checking
type Checker interface {
	Check(ctx context.Context, req model.CheckRequest) (*model.CheckResponse, error)
}

// CheckJob checks the contents of one input file
type CheckJob struct {
	Index   int
	Path    string
	Config  model.CheckConfig
	Checker Checker
}

// Execute reads the file and sends it to the checker
func (j *CheckJob) Execute(ctx context.Context) Result {
	res := &CheckResult{Index: j.Index, Path: j.Path}

	data, err := os.ReadFile(j.Path)
	if err != nil {
		res.Error = fmt.Errorf("read input: %w", err)
		return res
	}
	req, err := j.Config.Request(string(data))
	if err != nil {
		res.Error = err
		return res
	}
	resp, err := j.Checker.Check(ctx, req)
	if err != nil {
		res.Error = err
		return res
	}
	res.Response = resp
	return res
}

// CheckResult is the outcome of one CheckJob
type CheckResult struct {
	Index    int
	Path     string
	Response *model.CheckResponse
	Error    error
}

// GetError returns the error from the check
func (r *CheckResult) GetError() error {
	return r.Error
}

// BatchProcessor checks many input files concurrently
type BatchProcessor struct {
	checker     Checker
	config      model.CheckConfig
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(checker Checker, config model.CheckConfig, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		checker:     checker,
		config:      config,
		concurrency: concurrency,
	}
}

// ProcessFiles checks every path and returns one result per path, in input
// order. A failing file does not stop the others.
func (b *BatchProcessor) ProcessFiles(ctx context.Context, paths []string) []*CheckResult {
	if len(paths) == 0 {
		return []*CheckResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	out := make([]*CheckResult, len(paths))
	for i, path := range paths {
		job := &CheckJob{
			Index:   i,
			Path:    path,
			Config:  b.config,
			Checker: b.checker,
		}
		if !pool.Submit(job) {
			out[i] = &CheckResult{Index: i, Path: path, Error: fmt.Errorf("not started: %w", context.Cause(ctx))}
		}
	}

	for _, r := range pool.Wait() {
		cr := r.(*CheckResult)
		out[cr.Index] = cr
	}
	for i, r := range out {
		if r == nil {
			out[i] = &CheckResult{Index: i, Path: paths[i], Error: fmt.Errorf("not started: %w", context.Cause(ctx))}
		}
	}
	return out
}

// ProcessList reads input paths from a list file and checks them
func (b *BatchProcessor) ProcessList(ctx context.Context, listPath string) ([]*CheckResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read paths: %w", err)
	}

	return b.ProcessFiles(ctx, paths), nil
}

// Failed returns the results that carry an error, sorted by path
func Failed(results []*CheckResult) []*CheckResult {
	var failed []*CheckResult
	for _, r := range results {
		if r.Error != nil {
			failed = append(failed, r)
		}
	}
	sort.Slice(failed, func(i, j int) bool { return failed[i].Path < failed[j].Path })
	return failed
}

// ReadPathsFromFile reads input paths from a file (one per line)
func ReadPathsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
