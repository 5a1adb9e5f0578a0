package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	imgkit "github.com/alnah/go-imgkit"
	"github.com/alnah/go-imgkit/internal/fileutil"
)

// renderJob is one input and the image it produces.
type renderJob struct {
	InputPath  string
	OutputPath string
}

// renderResult holds the outcome of a single render.
type renderResult struct {
	InputPath  string
	OutputPath string
	Err        error
	Duration   time.Duration
}

// discoverJobs expands directories into their HTML and Markdown files and
// names an output for every input. With outputDir, images go there,
// keeping the layout below each input directory. Otherwise they sit next
// to their source.
func discoverJobs(inputs []string, outputDir string, format imgkit.Format) ([]renderJob, error) {
	var jobs []renderJob
	ext := string(format)

	for _, in := range inputs {
		switch {
		case in == stdinInput:
			return nil, fmt.Errorf("%w: stdin cannot be combined with other inputs", ErrUsage)

		case imgkit.NewSource(in).IsURL():
			name := urlFileName(in) + "." + ext
			jobs = append(jobs, renderJob{InputPath: in, OutputPath: filepath.Join(outputDir, name)})

		case isDir(in):
			err := filepath.WalkDir(in, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					if path != in && strings.HasPrefix(d.Name(), ".") {
						return filepath.SkipDir
					}
					return nil
				}
				if !isHTMLPath(path) && !isMarkdownPath(path) {
					return nil
				}
				out := fileutil.ReplaceExt(path, ext)
				if outputDir != "" {
					rel, err := filepath.Rel(in, path)
					if err != nil {
						return err
					}
					out = filepath.Join(outputDir, fileutil.ReplaceExt(rel, ext))
				}
				jobs = append(jobs, renderJob{InputPath: path, OutputPath: out})
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("%w: scanning %s: %v", ErrReadInput, in, err)
			}

		default:
			out := fileutil.ReplaceExt(in, ext)
			if outputDir != "" {
				out = filepath.Join(outputDir, filepath.Base(out))
			}
			jobs = append(jobs, renderJob{InputPath: in, OutputPath: out})
		}
	}
	return jobs, nil
}

// urlFileName derives a file name from a URL: host plus path, with
// separators flattened.
func urlFileName(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "page"
	}
	name := u.Host + strings.TrimSuffix(u.Path, "/")
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '?', '*', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}

// renderBatch renders every job, at most pool.Size() at a time. A failed
// job does not stop the others.
func renderBatch(ctx context.Context, pool *imgkit.ConverterPool, jobs []renderJob, s *renderSettings, env *Environment) []renderResult {
	results := make([]renderResult, len(jobs))

	var g errgroup.Group
	g.SetLimit(pool.Size())
	for i, job := range jobs {
		g.Go(func() error {
			results[i] = runJob(ctx, pool, job, s, env)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func runJob(ctx context.Context, pool *imgkit.ConverterPool, job renderJob, s *renderSettings, env *Environment) (result renderResult) {
	start := time.Now()
	result = renderResult{InputPath: job.InputPath, OutputPath: job.OutputPath}
	defer func() { result.Duration = time.Since(start) }()

	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	conv, err := pool.Acquire(ctx)
	if err != nil {
		result.Err = err
		return result
	}
	defer pool.Release(conv)

	src, err := buildSource(ctx, job.InputPath, s, env.Stdin)
	if err != nil {
		result.Err = err
		return result
	}
	result.Err = writeImage(ctx, conv, s.input(src), job.OutputPath)
	return result
}

// printResults reports each render and returns the failure count.
func printResults(w io.Writer, results []renderResult, quiet, verbose bool) int {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(w, "FAIL %s: %v\n", r.InputPath, r.Err)
			continue
		}
		if quiet {
			continue
		}
		if verbose {
			fmt.Fprintf(w, "ok   %s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(w, "ok   %s -> %s\n", r.InputPath, r.OutputPath)
		}
	}
	if !quiet && len(results) > 1 {
		fmt.Fprintf(w, "%d rendered, %d failed\n", len(results)-failed, failed)
	}
	return failed
}
