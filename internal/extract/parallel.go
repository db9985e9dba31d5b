package extract

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/simonwiles/patent-conversion/internal/xmldoc"
)

// parsedDoc carries one document from the parse workers to the extracting
// consumer.
type parsedDoc struct {
	index int
	raw   []byte
	root  *xmldoc.Element
	err   error
	dur   time.Duration
}

// RunParallel behaves exactly like Run but parses documents on workers
// goroutines. Extraction itself stays on a single consumer that restores
// batch order, so row order and synthetic keys match the sequential run
// byte for byte.
func (r *Runner) RunParallel(ctx context.Context, src io.Reader, workers int) (Summary, error) {
	if workers <= 1 {
		return r.Run(ctx, src)
	}

	g, ctx := errgroup.WithContext(ctx)
	jobs := make(chan parsedDoc, workers)
	parsed := make(chan parsedDoc, workers)

	g.Go(func() error {
		defer close(jobs)
		sp := xmldoc.NewSplitter(src)
		for i := 0; ; i++ {
			raw, err := sp.Next()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("extract: read batch: %w", err)
			}
			select {
			case jobs <- parsedDoc{index: i, raw: raw}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			for d := range jobs {
				start := time.Now()
				d.root, d.err = xmldoc.Parse(d.raw)
				d.dur = time.Since(start)
				select {
				case parsed <- d:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		wg.Wait()
		close(parsed)
		return nil
	})

	var sum Summary
	g.Go(func() error {
		ex := &Extractor{Config: r.Config, Store: r.Store}
		pending := map[int]parsedDoc{}
		next := 0
		for d := range parsed {
			pending[d.index] = d
			for {
				cur, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				r.account(&sum, ex, cur.index, cur.raw, cur.root, cur.err, cur.dur)
				next++
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return sum, err
	}
	r.recordRows()
	return sum, nil
}
