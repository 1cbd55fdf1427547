package entities

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"winelabel/internal/dto"
	applog "winelabel/internal/log"
)

const importConcurrency = 4

// ImportReport summarises a batch import. Failures carry 1-based spreadsheet rows.
type ImportReport struct {
	Entity   Entity
	Total    int
	Created  int
	Failures []dto.ImportFailure
}

func (r ImportReport) Failed() int { return len(r.Failures) }

// Merge adds failures found before submission, such as rows that did not parse.
func (r *ImportReport) Merge(failures ...dto.ImportFailure) {
	r.Total += len(failures)
	r.Failures = append(r.Failures, failures...)
	sortFailures(r.Failures)
}

// runImport validates and creates each row. A failing row is recorded and the batch
// continues. The cache is invalidated once when anything was created.
func runImport[T, In, P any](ctx context.Context, c *collection[T, In, P], rows []dto.ImportRow[In]) ImportReport {
	report := ImportReport{Entity: c.entity, Total: len(rows)}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(importConcurrency)

	for _, row := range rows {
		row := row
		g.Go(func() error {
			err := c.validate(row.Input)
			if err == nil {
				_, err = c.create(ctx, row.Input)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failures = append(report.Failures, dto.ImportFailure{Row: row.Row, Error: err.Error()})
				return nil
			}
			report.Created++
			return nil
		})
	}
	_ = g.Wait()

	sortFailures(report.Failures)
	if report.Created > 0 {
		c.store.Invalidate(c.key)
	}
	applog.Info(ctx, "import finished", "entity", c.entity, "created", report.Created, "failed", len(report.Failures))
	return report
}

func sortFailures(failures []dto.ImportFailure) {
	sort.SliceStable(failures, func(i, j int) bool { return failures[i].Row < failures[j].Row })
}
