// Package tabq runs SQL-shaped queries against addressable tabular
// resources: CSV, JSON or parquet content behind a URL, file path or s3
// locator named in the statement's FROM clause.
package tabq

import (
	"context"
	"fmt"
	"time"

	"github.com/ai-aide/tabq/internal"
	"github.com/ai-aide/tabq/internal/format"
	"github.com/ai-aide/tabq/internal/source"
	"github.com/ai-aide/tabq/internal/sql/executor"
	"github.com/ai-aide/tabq/internal/sql/parser"
	"github.com/ai-aide/tabq/internal/table"
)

// Engine carries the fetch policy and resource cache. A nil-config engine
// uses the defaults; engines are safe for concurrent use.
type Engine struct {
	fetcher *source.Fetcher
}

func NewEngine(cfg *internal.Config) *Engine {
	if cfg == nil {
		cfg = internal.DefaultConfig()
	}
	fc := source.FetcherConfig{
		Timeout:      time.Duration(cfg.Fetch.TimeoutMS) * time.Millisecond,
		Retries:      cfg.Fetch.Retries,
		Backoff:      time.Duration(cfg.Fetch.BackoffMS) * time.Millisecond,
		CacheTTL:     time.Duration(cfg.Cache.TTLMS) * time.Millisecond,
		CacheEntries: cfg.Cache.MaxEntries,
		S3: source.S3Options{
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
		},
	}
	return &Engine{fetcher: source.NewFetcher(fc)}
}

// Query parses and executes a SELECT statement. formatHint overrides any
// extension-derived format guess.
func (e *Engine) Query(ctx context.Context, sql, formatHint string) (*Result, error) {
	stmt, err := parser.Parse(sql)
	if err != nil {
		return nil, err
	}
	sel, ok := stmt.(*parser.SelectStmt)
	if !ok {
		return nil, fmt.Errorf("tabq: Query wants a SELECT statement, use ShowColumns for SHOW COLUMNS")
	}

	typed, err := e.loadTyped(ctx, sel.Locator, formatHint)
	if err != nil {
		return nil, err
	}
	return executor.Execute(sel, typed)
}

// ShowColumns returns the ordered column metadata of the resource a
// statement addresses. It accepts SHOW COLUMNS FROM statements and, like
// the original surface, pulls the locator out of a SELECT as well.
func (e *Engine) ShowColumns(ctx context.Context, sql, formatHint string) ([]Column, error) {
	stmt, err := parser.Parse(sql)
	if err != nil {
		return nil, err
	}
	var locator string
	switch s := stmt.(type) {
	case *parser.ShowColumnsStmt:
		locator = s.Locator
	case *parser.SelectStmt:
		locator = s.Locator
	}

	raw, err := e.loadRaw(ctx, locator, formatHint)
	if err != nil {
		return nil, err
	}
	return table.Infer(raw), nil
}

// Exec dispatches on the statement kind: SELECT behaves like Query, SHOW
// COLUMNS returns a column/type listing as a result table.
func (e *Engine) Exec(ctx context.Context, sql, formatHint string) (*Result, error) {
	stmt, err := parser.Parse(sql)
	if err != nil {
		return nil, err
	}
	switch s := stmt.(type) {
	case *parser.SelectStmt:
		typed, err := e.loadTyped(ctx, s.Locator, formatHint)
		if err != nil {
			return nil, err
		}
		return executor.Execute(s, typed)
	case *parser.ShowColumnsStmt:
		raw, err := e.loadRaw(ctx, s.Locator, formatHint)
		if err != nil {
			return nil, err
		}
		cols := table.Infer(raw)
		res := &Result{
			Columns: []Column{
				{Name: "column", Type: table.TypeString},
				{Name: "type", Type: table.TypeString},
			},
		}
		for _, c := range cols {
			res.Rows = append(res.Rows, []Value{
				table.StringValue(c.Name),
				table.StringValue(c.Type.String()),
			})
		}
		return res, nil
	default:
		return nil, fmt.Errorf("tabq: unsupported statement %T", stmt)
	}
}

func (e *Engine) loadRaw(ctx context.Context, locator, formatHint string) (*table.Raw, error) {
	loc, err := source.Resolve(locator, formatHint)
	if err != nil {
		return nil, err
	}
	data, err := e.fetcher.Fetch(ctx, loc)
	if err != nil {
		return nil, err
	}
	dec, ok := format.Lookup(loc.Format)
	if !ok {
		// unreachable while Resolve and the registry agree on names
		return nil, &source.ResolveError{Locator: locator, Msg: fmt.Sprintf("unsupported format %q", loc.Format)}
	}
	return dec.Decode(data)
}

func (e *Engine) loadTyped(ctx context.Context, locator, formatHint string) (*table.Typed, error) {
	raw, err := e.loadRaw(ctx, locator, formatHint)
	if err != nil {
		return nil, err
	}
	return table.BuildTyped(raw, table.Infer(raw))
}

var defaultEngine = NewEngine(nil)

// Query runs sql against the shared default engine.
func Query(ctx context.Context, sql, formatHint string) (*Result, error) {
	return defaultEngine.Query(ctx, sql, formatHint)
}

// ShowColumns introspects the addressed resource via the default engine.
func ShowColumns(ctx context.Context, sql, formatHint string) ([]Column, error) {
	return defaultEngine.ShowColumns(ctx, sql, formatHint)
}

// ExampleSQL returns a fixed statement usable for smoke tests; it parses
// and runs end-to-end against a public dataset.
func ExampleSQL() string {
	url := "https://raw.githubusercontent.com/ai-aide/query-server/refs/heads/master/resource/owid-covid-latest.csv"
	return fmt.Sprintf(
		"SELECT total_deaths, new_deaths AS new_deaths_1 FROM %s WHERE new_deaths >= 5 AND total_deaths > 29.0 ORDER BY total_deaths, new_deaths DESC LIMIT 10 OFFSET 0",
		url,
	)
}
