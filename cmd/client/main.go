package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chzyer/readline"
	"github.com/olekukonko/tablewriter"

	"github.com/ai-aide/tabq"
	"github.com/ai-aide/tabq/internal"
	"github.com/ai-aide/tabq/server/tabqwire"
)

// renderable is the common shape both the wire client and the in-process
// engine produce for printing.
type renderable struct {
	Columns []string
	Rows    [][]string
}

// runner executes one statement, either remotely or in process.
type runner interface {
	Run(sql string) (*renderable, error)
	Close() error
}

// ---- TCP client (sync) ----

type wireClient struct {
	conn   net.Conn
	format string
	mu     sync.Mutex
	id     atomic.Uint64
}

func dialWire(addr, format string, timeout time.Duration) (*wireClient, error) {
	d := net.Dialer{Timeout: timeout}
	c, err := d.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &wireClient{conn: c, format: format}, nil
}

func (c *wireClient) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *wireClient) Run(sql string) (*renderable, error) {
	reqID := c.id.Add(1)

	c.mu.Lock()
	defer c.mu.Unlock()

	req := tabqwire.QueryRequest{ID: reqID, SQL: sql, Format: c.format}
	if err := tabqwire.WriteFrame(c.conn, req); err != nil {
		return nil, err
	}

	var resp tabqwire.QueryResponse
	if err := tabqwire.ReadFrame(c.conn, &resp); err != nil {
		return nil, err
	}
	if resp.ID != reqID {
		return nil, fmt.Errorf("client: response id mismatch: got=%d want=%d", resp.ID, reqID)
	}
	if resp.Error != "" {
		return nil, errors.New(resp.Error)
	}

	out := &renderable{Columns: resp.Columns}
	for _, row := range resp.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = renderCell(v)
		}
		out.Rows = append(out.Rows, cells)
	}
	return out, nil
}

// ---- in-process engine ----

type localRunner struct {
	engine *tabq.Engine
	format string
}

func newLocalRunner(cfgPath, format string) (*localRunner, error) {
	cfg := internal.DefaultConfig()
	if cfgPath != "" {
		loaded, err := internal.LoadConfig(cfgPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	return &localRunner{engine: tabq.NewEngine(cfg), format: format}, nil
}

func (l *localRunner) Close() error { return nil }

func (l *localRunner) Run(sql string) (*renderable, error) {
	res, err := l.engine.Exec(context.Background(), sql, l.format)
	if err != nil {
		return nil, err
	}
	out := &renderable{}
	for _, c := range res.Columns {
		out.Columns = append(out.Columns, c.Name)
	}
	for _, row := range res.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = renderCell(v.Interface())
		}
		out.Rows = append(out.Rows, cells)
	}
	return out, nil
}

func renderCell(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}

func printResult(res *renderable) {
	tw := tablewriter.NewWriter(os.Stdout)
	tw.SetHeader(res.Columns)
	tw.SetAutoFormatHeaders(false)
	tw.AppendBulk(res.Rows)
	tw.Render()
	fmt.Printf("(%d rows)\n", len(res.Rows))
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".tabq_history"
	}
	return filepath.Join(home, ".tabq_history")
}

func main() {
	var (
		addr       = flag.String("addr", "", "server address; empty runs queries in process")
		cfgPath    = flag.String("config", "", "path to yaml config (in-process mode)")
		format     = flag.String("format", "", "format hint (csv, json, parquet); overrides extension guess")
		timeout    = flag.Duration("timeout", 3*time.Second, "dial timeout")
		histPath   = flag.String("history", defaultHistoryPath(), "history file path")
		oneShotSQL = flag.String("e", "", "execute one statement and exit")
	)
	flag.Parse()

	var (
		run runner
		err error
	)
	if *addr != "" {
		run, err = dialWire(*addr, *format, *timeout)
	} else {
		run, err = newLocalRunner(*cfgPath, *format)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = run.Close() }()

	if strings.TrimSpace(*oneShotSQL) != "" {
		res, err := run.Run(strings.TrimSuffix(strings.TrimSpace(*oneShotSQL), ";"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		printResult(res)
		return
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "tabq> ",
		HistoryFile:     *histPath,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()

	if *addr != "" {
		fmt.Printf("connected to %s\n", *addr)
	}
	fmt.Println("try:", tabq.ExampleSQL())

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			fmt.Println("^C")
			continue
		}
		if err != nil { // EOF
			fmt.Println()
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" || line == "\\q" {
			return
		}
		if line == "\\example" {
			line = tabq.ExampleSQL()
		}

		res, err := run.Run(strings.TrimSuffix(line, ";"))
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		printResult(res)
	}
}
