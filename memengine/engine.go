package memengine

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/hupe1980/duckvec"
	"github.com/hupe1980/duckvec/chunk"
	"github.com/hupe1980/duckvec/types"
)

// Engine holds tables and scalar functions in memory.
type Engine struct {
	mu        sync.RWMutex
	tables    map[string]*Table
	functions map[string]*duckvec.ScalarFunction
	closed    bool

	opts options
	log  *duckvec.Logger
}

var _ duckvec.EngineInfo = (*Engine)(nil)

// New creates an empty engine.
func New(optFns ...Option) *Engine {
	o := options{
		compression: CompressionNone,
		vectorSize:  chunk.DefaultCapacity,
		logger:      duckvec.NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return &Engine{
		tables:    make(map[string]*Table),
		functions: make(map[string]*duckvec.ScalarFunction),
		opts:      o,
		log:       o.logger,
	}
}

// VectorSize returns the chunk capacity the engine scans with.
func (e *Engine) VectorSize() int { return e.opts.vectorSize }

// Compression returns the codec used for stored column blocks.
func (e *Engine) Compression() Compression { return e.opts.compression }

func (e *Engine) workers() int {
	if e.opts.controller == nil {
		return runtime.GOMAXPROCS(0)
	}
	return e.opts.controller.MaxWorkers()
}

// Column declares a table column by name and SQL type text.
type Column struct {
	Name string
	Type string
}

// CreateTable adds an empty table. Column types are parsed with types.Parse.
func (e *Engine) CreateTable(name string, columns ...Column) (*Table, error) {
	if name == "" {
		return nil, fmt.Errorf("table name is empty")
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %q has no columns", name)
	}

	names := make([]string, len(columns))
	ts := make([]*types.LogicalType, 0, len(columns))
	release := func() {
		for _, t := range ts {
			_ = t.Release()
		}
	}
	seen := make(map[string]struct{}, len(columns))
	for i, col := range columns {
		if _, dup := seen[col.Name]; dup {
			release()
			return nil, fmt.Errorf("table %q: duplicate column %q", name, col.Name)
		}
		seen[col.Name] = struct{}{}
		t, err := types.Parse(col.Type)
		if err != nil {
			release()
			return nil, fmt.Errorf("table %q column %q: %w", name, col.Name, err)
		}
		names[i] = col.Name
		ts = append(ts, t)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		release()
		return nil, fmt.Errorf("engine is closed")
	}
	if _, ok := e.tables[name]; ok {
		release()
		return nil, fmt.Errorf("table %q already exists", name)
	}
	t := &Table{
		engine: e,
		name:   name,
		names:  names,
		types:  ts,
		log:    e.log.WithTable(name),
	}
	e.tables[name] = t
	return t, nil
}

// Table looks up a table by name.
func (e *Engine) Table(name string) (*Table, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	t, ok := e.tables[name]
	if !ok {
		return nil, fmt.Errorf("table %q does not exist", name)
	}
	return t, nil
}

// Tables returns the table names in sorted order.
func (e *Engine) Tables() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.tables))
	for name := range e.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DropTable removes a table and releases its types.
func (e *Engine) DropTable(name string) error {
	e.mu.Lock()
	t, ok := e.tables[name]
	delete(e.tables, name)
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("table %q does not exist", name)
	}
	t.drop()
	return nil
}

// RegisterScalarFunction makes f callable by name.
func (e *Engine) RegisterScalarFunction(f *duckvec.ScalarFunction) error {
	if f == nil {
		return fmt.Errorf("nil scalar function")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.functions[f.Name()]; ok {
		return fmt.Errorf("scalar function %q already exists", f.Name())
	}
	e.functions[f.Name()] = f
	return nil
}

// CallScalar evaluates a registered function over every row of input. The
// caller closes the returned chunk, whose single column holds the results.
func (e *Engine) CallScalar(name string, input *chunk.Chunk) (*chunk.Chunk, error) {
	e.mu.RLock()
	f, ok := e.functions[name]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("scalar function %q does not exist", name)
	}
	if input == nil {
		return nil, fmt.Errorf("nil input chunk")
	}

	out, err := chunk.New([]*types.LogicalType{f.ReturnType()}, chunk.WithCapacity(input.Capacity()))
	if err != nil {
		return nil, err
	}
	vec, err := out.Vector(0)
	if err != nil {
		out.Close()
		return nil, err
	}
	if err := f.Invoke(input, vec); err != nil {
		out.Close()
		return nil, err
	}
	if err := out.SetSize(input.Size()); err != nil {
		out.Close()
		return nil, err
	}
	return out, nil
}

// Close drops every table. Closing twice is a no-op.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	tables := e.tables
	e.tables = make(map[string]*Table)
	e.functions = make(map[string]*duckvec.ScalarFunction)
	e.mu.Unlock()

	for _, t := range tables {
		t.drop()
	}
	return nil
}
