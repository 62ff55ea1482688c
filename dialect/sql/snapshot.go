package sql

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/layergen/compiler/gen"
)

// ErrNotCaptured is returned by a Snapshot asked for an object it does not
// hold.
var ErrNotCaptured = errors.New("dialect/sql: object not captured in snapshot")

// Object holds the captured metadata of one database object.
type Object struct {
	Columns    []*gen.Column    `msgpack:"columns"`
	Keys       []string         `msgpack:"keys,omitempty"`
	Parameters []*gen.Parameter `msgpack:"parameters,omitempty"`
}

// Snapshot is an offline copy of introspection results. It serves them
// through the gen.Inspector contract, so generation can run without a
// database.
type Snapshot struct {
	Backend string             `msgpack:"backend"`
	Objects map[string]*Object `msgpack:"objects"`
}

var _ gen.Inspector = (*Snapshot)(nil)

func objectKey(d *gen.Descriptor) string {
	return d.Kind.String() + ":" + d.Source.QualifiedName()
}

// Capture introspects the database descriptors of ds with insp. Objects are
// read concurrently, at most workers at a time (GOMAXPROCS when zero).
func Capture(ctx context.Context, insp gen.Inspector, backend string, ds []*gen.Descriptor, workers int) (*Snapshot, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	s := &Snapshot{Backend: backend, Objects: make(map[string]*Object)}
	var mu sync.Mutex
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for _, d := range ds {
		if !d.Kind.IsDatabase() {
			continue
		}
		eg.Go(func() error {
			o, err := capture(ctx, insp, d)
			if err != nil {
				return fmt.Errorf("capture %s: %w", d.Source, err)
			}
			mu.Lock()
			s.Objects[objectKey(d)] = o
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return s, nil
}

func capture(ctx context.Context, insp gen.Inspector, d *gen.Descriptor) (*Object, error) {
	var (
		o   = &Object{}
		err error
	)
	if o.Columns, err = insp.Columns(ctx, d); err != nil {
		return nil, err
	}
	if d.Kind.IsRoutine() {
		o.Parameters, err = insp.Parameters(ctx, d)
	} else {
		o.Keys, err = insp.PrimaryKeys(ctx, d)
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Snapshot) object(d *gen.Descriptor) (*Object, error) {
	o, ok := s.Objects[objectKey(d)]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrNotCaptured, d.Kind, d.Source.QualifiedName())
	}
	return o, nil
}

// Columns implements gen.Inspector.
func (s *Snapshot) Columns(_ context.Context, d *gen.Descriptor) ([]*gen.Column, error) {
	o, err := s.object(d)
	if err != nil {
		return nil, err
	}
	cols := make([]*gen.Column, len(o.Columns))
	for i, c := range o.Columns {
		cc := *c
		cols[i] = &cc
	}
	return cols, nil
}

// PrimaryKeys implements gen.Inspector.
func (s *Snapshot) PrimaryKeys(_ context.Context, d *gen.Descriptor) ([]string, error) {
	o, err := s.object(d)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), o.Keys...), nil
}

// Parameters implements gen.Inspector.
func (s *Snapshot) Parameters(_ context.Context, d *gen.Descriptor) ([]*gen.Parameter, error) {
	o, err := s.object(d)
	if err != nil {
		return nil, err
	}
	ps := make([]*gen.Parameter, len(o.Parameters))
	for i, p := range o.Parameters {
		pp := *p
		ps[i] = &pp
	}
	return ps, nil
}

// Encode writes the snapshot in msgpack. Map keys are sorted, so equal
// snapshots encode to equal bytes.
func (s *Snapshot) Encode(w io.Writer) error {
	enc := msgpack.NewEncoder(w)
	enc.SetSortMapKeys(true)
	return enc.Encode(s)
}

// DecodeSnapshot reads a snapshot written by Encode.
func DecodeSnapshot(r io.Reader) (*Snapshot, error) {
	s := &Snapshot{}
	if err := msgpack.NewDecoder(r).Decode(s); err != nil {
		return nil, fmt.Errorf("dialect/sql: decode snapshot: %w", err)
	}
	if s.Objects == nil {
		s.Objects = make(map[string]*Object)
	}
	return s, nil
}

// WriteFile encodes the snapshot to path.
func (s *Snapshot) WriteFile(path string) error {
	var b bytes.Buffer
	if err := s.Encode(&b); err != nil {
		return fmt.Errorf("dialect/sql: encode snapshot: %w", err)
	}
	return os.WriteFile(path, b.Bytes(), 0o644)
}

// ReadSnapshot reads a snapshot file.
func ReadSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeSnapshot(f)
}
