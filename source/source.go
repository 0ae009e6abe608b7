// Package source reads workforce records from comma-delimited text.
//
// The expected layout is a header row followed by rows of
//
//	id, firstName, lastName, compensation[, superiorId]
//
// Rows that fail structural or numeric validation are skipped and reported
// as diag.KindMalformedRecord diagnostics; they never reach the Store. Only
// a source that cannot be opened or read is fatal.
package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/zero-day-ai/orgaudit/auditerr"
	"github.com/zero-day-ai/orgaudit/diag"
	"github.com/zero-day-ai/orgaudit/hierarchy"
)

// MinFields is the minimum number of fields in a data row.
const MinFields = 4

const (
	fieldID = iota
	fieldFirstName
	fieldLastName
	fieldCompensation
	fieldSuperior
)

// ctxCheckInterval is how many rows are read between context checks.
const ctxCheckInterval = 1024

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for skipped rows.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithHeader sets whether the first row is a header. Defaults to true.
func WithHeader(header bool) Option {
	return func(l *Loader) {
		l.header = header
	}
}

// Loader parses records and builds a hierarchy.Store.
type Loader struct {
	logger *slog.Logger
	header bool
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		logger: slog.New(slog.DiscardHandler),
		header: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadFile opens path, loads it and closes it on every exit path.
func (l *Loader) LoadFile(ctx context.Context, path string, diags *diag.Set) (*hierarchy.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, auditerr.NewSourceError("source.LoadFile", err).
			WithContext(map[string]any{"path": path})
	}
	defer auditerr.CloseWithLog(f, l.logger, "record source")

	store, err := l.Load(ctx, f, diags)
	if err != nil {
		var aerr *auditerr.Error
		if errors.As(err, &aerr) {
			return nil, aerr.WithContext(map[string]any{"path": path})
		}
		return nil, err
	}
	return store, nil
}

// Load reads every row from r and returns the frozen Store. Rejected rows
// are appended to diags. A read failure returns an error wrapping
// auditerr.ErrSourceUnreadable and no Store.
func (l *Loader) Load(ctx context.Context, r io.Reader, diags *diag.Set) (*hierarchy.Store, error) {
	if diags == nil {
		diags = &diag.Set{}
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	b := hierarchy.NewBuilder()
	first := true
	rows := 0

	for {
		if rows%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rows++

		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return nil, auditerr.NewSourceError("source.Load", err)
			}
			first = false
			l.report(ctx, diags, diag.New(diag.KindMalformedRecord, perr.StartLine, perr.Err.Error()))
			continue
		}

		line, _ := cr.FieldPos(0)

		if first && l.header {
			first = false
			if len(fields) < MinFields {
				l.report(ctx, diags, diag.New(diag.KindMalformedRecord, line,
					fmt.Sprintf("header has %d columns, expected at least %d", len(fields), MinFields)))
			}
			continue
		}
		first = false

		if blank(fields) {
			continue
		}

		rec, err := parseRecord(fields)
		if err != nil {
			l.report(ctx, diags, diag.New(diag.KindMalformedRecord, line, err.Error()))
			continue
		}

		res, err := b.Add(rec)
		if err != nil {
			d := diag.ForRecord(diag.KindMalformedRecord, rec.ID, err.Error())
			d.Line = line
			l.report(ctx, diags, d)
			continue
		}
		if res.AdditionalRoot {
			d := diag.ForRecord(diag.KindAdditionalRoot, rec.ID, "record has no superior but a root already exists; kept as an additional root")
			d.Line = line
			l.report(ctx, diags, d)
		}
	}

	store := b.Build()
	l.logger.DebugContext(ctx, "records loaded",
		"records", store.Len(),
		"roots", len(store.Roots()),
		"skipped", diags.Count(diag.KindMalformedRecord))
	return store, nil
}

func (l *Loader) report(ctx context.Context, diags *diag.Set, d diag.Diagnostic) {
	diags.Add(d)
	l.logger.LogAttrs(ctx, d.Kind.Level(), d.Reason, d.LogAttrs()...)
}

// parseRecord converts one data row into a Record.
func parseRecord(fields []string) (hierarchy.Record, error) {
	if len(fields) < MinFields {
		return hierarchy.Record{}, fmt.Errorf("expected at least %d fields, got %d", MinFields, len(fields))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	id, err := strconv.Atoi(fields[fieldID])
	if err != nil {
		return hierarchy.Record{}, fmt.Errorf("invalid id %q", fields[fieldID])
	}

	compensation, err := strconv.ParseFloat(fields[fieldCompensation], 64)
	if err != nil {
		return hierarchy.Record{}, fmt.Errorf("invalid compensation %q", fields[fieldCompensation])
	}

	superior := hierarchy.NoSuperior()
	if len(fields) > fieldSuperior && fields[fieldSuperior] != "" {
		sid, err := strconv.Atoi(fields[fieldSuperior])
		if err != nil {
			return hierarchy.Record{}, fmt.Errorf("invalid superior id %q", fields[fieldSuperior])
		}
		superior = hierarchy.ReportsTo(sid)
	}

	name := strings.TrimSpace(fields[fieldFirstName] + " " + fields[fieldLastName])
	rec := hierarchy.NewRecord(id, name, compensation, superior)
	if err := rec.Validate(); err != nil {
		return hierarchy.Record{}, err
	}
	return rec, nil
}

func blank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
