package cryptox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Record is a loosely typed row, e.g. a journal entry before it is stored.
type Record map[string]any

// FieldError reports the failure of a single named field.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

type fieldResult struct {
	name  string
	value string
	err   error
}

// EncryptObject returns a shallow copy of record where every field named in
// fields and present on record is replaced by its encrypted string form.
// Other fields keep their original value and type. Fields are encrypted
// concurrently. Any failure aborts the whole object.
func EncryptObject(ctx context.Context, record Record, fields []string, key []byte) (Record, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeyLength
	}

	names := presentFields(record, fields)
	results := make([]fieldResult, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			plain, err := stringify(record[name])
			if err != nil {
				return &FieldError{Field: name, Err: err}
			}
			enc, err := EncryptField(plain, key)
			if err != nil {
				return &FieldError{Field: name, Err: err}
			}
			results[i] = fieldResult{name: name, value: enc}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := copyRecord(record)
	for _, r := range results {
		out[r.name] = r.value
	}
	return out, nil
}

// DecryptObject is the inverse of EncryptObject. Fields are handled in
// isolation: the returned record carries every field that decrypted, a field
// that failed keeps its stored value, and the returned error joins one
// *FieldError per failure (each matching ErrDecryptionFailed). The caller
// decides whether a partial result is acceptable.
func DecryptObject(ctx context.Context, record Record, fields []string, key []byte) (Record, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeyLength
	}

	names := presentFields(record, fields)
	results := make([]fieldResult, len(names))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range names {
		g.Go(func() error {
			results[i].name = name
			if err := ctx.Err(); err != nil {
				results[i].err = err
				return nil
			}
			payload, ok := record[name].(string)
			if !ok {
				results[i].err = ErrDecryptionFailed
				return nil
			}
			results[i].value, results[i].err = DecryptField(payload, key)
			return nil
		})
	}
	_ = g.Wait()

	out := copyRecord(record)
	var errs []error
	for _, r := range results {
		if r.err != nil {
			errs = append(errs, &FieldError{Field: r.name, Err: r.err})
			continue
		}
		out[r.name] = r.value
	}
	return out, errors.Join(errs...)
}

func presentFields(record Record, fields []string) []string {
	seen := make(map[string]struct{}, len(fields))
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		if _, ok := record[f]; ok {
			names = append(names, f)
		}
	}
	return names
}

func copyRecord(record Record) Record {
	out := make(Record, len(record))
	for k, v := range record {
		out[k] = v
	}
	return out
}

func stringify(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case fmt.Stringer:
		return x.String(), nil
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
