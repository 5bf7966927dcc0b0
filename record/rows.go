package record

import (
	"fmt"
	"reflect"

	"github.com/revel/lazycache"
	"github.com/revel/lazycache/cache"
)

// NotFoundError reports that no row exists for an identifier or lookup.
type NotFoundError struct {
	Identifier Identifier
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("record: %s not found.", e.Identifier)
}

// box wraps cached rows so they travel through gob as interface values.
// Callers must gob.Register their row types.
type box struct {
	Value interface{}
}

// GetByPK decodes the row named by (namespace, kind, pk) into ptrValue,
// loading and caching it on a miss. A missing row is cached as a negative
// entry and reported as *NotFoundError.
func (r *Registry) GetByPK(namespace, kind, pk string, ptrValue interface{}) error {
	value, err := r.resolve(NewIdentifier(namespace, kind, pk))
	if err != nil {
		return err
	}
	return assign(ptrValue, value)
}

// GetBy decodes the row matching the lookup into ptrValue. Two cache levels
// are involved: the lookup resolves to a pk, whose entry holds the row.
// The indirection makes invalidation easy: saving a row only needs to drop
// the pk entry, and every lookup pointing at it follows suit. Two cache
// round-trips are still faster than a database query.
func (r *Registry) GetBy(namespace, kind string, lookup map[string]interface{}, ptrValue interface{}) error {
	pk, err := r.lookupPK(namespace, kind, lookup)
	if err != nil {
		return err
	}
	return r.GetByPK(namespace, kind, pk, ptrValue)
}

// resolve returns the row for the identifier, going cache -> loader -> cache.
func (r *Registry) resolve(id Identifier) (interface{}, error) {
	loader, err := r.loaderFor(id)
	if err != nil {
		return nil, err
	}

	var b box
	err = r.cache.Fetch(r.RecordKey(id), &b, cache.DefaultExpiryTime, func() (interface{}, error) {
		value, err := loader.Load(id.PK())
		if err != nil {
			return nil, err
		}
		if value == nil {
			recordLog.Warn("Could not find row", "identifier", id)
			return nil, nil
		}
		return box{Value: value}, nil
	})
	if err == lazycache.ErrNothing {
		return nil, &NotFoundError{Identifier: id}
	}
	if err != nil {
		return nil, err
	}
	return b.Value, nil
}

// lookupPK resolves a non-pk lookup to a pk, caching the answer under the
// lookup key. A lookup with no matching row is cached too.
func (r *Registry) lookupPK(namespace, kind string, lookup map[string]interface{}) (string, error) {
	loader, err := r.loaderForModel(namespace + "." + kind)
	if err != nil {
		return "", err
	}

	var pk string
	err = r.cache.Fetch(r.LookupKey(namespace, kind, lookup), &pk, cache.DefaultExpiryTime,
		func() (interface{}, error) {
			pk, err := loader.LookupPK(lookup)
			if err != nil {
				return nil, err
			}
			if pk == "" {
				return nil, nil
			}
			return pk, nil
		})
	if err == lazycache.ErrNothing {
		return "", &NotFoundError{Identifier: NewIdentifier(namespace, kind, "none")}
	}
	if err != nil {
		return "", err
	}
	return pk, nil
}

// Invalidate drops the cached row for the identifier. A miss is not an
// error; the entry may simply never have been cached.
func (r *Registry) Invalidate(id Identifier) error {
	if err := r.cache.Delete(r.RecordKey(id)); err != nil && err != cache.ErrCacheMiss {
		return err
	}
	return nil
}

// RecordSaved invalidates the cached copy of a saved row. Call it wherever
// rows are written; the stale copy would otherwise live until it expires.
func (r *Registry) RecordSaved(rec Record) error {
	return r.Invalidate(rec.RecordIdentifier())
}

// RecordDeleted invalidates the cached copy of a deleted row.
func (r *Registry) RecordDeleted(rec Record) error {
	return r.Invalidate(rec.RecordIdentifier())
}

// assign sets *ptrValue = value with a type check instead of a panic.
func assign(ptrValue, value interface{}) error {
	p := reflect.ValueOf(ptrValue)
	if p.Kind() != reflect.Ptr || !p.Elem().CanSet() {
		return fmt.Errorf("record: ptrValue must be a settable pointer, got %T", ptrValue)
	}
	v := reflect.ValueOf(value)
	if !v.IsValid() || !v.Type().AssignableTo(p.Elem().Type()) {
		return fmt.Errorf("record: cannot assign %T to %s", value, p.Elem().Type())
	}
	p.Elem().Set(v)
	return nil
}
