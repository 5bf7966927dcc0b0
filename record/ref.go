package record

import (
	"bytes"
	"encoding/gob"
	"errors"
	"sync"
)

// Ref is a lazy reference to a row, with caching. Nothing is resolved until
// the first call to Value or Decode; the answer is then memoized for the
// lifetime of the Ref.
//
// Refs share cache keys with GetByPK and GetBy, and rely on the same
// invalidation hooks.
//
// By default a Ref fails silently: a missing row yields a nil Value. Call
// FailLoudly to surface *NotFoundError instead.
type Ref struct {
	mu  sync.Mutex
	reg *Registry

	namespace, kind string
	pk              string
	lookup          map[string]interface{}
	id              Identifier

	failLoudly bool

	resolved bool
	value    interface{}
	err      error
}

// Ref builds a lazy reference from a (namespace, kind, pk) triple.
func (r *Registry) Ref(namespace, kind, pk string) *Ref {
	return &Ref{reg: r, namespace: namespace, kind: kind, pk: pk,
		id: NewIdentifier(namespace, kind, pk)}
}

// RefByIdentifier builds a lazy reference from an identifier string such as
// "auth.user.123".
func (r *Registry) RefByIdentifier(s string) (*Ref, error) {
	id, err := ParseIdentifier(s)
	if err != nil {
		return nil, err
	}
	namespace, kind, pk := id.Split()
	return &Ref{reg: r, namespace: namespace, kind: kind, pk: pk, id: id}, nil
}

// RefByRecord builds a lazy reference to a row that knows its own identity.
// Only the identifier is kept; the row itself is re-resolved on access.
func (r *Registry) RefByRecord(rec Record) *Ref {
	id := rec.RecordIdentifier()
	namespace, kind, pk := id.Split()
	return &Ref{reg: r, namespace: namespace, kind: kind, pk: pk, id: id}
}

// RefByLookup builds a lazy reference from a non-pk lookup. The pk is
// resolved through the lookup cache on first access.
func (r *Registry) RefByLookup(namespace, kind string, lookup map[string]interface{}) *Ref {
	return &Ref{reg: r, namespace: namespace, kind: kind, lookup: lookup}
}

// FailLoudly makes resolution errors and missing rows surface from Value
// and Decode instead of yielding nil. Returns the Ref for chaining.
func (f *Ref) FailLoudly() *Ref {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failLoudly = true
	return f
}

// Identifier resolves and returns the identifier for the referenced row.
// For lookup-built Refs this may consult the lookup cache and the loader.
func (f *Ref) Identifier() (Identifier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.identifier()
}

func (f *Ref) identifier() (Identifier, error) {
	if f.id != "" {
		return f.id, nil
	}
	if f.reg == nil {
		return "", errors.New("record: Ref has no registry attached.")
	}
	pk, err := f.reg.lookupPK(f.namespace, f.kind, f.lookup)
	if err != nil {
		return "", err
	}
	f.pk = pk
	f.id = NewIdentifier(f.namespace, f.kind, pk)
	return f.id, nil
}

// PK returns the pk of the referenced row, resolving a lookup if necessary.
func (f *Ref) PK() (string, error) {
	id, err := f.Identifier()
	if err != nil {
		return "", err
	}
	return id.PK(), nil
}

// Value resolves and returns the referenced row. With FailLoudly unset, a
// missing row returns (nil, nil).
func (f *Ref) Value() (interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.resolved {
		f.value, f.err = f.load()
		f.resolved = true
	}

	if f.err != nil && !f.failLoudly {
		recordLog.Warn("Could not resolve reference", "identifier", f.id, "error", f.err)
		return nil, nil
	}
	return f.value, f.err
}

func (f *Ref) load() (interface{}, error) {
	if f.reg == nil {
		return nil, errors.New("record: Ref has no registry attached.")
	}
	id, err := f.identifier()
	if err != nil {
		return nil, err
	}
	return f.reg.resolve(id)
}

// Decode resolves the referenced row into ptrValue. With FailLoudly unset,
// a missing row leaves ptrValue untouched and returns nil.
func (f *Ref) Decode(ptrValue interface{}) error {
	value, err := f.Value()
	if err != nil {
		return err
	}
	if value == nil {
		return nil
	}
	return assign(ptrValue, value)
}

// Exists reports whether the referenced row could be resolved.
func (f *Ref) Exists() bool {
	f.mu.Lock()
	if !f.resolved {
		f.value, f.err = f.load()
		f.resolved = true
	}
	ok := f.err == nil && f.value != nil
	f.mu.Unlock()
	return ok
}

// refWire is the encoded form of a Ref: the identifier alone. The registry
// is not retained; the default registry is attached when the Ref is
// decoded.
type refWire struct {
	Identifier string
	FailLoudly bool
}

// GobEncode encodes the Ref as its identifier, resolving a lookup-built Ref
// first. The encoded form is much smaller than the row it references.
func (f *Ref) GobEncode() ([]byte, error) {
	id, err := f.Identifier()
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	wire := refWire{Identifier: string(id), FailLoudly: f.failLoudly}
	f.mu.Unlock()

	var b bytes.Buffer
	if err := gob.NewEncoder(&b).Encode(wire); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func (f *Ref) GobDecode(data []byte) error {
	var wire refWire
	if err := gob.NewDecoder(bytes.NewBuffer(data)).Decode(&wire); err != nil {
		return err
	}
	id, err := ParseIdentifier(wire.Identifier)
	if err != nil {
		return err
	}
	namespace, kind, pk := id.Split()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.reg = Default()
	f.namespace, f.kind, f.pk = namespace, kind, pk
	f.id = id
	f.failLoudly = wire.FailLoudly
	f.resolved = false
	f.value, f.err = nil, nil
	return nil
}

// RefMap deduplicates lazy references by identifier, avoiding duplicate
// cache lookups and duplicate row instances in memory.
type RefMap struct {
	mu   sync.Mutex
	refs map[Identifier]*Ref
}

func NewRefMap() *RefMap {
	return &RefMap{refs: map[Identifier]*Ref{}}
}

// GetOrAdd returns the existing Ref with the same identifier, or stores and
// returns the given one. Note that this resolves the identifier of
// lookup-built Refs.
func (m *RefMap) GetOrAdd(ref *Ref) (*Ref, error) {
	id, err := ref.Identifier()
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.refs[id]; ok {
		return existing, nil
	}
	m.refs[id] = ref
	return ref, nil
}

// Contains reports whether a Ref with the identifier has been added.
func (m *RefMap) Contains(id Identifier) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.refs[id]
	return ok
}

// Len returns the number of distinct references held.
func (m *RefMap) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.refs)
}
