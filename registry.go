package twig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrDuplicateName is returned when registering a name that is taken.
	ErrDuplicateName = errors.New("twig: duplicate entity name")
	// ErrNotFound is returned by lookups for missing names or children.
	// Choreography treats it as "skip this step".
	ErrNotFound = errors.New("twig: not found")
)

// Registry maps entity names to entities. It is created once at startup and
// passed to every component that needs lookups; it is not safe for
// concurrent use.
type Registry struct {
	byName map[string]*Entity
	byID   map[uuid.UUID]*Entity
	order  []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*Entity),
		byID:   make(map[uuid.UUID]*Entity),
	}
}

// Register adds e under e.Name. Returns ErrDuplicateName if the name is
// already present; the existing entry is left untouched.
func (r *Registry) Register(e *Entity) error {
	if _, ok := r.byName[e.Name]; ok {
		return fmt.Errorf("register %q: %w", e.Name, ErrDuplicateName)
	}
	r.byName[e.Name] = e
	if e.ID != uuid.Nil {
		r.byID[e.ID] = e
	}
	r.order = append(r.order, e.Name)
	return nil
}

// Lookup returns the entity registered under name or ErrNotFound.
func (r *Registry) Lookup(name string) (*Entity, error) {
	e, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("lookup %q: %w", name, ErrNotFound)
	}
	return e, nil
}

// LookupID returns the entity with the given ID or ErrNotFound.
func (r *Registry) LookupID(id uuid.UUID) (*Entity, error) {
	e, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("lookup id %s: %w", id, ErrNotFound)
	}
	return e, nil
}

// Owner returns the registered entity n belongs to. Nodes outside any
// entity, and nodes of unregistered entities, yield ErrNotFound.
func (r *Registry) Owner(n *Node) (*Entity, error) {
	if n == nil || n.Entity == uuid.Nil {
		return nil, fmt.Errorf("owner: %w", ErrNotFound)
	}
	return r.LookupID(n.Entity)
}

// Unregister removes name from the registry. It does not free any
// resources; the caller disposes the entity.
func (r *Registry) Unregister(name string) {
	e, ok := r.byName[name]
	if !ok {
		return
	}
	delete(r.byName, name)
	delete(r.byID, e.ID)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// FindChild scans the direct children of e's root for the first node
// satisfying pred.
func (r *Registry) FindChild(e *Entity, pred func(*Node) bool) (*Node, error) {
	if e == nil || e.Root == nil {
		return nil, fmt.Errorf("find child: %w", ErrNotFound)
	}
	if c := e.Root.FindChild(pred); c != nil {
		return c, nil
	}
	return nil, fmt.Errorf("find child of %q: %w", e.Name, ErrNotFound)
}

// ChildByRole returns e's direct child tagged with role.
func (r *Registry) ChildByRole(e *Entity, role Role) (*Node, error) {
	n, err := r.FindChild(e, HasRole(role))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", role, err)
	}
	return n, nil
}

// Match returns every registered entity satisfying pred, in registration order.
func (r *Registry) Match(pred func(*Entity) bool) []*Entity {
	var out []*Entity
	for _, name := range r.order {
		if e := r.byName[name]; pred(e) {
			out = append(out, e)
		}
	}
	return out
}

// WithPrefix returns entities whose name starts with prefix.
func (r *Registry) WithPrefix(prefix string) []*Entity {
	return r.Match(func(e *Entity) bool {
		return strings.HasPrefix(e.Name, prefix)
	})
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of registered entities.
func (r *Registry) Len() int {
	return len(r.byName)
}

// HasRole is a FindChild predicate matching nodes tagged with role.
func HasRole(role Role) func(*Node) bool {
	return func(n *Node) bool { return n.Role == role }
}

// VertexCountAbove is a FindChild predicate matching mesh nodes with more
// than threshold vertices. It tells the knot apart from the branch only as
// long as their tessellation differs; prefer HasRole.
func VertexCountAbove(threshold int) func(*Node) bool {
	return func(n *Node) bool {
		return n.Mesh != nil && n.Mesh.VertexCount() > threshold
	}
}
