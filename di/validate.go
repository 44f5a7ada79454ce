package di

import (
	stderrors "errors"
	"fmt"

	"github.com/kbukum/injectkit/dag"
	"github.com/kbukum/injectkit/errors"
	"github.com/kbukum/injectkit/logger"
)

// graphBuilder collects the construction graph visible from one registry.
// Only mappings that construct their type (Instance, Singleton) add edges;
// values and providers end a chain.
type graphBuilder struct {
	mappings *mappingRegistry
	graph    *dag.Graph
	labels   map[*Type]string
	used     map[string]int
	visited  map[*Type]bool
}

func (b *graphBuilder) label(t *Type) string {
	if l, ok := b.labels[t]; ok {
		return l
	}
	l := t.String()
	if n := b.used[l]; n > 0 {
		l = fmt.Sprintf("%s#%d", l, n+1)
	}
	b.used[t.String()]++
	b.labels[t] = l
	b.graph.AddNode(l)
	return l
}

func (b *graphBuilder) constructs(t *Type, id ID) bool {
	m, ok := b.mappings.lookupClass(t, id)
	return ok && (m.kind == ClassInstance || m.kind == ClassSingleton)
}

// visit adds t and the edges to its constructed dependencies.
func (b *graphBuilder) visit(t *Type) error {
	if b.visited[t] {
		return nil
	}
	b.visited[t] = true
	b.label(t)

	for _, d := range t.deps {
		switch d.Kind {
		case KindInject:
			if d.Target == nil || d.Target == t {
				return undefinedDependencyType(t, d)
			}
			if _, ok := b.mappings.lookupClass(d.Target, d.ID); !ok {
				return mappingNotFound(d.Target, d.ID)
			}
			if !b.constructs(d.Target, d.ID) {
				continue
			}
			b.graph.AddEdge(b.label(d.Target), b.label(t))
			if err := b.visit(d.Target); err != nil {
				return err
			}
		case KindInjectNamed:
			m, ok := b.mappings.lookupType(d.ID)
			if !ok {
				return typeMappingNotFound(d.ID)
			}
			target := b.namedTarget(m)
			if target == nil {
				continue
			}
			b.graph.AddEdge(b.label(target), b.label(t))
			if err := b.visit(target); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *graphBuilder) namedTarget(m *typeMapping) *Type {
	switch m.kind {
	case TypeClass, TypeSingleton:
		return m.target
	case TypeAlias:
		if m.target != nil && b.constructs(m.target, m.targetID) {
			return m.target
		}
	}
	return nil
}

// ConstructionLevels returns the types constructed through inj grouped by
// dependency level: every type depends only on types of earlier levels.
// Missing mappings and cycles are reported without constructing anything.
func (inj *Injector) ConstructionLevels() ([][]string, error) {
	if inj.isDisposed() {
		return nil, disposed(inj.id)
	}
	b := &graphBuilder{
		mappings: inj.mappings,
		graph:    dag.New(),
		labels:   make(map[*Type]string),
		used:     make(map[string]int),
		visited:  make(map[*Type]bool),
	}

	for reg := inj.mappings; reg != nil; reg = reg.parent {
		for t, slots := range reg.classes {
			var err error
			slots.each(func(id ID, m *classMapping) {
				if err == nil && b.constructs(t, id) {
					err = b.visit(t)
				}
			})
			if err != nil {
				return nil, err
			}
		}
		for _, m := range reg.types {
			if target := b.namedTarget(m); target != nil {
				if err := b.visit(target); err != nil {
					return nil, err
				}
			}
		}
	}

	levels, err := dag.BuildLevels(b.graph)
	if err != nil {
		var cycle *dag.CycleError
		if stderrors.As(err, &cycle) {
			return nil, errors.Newf(errors.ErrCodeCyclicDependency, "cyclic dependency: %v", cycle.Path).
				WithDetail("path", cycle.Path).
				WithCause(err)
		}
		return nil, errors.Internal(err)
	}
	return levels, nil
}

// Validate checks the construction graph visible from inj for missing
// mappings and cycles.
func (inj *Injector) Validate() error {
	levels, err := inj.ConstructionLevels()
	if err != nil {
		inj.log.Warn("injector validation failed", logger.ErrorFields("validate", err))
		return err
	}
	inj.log.Debug("injector validated", logger.Fields("levels", len(levels)))
	return nil
}
