// Package factstore holds the ground truth of a case as a directed graph of labeled relations between named
// entities. Generated dialogue is checked against it, never against earlier dialogue.
//
// The store is append-only between calls to Build: nodes and edges are only ever added. It is not safe for
// concurrent use.
package factstore

import (
	"fmt"
	"strings"

	"github.com/myrjola/coldcase/internal/models"
)

// Kind tags an entity node.
type Kind int

const (
	KindVictim Kind = iota + 1
	KindLocation
	KindSuspect
	KindEvidence
	KindDynamicEvent
)

func (k Kind) String() string {
	switch k {
	case KindVictim:
		return "VICTIM"
	case KindLocation:
		return "LOCATION"
	case KindSuspect:
		return "SUSPECT"
	case KindEvidence:
		return "EVIDENCE"
	case KindDynamicEvent:
		return "DYNAMIC_EVENT"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Relation labels a directed edge.
type Relation string

const (
	RelationFoundAt          Relation = "found-at"
	RelationKilledWith       Relation = "killed-with"
	RelationDocumentedBy     Relation = "documented-by"
	RelationKnew             Relation = "knew"
	RelationLinkedByEvidence Relation = "linked-by-evidence"
)

// Triple is a single (subject, relation, object) fact.
type Triple struct {
	Subject  string
	Relation Relation
	Object   string
}

// String formats the triple the way it is shown to the contradiction judge.
func (t Triple) String() string {
	return fmt.Sprintf("%s —[%s]→ %s", t.Subject, t.Relation, t.Object)
}

type node struct {
	name     string
	kind     Kind
	outgoing []Triple
}

// Store is the ground-truth relation store.
type Store struct {
	nodes map[string]*node
	// order keeps node insertion order so that listings are stable.
	order []*node
	seen  map[Triple]struct{}
}

// New creates an empty Store.
func New() *Store {
	s := &Store{} //nolint:exhaustruct // reset initialises the fields
	s.reset()
	return s
}

func (s *Store) reset() {
	s.nodes = map[string]*node{}
	s.order = nil
	s.seen = map[Triple]struct{}{}
}

// Build clears the store and inserts the entities and base relations of scenario:
//
//	victim  —[found-at]→ location
//	victim  —[killed-with]→ weapon
//	victim  —[documented-by]→ forensic fact (one per fact)
//	suspect —[knew]→ victim
//	suspect —[linked-by-evidence]→ location
//
// Calling Build twice with the same scenario yields the same triples in the same order. The dynamic event of
// the scenario is not inserted; use AddFact for it.
func (s *Store) Build(scenario models.Scenario) {
	s.reset()

	s.addNode(scenario.Victim, KindVictim)
	s.addNode(scenario.CrimeLocation, KindLocation)
	s.addNode(scenario.Weapon, KindEvidence)
	s.addEdge(scenario.Victim, RelationFoundAt, scenario.CrimeLocation)
	s.addEdge(scenario.Victim, RelationKilledWith, scenario.Weapon)

	for _, suspect := range scenario.Suspects {
		s.addNode(suspect.Name, KindSuspect)
		s.addEdge(suspect.Name, RelationKnew, scenario.Victim)
		s.addEdge(suspect.Name, RelationLinkedByEvidence, scenario.CrimeLocation)
	}

	for _, fact := range scenario.ForensicReport {
		s.addNode(fact, KindEvidence)
		s.addEdge(scenario.Victim, RelationDocumentedBy, fact)
	}
}

// AddFact inserts text as a DYNAMIC_EVENT node without edges. Empty or whitespace-only text is ignored, as is
// text naming an existing entity. It reports whether a node was added.
func (s *Store) AddFact(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	return s.addNode(text, KindDynamicEvent)
}

// FactsAbout returns one formatted triple per outgoing relation of entity in insertion order. Unknown entities
// have no facts.
func (s *Store) FactsAbout(entity string) []string {
	n, ok := s.nodes[entity]
	if !ok {
		return []string{}
	}
	facts := make([]string, 0, len(n.outgoing))
	for _, t := range n.outgoing {
		facts = append(facts, t.String())
	}
	return facts
}

// Kind returns the tag of entity.
func (s *Store) Kind(entity string) (Kind, bool) {
	n, ok := s.nodes[entity]
	if !ok {
		return 0, false
	}
	return n.kind, true
}

// NodeCount returns the number of entities.
func (s *Store) NodeCount() int {
	return len(s.order)
}

// Triples returns every relation, grouped by subject in node insertion order.
func (s *Store) Triples() []Triple {
	triples := make([]Triple, 0, len(s.seen))
	for _, n := range s.order {
		triples = append(triples, n.outgoing...)
	}
	return triples
}

// Entities returns the names of all entities of the given kind in insertion order.
func (s *Store) Entities(kind Kind) []string {
	var names []string
	for _, n := range s.order {
		if n.kind == kind {
			names = append(names, n.name)
		}
	}
	return names
}

func (s *Store) addNode(name string, kind Kind) bool {
	if name == "" {
		return false
	}
	if _, ok := s.nodes[name]; ok {
		return false
	}
	n := &node{name: name, kind: kind, outgoing: nil}
	s.nodes[name] = n
	s.order = append(s.order, n)
	return true
}

func (s *Store) addEdge(from string, relation Relation, to string) {
	subject, ok := s.nodes[from]
	if !ok || to == "" {
		return
	}
	if _, ok = s.nodes[to]; !ok {
		return
	}
	t := Triple{Subject: from, Relation: relation, Object: to}
	if _, ok = s.seen[t]; ok {
		return
	}
	s.seen[t] = struct{}{}
	subject.outgoing = append(subject.outgoing, t)
}
