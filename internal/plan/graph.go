package plan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/felixgeelhaar/opsched/internal/errors"
)

// Unassigned is the level of a node the builder has not placed yet
const Unassigned = -1

// Node is a work item's position in the graph
type Node struct {
	ID    string `json:"id" yaml:"id"`
	Level int    `json:"level" yaml:"level"`

	index int // submission index
}

// Edge points from a prerequisite to the item that depends on it
type Edge struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// DanglingDependency records a dependency id that matched no submitted item
type DanglingDependency struct {
	ItemID       string `json:"item_id" yaml:"item_id"`
	DependencyID string `json:"dependency_id" yaml:"dependency_id"`
}

// DAG is the leveled dependency graph of one item submission.
// Level k holds the ids whose prerequisites all sit in levels below k,
// in submission order.
type DAG struct {
	Nodes    []*Node              `json:"nodes" yaml:"nodes"`
	Edges    []Edge               `json:"edges" yaml:"edges"`
	Levels   [][]string           `json:"levels" yaml:"levels"`
	Dangling []DanglingDependency `json:"dangling,omitempty" yaml:"dangling,omitempty"`

	items      map[string]WorkItem
	nodes      map[string]*Node
	dependents map[string][]string
	prereqs    map[string][]string
}

// CycleError reports items that can never be leveled because of a dependency cycle
type CycleError struct {
	// IDs are the members of the cycles, in submission order
	IDs []string
	// Unresolved are all never-leveled items: cycle members plus everything downstream of them
	Unresolved []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected among %s", strings.Join(e.IDs, ", "))
}

// Build turns a flat item list into a leveled DAG using Kahn's algorithm.
// Unknown dependency ids are dropped and listed in DAG.Dangling.
// Build is a pure function of its input: the same items in the same order
// always produce the same levels and edges.
func Build(items []WorkItem) (*DAG, error) {
	d := &DAG{
		Nodes:      make([]*Node, 0, len(items)),
		Edges:      []Edge{},
		Levels:     [][]string{},
		items:      make(map[string]WorkItem, len(items)),
		nodes:      make(map[string]*Node, len(items)),
		dependents: make(map[string][]string),
		prereqs:    make(map[string][]string),
	}

	for i, item := range items {
		if _, dup := d.nodes[item.ID]; dup {
			return nil, errors.NewDuplicateItemError(item.ID, i)
		}
		node := &Node{ID: item.ID, Level: Unassigned, index: i}
		d.Nodes = append(d.Nodes, node)
		d.nodes[item.ID] = node
		d.items[item.ID] = item
	}

	inDegree := make(map[string]int, len(items))
	for _, item := range items {
		seen := make(map[string]bool, len(item.Dependencies))
		for _, dep := range item.Dependencies {
			if seen[dep] {
				continue
			}
			seen[dep] = true

			if _, known := d.nodes[dep]; !known {
				d.Dangling = append(d.Dangling, DanglingDependency{ItemID: item.ID, DependencyID: dep})
				continue
			}

			d.Edges = append(d.Edges, Edge{From: dep, To: item.ID})
			d.dependents[dep] = append(d.dependents[dep], item.ID)
			d.prereqs[item.ID] = append(d.prereqs[item.ID], dep)
			inDegree[item.ID]++
		}
	}

	var frontier []*Node
	for _, node := range d.Nodes {
		if inDegree[node.ID] == 0 {
			frontier = append(frontier, node)
		}
	}

	leveled := 0
	for level := 0; len(frontier) > 0; level++ {
		ids := make([]string, len(frontier))
		for i, node := range frontier {
			node.Level = level
			ids[i] = node.ID
		}
		leveled += len(frontier)
		d.Levels = append(d.Levels, ids)

		var next []*Node
		for _, node := range frontier {
			for _, target := range d.dependents[node.ID] {
				inDegree[target]--
				if inDegree[target] == 0 {
					next = append(next, d.nodes[target])
				}
			}
		}
		sort.Slice(next, func(i, j int) bool { return next[i].index < next[j].index })
		frontier = next
	}

	if leveled < len(d.Nodes) {
		cycleErr := d.cycleError()
		return nil, errors.NewCyclicDependencyError(cycleErr.IDs, cycleErr)
	}

	return d, nil
}

// cycleError isolates the cycle members among the never-leveled nodes.
// A node is a member when its strongly connected component has more than
// one node or it depends on itself.
func (d *DAG) cycleError() *CycleError {
	unresolved := make(map[string]bool)
	var unresolvedIDs []string
	for _, node := range d.Nodes {
		if node.Level == Unassigned {
			unresolved[node.ID] = true
			unresolvedIDs = append(unresolvedIDs, node.ID)
		}
	}

	// Tarjan's SCC restricted to the unresolved subgraph
	var (
		counter int
		stack   []string
		onStack = make(map[string]bool)
		index   = make(map[string]int)
		lowlink = make(map[string]int)
		members = make(map[string]bool)
	)

	var strongConnect func(id string)
	strongConnect = func(id string) {
		index[id] = counter
		lowlink[id] = counter
		counter++
		stack = append(stack, id)
		onStack[id] = true

		for _, next := range d.dependents[id] {
			if !unresolved[next] {
				continue
			}
			if _, visited := index[next]; !visited {
				strongConnect(next)
				lowlink[id] = min(lowlink[id], lowlink[next])
			} else if onStack[next] {
				lowlink[id] = min(lowlink[id], index[next])
			}
		}

		if lowlink[id] != index[id] {
			return
		}

		var component []string
		for {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[top] = false
			component = append(component, top)
			if top == id {
				break
			}
		}

		if len(component) > 1 || d.dependsOn(id, id) {
			for _, member := range component {
				members[member] = true
			}
		}
	}

	for _, id := range unresolvedIDs {
		if _, visited := index[id]; !visited {
			strongConnect(id)
		}
	}

	var ids []string
	for _, id := range unresolvedIDs {
		if members[id] {
			ids = append(ids, id)
		}
	}

	return &CycleError{IDs: ids, Unresolved: unresolvedIDs}
}

func (d *DAG) dependsOn(item, prereq string) bool {
	for _, p := range d.prereqs[item] {
		if p == prereq {
			return true
		}
	}
	return false
}

// Len returns the number of nodes
func (d *DAG) Len() int {
	return len(d.Nodes)
}

// Item returns the submitted item for id
func (d *DAG) Item(id string) (WorkItem, bool) {
	item, ok := d.items[id]
	return item, ok
}

// LevelOf returns the level assigned to id, or Unassigned if id is unknown
func (d *DAG) LevelOf(id string) int {
	if node, ok := d.nodes[id]; ok {
		return node.Level
	}
	return Unassigned
}

// Prerequisites returns the known, deduplicated prerequisites of id in declaration order
func (d *DAG) Prerequisites(id string) []string {
	return d.prereqs[id]
}

// Dependents returns the items that declared id as a prerequisite, in submission order
func (d *DAG) Dependents(id string) []string {
	return d.dependents[id]
}

// Fingerprint returns a blake3 hash of the graph structure (levels and edges).
// Two builds of the same submission always share a fingerprint.
func (d *DAG) Fingerprint() string {
	hasher := blake3.New()
	for k, level := range d.Levels {
		fmt.Fprintf(hasher, "L%d:%s\n", k, strings.Join(level, "\x00"))
	}
	for _, e := range d.Edges {
		fmt.Fprintf(hasher, "E:%s\x00%s\n", e.From, e.To)
	}
	return fmt.Sprintf("%x", hasher.Sum(nil))
}
