package board

import (
	"slices"

	"github.com/amonks/muontickets/ticket"
)

// Graph is the dependency relation of a board. Edges point from a ticket
// to each entry of its depends_on list, whatever directory the target is in.
type Graph struct {
	board      *Board
	dependents map[string][]string
}

func newGraph(b *Board) *Graph {
	g := &Graph{board: b, dependents: make(map[string][]string)}
	for _, id := range b.ids {
		for _, dep := range b.entries[id].Ticket.DependsOn {
			g.dependents[dep] = append(g.dependents[dep], id)
		}
	}
	for dep := range g.dependents {
		slices.SortFunc(g.dependents[dep], ticket.CompareIDs)
		g.dependents[dep] = slices.Compact(g.dependents[dep])
	}
	return g
}

// DependsOn returns the depends_on list of id.
func (g *Graph) DependsOn(id string) []string {
	e, ok := g.board.entries[id]
	if !ok {
		return nil
	}
	return e.Ticket.DependsOn
}

// Ready reports whether every dependency of id exists and is done.
// Archived dependencies count only when they were archived as done.
func (g *Graph) Ready(id string) bool {
	return len(g.Unmet(id)) == 0
}

// Unmet returns the dependencies of id that are missing or not done.
func (g *Graph) Unmet(id string) []string {
	return g.unmet(g.DependsOn(id))
}

func (g *Graph) unmet(deps []string) []string {
	var unmet []string
	for _, dep := range deps {
		e, ok := g.board.entries[dep]
		if !ok || e.Ticket.Status != ticket.StatusDone {
			unmet = append(unmet, dep)
		}
	}
	return unmet
}

// EffectiveStatus returns blocked for ready tickets with unmet
// dependencies and the stored status otherwise.
func (g *Graph) EffectiveStatus(id string) ticket.Status {
	e, ok := g.board.entries[id]
	if !ok {
		return ""
	}
	if e.Ticket.Status == ticket.StatusReady && !g.Ready(id) {
		return ticket.StatusBlocked
	}
	return e.Ticket.Status
}

// Dependents returns the tickets whose depends_on names id.
func (g *Graph) Dependents(id string) []string {
	return slices.Clone(g.dependents[id])
}

// ActiveDependents returns the dependents of id that are not archived.
func (g *Graph) ActiveDependents(id string) []string {
	var out []string
	for _, dep := range g.dependents[id] {
		if e := g.board.entries[dep]; e.Location != LocationArchive {
			out = append(out, dep)
		}
	}
	return out
}

// Unresolved returns every edge whose target is not on the board.
func (g *Graph) Unresolved() []Reference {
	var refs []Reference
	for _, id := range g.board.ids {
		for _, dep := range g.board.entries[id].Ticket.DependsOn {
			if _, ok := g.board.entries[dep]; !ok {
				refs = append(refs, Reference{From: id, To: dep})
			}
		}
	}
	return refs
}

// ArchivedRefs returns edges from tickets outside the archive into it.
func (g *Graph) ArchivedRefs() []Reference {
	var refs []Reference
	for _, id := range g.board.ids {
		e := g.board.entries[id]
		if e.Location == LocationArchive {
			continue
		}
		for _, dep := range e.Ticket.DependsOn {
			if target, ok := g.board.entries[dep]; ok && target.Location == LocationArchive {
				refs = append(refs, Reference{From: id, To: dep})
			}
		}
	}
	return refs
}

// edges returns the resolvable dependencies of id. Self edges are left to
// schema validation.
func (g *Graph) edges(id string) []string {
	var out []string
	for _, dep := range g.DependsOn(id) {
		if dep == id {
			continue
		}
		if _, ok := g.board.entries[dep]; ok {
			out = append(out, dep)
		}
	}
	return out
}

// Cycles returns the shortest cycle of every strongly connected component
// with more than one ticket. Each cycle starts at its smallest ID and the
// list is sorted. Self-dependencies never get here: ticket.Validate rejects
// them with ErrSelfDependency.
func (g *Graph) Cycles() [][]string {
	var cycles [][]string
	for _, scc := range g.components() {
		if len(scc) < 2 {
			continue
		}
		if cycle := g.shortestCycle(scc); cycle != nil {
			cycles = append(cycles, cycle)
		}
	}
	slices.SortFunc(cycles, compareCycles)
	return cycles
}

// components runs Tarjan's algorithm over the board.
func (g *Graph) components() [][]string {
	var (
		index   = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		stack   []string
		next    int
		sccs    [][]string
	)

	var connect func(v string)
	connect = func(v string) {
		index[v] = next
		lowlink[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.edges(v) {
			if _, seen := index[w]; !seen {
				connect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], index[w])
			}
		}

		if lowlink[v] != index[v] {
			return
		}
		var scc []string
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		slices.SortFunc(scc, ticket.CompareIDs)
		sccs = append(sccs, scc)
	}

	for _, id := range g.board.ids {
		if _, seen := index[id]; !seen {
			connect(id)
		}
	}
	return sccs
}

// shortestCycle finds the shortest cycle inside one component.
func (g *Graph) shortestCycle(scc []string) []string {
	members := make(map[string]bool, len(scc))
	for _, id := range scc {
		members[id] = true
	}

	var best []string
	for _, start := range scc {
		cycle := g.pathWithin(start, start, members)
		if cycle == nil {
			continue
		}
		cycle = rotateToSmallest(cycle)
		if best == nil || len(cycle) < len(best) || (len(cycle) == len(best) && compareCycles(cycle, best) < 0) {
			best = cycle
		}
	}
	return best
}

// pathWithin returns the shortest path from -> ... -> to restricted to
// members, excluding the final arrival at to. A path from a node to itself
// is a cycle.
func (g *Graph) pathWithin(from, to string, members map[string]bool) []string {
	parent := map[string]string{}
	queue := []string{from}
	visited := map[string]bool{}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range g.edges(v) {
			if members != nil && !members[w] {
				continue
			}
			if w == to {
				path := []string{v}
				for v != from {
					v = parent[v]
					path = append(path, v)
				}
				slices.Reverse(path)
				return path
			}
			if visited[w] {
				continue
			}
			visited[w] = true
			parent[w] = v
			queue = append(queue, w)
		}
	}
	return nil
}

// WouldCycle reports the cycle that adding the edge from -> to would close,
// or nil if the edge is safe.
func (g *Graph) WouldCycle(from, to string) []string {
	if from == to {
		return []string{from}
	}
	if _, ok := g.board.entries[to]; !ok {
		return nil
	}
	path := g.pathWithin(to, from, nil)
	if path == nil {
		return nil
	}
	return rotateToSmallest(append([]string{from}, path...))
}

func rotateToSmallest(cycle []string) []string {
	smallest := 0
	for i, id := range cycle {
		if ticket.CompareIDs(id, cycle[smallest]) < 0 {
			smallest = i
		}
	}
	return append(slices.Clone(cycle[smallest:]), cycle[:smallest]...)
}

func compareCycles(a, b []string) int {
	for i := range min(len(a), len(b)) {
		if c := ticket.CompareIDs(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

// TreeNode is one ticket in a dependency tree.
type TreeNode struct {
	ID       string
	Entry    *Entry
	Children []*TreeNode

	// Cycle marks a node that repeats an ancestor; it has no children.
	Cycle bool
}

// Tree returns the dependencies of id as a tree. Missing tickets appear
// with a nil Entry and repeated ancestors are cut off.
func (g *Graph) Tree(id string) *TreeNode {
	return g.buildTree(id, map[string]bool{})
}

func (g *Graph) buildTree(id string, path map[string]bool) *TreeNode {
	node := &TreeNode{ID: id, Entry: g.board.entries[id]}
	if path[id] {
		node.Cycle = true
		return node
	}
	path[id] = true
	defer delete(path, id)

	for _, dep := range g.DependsOn(id) {
		node.Children = append(node.Children, g.buildTree(dep, path))
	}
	return node
}
