package registry

import (
	"sort"
	"strings"
)

// PlanStep names one index to build and which of its recipes to use.
type PlanStep struct {
	Identifier string
	Recipe     int
}

type planKey struct {
	targets    string
	generation uint64
}

// planFrame is one element of the planner's search path: the dependency
// position of a dequeued index, the position of the frame that requested it,
// and the recipe currently being tried for it.
type planFrame struct {
	pos       int
	requester int
	recipe    int
	// limit is one past the last recipe the search may try for this frame.
	// An index committed by an earlier target is pinned to a single recipe.
	limit int
}

// pending is a queue entry: the position of the first frame that requested
// the index at this dependency position, and how many recipe inputs
// currently want it.
type pending struct {
	requester int
	count     int
}

// Plan computes the dependency-ordered steps needed to build the targets,
// omitting indexes that are already finished.
func (r *Registry) Plan(targets ...string) ([]PlanStep, error) {
	steps, err := r.plan(targets)
	if err != nil {
		return nil, err
	}
	return append([]PlanStep(nil), steps...), nil
}

func (r *Registry) plan(targets []string) ([]PlanStep, error) {
	key := planKey{targets: strings.Join(targets, "\x1f"), generation: r.generation}
	if steps, ok := r.plans.Get(key); ok {
		return steps, nil
	}

	order, err := r.DependencyOrder()
	if err != nil {
		return nil, err
	}
	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}

	// Recipe choices committed by earlier targets. A later target reaching
	// one of these indexes is pinned to the committed recipe, so an index is
	// never built twice by different recipes within one plan.
	committed := make(map[string]int)
	for _, target := range targets {
		r.mustGet(target)
		path, err := r.planTarget(target, order, pos, committed)
		if err != nil {
			return nil, err
		}
		for _, frame := range path {
			id := order[frame.pos]
			if r.catalog[id].isFinished() {
				continue
			}
			committed[id] = frame.recipe
		}
	}

	steps := make([]PlanStep, 0, len(committed))
	for id, recipe := range committed {
		steps = append(steps, PlanStep{Identifier: id, Recipe: recipe})
	}
	sort.Slice(steps, func(i, j int) bool {
		return pos[steps[i].Identifier] < pos[steps[j].Identifier]
	})

	r.plans.Add(key, steps)
	return steps, nil
}

// planTarget searches for a way to build a single target from the finished
// indexes, trying recipes in priority order and backtracking through
// requesters when a branch dead-ends. The returned path holds one frame per
// index the search settled on, including already-finished ones.
func (r *Registry) planTarget(target string, order []string, pos map[string]int, committed map[string]int) ([]planFrame, error) {
	// sentinel requester for the target itself; no index has this position
	sentinel := len(order)

	queue := map[int]pending{pos[target]: {requester: sentinel, count: 1}}
	var path []planFrame

	for len(queue) > 0 {
		// Dequeue the index produced latest in the dependency order, so its
		// recipe choice is settled before any of its consumers retry theirs.
		top := -1
		for p := range queue {
			if p > top {
				top = p
			}
		}
		requester := queue[top].requester
		delete(queue, top)

		x := r.catalog[order[top]]
		frame := planFrame{pos: top, requester: requester}
		frame.recipe, frame.limit = recipeBounds(x, committed)
		path = append(path, frame)

		if x.isFinished() {
			// provided or already built, no recipe needed
			continue
		}
		if frame.recipe < frame.limit {
			r.enqueueInputs(queue, &x.recipes[frame.recipe], pos, top)
			continue
		}

		// Nothing can produce this index: walk back to a requester with an
		// untried recipe, undoing enqueues along the way.
		path = r.backtrack(path, queue, order, pos)
		if len(path) == 0 {
			return nil, newInsufficientInputError(target, r.Completed())
		}
		last := &path[len(path)-1]
		r.enqueueInputs(queue, &r.catalog[order[last.pos]].recipes[last.recipe], pos, last.pos)
	}
	return path, nil
}

// recipeBounds returns the first recipe to try for an index and one past the
// last. An unfinished index pinned by an earlier target's plan may only use
// its committed recipe.
func recipeBounds(x *index, committed map[string]int) (int, int) {
	if c, ok := committed[x.identifier]; ok && !x.isFinished() {
		return c, c + 1
	}
	return 0, len(x.recipes)
}

// backtrack unwinds the search path after a dead end. It pops frames up to
// the dead end's requester, undoing each popped frame's pending enqueues,
// then advances the requester to its next recipe; a requester with no
// recipes left propagates the backtrack further up. The returned path is
// empty when every alternative is exhausted.
func (r *Registry) backtrack(path []planFrame, queue map[int]pending, order []string, pos map[string]int) []planFrame {
	for len(path) > 0 && path[len(path)-1].recipe == path[len(path)-1].limit {
		requester := path[len(path)-1].requester

		for len(path) > 0 && path[len(path)-1].pos != requester {
			frame := path[len(path)-1]
			path = path[:len(path)-1]
			r.undoEnqueues(queue, frame, order, pos)
		}

		if len(path) > 0 {
			last := &path[len(path)-1]
			r.undoEnqueues(queue, *last, order, pos)
			last.recipe++
		}
	}
	return path
}

// enqueueInputs adds every input of a recipe to the queue, crediting the
// requesting frame. An input already queued gains a requester instead; a
// duplicated input counts once per occurrence.
func (r *Registry) enqueueInputs(queue map[int]pending, recipe *Recipe, pos map[string]int, requester int) {
	for _, input := range recipe.inputs {
		p := pos[input]
		if entry, ok := queue[p]; ok {
			entry.count++
			queue[p] = entry
		} else {
			queue[p] = pending{requester: requester, count: 1}
		}
	}
}

// undoEnqueues reverses enqueueInputs for a frame being popped during
// backtracking, decrementing symmetrically so duplicated inputs are released
// once per occurrence. Entries that reach zero requesters leave the queue.
func (r *Registry) undoEnqueues(queue map[int]pending, frame planFrame, order []string, pos map[string]int) {
	x := r.catalog[order[frame.pos]]
	if x.isFinished() || frame.recipe >= frame.limit {
		// the frame never enqueued anything
		return
	}
	for _, input := range x.recipes[frame.recipe].inputs {
		p := pos[input]
		entry, ok := queue[p]
		if !ok {
			// already dequeued into a frame of its own
			continue
		}
		entry.count--
		if entry.count == 0 {
			delete(queue, p)
		} else {
			queue[p] = entry
		}
	}
}
