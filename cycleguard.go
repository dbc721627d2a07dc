package dirlist

// ============================================================================
// cycleGuard: loop detection for recursive descent
// ============================================================================

// devIno identifies a filesystem object across mount points.
type devIno struct {
	dev uint64
	ino uint64
}

// cycleGuard is the set of (device, inode) pairs for directories currently
// being traversed. Membership means "an ancestor directory on the active
// descent path". It is consulted only when recursion is enabled.
//
// Entries are added when a directory begins being read and removed when the
// paired release marker is popped from the pending stack, so guard lifetime
// follows strict stack discipline matching recursive descent. At top-level
// completion the set must be empty; a leftover entry is a traversal
// accounting bug.
type cycleGuard struct {
	active map[devIno]struct{}
}

func (g *cycleGuard) contains(id devIno) bool {
	_, ok := g.active[id]

	return ok
}

func (g *cycleGuard) add(id devIno) {
	if g.active == nil {
		g.active = make(map[devIno]struct{})
	}

	g.active[id] = struct{}{}
}

func (g *cycleGuard) remove(id devIno) {
	delete(g.active, id)
}

func (g *cycleGuard) size() int { return len(g.active) }
