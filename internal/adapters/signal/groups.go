package signal

import "github.com/dkeye/roomrelay/internal/domain"

// Groups maps delivery addresses to connections. Every connection is always
// addressable by its own id. Only the hub goroutine touches it.
type Groups struct {
	members map[domain.Address]map[domain.ConnID]struct{}
	of      map[domain.ConnID]map[domain.Address]struct{}
}

func NewGroups() *Groups {
	return &Groups{
		members: make(map[domain.Address]map[domain.ConnID]struct{}),
		of:      make(map[domain.ConnID]map[domain.Address]struct{}),
	}
}

func (g *Groups) Add(conn domain.ConnID, addrs ...domain.Address) {
	if _, ok := g.of[conn]; !ok {
		g.of[conn] = map[domain.Address]struct{}{}
		g.add(conn, domain.Address(conn))
	}
	for _, a := range addrs {
		g.add(conn, a)
	}
}

func (g *Groups) add(conn domain.ConnID, addr domain.Address) {
	set, ok := g.members[addr]
	if !ok {
		set = map[domain.ConnID]struct{}{}
		g.members[addr] = set
	}
	set[conn] = struct{}{}
	g.of[conn][addr] = struct{}{}
}

// Reset drops every address of conn except its own id.
func (g *Groups) Reset(conn domain.ConnID) {
	own, ok := g.of[conn]
	if !ok {
		return
	}
	for addr := range own {
		if addr == domain.Address(conn) {
			continue
		}
		g.remove(conn, addr)
	}
}

// RemoveAll forgets conn entirely.
func (g *Groups) RemoveAll(conn domain.ConnID) {
	for addr := range g.of[conn] {
		g.remove(conn, addr)
	}
	delete(g.of, conn)
}

func (g *Groups) remove(conn domain.ConnID, addr domain.Address) {
	if set, ok := g.members[addr]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(g.members, addr)
		}
	}
	delete(g.of[conn], addr)
}

// Resolve returns every connection answering to addr.
func (g *Groups) Resolve(addr domain.Address) []domain.ConnID {
	set := g.members[addr]
	out := make([]domain.ConnID, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}
