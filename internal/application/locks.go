package application

import "sync"

// guildLocks hands out one mutex per guild so signature handling and
// finalization for matches of the same community are serialized, while
// different communities never contend.
type guildLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newGuildLocks() *guildLocks {
	return &guildLocks{locks: make(map[string]*sync.Mutex)}
}

func (g *guildLocks) Get(guildID string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.locks[guildID]
	if !ok {
		l = &sync.Mutex{}
		g.locks[guildID] = l
	}
	return l
}
