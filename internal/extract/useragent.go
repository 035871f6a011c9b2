// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"crypto/rand"
	"math/big"
	"sync/atomic"
)

// DefaultUserAgents is a set of current desktop browser identities.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
}

// AgentPool hands out User-Agent strings. Safe for concurrent use.
type AgentPool struct {
	agents  []string
	counter atomic.Uint64
}

// NewAgentPool copies agents into a pool. An empty slice selects
// DefaultUserAgents.
func NewAgentPool(agents []string) *AgentPool {
	if len(agents) == 0 {
		agents = DefaultUserAgents
	}
	copied := make([]string, len(agents))
	copy(copied, agents)
	return &AgentPool{agents: copied}
}

// Next returns agents in round-robin order.
func (p *AgentPool) Next() string {
	idx := p.counter.Add(1) - 1
	return p.agents[idx%uint64(len(p.agents))]
}

// Random returns a uniformly chosen agent, falling back to Next if the
// system random source fails.
func (p *AgentPool) Random() string {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(p.agents))))
	if err != nil {
		return p.Next()
	}
	return p.agents[n.Int64()]
}
