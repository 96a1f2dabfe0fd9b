package cluster

import (
	"github.com/ValentinKolb/rexkv/rpc/common"
	"github.com/puzpuzpuz/xsync/v3"
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"
)

// -----------------------------------------------------------
// Node Registry
// -----------------------------------------------------------

// Registry is the set of known node addresses (host:port).
// Nodes are only ever added, a node that becomes unreachable stays a member.
//
// Reads work on an immutable snapshot and never block, writers serialize on a
// mutex and publish a new snapshot. A snapshot handed out to a reader is never
// modified afterward.
type Registry struct {
	defaultAddr string

	mu       sync.Mutex
	members  *xsync.MapOf[string, struct{}]
	snapshot atomic.Pointer[[]string]
}

// NewRegistry creates an empty registry. The default address is used when
// a node has to be picked from an empty registry.
func NewRegistry(defaultAddr string) *Registry {
	if defaultAddr == "" {
		defaultAddr = common.DefaultSeedAddress
	}
	r := &Registry{
		defaultAddr: defaultAddr,
		members:     xsync.NewMapOf[string, struct{}](),
	}
	r.snapshot.Store(&[]string{})
	return r
}

// Seed adds the address if the registry is empty and reports whether it did
func (r *Registry) Seed(addr string) bool {
	if addr == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(*r.snapshot.Load()) > 0 {
		return false
	}
	r.add([]string{addr})
	Logger.Debugf("Registry seeded with %s", addr)
	return true
}

// Merge adds all given addresses and returns how many were not known before.
// Duplicates and empty addresses are ignored.
func (r *Registry) Merge(addrs ...string) int {
	// skip the lock if nothing is new
	fresh := false
	for _, addr := range addrs {
		if _, ok := r.members.Load(addr); !ok && addr != "" {
			fresh = true
			break
		}
	}
	if !fresh {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.add(addrs)
}

// PickRandom returns a uniformly chosen member. If the registry is empty it
// is seeded with the default address, which is returned.
func (r *Registry) PickRandom() string {
	nodes := *r.snapshot.Load()
	if len(nodes) == 0 {
		r.Seed(r.defaultAddr)
		nodes = *r.snapshot.Load()
	}
	return nodes[rand.IntN(len(nodes))]
}

// Members returns a sorted copy of all known addresses
func (r *Registry) Members() []string {
	nodes := slices.Clone(*r.snapshot.Load())
	slices.Sort(nodes)
	return nodes
}

// Contains reports whether the address is a member
func (r *Registry) Contains(addr string) bool {
	_, ok := r.members.Load(addr)
	return ok
}

// Len returns the number of known addresses
func (r *Registry) Len() int {
	return len(*r.snapshot.Load())
}

// DefaultAddress returns the address used to seed an empty registry
func (r *Registry) DefaultAddress() string {
	return r.defaultAddr
}

// add publishes a new snapshot containing the unknown addresses, r.mu must be held
func (r *Registry) add(addrs []string) int {
	current := *r.snapshot.Load()
	next := current

	for _, addr := range addrs {
		if addr == "" {
			continue
		}
		if _, loaded := r.members.LoadOrStore(addr, struct{}{}); loaded {
			continue
		}
		if len(next) == len(current) {
			// copy on first write
			next = slices.Clone(current)
		}
		next = append(next, addr)
	}

	added := len(next) - len(current)
	if added > 0 {
		r.snapshot.Store(&next)
		registryMembers.Add(int64(added))
	}
	return added
}
