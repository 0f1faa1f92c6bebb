package state

import (
	"github.com/rs/zerolog"

	"github.com/acpikit/acpikit/cache"
	"github.com/acpikit/acpikit/errz"
	"github.com/acpikit/acpikit/host"
	"github.com/acpikit/acpikit/ns"
	"github.com/acpikit/acpikit/object"
)

// Pool dispenses typed state records from a bounded cache.
type Pool struct {
	cache *cache.Cache[State]
	host  host.Services
	log   zerolog.Logger
}

// NewPool creates a Pool backed by the given cache. A nil host falls back
// to the default system host.
func NewPool(c *cache.Cache[State], h host.Services, log zerolog.Logger) (*Pool, error) {
	if c == nil {
		return nil, errz.New(errz.BadParameter, "state pool requires a cache")
	}
	if h == nil {
		h = host.System()
	}
	return &Pool{cache: c, host: h, log: log}, nil
}

// Cache returns the backing cache.
func (p *Pool) Cache() *cache.Cache[State] {
	return p.cache
}

// CreateGeneric returns a cleared record tagged Generic.
func (p *Pool) CreateGeneric() (*State, error) {
	s, err := p.cache.Acquire()
	if err != nil {
		return nil, err
	}
	s.kind = Generic
	return s, nil
}

// CreateThread returns a Thread record carrying the caller's host thread
// identity. A host that reports thread ID zero gets the reserved
// substitute, since zero means "no thread" everywhere downstream.
func (p *Pool) CreateThread() (*State, error) {
	s, err := p.cache.Acquire()
	if err != nil {
		return nil, err
	}
	s.kind = Thread
	id := p.host.ThreadID()
	if id == 0 {
		p.log.Warn().Msg("host reported thread id 0; substituting 1")
		id = 1
	}
	s.ThreadID = id
	return s, nil
}

// CreateUpdate returns an Update record for adjusting obj's reference
// count.
func (p *Pool) CreateUpdate(obj object.Object, action UpdateAction) (*State, error) {
	s, err := p.cache.Acquire()
	if err != nil {
		return nil, err
	}
	s.kind = Update
	s.Object = obj
	s.Action = action
	return s, nil
}

// CreatePackage returns a Package record positioned at index within a
// source-to-destination package copy.
func (p *Pool) CreatePackage(source, dest object.Object, index uint32) (*State, error) {
	s, err := p.cache.Acquire()
	if err != nil {
		return nil, err
	}
	s.kind = Package
	s.Source = source
	s.Dest = dest
	s.Index = index
	s.NumPackages = 1
	return s, nil
}

// CreateControl returns a Control record. A fresh control frame starts in
// the conditional-executing state.
func (p *Pool) CreateControl() (*State, error) {
	s, err := p.cache.Acquire()
	if err != nil {
		return nil, err
	}
	s.kind = Control
	s.Control = ControlConditionalExecuting
	return s, nil
}

// CreateScope returns a Scope record framing the given namespace node.
func (p *Pool) CreateScope(node *ns.Node, typ object.Type) (*State, error) {
	s, err := p.cache.Acquire()
	if err != nil {
		return nil, err
	}
	s.InitScope(node, typ)
	return s, nil
}

// Release returns a record to the cache. Releasing nil is a no-op.
func (p *Pool) Release(s *State) {
	if s == nil {
		return
	}
	p.cache.Release(s)
}
