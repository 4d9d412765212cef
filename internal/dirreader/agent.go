package dirreader

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/fstree/crawld/internal/model"
)

// connPool is a bounded pool of persistent connections to a storage agent
// host, acquired before a listdir call and released after — the "acquire
// and release a pooled connection" resource discipline from spec.md §5.
type connPool struct {
	addr    string
	timeout time.Duration
	conns   chan net.Conn
}

func newConnPool(addr string, size int, timeout time.Duration) *connPool {
	return &connPool{addr: addr, timeout: timeout, conns: make(chan net.Conn, size)}
}

func (p *connPool) acquire() (net.Conn, error) {
	select {
	case c := <-p.conns:
		return c, nil
	default:
		return net.DialTimeout("tcp", p.addr, p.timeout)
	}
}

func (p *connPool) release(c net.Conn) {
	select {
	case p.conns <- c:
	default:
		_ = c.Close()
	}
}

func (p *connPool) discard(c net.Conn) {
	_ = c.Close()
}

// Agent lists directories by sending newline-delimited JSON RPC requests to
// a storage-agent process, round-robining over the configured hosts. The
// agent protocol itself is an external collaborator; this type is the
// client half of the interface spec.md §9 calls out.
type Agent struct {
	pools []*connPool
	next  int
}

// NewAgent returns a Reader that round-robins listdir calls across hosts,
// each with its own connection pool of the given size.
func NewAgent(hosts []string, poolSize int, timeout time.Duration) *Agent {
	pools := make([]*connPool, len(hosts))
	for i, h := range hosts {
		pools[i] = newConnPool(h, poolSize, timeout)
	}
	return &Agent{pools: pools}
}

type agentRequest struct {
	Path string `json:"path"`
}

type agentResponse struct {
	CanonicalPath string            `json:"canonical_path"`
	Dirs          []string          `json:"dirs"`
	Files         []model.FileEntry `json:"files"`
	Error         string            `json:"error,omitempty"`
}

// Listdir implements Reader.
func (a *Agent) Listdir(path string) (string, []string, []model.FileEntry, error) {
	if len(a.pools) == 0 {
		return path, nil, nil, fmt.Errorf("no storage agent hosts configured")
	}
	pool := a.pools[a.next%len(a.pools)]
	a.next++

	conn, err := pool.acquire()
	if err != nil {
		return path, nil, nil, err
	}

	if err := conn.SetDeadline(time.Now().Add(pool.timeout)); err != nil {
		pool.discard(conn)
		return path, nil, nil, err
	}

	enc := json.NewEncoder(conn)
	if err := enc.Encode(agentRequest{Path: path}); err != nil {
		pool.discard(conn)
		return path, nil, nil, err
	}

	var resp agentResponse
	if err := json.NewDecoder(bufio.NewReader(conn)).Decode(&resp); err != nil {
		pool.discard(conn)
		return path, nil, nil, err
	}

	pool.release(conn)

	if resp.Error != "" {
		return path, nil, nil, &ErrSkip{Path: path, Err: fmt.Errorf("%s", resp.Error)}
	}
	return resp.CanonicalPath, resp.Dirs, resp.Files, nil
}
