package ui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/sonoscope/internal/analysis"
	"github.com/olivier-w/sonoscope/internal/audio"
)

type request struct {
	seq    int
	mode   audio.Mode // ModeIdle releases
	params audio.Params
	reply  chan acquiredMsg
}

// controller applies acquisition requests to the graph off the Update goroutine.
// Only the newest pending request is kept: anything it replaces is answered as
// superseded without touching the graph, and an acquisition in flight is
// cancelled.
type controller struct {
	graph    *audio.Graph
	analyser *analysis.Analyser
	wake     chan struct{}

	mu       sync.Mutex
	next     *request
	newest   int
	closed   bool
	inFlight context.CancelFunc
}

func newController(g *audio.Graph, a *analysis.Analyser) *controller {
	c := &controller{graph: g, analyser: a, wake: make(chan struct{}, 1), inFlight: func() {}}
	go c.run()
	return c
}

func (c *controller) run() {
	for range c.wake {
		for {
			c.mu.Lock()
			req, closed := c.next, c.closed
			c.next = nil
			if closed {
				c.mu.Unlock()
				c.graph.Release()
				c.analyser.Reset()
				return
			}
			if req == nil {
				c.mu.Unlock()
				break
			}
			ctx, cancel := context.WithCancel(context.Background())
			c.inFlight = cancel
			c.mu.Unlock()

			msg := c.apply(ctx, *req)
			cancel()
			req.reply <- msg
		}
	}
}

func (c *controller) apply(ctx context.Context, req request) acquiredMsg {
	c.graph.Release()
	c.analyser.Reset()
	if req.mode == audio.ModeIdle {
		return acquiredMsg{seq: req.seq, mode: audio.ModeIdle, ok: true}
	}

	if !c.graph.Acquire(ctx, req.mode, req.params) {
		return acquiredMsg{seq: req.seq, mode: audio.ModeError, err: c.graph.Err()}
	}
	msg := acquiredMsg{
		seq:  req.seq,
		mode: req.mode,
		ok:   true,
		rate: audio.SampleRateFor(req.mode, req.params),
	}
	if src := c.graph.Current(); src != nil {
		msg.done = src.Done()
		msg.info, _ = src.(audio.MediaInfo)
	}
	return msg
}

// post makes req the pending request unless a newer one already got there.
// It never blocks.
func (c *controller) post(req *request) {
	c.mu.Lock()
	if c.closed || req.seq <= c.newest {
		c.mu.Unlock()
		req.reply <- acquiredMsg{seq: req.seq, superseded: true}
		return
	}
	c.newest = req.seq
	old := c.next
	c.next = req
	c.inFlight()
	c.mu.Unlock()

	if old != nil {
		old.reply <- acquiredMsg{seq: old.seq, superseded: true}
	}
	c.signal()
}

// close drops any pending request and has the worker release the graph and exit
// once the acquisition in flight, if any, returns.
func (c *controller) close() {
	c.mu.Lock()
	old := c.next
	c.next = nil
	c.closed = true
	c.inFlight()
	c.mu.Unlock()

	if old != nil {
		old.reply <- acquiredMsg{seq: old.seq, superseded: true}
	}
	c.signal()
}

func (c *controller) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// submit returns a command that hands the request over and reports its outcome.
func (c *controller) submit(seq int, mode audio.Mode, p audio.Params) tea.Cmd {
	return func() tea.Msg {
		req := &request{seq: seq, mode: mode, params: p, reply: make(chan acquiredMsg, 1)}
		c.post(req)
		return <-req.reply
	}
}
