package wm

import (
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/stackwm/internal/layout"
)

// Client is one managed window. Geom is the single source of truth for
// what is on screen; the requested size is authoritative only while the
// window is floating.
type Client struct {
	Win    xproto.Window
	Fixed  bool // size hints pin minimum == maximum
	Normal bool // EWMH type "normal" and not transient

	ReqWidth  int
	ReqHeight int

	Geom layout.Rect
}

// Floating reports whether the client keeps its requested size instead
// of being stretched to fill the screen.
func (c *Client) Floating() bool {
	return c.Fixed || !c.Normal
}

// registry owns every managed window and its stacking/focus order.
// order[0] is the head: always both the topmost and the focused window.
// The head invariant is held explicitly here rather than encoded in
// link adjacency.
type registry struct {
	clients map[xproto.Window]*Client
	order   []xproto.Window
}

func newRegistry() *registry {
	return &registry{clients: make(map[xproto.Window]*Client)}
}

func (r *registry) len() int { return len(r.order) }

func (r *registry) lookup(win xproto.Window) *Client {
	return r.clients[win]
}

// head returns the topmost/focused client, or nil when empty.
func (r *registry) head() *Client {
	if len(r.order) == 0 {
		return nil
	}
	return r.clients[r.order[0]]
}

// below returns the client directly under the head, or nil.
func (r *registry) below() *Client {
	if len(r.order) < 2 {
		return nil
	}
	return r.clients[r.order[1]]
}

// insert adds a client as the new head. Inserting an already-managed
// window is a no-op.
func (r *registry) insert(c *Client) bool {
	if _, ok := r.clients[c.Win]; ok {
		return false
	}
	r.clients[c.Win] = c
	r.order = append([]xproto.Window{c.Win}, r.order...)
	return true
}

// remove unlinks a client. It returns the promoted head when the
// removed window was the head and others remain, so the caller can
// transfer focus.
func (r *registry) remove(win xproto.Window) (removed bool, promoted *Client) {
	if _, ok := r.clients[win]; !ok {
		return false, nil
	}
	wasHead := len(r.order) > 0 && r.order[0] == win
	for i, w := range r.order {
		if w == win {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	delete(r.clients, win)
	if wasHead && len(r.order) > 0 {
		promoted = r.clients[r.order[0]]
	}
	return true, promoted
}

// raise moves a client to the head. It reports whether the order
// changed; absent or already-head windows are a no-op.
func (r *registry) raise(win xproto.Window) bool {
	if _, ok := r.clients[win]; !ok {
		return false
	}
	if r.order[0] == win {
		return false
	}
	for i, w := range r.order {
		if w == win {
			copy(r.order[1:i+1], r.order[:i])
			r.order[0] = win
			return true
		}
	}
	return false
}

// walk visits every client head to tail (topmost first).
func (r *registry) walk(fn func(*Client)) {
	for _, w := range r.order {
		fn(r.clients[w])
	}
}

// stackingBottomFirst returns the handles bottom-to-top, the fixed
// convention for _NET_CLIENT_LIST_STACKING: the head is written last.
func (r *registry) stackingBottomFirst() []uint32 {
	out := make([]uint32, len(r.order))
	for i, w := range r.order {
		out[len(out)-1-i] = uint32(w)
	}
	return out
}
