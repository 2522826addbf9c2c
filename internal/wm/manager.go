package wm

import (
	"fmt"
	"log"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"

	"github.com/1broseidon/stackwm/internal/config"
	"github.com/1broseidon/stackwm/internal/layout"
)

// ICCCM protocol atom names, as reported by the display's protocol query.
const (
	protoDeleteWindow = "WM_DELETE_WINDOW"
	protoTakeFocus    = "WM_TAKE_FOCUS"
)

// Manager is the decision core of the window manager: it owns the
// client registry and the cached screen state, and drives the display
// through the Display port. It is strictly single-threaded; the only
// suspension point is the blocking event fetch in Run.
type Manager struct {
	dpy   Display
	atoms *Atoms

	root     xproto.Window
	checkWin xproto.Window

	name        string
	borderWidth int

	screenWidth  int
	screenHeight int

	reg  *registry
	quit bool
}

// New constructs a manager around an already-connected display. No
// protocol traffic happens until Startup.
func New(dpy Display, atoms *Atoms, setup Setup, cfg *config.Config) *Manager {
	return &Manager{
		dpy:          dpy,
		atoms:        atoms,
		root:         setup.Root,
		checkWin:     setup.CheckWindow,
		name:         cfg.Name,
		borderWidth:  cfg.BorderWidth,
		screenWidth:  setup.ScreenWidth,
		screenHeight: setup.ScreenHeight,
		reg:          newRegistry(),
	}
}

// Startup acquires management rights, announces the manager on the root
// window and adopts windows that were mapped before it started. The
// only fatal condition is startup contention: another process already
// holding management rights.
func (m *Manager) Startup() error {
	if err := m.dpy.AcquireManagement(); err != nil {
		return fmt.Errorf("failed to acquire window management rights: %w", err)
	}
	m.publishInitial()
	m.adoptExisting()
	return nil
}

// Run consumes protocol events until the quit command arrives. Exactly
// one event is fully handled, side effects included, before the next is
// fetched. Protocol errors surfaced by the event stream are discarded:
// they come from operating on windows that clients destroyed underneath
// us.
func (m *Manager) Run() {
	for !m.quit {
		ev, err := m.dpy.NextEvent()
		if err != nil {
			log.Printf("discarding protocol error: %v", err)
			continue
		}
		if ev == nil {
			log.Printf("display connection closed")
			return
		}
		m.dispatch(ev)
	}
}

// adoptExisting scans for windows that predate the manager. Viewable
// windows and windows parked in iconic state are adopted; transients
// are adopted after their principals so dialogs stack above them.
func (m *Manager) adoptExisting() {
	wins, err := m.dpy.QueryTree()
	if err != nil {
		return
	}
	for pass := 0; pass < 2; pass++ {
		wantTransient := pass == 1
		for _, win := range wins {
			override, viewable, err := m.dpy.Attributes(win)
			if err != nil || override {
				continue
			}
			tw, err := m.dpy.TransientFor(win)
			transient := err == nil && tw != 0
			if transient != wantTransient {
				continue
			}
			if viewable || m.iconicState(win) {
				m.mapRequest(win)
			}
		}
	}
}

// iconicState reports whether a window's ICCCM state property says
// iconic. Consulted only during the startup scan.
func (m *Manager) iconicState(win xproto.Window) bool {
	vals, err := m.dpy.GetProp32(win, m.atoms.WMState)
	return err == nil && len(vals) > 0 && vals[0] == icccm.StateIconic
}

// classify derives the window's classification from its size hints,
// declared type and transient-for hint. Missing or malformed data is
// never an error: an absent type means normal unless transient, and
// absent hints mean not fixed. declared reports whether the client set
// a window type itself.
func (m *Manager) classify(win xproto.Window) (fixed, normal, declared bool) {
	hints, err := m.dpy.NormalHints(win)
	if err != nil {
		hints = nil
	}
	fixed = layout.FixedSize(hints)

	if types, err := m.dpy.GetProp32(win, m.atoms.NetWMWindowType); err == nil && len(types) > 0 {
		return fixed, xproto.Atom(types[0]) == m.atoms.NetWMWindowTypeNormal, true
	}
	tw, err := m.dpy.TransientFor(win)
	transient := err == nil && tw != 0
	return fixed, !transient, false
}

// applyGeometry recomputes a client's rectangle from its current
// classification and requested size, and pushes it to the display.
func (m *Manager) applyGeometry(c *Client) {
	c.Geom = layout.Compute(c.Floating(), c.ReqWidth, c.ReqHeight,
		m.screenWidth, m.screenHeight, m.borderWidth)
	m.dpy.MoveResize(c.Win, c.Geom)
}

// focusClient hands input focus to a window and publishes it as the
// active window. Windows that take part in the WM_TAKE_FOCUS protocol
// are additionally notified.
func (m *Manager) focusClient(win xproto.Window) {
	m.dpy.SetInputFocus(win)
	m.publishActive(win)
	if m.advertises(win, protoTakeFocus) {
		m.dpy.SendWMProtocol(win, m.atoms.WMTakeFocus)
	}
}

// closeClient asks a window to close gracefully, or kills it when it
// does not take part in the WM_DELETE_WINDOW protocol. The kill
// fallback guarantees forward progress against uncooperative clients.
func (m *Manager) closeClient(win xproto.Window) {
	if m.advertises(win, protoDeleteWindow) {
		m.dpy.SendWMProtocol(win, m.atoms.WMDeleteWindow)
		return
	}
	m.dpy.KillClient(win)
}

func (m *Manager) advertises(win xproto.Window, protocol string) bool {
	protocols, err := m.dpy.Protocols(win)
	if err != nil {
		return false
	}
	for _, p := range protocols {
		if p == protocol {
			return true
		}
	}
	return false
}

// raiseClient moves a managed window to the head of the stack, focuses
// it and republishes the stacking order. Unmanaged or already-top
// windows are a no-op.
func (m *Manager) raiseClient(win xproto.Window) {
	if m.reg.lookup(win) == nil {
		return
	}
	if !m.reg.raise(win) {
		return
	}
	m.focusClient(win)
	m.dpy.RaiseWindow(win)
	m.publishStacking()
}
