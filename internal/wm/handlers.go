package wm

import (
	"log"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"
)

// clientEventMask is the notification set armed on every managed
// window: focus changes for focus-theft rejection and property changes
// for reclassification.
const clientEventMask = xproto.EventMaskFocusChange | xproto.EventMaskPropertyChange

// dispatch routes one event to its handler. Unrecognized event kinds
// are silently ignored.
func (m *Manager) dispatch(ev xgb.Event) {
	switch e := ev.(type) {
	case xproto.ButtonPressEvent:
		m.buttonPress(e)
	case xproto.ClientMessageEvent:
		m.clientMessage(e)
	case xproto.ConfigureNotifyEvent:
		m.configureNotify(e)
	case xproto.ConfigureRequestEvent:
		m.configureRequest(e)
	case xproto.FocusInEvent:
		m.focusIn(e)
	case xproto.MapRequestEvent:
		m.mapRequest(e.Window)
	case xproto.PropertyNotifyEvent:
		m.propertyNotify(e)
	case xproto.UnmapNotifyEvent:
		m.unmapNotify(e)
	}
}

// buttonPress raises the pressed window, then replays the press so the
// click reaches the client: focus-on-click without swallowing input.
func (m *Manager) buttonPress(e xproto.ButtonPressEvent) {
	m.raiseClient(e.Event)
	m.dpy.AllowPointerEvents()
}

// clientMessage handles the EWMH requests clients may direct at managed
// windows. Messages for unmanaged windows are ignored.
func (m *Manager) clientMessage(e xproto.ClientMessageEvent) {
	c := m.reg.lookup(e.Window)
	if c == nil {
		return
	}
	switch e.Type {
	case m.atoms.NetActiveWindow:
		m.raiseClient(e.Window)
	case m.atoms.NetCloseWindow:
		m.closeClient(e.Window)
	case m.atoms.NetRequestFrameExtents:
		m.publishFrameExtents(e.Window)
	case m.atoms.NetWMState:
		m.wmStateMessage(c, e)
	}
}

// wmStateMessage forces a floating window to tiled geometry when a
// client adds or toggles the fullscreen state. Covers clients that
// request fullscreen immediately after mapping.
func (m *Manager) wmStateMessage(c *Client, e xproto.ClientMessageEvent) {
	if e.Format != 32 || !c.Floating() {
		return
	}
	const (
		stateAdd    = 1
		stateToggle = 2
	)
	data := e.Data.Data32
	action := data[0]
	if action != stateAdd && action != stateToggle {
		return
	}
	fullscreen := uint32(m.atoms.NetWMStateFullscreen)
	if data[1] != fullscreen && data[2] != fullscreen {
		return
	}
	c.Fixed = false
	c.Normal = true
	m.applyGeometry(c)
}

// configureNotify tracks root window resizes. A changed screen size
// republishes the desktop geometry and recomputes every managed window.
func (m *Manager) configureNotify(e xproto.ConfigureNotifyEvent) {
	if e.Window != m.root {
		return
	}
	w, h := int(e.Width), int(e.Height)
	if w == m.screenWidth && h == m.screenHeight {
		return
	}
	m.screenWidth, m.screenHeight = w, h
	m.publishDesktopGeometry()
	m.reg.walk(func(c *Client) {
		m.applyGeometry(c)
	})
}

// configureRequest honors resize requests from floating windows,
// refuses them for tiled windows by echoing the authoritative geometry
// in a synthetic notify, and passes requests from unmanaged windows
// through verbatim.
func (m *Manager) configureRequest(e xproto.ConfigureRequestEvent) {
	c := m.reg.lookup(e.Window)
	if c == nil {
		m.passthroughConfigure(e)
		return
	}
	if e.ValueMask&xproto.ConfigWindowWidth != 0 {
		c.ReqWidth = int(e.Width)
	}
	if e.ValueMask&xproto.ConfigWindowHeight != 0 {
		c.ReqHeight = int(e.Height)
	}
	if c.Floating() {
		m.applyGeometry(c)
		return
	}
	m.dpy.SendConfigureNotify(e.Window, c.Geom, m.borderWidth)
}

// passthroughConfigure forwards an unmanaged window's request with its
// value mask intact.
func (m *Manager) passthroughConfigure(e xproto.ConfigureRequestEvent) {
	values := make([]uint32, 0, 7)
	if e.ValueMask&xproto.ConfigWindowX != 0 {
		values = append(values, uint32(int32(e.X)))
	}
	if e.ValueMask&xproto.ConfigWindowY != 0 {
		values = append(values, uint32(int32(e.Y)))
	}
	if e.ValueMask&xproto.ConfigWindowWidth != 0 {
		values = append(values, uint32(e.Width))
	}
	if e.ValueMask&xproto.ConfigWindowHeight != 0 {
		values = append(values, uint32(e.Height))
	}
	if e.ValueMask&xproto.ConfigWindowBorderWidth != 0 {
		values = append(values, uint32(e.BorderWidth))
	}
	if e.ValueMask&xproto.ConfigWindowSibling != 0 {
		values = append(values, uint32(e.Sibling))
	}
	if e.ValueMask&xproto.ConfigWindowStackMode != 0 {
		values = append(values, uint32(e.StackMode))
	}
	m.dpy.Configure(e.Window, e.ValueMask, values)
}

// focusIn rejects focus theft: whenever a window other than the head
// gains focus, focus is forced back to the head.
func (m *Manager) focusIn(e xproto.FocusInEvent) {
	head := m.reg.head()
	if head != nil && head.Win != e.Event {
		m.focusClient(head.Win)
	}
}

// mapRequest takes a window under management: classify, register as the
// new head, publish its properties, arm grabs and notifications, place
// it and hand it focus. Mapping an already-managed window is a no-op.
func (m *Manager) mapRequest(win xproto.Window) {
	if m.reg.lookup(win) != nil {
		return
	}

	fixed, normal, declared := m.classify(win)
	if !declared {
		derived := m.atoms.NetWMWindowTypeNormal
		if !normal {
			derived = m.atoms.NetWMWindowTypeDialog
		}
		m.dpy.SetProp32(win, m.atoms.NetWMWindowType, xproto.AtomAtom, uint32(derived))
	}

	c := &Client{Win: win, Fixed: fixed, Normal: normal}
	if geom, err := m.dpy.Geometry(win); err == nil {
		c.ReqWidth = geom.Width
		c.ReqHeight = geom.Height
	}
	m.reg.insert(c)
	log.Printf("managing window %#x (floating=%v)", win, c.Floating())

	m.clientListAppend(win)
	m.publishStacking()
	m.publishDesktop(win)
	m.publishFrameExtents(win)

	m.dpy.GrabButton(win)
	m.dpy.SelectInput(win, clientEventMask)
	m.dpy.SetBorderWidth(win, m.borderWidth)
	m.applyGeometry(c)

	m.setWMState(win, icccm.StateNormal)
	m.dpy.MapWindow(win)
	m.focusClient(win)
}

// propertyNotify watches the root window for remote commands and
// managed windows for hint changes that alter their classification.
func (m *Manager) propertyNotify(e xproto.PropertyNotifyEvent) {
	if e.Window == m.root {
		if e.Atom == m.atoms.Command {
			m.remoteCommand()
		}
		return
	}
	if e.Atom != xproto.AtomWmNormalHints && e.Atom != m.atoms.NetWMWindowType {
		return
	}
	c := m.reg.lookup(e.Window)
	if c == nil {
		return
	}
	fixed, normal, _ := m.classify(e.Window)
	if fixed == c.Fixed && normal == c.Normal {
		return
	}
	c.Fixed, c.Normal = fixed, normal
	m.applyGeometry(c)
}

// unmapNotify releases a window from management: its properties and
// grabs are torn down under a server grab, then the registry and the
// published lists are reconciled. Removing the head promotes its
// successor and transfers focus to it.
func (m *Manager) unmapNotify(e xproto.UnmapNotifyEvent) {
	win := e.Window
	if m.reg.lookup(win) == nil {
		return
	}
	log.Printf("unmanaging window %#x", win)

	m.teardownWindow(win)

	_, promoted := m.reg.remove(win)
	if promoted != nil {
		m.focusClient(promoted.Win)
	} else if m.reg.len() == 0 {
		m.clearActive()
	}

	m.clientListRemove(win)
	m.publishStacking()
}
