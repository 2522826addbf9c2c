package wm

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"
)

// This file mirrors registry mutations into the shared ICCCM/EWMH
// properties. The registry stays canonical; everything here is a
// projection and can be regenerated from it.

// publishInitial announces the manager on the root window: supported
// atoms, the supporting-check window, empty window lists and the
// constant single-desktop layout.
func (m *Manager) publishInitial() {
	a := m.atoms
	root := m.root

	m.dpy.SetProp8(m.checkWin, a.NetWMName, a.UTF8String, []byte(m.name))
	m.dpy.SetProp32(root, a.NetSupported, xproto.AtomAtom, a.Supported()...)
	m.dpy.SetProp32(root, a.NetSupportingWMCheck, xproto.AtomWindow, uint32(m.checkWin))
	m.dpy.SetProp32(m.checkWin, a.NetSupportingWMCheck, xproto.AtomWindow, uint32(m.checkWin))

	m.dpy.SetProp32(root, a.NetActiveWindow, xproto.AtomWindow)
	m.dpy.SetProp32(root, a.NetClientList, xproto.AtomWindow)
	m.dpy.SetProp32(root, a.NetClientListStacking, xproto.AtomWindow)

	m.dpy.SetProp32(root, a.NetNumberOfDesktops, xproto.AtomCardinal, 1)
	m.dpy.SetProp32(root, a.NetCurrentDesktop, xproto.AtomCardinal, 0)
	m.dpy.SetProp32(root, a.NetDesktopViewport, xproto.AtomCardinal, 0, 0)
	m.publishDesktopGeometry()
}

// publishDesktopGeometry publishes the screen dimensions and the work
// area (the full screen; there are no reserved panels).
func (m *Manager) publishDesktopGeometry() {
	a := m.atoms
	w, h := uint32(m.screenWidth), uint32(m.screenHeight)
	m.dpy.SetProp32(m.root, a.NetDesktopGeometry, xproto.AtomCardinal, w, h)
	m.dpy.SetProp32(m.root, a.NetWorkarea, xproto.AtomCardinal, 0, 0, w, h)
}

// clientListAppend appends one handle to _NET_CLIENT_LIST, which stays
// in insertion order.
func (m *Manager) clientListAppend(win xproto.Window) {
	m.dpy.AppendProp32(m.root, m.atoms.NetClientList, xproto.AtomWindow, uint32(win))
}

// clientListRemove splices one handle out of _NET_CLIENT_LIST without
// disturbing the order of the rest.
func (m *Manager) clientListRemove(win xproto.Window) {
	list, err := m.dpy.GetProp32(m.root, m.atoms.NetClientList)
	if err != nil {
		return
	}
	for i, v := range list {
		if v == uint32(win) {
			list = append(list[:i], list[i+1:]...)
			m.dpy.SetProp32(m.root, m.atoms.NetClientList, xproto.AtomWindow, list...)
			return
		}
	}
}

// publishStacking rewrites _NET_CLIENT_LIST_STACKING in full from the
// registry, bottom-to-top: the head is always the last entry.
func (m *Manager) publishStacking() {
	m.dpy.SetProp32(m.root, m.atoms.NetClientListStacking, xproto.AtomWindow,
		m.reg.stackingBottomFirst()...)
}

func (m *Manager) publishActive(win xproto.Window) {
	m.dpy.SetProp32(m.root, m.atoms.NetActiveWindow, xproto.AtomWindow, uint32(win))
}

func (m *Manager) clearActive() {
	m.dpy.SetProp32(m.root, m.atoms.NetActiveWindow, xproto.AtomWindow)
}

// publishFrameExtents publishes the border width on all four sides.
func (m *Manager) publishFrameExtents(win xproto.Window) {
	bw := uint32(m.borderWidth)
	m.dpy.SetProp32(win, m.atoms.NetFrameExtents, xproto.AtomCardinal, bw, bw, bw, bw)
}

// publishDesktop pins the window to the only desktop.
func (m *Manager) publishDesktop(win xproto.Window) {
	m.dpy.SetProp32(win, m.atoms.NetWMDesktop, xproto.AtomCardinal, 0)
}

// setWMState publishes the ICCCM state code with no icon window.
func (m *Manager) setWMState(win xproto.Window, state uint32) {
	m.dpy.SetProp32(win, m.atoms.WMState, m.atoms.WMState, state, 0)
}

// teardownWindow strips the per-window properties and grabs of a window
// leaving management. The whole sequence runs inside a server grab so a
// window destroyed mid-teardown cannot leave half-applied state; any
// protocol error from the now-gone window is discarded by the display.
func (m *Manager) teardownWindow(win xproto.Window) {
	m.dpy.GrabServer()
	m.dpy.SelectInput(win, 0)
	m.dpy.UngrabButton(win)
	m.dpy.DeleteProp(win, m.atoms.NetWMDesktop)
	m.setWMState(win, icccm.StateWithdrawn)
	m.dpy.Sync()
	m.dpy.UngrabServer()
}
