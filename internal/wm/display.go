package wm

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"

	"github.com/1broseidon/stackwm/internal/layout"
)

// Display is the windowing-protocol port the manager drives. It carries
// queries and commands only; policy stays in this package. Commands are
// fire-and-forget: implementations must discard protocol errors instead
// of propagating them, because managed windows are owned by external
// processes and can vanish at any time. Queries return an error, which
// handlers treat as "use defaults", never as a failure.
type Display interface {
	// NextEvent blocks until the next protocol event. A protocol error
	// is returned as err with a nil event; both nil means the
	// connection is gone.
	NextEvent() (xgb.Event, error)

	// AcquireManagement selects the substructure-redirect event mask on
	// the root window. It fails when another manager already holds
	// management rights.
	AcquireManagement() error

	GetProp32(win xproto.Window, prop xproto.Atom) ([]uint32, error)
	GetPropString(win xproto.Window, prop xproto.Atom) (string, error)
	SetProp32(win xproto.Window, prop, typ xproto.Atom, values ...uint32)
	AppendProp32(win xproto.Window, prop, typ xproto.Atom, values ...uint32)
	SetProp8(win xproto.Window, prop, typ xproto.Atom, data []byte)
	DeleteProp(win xproto.Window, prop xproto.Atom)

	Geometry(win xproto.Window) (layout.Rect, error)
	// Attributes reports whether a window bypasses redirection and
	// whether it is currently viewable. Used by the startup scan only.
	Attributes(win xproto.Window) (overrideRedirect, viewable bool, err error)
	NormalHints(win xproto.Window) (*icccm.NormalHints, error)
	TransientFor(win xproto.Window) (xproto.Window, error)
	Protocols(win xproto.Window) ([]string, error)
	QueryTree() ([]xproto.Window, error)

	MoveResize(win xproto.Window, r layout.Rect)
	Configure(win xproto.Window, mask uint16, values []uint32)
	SendConfigureNotify(win xproto.Window, r layout.Rect, borderWidth int)
	SendWMProtocol(win xproto.Window, protocol xproto.Atom)
	SetInputFocus(win xproto.Window)
	SetBorderWidth(win xproto.Window, width int)
	SelectInput(win xproto.Window, mask uint32)
	GrabButton(win xproto.Window)
	UngrabButton(win xproto.Window)
	AllowPointerEvents()
	RaiseWindow(win xproto.Window)
	MapWindow(win xproto.Window)
	KillClient(win xproto.Window)

	// GrabServer/Sync/UngrabServer bracket multi-step teardown of a
	// window that may be destroyed mid-sequence.
	GrabServer()
	Sync()
	UngrabServer()
}

// Atoms holds every interned identifier the manager publishes or
// inspects. Interning happens in the display adapter before the manager
// is constructed.
type Atoms struct {
	// ICCCM
	WMProtocols    xproto.Atom
	WMDeleteWindow xproto.Atom
	WMState        xproto.Atom
	WMTakeFocus    xproto.Atom

	// EWMH
	NetActiveWindow        xproto.Atom
	NetClientList          xproto.Atom
	NetClientListStacking  xproto.Atom
	NetCloseWindow         xproto.Atom
	NetCurrentDesktop      xproto.Atom
	NetDesktopGeometry     xproto.Atom
	NetDesktopViewport     xproto.Atom
	NetFrameExtents        xproto.Atom
	NetNumberOfDesktops    xproto.Atom
	NetRequestFrameExtents xproto.Atom
	NetSupported           xproto.Atom
	NetSupportingWMCheck   xproto.Atom
	NetWMDesktop           xproto.Atom
	NetWMFullPlacement     xproto.Atom
	NetWMName              xproto.Atom
	NetWMState             xproto.Atom
	NetWMStateFullscreen   xproto.Atom
	NetWMWindowType        xproto.Atom
	NetWMWindowTypeDialog  xproto.Atom
	NetWMWindowTypeNormal  xproto.Atom
	NetWMWindowTypeSplash  xproto.Atom
	NetWorkarea            xproto.Atom

	// Remote command mailbox on the root window.
	Command xproto.Atom

	UTF8String xproto.Atom
}

// Supported lists the EWMH atoms advertised in _NET_SUPPORTED.
func (a *Atoms) Supported() []uint32 {
	atoms := []xproto.Atom{
		a.NetActiveWindow,
		a.NetClientList,
		a.NetClientListStacking,
		a.NetCloseWindow,
		a.NetCurrentDesktop,
		a.NetDesktopGeometry,
		a.NetDesktopViewport,
		a.NetFrameExtents,
		a.NetNumberOfDesktops,
		a.NetRequestFrameExtents,
		a.NetSupported,
		a.NetSupportingWMCheck,
		a.NetWMDesktop,
		a.NetWMFullPlacement,
		a.NetWMName,
		a.NetWMState,
		a.NetWMStateFullscreen,
		a.NetWMWindowType,
		a.NetWMWindowTypeDialog,
		a.NetWMWindowTypeNormal,
		a.NetWMWindowTypeSplash,
		a.NetWorkarea,
	}
	out := make([]uint32, len(atoms))
	for i, atom := range atoms {
		out[i] = uint32(atom)
	}
	return out
}

// Setup carries the root resources the adapter resolved at connect time.
type Setup struct {
	Root         xproto.Window
	CheckWindow  xproto.Window
	ScreenWidth  int
	ScreenHeight int
}
