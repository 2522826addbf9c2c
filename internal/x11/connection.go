package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xcursor"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/stackwm/internal/wm"
)

// commandProperty is the root-window mailbox used for remote control.
const commandProperty = "STACKWM_CMD"

// Session manages the X11 connection and the core X resources: the
// root window, the interned atoms and the supporting-check window. It
// implements the wm.Display port.
type Session struct {
	xu    *xgbutil.XUtil
	root  xproto.Window
	atoms *wm.Atoms

	checkWin     xproto.Window
	screenWidth  int
	screenHeight int
}

// Connect establishes a connection to the X server and interns every
// atom the manager uses. It performs no management: the same session
// backs both a running manager and a one-shot remote command send.
func Connect() (*Session, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X display: %w", err)
	}

	s := &Session{
		xu:   xu,
		root: xu.RootWin(),
	}
	screen := xu.Screen()
	s.screenWidth = int(screen.WidthInPixels)
	s.screenHeight = int(screen.HeightInPixels)

	if s.atoms, err = internAtoms(xu); err != nil {
		xu.Conn().Close()
		return nil, err
	}
	return s, nil
}

// Close disconnects from the X server.
func (s *Session) Close() {
	s.xu.Conn().Close()
}

// Atoms returns the interned identifiers.
func (s *Session) Atoms() *wm.Atoms { return s.atoms }

// Setup returns the root resources resolved at connect time. Prepare
// must have been called for the check window to be valid.
func (s *Session) Setup() wm.Setup {
	return wm.Setup{
		Root:         s.root,
		CheckWindow:  s.checkWin,
		ScreenWidth:  s.screenWidth,
		ScreenHeight: s.screenHeight,
	}
}

// Prepare creates the supporting-check window and installs the default
// root cursor. Called once before the manager starts; skipped entirely
// in remote-command mode.
func (s *Session) Prepare() error {
	cw, err := xwindow.Generate(s.xu)
	if err != nil {
		return fmt.Errorf("failed to allocate supporting-check window id: %w", err)
	}
	if err := cw.CreateChecked(s.root, 0, 0, 1, 1, 0); err != nil {
		return fmt.Errorf("failed to create supporting-check window: %w", err)
	}
	s.checkWin = cw.Id

	// A missing cursor theme is not worth failing startup over.
	if cursor, err := xcursor.CreateCursor(s.xu, xcursor.LeftPtr); err == nil {
		xproto.ChangeWindowAttributes(s.xu.Conn(), s.root,
			xproto.CwCursor, []uint32{uint32(cursor)})
	}
	return nil
}

// SendCommand writes a token into the remote-command mailbox on the
// root window and flushes it to the server. A manager instance, if one
// is running, observes the property change and executes the command.
func (s *Session) SendCommand(token string) error {
	err := xprop.ChangeProp(s.xu, s.root, 8, commandProperty, "STRING", []byte(token))
	if err != nil {
		return fmt.Errorf("failed to send command %q: %w", token, err)
	}
	s.xu.Sync()
	return nil
}

// internAtoms resolves every identifier in wm.Atoms in one pass.
func internAtoms(xu *xgbutil.XUtil) (*wm.Atoms, error) {
	a := &wm.Atoms{}
	for _, entry := range []struct {
		name string
		dst  *xproto.Atom
	}{
		{"WM_PROTOCOLS", &a.WMProtocols},
		{"WM_DELETE_WINDOW", &a.WMDeleteWindow},
		{"WM_STATE", &a.WMState},
		{"WM_TAKE_FOCUS", &a.WMTakeFocus},
		{"_NET_ACTIVE_WINDOW", &a.NetActiveWindow},
		{"_NET_CLIENT_LIST", &a.NetClientList},
		{"_NET_CLIENT_LIST_STACKING", &a.NetClientListStacking},
		{"_NET_CLOSE_WINDOW", &a.NetCloseWindow},
		{"_NET_CURRENT_DESKTOP", &a.NetCurrentDesktop},
		{"_NET_DESKTOP_GEOMETRY", &a.NetDesktopGeometry},
		{"_NET_DESKTOP_VIEWPORT", &a.NetDesktopViewport},
		{"_NET_FRAME_EXTENTS", &a.NetFrameExtents},
		{"_NET_NUMBER_OF_DESKTOPS", &a.NetNumberOfDesktops},
		{"_NET_REQUEST_FRAME_EXTENTS", &a.NetRequestFrameExtents},
		{"_NET_SUPPORTED", &a.NetSupported},
		{"_NET_SUPPORTING_WM_CHECK", &a.NetSupportingWMCheck},
		{"_NET_WM_DESKTOP", &a.NetWMDesktop},
		{"_NET_WM_FULL_PLACEMENT", &a.NetWMFullPlacement},
		{"_NET_WM_NAME", &a.NetWMName},
		{"_NET_WM_STATE", &a.NetWMState},
		{"_NET_WM_STATE_FULLSCREEN", &a.NetWMStateFullscreen},
		{"_NET_WM_WINDOW_TYPE", &a.NetWMWindowType},
		{"_NET_WM_WINDOW_TYPE_DIALOG", &a.NetWMWindowTypeDialog},
		{"_NET_WM_WINDOW_TYPE_NORMAL", &a.NetWMWindowTypeNormal},
		{"_NET_WM_WINDOW_TYPE_SPLASH", &a.NetWMWindowTypeSplash},
		{"_NET_WORKAREA", &a.NetWorkarea},
		{commandProperty, &a.Command},
		{"UTF8_STRING", &a.UTF8String},
	} {
		atom, err := xprop.Atm(xu, entry.name)
		if err != nil {
			return nil, fmt.Errorf("failed to intern atom %s: %w", entry.name, err)
		}
		*entry.dst = atom
	}
	return a, nil
}
