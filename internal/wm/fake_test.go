package wm

import (
	"errors"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"

	"github.com/1broseidon/stackwm/internal/config"
	"github.com/1broseidon/stackwm/internal/layout"
)

// fakeDisplay implements the Display port in memory so handler behavior
// can be exercised without an X server. It records every command so
// tests can assert on the exact protocol traffic.

var errNoProp = errors.New("no such property")

type propKey struct {
	win  xproto.Window
	prop xproto.Atom
}

type protoMsg struct {
	win      xproto.Window
	protocol xproto.Atom
}

type echoMsg struct {
	win         xproto.Window
	rect        layout.Rect
	borderWidth int
}

type configureCall struct {
	win    xproto.Window
	mask   uint16
	values []uint32
}

type fakeAttrs struct {
	override bool
	viewable bool
}

type fakeDisplay struct {
	acquireErr error

	props    map[propKey][]uint32
	strProps map[propKey]string

	geoms     map[xproto.Window]layout.Rect
	attrs     map[xproto.Window]fakeAttrs
	hints     map[xproto.Window]*icccm.NormalHints
	transient map[xproto.Window]xproto.Window
	protocols map[xproto.Window][]string
	tree      []xproto.Window

	moved      map[xproto.Window]layout.Rect
	moves      int
	focused    []xproto.Window
	raised     []xproto.Window
	mapped     []xproto.Window
	killed     []xproto.Window
	sent       []protoMsg
	echoes     []echoMsg
	configured []configureCall
	selected   map[xproto.Window]uint32
	grabbed    []xproto.Window
	ungrabbed  []xproto.Window
	borders    map[xproto.Window]int
	allowed    int

	serverGrabs   int
	serverUngrabs int
	syncs         int
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{
		props:     make(map[propKey][]uint32),
		strProps:  make(map[propKey]string),
		geoms:     make(map[xproto.Window]layout.Rect),
		attrs:     make(map[xproto.Window]fakeAttrs),
		hints:     make(map[xproto.Window]*icccm.NormalHints),
		transient: make(map[xproto.Window]xproto.Window),
		protocols: make(map[xproto.Window][]string),
		moved:     make(map[xproto.Window]layout.Rect),
		selected:  make(map[xproto.Window]uint32),
		borders:   make(map[xproto.Window]int),
	}
}

func (f *fakeDisplay) NextEvent() (xgb.Event, error) { return nil, nil }

func (f *fakeDisplay) AcquireManagement() error { return f.acquireErr }

func (f *fakeDisplay) GetProp32(win xproto.Window, prop xproto.Atom) ([]uint32, error) {
	vals, ok := f.props[propKey{win, prop}]
	if !ok {
		return nil, errNoProp
	}
	return vals, nil
}

func (f *fakeDisplay) GetPropString(win xproto.Window, prop xproto.Atom) (string, error) {
	s, ok := f.strProps[propKey{win, prop}]
	if !ok {
		return "", errNoProp
	}
	return s, nil
}

func (f *fakeDisplay) SetProp32(win xproto.Window, prop, typ xproto.Atom, values ...uint32) {
	f.props[propKey{win, prop}] = append([]uint32(nil), values...)
}

func (f *fakeDisplay) AppendProp32(win xproto.Window, prop, typ xproto.Atom, values ...uint32) {
	key := propKey{win, prop}
	f.props[key] = append(f.props[key], values...)
}

func (f *fakeDisplay) SetProp8(win xproto.Window, prop, typ xproto.Atom, data []byte) {
	f.strProps[propKey{win, prop}] = string(data)
}

func (f *fakeDisplay) DeleteProp(win xproto.Window, prop xproto.Atom) {
	delete(f.props, propKey{win, prop})
	delete(f.strProps, propKey{win, prop})
}

func (f *fakeDisplay) Geometry(win xproto.Window) (layout.Rect, error) {
	r, ok := f.geoms[win]
	if !ok {
		return layout.Rect{}, errNoProp
	}
	return r, nil
}

func (f *fakeDisplay) Attributes(win xproto.Window) (bool, bool, error) {
	a, ok := f.attrs[win]
	if !ok {
		return false, false, errNoProp
	}
	return a.override, a.viewable, nil
}

func (f *fakeDisplay) NormalHints(win xproto.Window) (*icccm.NormalHints, error) {
	h, ok := f.hints[win]
	if !ok {
		return nil, errNoProp
	}
	return h, nil
}

func (f *fakeDisplay) TransientFor(win xproto.Window) (xproto.Window, error) {
	t, ok := f.transient[win]
	if !ok {
		return 0, errNoProp
	}
	return t, nil
}

func (f *fakeDisplay) Protocols(win xproto.Window) ([]string, error) {
	p, ok := f.protocols[win]
	if !ok {
		return nil, errNoProp
	}
	return p, nil
}

func (f *fakeDisplay) QueryTree() ([]xproto.Window, error) {
	return f.tree, nil
}

func (f *fakeDisplay) MoveResize(win xproto.Window, r layout.Rect) {
	f.moved[win] = r
	f.moves++
}

func (f *fakeDisplay) Configure(win xproto.Window, mask uint16, values []uint32) {
	f.configured = append(f.configured, configureCall{win, mask, values})
}

func (f *fakeDisplay) SendConfigureNotify(win xproto.Window, r layout.Rect, borderWidth int) {
	f.echoes = append(f.echoes, echoMsg{win, r, borderWidth})
}

func (f *fakeDisplay) SendWMProtocol(win xproto.Window, protocol xproto.Atom) {
	f.sent = append(f.sent, protoMsg{win, protocol})
}

func (f *fakeDisplay) SetInputFocus(win xproto.Window) {
	f.focused = append(f.focused, win)
}

func (f *fakeDisplay) SetBorderWidth(win xproto.Window, width int) {
	f.borders[win] = width
}

func (f *fakeDisplay) SelectInput(win xproto.Window, mask uint32) {
	f.selected[win] = mask
}

func (f *fakeDisplay) GrabButton(win xproto.Window) {
	f.grabbed = append(f.grabbed, win)
}

func (f *fakeDisplay) UngrabButton(win xproto.Window) {
	f.ungrabbed = append(f.ungrabbed, win)
}

func (f *fakeDisplay) AllowPointerEvents() { f.allowed++ }

func (f *fakeDisplay) RaiseWindow(win xproto.Window) {
	f.raised = append(f.raised, win)
}

func (f *fakeDisplay) MapWindow(win xproto.Window) {
	f.mapped = append(f.mapped, win)
}

func (f *fakeDisplay) KillClient(win xproto.Window) {
	f.killed = append(f.killed, win)
}

func (f *fakeDisplay) GrabServer()   { f.serverGrabs++ }
func (f *fakeDisplay) Sync()         { f.syncs++ }
func (f *fakeDisplay) UngrabServer() { f.serverUngrabs++ }

func (f *fakeDisplay) lastFocus() xproto.Window {
	if len(f.focused) == 0 {
		return 0
	}
	return f.focused[len(f.focused)-1]
}

// testAtoms assigns distinct arbitrary identifiers; values only have to
// be unique, as interned atoms are.
func testAtoms() *Atoms {
	a := &Atoms{}
	next := xproto.Atom(100)
	for _, dst := range []*xproto.Atom{
		&a.WMProtocols, &a.WMDeleteWindow, &a.WMState, &a.WMTakeFocus,
		&a.NetActiveWindow, &a.NetClientList, &a.NetClientListStacking,
		&a.NetCloseWindow, &a.NetCurrentDesktop, &a.NetDesktopGeometry,
		&a.NetDesktopViewport, &a.NetFrameExtents, &a.NetNumberOfDesktops,
		&a.NetRequestFrameExtents, &a.NetSupported, &a.NetSupportingWMCheck,
		&a.NetWMDesktop, &a.NetWMFullPlacement, &a.NetWMName,
		&a.NetWMState, &a.NetWMStateFullscreen, &a.NetWMWindowType,
		&a.NetWMWindowTypeDialog, &a.NetWMWindowTypeNormal,
		&a.NetWMWindowTypeSplash, &a.NetWorkarea,
		&a.Command, &a.UTF8String,
	} {
		*dst = next
		next++
	}
	return a
}

const (
	testRoot  = xproto.Window(1)
	testCheck = xproto.Window(2)
)

func newTestManager(f *fakeDisplay) *Manager {
	cfg := config.DefaultConfig()
	return New(f, testAtoms(), Setup{
		Root:         testRoot,
		CheckWindow:  testCheck,
		ScreenWidth:  1920,
		ScreenHeight: 1080,
	}, cfg)
}

// addWindow seeds the fake with a plain resizable normal window.
func (f *fakeDisplay) addWindow(win xproto.Window, w, h int) {
	f.geoms[win] = layout.Rect{X: 0, Y: 0, Width: w, Height: h}
}

// addFixedWindow seeds a window whose hints pin it to a single size.
func (f *fakeDisplay) addFixedWindow(win xproto.Window, w, h int) {
	f.addWindow(win, w, h)
	f.hints[win] = &icccm.NormalHints{
		Flags:    icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize,
		MinWidth: uint(w), MinHeight: uint(h),
		MaxWidth: uint(w), MaxHeight: uint(h),
	}
}
