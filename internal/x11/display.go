package x11

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"

	"github.com/1broseidon/stackwm/internal/layout"
)

// This file implements the wm.Display port on raw xproto requests.
// Commands are issued unchecked: any protocol error surfaces on the
// event stream, where the dispatcher discards it. A managed window can
// be destroyed by its owner at any moment, and a BadWindow from
// operating on the corpse must never abort the manager.

// rootEventMask is the mask whose SubstructureRedirect bit grants
// exclusive management rights.
const rootEventMask = xproto.EventMaskSubstructureRedirect |
	xproto.EventMaskSubstructureNotify |
	xproto.EventMaskStructureNotify |
	xproto.EventMaskPropertyChange

// NextEvent blocks for the next event. Protocol errors are returned as
// err with a nil event; a double nil means the connection closed.
func (s *Session) NextEvent() (xgb.Event, error) {
	ev, xerr := s.xu.Conn().WaitForEvent()
	if xerr != nil {
		return nil, xerr
	}
	return ev, nil
}

// AcquireManagement claims the substructure-redirect mask on the root
// window. X grants it to at most one client; a BadAccess reply means
// another window manager is already running.
func (s *Session) AcquireManagement() error {
	err := xproto.ChangeWindowAttributesChecked(s.xu.Conn(), s.root,
		xproto.CwEventMask, []uint32{uint32(rootEventMask)}).Check()
	if err == nil {
		return nil
	}
	if _, ok := err.(xproto.AccessError); ok {
		return fmt.Errorf("another window manager is already running")
	}
	return err
}

func (s *Session) GetProp32(win xproto.Window, prop xproto.Atom) ([]uint32, error) {
	reply, err := xproto.GetProperty(s.xu.Conn(), false, win, prop,
		xproto.GetPropertyTypeAny, 0, 1<<20).Reply()
	if err != nil {
		return nil, err
	}
	if reply.Format != 32 {
		return nil, fmt.Errorf("property %d has format %d, want 32", prop, reply.Format)
	}
	values := make([]uint32, reply.ValueLen)
	for i := range values {
		values[i] = binary.LittleEndian.Uint32(reply.Value[i*4:])
	}
	return values, nil
}

func (s *Session) GetPropString(win xproto.Window, prop xproto.Atom) (string, error) {
	reply, err := xproto.GetProperty(s.xu.Conn(), false, win, prop,
		xproto.GetPropertyTypeAny, 0, 1<<20).Reply()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(reply.Value), "\x00"), nil
}

func (s *Session) SetProp32(win xproto.Window, prop, typ xproto.Atom, values ...uint32) {
	xproto.ChangeProperty(s.xu.Conn(), xproto.PropModeReplace, win, prop, typ,
		32, uint32(len(values)), pack32(values))
}

func (s *Session) AppendProp32(win xproto.Window, prop, typ xproto.Atom, values ...uint32) {
	xproto.ChangeProperty(s.xu.Conn(), xproto.PropModeAppend, win, prop, typ,
		32, uint32(len(values)), pack32(values))
}

func (s *Session) SetProp8(win xproto.Window, prop, typ xproto.Atom, data []byte) {
	xproto.ChangeProperty(s.xu.Conn(), xproto.PropModeReplace, win, prop, typ,
		8, uint32(len(data)), data)
}

func (s *Session) DeleteProp(win xproto.Window, prop xproto.Atom) {
	xproto.DeleteProperty(s.xu.Conn(), win, prop)
}

func (s *Session) Geometry(win xproto.Window) (layout.Rect, error) {
	reply, err := xproto.GetGeometry(s.xu.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return layout.Rect{}, err
	}
	return layout.Rect{
		X:      int(reply.X),
		Y:      int(reply.Y),
		Width:  int(reply.Width),
		Height: int(reply.Height),
	}, nil
}

func (s *Session) Attributes(win xproto.Window) (overrideRedirect, viewable bool, err error) {
	reply, err := xproto.GetWindowAttributes(s.xu.Conn(), win).Reply()
	if err != nil {
		return false, false, err
	}
	return reply.OverrideRedirect, reply.MapState == xproto.MapStateViewable, nil
}

func (s *Session) NormalHints(win xproto.Window) (*icccm.NormalHints, error) {
	return icccm.WmNormalHintsGet(s.xu, win)
}

func (s *Session) TransientFor(win xproto.Window) (xproto.Window, error) {
	return icccm.WmTransientForGet(s.xu, win)
}

func (s *Session) Protocols(win xproto.Window) ([]string, error) {
	return icccm.WmProtocolsGet(s.xu, win)
}

func (s *Session) QueryTree() ([]xproto.Window, error) {
	reply, err := xproto.QueryTree(s.xu.Conn(), s.root).Reply()
	if err != nil {
		return nil, err
	}
	return reply.Children, nil
}

func (s *Session) MoveResize(win xproto.Window, r layout.Rect) {
	xproto.ConfigureWindow(s.xu.Conn(), win,
		xproto.ConfigWindowX|xproto.ConfigWindowY|
			xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{
			uint32(int32(r.X)), uint32(int32(r.Y)),
			uint32(r.Width), uint32(r.Height),
		})
}

func (s *Session) Configure(win xproto.Window, mask uint16, values []uint32) {
	xproto.ConfigureWindow(s.xu.Conn(), win, mask, values)
}

// SendConfigureNotify synthesizes a notify echoing the given geometry,
// the ICCCM answer to a configure request the manager refuses to honor.
func (s *Session) SendConfigureNotify(win xproto.Window, r layout.Rect, borderWidth int) {
	ev := xproto.ConfigureNotifyEvent{
		Event:            win,
		Window:           win,
		AboveSibling:     xproto.WindowNone,
		X:                int16(r.X),
		Y:                int16(r.Y),
		Width:            uint16(r.Width),
		Height:           uint16(r.Height),
		BorderWidth:      uint16(borderWidth),
		OverrideRedirect: false,
	}
	xproto.SendEvent(s.xu.Conn(), false, win,
		xproto.EventMaskStructureNotify, string(ev.Bytes()))
}

func (s *Session) SendWMProtocol(win xproto.Window, protocol xproto.Atom) {
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   s.atoms.WMProtocols,
		Data: xproto.ClientMessageDataUnionData32New([]uint32{
			uint32(protocol), uint32(xproto.TimeCurrentTime), 0, 0, 0,
		}),
	}
	xproto.SendEvent(s.xu.Conn(), false, win,
		xproto.EventMaskNoEvent, string(ev.Bytes()))
}

func (s *Session) SetInputFocus(win xproto.Window) {
	xproto.SetInputFocus(s.xu.Conn(), xproto.InputFocusPointerRoot,
		win, xproto.TimeCurrentTime)
}

func (s *Session) SetBorderWidth(win xproto.Window, width int) {
	xproto.ConfigureWindow(s.xu.Conn(), win,
		xproto.ConfigWindowBorderWidth, []uint32{uint32(width)})
}

func (s *Session) SelectInput(win xproto.Window, mask uint32) {
	xproto.ChangeWindowAttributes(s.xu.Conn(), win,
		xproto.CwEventMask, []uint32{mask})
}

// GrabButton arms a synchronous passive grab for any button so a click
// on a client first reaches the manager, which raises and then replays.
func (s *Session) GrabButton(win xproto.Window) {
	xproto.GrabButton(s.xu.Conn(), true, win,
		uint16(xproto.EventMaskButtonPress),
		xproto.GrabModeSync, xproto.GrabModeSync,
		xproto.WindowNone, xproto.CursorNone,
		xproto.ButtonIndexAny, xproto.ModMaskAny)
}

func (s *Session) UngrabButton(win xproto.Window) {
	xproto.UngrabButton(s.xu.Conn(), xproto.ButtonIndexAny, win, xproto.ModMaskAny)
}

// AllowPointerEvents replays the frozen pointer event to the client.
func (s *Session) AllowPointerEvents() {
	xproto.AllowEvents(s.xu.Conn(), xproto.AllowReplayPointer, xproto.TimeCurrentTime)
}

func (s *Session) RaiseWindow(win xproto.Window) {
	xproto.ConfigureWindow(s.xu.Conn(), win,
		xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})
}

func (s *Session) MapWindow(win xproto.Window) {
	xproto.MapWindow(s.xu.Conn(), win)
}

func (s *Session) KillClient(win xproto.Window) {
	xproto.KillClient(s.xu.Conn(), uint32(win))
}

func (s *Session) GrabServer() {
	xproto.GrabServer(s.xu.Conn())
}

func (s *Session) UngrabServer() {
	xproto.UngrabServer(s.xu.Conn())
}

// Sync performs a round trip, forcing every outstanding request to be
// processed before it returns.
func (s *Session) Sync() {
	s.xu.Sync()
}

// pack32 serializes 32-bit property values in the connection's byte
// order (xgb always sets up little-endian).
func pack32(values []uint32) []byte {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	return buf
}
