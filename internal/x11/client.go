// Package x11 provides a small client for the X server requests needed to make
// the pointer follow window focus.
package x11

import (
	"context"
	"encoding/binary"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgbutil"
	"github.com/jezek/xgbutil/ewmh"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// Atom names
const (
	netActiveWindow = "_NET_ACTIVE_WINDOW"
)

// Event masks
const (
	maskProperty uint32 = xproto.EventMaskPropertyChange
)

// Error types
var (
	ErrConnectionDied      = errors.New("connection with X server closed")
	ErrGeometryUnavailable = errors.New("window geometry unavailable")
	errInvalidLength       = errors.New("invalid response length")
)

// Client maintains a connection with the X server. It is subscribed to
// property changes on the root window from the moment it is created.
type Client struct {
	atoms atomCache      // Atom cache
	conn  *xgb.Conn      // The X server connection
	root  xproto.Window  // Root window
	xu    *xgbutil.XUtil // EWMH helpers sharing conn
	net   xproto.Atom    // _NET_ACTIVE_WINDOW
}

// NewClient connects to the X server named by $DISPLAY and starts listening
// for property changes on the root window.
func NewClient() (*Client, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, errors.Wrap(err, "connect")
	}
	c := &Client{
		atoms: atomCache{
			conn: conn,
			data: make(map[string]xproto.Atom),
		},
		conn: conn,
		root: xproto.Setup(conn).DefaultScreen(conn).Root,
	}
	if err := c.init(); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) init() error {
	err := xproto.ChangeWindowAttributesChecked(
		c.conn,
		c.root,
		xproto.CwEventMask,
		[]uint32{maskProperty},
	).Check()
	if err != nil {
		return errors.Wrap(err, "subscribe to root window")
	}
	c.net, err = c.atoms.Get(netActiveWindow)
	if err != nil {
		return errors.Wrap(err, "get _NET_ACTIVE_WINDOW atom")
	}
	c.xu, err = xgbutil.NewConnXgb(c.conn)
	if err != nil {
		return errors.Wrap(err, "create xgbutil connection")
	}
	return nil
}

// Close closes the connection to the X server. Any running Poll goroutine
// will stop.
func (c *Client) Close() {
	c.conn.Close()
}

// GetActiveWindow returns the first value of the _NET_ACTIVE_WINDOW property
// of the root window. If the property is missing or malformed, it returns
// xproto.WindowNone and no error.
func (c *Client) GetActiveWindow() (xproto.Window, error) {
	// Some window managers publish the property as CARDINAL rather than
	// WINDOW, so accept any type.
	win, err := c.getPropertyInt(c.root, netActiveWindow, xproto.GetPropertyTypeAny)
	if err != nil {
		if err == errInvalidLength {
			return xproto.WindowNone, nil
		}
		return xproto.WindowNone, err
	}
	return xproto.Window(win), nil
}

// Pointer returns the position of the pointer relative to the root window.
func (c *Client) Pointer() (Point, error) {
	reply, err := xproto.QueryPointer(c.conn, c.root).Reply()
	if err != nil {
		return Point{}, errors.Wrap(err, "query pointer")
	}
	// Queried against the root window, so WinX/WinY are screen coordinates.
	return Point{int(reply.WinX), int(reply.WinY)}, nil
}

// ToplevelGeometry returns the geometry of the toplevel window containing
// win, which is the direct child of the root window that the window manager
// actually places. Any failure (e.g. the window was destroyed after focus
// changed) is reported as ErrGeometryUnavailable.
func (c *Client) ToplevelGeometry(win xproto.Window) (Rect, error) {
	top, err := findToplevel(win, c.root, func(w xproto.Window) (xproto.Window, error) {
		tree, err := xproto.QueryTree(c.conn, w).Reply()
		if err != nil {
			return 0, err
		}
		return tree.Parent, nil
	})
	if err != nil {
		return Rect{}, err
	}
	geo, err := xproto.GetGeometry(c.conn, xproto.Drawable(top)).Reply()
	if err != nil {
		return Rect{}, errors.Wrapf(ErrGeometryUnavailable, "get geometry of %d: %s", top, err)
	}
	// The toplevel is a direct child of root, so its position is already in
	// root coordinates.
	return Rect{int(geo.X), int(geo.Y), int(geo.Width), int(geo.Height)}, nil
}

// WarpPointer moves the pointer to the given position on the root window.
func (c *Client) WarpPointer(p Point) error {
	err := xproto.WarpPointerChecked(
		c.conn,
		xproto.WindowNone,
		c.root,
		0, 0, 0, 0,
		int16(p.X),
		int16(p.Y),
	).Check()
	return errors.Wrap(err, "warp pointer")
}

// WindowManager returns information about the running EWMH window manager.
// An error is returned if no compliant window manager is running.
func (c *Client) WindowManager() (WindowManager, error) {
	name, err := ewmh.GetEwmhWM(c.xu)
	if err != nil {
		return WindowManager{}, errors.Wrap(err, "get window manager name")
	}
	wm := WindowManager{Name: name}
	supported, err := ewmh.SupportedGet(c.xu)
	if err != nil {
		return wm, errors.Wrap(err, "get _NET_SUPPORTED")
	}
	wm.ActiveWindow = slices.Contains(supported, netActiveWindow)
	return wm, nil
}

// Poll starts listening for changes to the _NET_ACTIVE_WINDOW property in
// the background. Both channels are closed when the connection dies or ctx
// is cancelled.
func (c *Client) Poll(ctx context.Context) (<-chan FocusEvent, <-chan error) {
	ch := make(chan FocusEvent, 256)
	errch := make(chan error, 8)
	go c.poll(ctx, ch, errch)
	return ch, errch
}

// findToplevel walks up the window tree from win until it finds the ancestor
// whose parent is root.
func findToplevel(win, root xproto.Window, parent func(xproto.Window) (xproto.Window, error)) (xproto.Window, error) {
	if win == xproto.WindowNone || win == root {
		return 0, errors.Wrapf(ErrGeometryUnavailable, "window %d is not a toplevel", win)
	}
	for {
		next, err := parent(win)
		if err != nil {
			return 0, errors.Wrapf(ErrGeometryUnavailable, "query tree of %d: %s", win, err)
		}
		switch next {
		case root:
			return win, nil
		case xproto.WindowNone:
			// Only root has no parent, and win is not root.
			return 0, errors.Wrapf(ErrGeometryUnavailable, "window %d is detached", win)
		}
		win = next
	}
}

// toFocusEvent converts evt into a FocusEvent if it reports a change to the
// active window property of root. Property changes on other windows (such as
// the one xgbutil creates for itself) and other event types are ignored.
func toFocusEvent(evt xgb.Event, root xproto.Window, atom xproto.Atom) (FocusEvent, bool) {
	notify, ok := evt.(xproto.PropertyNotifyEvent)
	if !ok || notify.Window != root || notify.Atom != atom {
		return FocusEvent{}, false
	}
	return FocusEvent{notify.Time}, true
}

// getProperty retrieves a raw window property.
func (c *Client) getProperty(win xproto.Window, name string, typ xproto.Atom) ([]byte, error) {
	atom, err := c.atoms.Get(name)
	if err != nil {
		return nil, err
	}
	reply, err := xproto.GetProperty(
		c.conn,
		false,
		win,
		atom,
		typ,
		0,
		1024,
	).Reply()
	if err != nil {
		return nil, err
	}
	return reply.Value, nil
}

// getPropertyInt retrieves the first value of a 32-bit window property.
func (c *Client) getPropertyInt(win xproto.Window, name string, typ xproto.Atom) (uint32, error) {
	reply, err := c.getProperty(win, name, typ)
	if err != nil {
		return 0, err
	}
	return firstInt(reply)
}

// firstInt decodes the first 32-bit value of a property.
func firstInt(value []byte) (uint32, error) {
	if len(value) < 4 || len(value)%4 != 0 {
		return 0, errInvalidLength
	}
	return binary.LittleEndian.Uint32(value), nil
}

// poll listens for property changes in the background.
func (c *Client) poll(ctx context.Context, ch chan<- FocusEvent, errch chan<- error) {
	defer close(ch)
	defer close(errch)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		evt, err := c.conn.WaitForEvent()
		if evt == nil && err == nil {
			select {
			case errch <- ErrConnectionDied:
			case <-ctx.Done():
			}
			return
		}
		if err != nil {
			select {
			case errch <- err:
			case <-ctx.Done():
				return
			}
			continue
		}
		focus, ok := toFocusEvent(evt, c.root, c.net)
		if !ok {
			continue
		}
		select {
		case ch <- focus:
		case <-ctx.Done():
			return
		}
	}
}
