//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// readTimeout bounds how long a paste waits for the selection owner.
const readTimeout = 2 * time.Second

var (
	initOnce sync.Once
	initErr  error
	owner    *x11Owner
)

func ensureInit() error {
	initOnce.Do(func() {
		if !hasDisplay() {
			initErr = ErrNoDisplay
			return
		}
		o, err := newX11Owner()
		if err != nil {
			initErr = fmt.Errorf("connect to X server: %w", err)
			return
		}
		owner = o
	})
	return initErr
}

// WriteImage publishes img to the CLIPBOARD selection as image/png.
func WriteImage(img image.Image) error {
	if err := ensureInit(); err != nil {
		return err
	}
	data, err := encode(img)
	if err != nil {
		return err
	}
	return owner.publish(data)
}

// ReadImage asks the current CLIPBOARD owner for image/png.
func ReadImage() (image.Image, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	data, err := owner.fetch(readTimeout)
	if err != nil {
		return nil, err
	}
	return decode(data)
}

type atoms struct {
	clipboard xproto.Atom
	targets   xproto.Atom
	png       xproto.Atom
	property  xproto.Atom
}

// x11Owner holds an invisible window that owns the CLIPBOARD selection while
// a meme is published, and answers conversion requests for it.
type x11Owner struct {
	conn   *xgb.Conn
	window xproto.Window
	atoms  atoms

	mu   sync.RWMutex
	data []byte
}

func newX11Owner() (*x11Owner, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	screen := xproto.Setup(conn).DefaultScreen(conn)
	window, err := xproto.NewWindowId(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	mask := []uint32{xproto.EventMaskPropertyChange | xproto.EventMaskStructureNotify}
	if err := xproto.CreateWindowChecked(conn, screen.RootDepth, window, screen.Root,
		0, 0, 1, 1, 0, xproto.WindowClassInputOutput, screen.RootVisual, xproto.CwEventMask, mask).Check(); err != nil {
		conn.Close()
		return nil, err
	}
	a, err := internAtoms(conn)
	if err != nil {
		xproto.DestroyWindow(conn, window)
		conn.Close()
		return nil, err
	}
	o := &x11Owner{conn: conn, window: window, atoms: a}
	go o.serve()
	return o, nil
}

func internAtoms(conn *xgb.Conn) (atoms, error) {
	names := []string{"CLIPBOARD", "TARGETS", "image/png", "MEMECANVAS_CLIPBOARD"}
	ids := make([]xproto.Atom, len(names))
	for i, name := range names {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			return atoms{}, fmt.Errorf("intern %s: %w", name, err)
		}
		ids[i] = reply.Atom
	}
	return atoms{clipboard: ids[0], targets: ids[1], png: ids[2], property: ids[3]}, nil
}

func (o *x11Owner) publish(data []byte) error {
	o.mu.Lock()
	o.data = append([]byte(nil), data...)
	o.mu.Unlock()
	return xproto.SetSelectionOwnerChecked(o.conn, o.window, o.atoms.clipboard, xproto.TimeCurrentTime).Check()
}

func (o *x11Owner) serve() {
	for {
		ev, err := o.conn.WaitForEvent()
		if err != nil {
			return
		}
		switch e := ev.(type) {
		case xproto.SelectionRequestEvent:
			o.answer(e)
		case xproto.SelectionClearEvent:
			o.mu.Lock()
			o.data = nil
			o.mu.Unlock()
		}
	}
}

// answer replies to a conversion request with TARGETS or the PNG bytes and
// refuses anything else.
func (o *x11Owner) answer(e xproto.SelectionRequestEvent) {
	property := e.Property
	if property == xproto.AtomNone {
		property = e.Target
	}
	o.mu.RLock()
	data := o.data
	o.mu.RUnlock()

	switch {
	case e.Target == o.atoms.targets:
		list := []xproto.Atom{o.atoms.targets}
		if len(data) > 0 {
			list = append(list, o.atoms.png)
		}
		buf := make([]byte, 4*len(list))
		for i, a := range list {
			xgb.Put32(buf[4*i:], uint32(a))
		}
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, property, xproto.AtomAtom, 32, uint32(len(list)), buf)
	case e.Target == o.atoms.png && len(data) > 0:
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, property, o.atoms.png, 8, uint32(len(data)), data)
	default:
		property = xproto.AtomNone
	}

	reply := xproto.SelectionNotifyEvent{
		Time:      e.Time,
		Requestor: e.Requestor,
		Selection: e.Selection,
		Target:    e.Target,
		Property:  property,
	}
	xproto.SendEvent(o.conn, false, e.Requestor, 0, string(reply.Bytes()))
}

// fetch converts the CLIPBOARD selection to image/png on a private
// connection, so it also works while this process owns the selection.
func (o *x11Owner) fetch(timeout time.Duration) ([]byte, error) {
	o.mu.RLock()
	local := o.data
	o.mu.RUnlock()
	if len(local) > 0 {
		return append([]byte(nil), local...), nil
	}

	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	screen := xproto.Setup(conn).DefaultScreen(conn)
	window, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, err
	}
	if err := xproto.CreateWindowChecked(conn, 0, window, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOnly, 0, xproto.CwEventMask, []uint32{xproto.EventMaskPropertyChange}).Check(); err != nil {
		return nil, err
	}
	defer xproto.DestroyWindow(conn, window)

	if err := xproto.ConvertSelectionChecked(conn, window, o.atoms.clipboard, o.atoms.png, o.atoms.property, xproto.TimeCurrentTime).Check(); err != nil {
		return nil, err
	}

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		for {
			ev, err := conn.WaitForEvent()
			if err != nil {
				done <- result{err: err}
				return
			}
			e, ok := ev.(xproto.SelectionNotifyEvent)
			if !ok {
				continue
			}
			if e.Property == xproto.AtomNone {
				done <- result{err: ErrNoImage}
				return
			}
			reply, perr := xproto.GetProperty(conn, true, window, e.Property, xproto.GetPropertyTypeAny, 0, (1<<31)-1).Reply()
			if perr != nil {
				done <- result{err: perr}
				return
			}
			done <- result{data: append([]byte(nil), reply.Value...)}
			return
		}
	}()

	select {
	case r := <-done:
		return r.data, r.err
	case <-time.After(timeout):
		return nil, fmt.Errorf("clipboard owner did not respond within %s", timeout)
	}
}
