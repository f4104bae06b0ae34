package hub

// Handler processes one inbound frame type. Handlers run on the connection's
// reader goroutine, so frames from one connection are handled strictly in
// arrival order.
type Handler interface {
	Type() string
	Handle(ctx *Context, f *Frame, c *Client) error
}

type Context struct {
	S *Server
}

type Dispatcher struct {
	handlers map[string]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]Handler)}
}

func (d *Dispatcher) Register(h Handler) { d.handlers[h.Type()] = h }

func (d *Dispatcher) Dispatch(ctx *Context, f *Frame, c *Client) error {
	h, ok := d.handlers[f.Type]
	if !ok {
		return errsUnknown(f.Type)
	}
	return h.Handle(ctx, f, c)
}

func (d *Dispatcher) GetHandler(frameType string) Handler {
	return d.handlers[frameType]
}
