package addressfields

import "net/http"

// Component is a small, extraction-friendly wrapper around the address field
// handlers, their configuration, and routing helpers.
type Component struct {
	opts Options
}

// New constructs a new component with default options plus any overrides.
func New(fns ...OptionFn) *Component {
	opts := NewOptions(fns...)
	return &Component{opts: opts}
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return DefaultOptions()
	}
	return NewOptions(func(o *Options) { *o = c.opts })
}

// Handler returns a net/http handler for address field queries.
func (c *Component) Handler() http.Handler {
	if c == nil {
		return Handler()
	}
	return HandlerWithOptions(c.opts)
}

// ZonesHandler returns a net/http handler for zone option queries.
func (c *Component) ZonesHandler() http.Handler {
	if c == nil {
		return ZonesHandler()
	}
	return ZonesHandlerWithOptions(c.opts)
}

// RegisterRoutes registers the component handlers under basePath on mux.
func (c *Component) RegisterRoutes(mux Mux, basePath string) (string, error) {
	if c == nil {
		return RegisterRoutes(mux, basePath)
	}
	return RegisterRoutesWithOptions(mux, basePath, c.opts)
}

// ZonesEndpoint describes the zones route for country under basePath.
func (c *Component) ZonesEndpoint(basePath, country, locale string) Endpoint {
	opts := c.Options()
	return ZonesEndpoint(basePath, country, locale, func(o *Options) { *o = opts })
}
