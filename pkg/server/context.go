package server

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
)

// Ctx is passed through middleware and handlers
type Ctx interface {
	Request() *http.Request
	Path() string
	Method() string
	Query() url.Values
	Param(key string) string // route param, panics if missing

	Status(code int)
	StatusCode() int
	SetHeader(key, val string)
	ResponseWriter() http.ResponseWriter
	JSON(code int, v any) error
	Text(code int, msg string) error
	Write(code int, contentType string, body []byte) error

	Logger() *zerolog.Logger
}

// ctxImpl is the Ctx for one request
type ctxImpl struct {
	req           *http.Request
	w             http.ResponseWriter
	params        map[string]string
	statusCode    int
	headerWritten bool
	logger        zerolog.Logger
}

func newContext(w http.ResponseWriter, r *http.Request, log zerolog.Logger) *ctxImpl {
	return &ctxImpl{
		req:        r,
		w:          w,
		params:     make(map[string]string),
		statusCode: http.StatusOK,
		logger:     log.With().Str("method", r.Method).Str("path", r.URL.Path).Logger(),
	}
}

func (c *ctxImpl) Request() *http.Request { return c.req }

func (c *ctxImpl) Path() string { return c.req.URL.Path }

func (c *ctxImpl) Method() string { return c.req.Method }

func (c *ctxImpl) Query() url.Values { return c.req.URL.Query() }

func (c *ctxImpl) Param(key string) string {
	val, ok := c.params[key]
	if !ok {
		panic("route parameter '" + key + "' not found")
	}
	return val
}

func (c *ctxImpl) Status(code int) {
	if c.headerWritten {
		c.logger.Warn().Int("code", code).Msg("attempted to set status after headers written")
		return
	}
	c.statusCode = code
}

func (c *ctxImpl) StatusCode() int { return c.statusCode }

func (c *ctxImpl) SetHeader(key, val string) { c.w.Header().Set(key, val) }

// ResponseWriter returns the underlying writer. Writes through it bypass
// the status tracking of Ctx.
func (c *ctxImpl) ResponseWriter() http.ResponseWriter { return c.w }

func (c *ctxImpl) JSON(code int, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Write(code, "application/json", append(data, '\n'))
}

func (c *ctxImpl) Text(code int, msg string) error {
	return c.Write(code, "text/plain; charset=utf-8", []byte(msg))
}

func (c *ctxImpl) Write(code int, contentType string, body []byte) error {
	if c.headerWritten {
		c.logger.Warn().Int("code", code).Msg("response already written")
		return nil
	}
	c.statusCode = code
	c.headerWritten = true

	c.w.Header().Set("Content-Type", contentType)
	c.w.WriteHeader(code)
	_, err := c.w.Write(body)
	return err
}

func (c *ctxImpl) Logger() *zerolog.Logger { return &c.logger }
