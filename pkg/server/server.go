// Package server exposes a style registry over HTTP: inserting
// definitions, serving sheet CSS, rendering components and the live rule
// stream.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/recera/rulesheet/pkg/components"
	"github.com/recera/rulesheet/pkg/live"
	"github.com/recera/rulesheet/pkg/styling"
	"github.com/recera/rulesheet/pkg/vdom"
	"github.com/rs/zerolog"
)

const maxBodySize = 1 << 20

var validate = validator.New()

// InsertRequest is the body of POST /styles/insert
type InsertRequest struct {
	Sheet       string       `json:"sheet"`
	RTL         bool         `json:"rtl"`
	Definitions []SlotRecord `json:"definitions" validate:"required,dive"`
}

// SlotRecord is one slot of an InsertRequest. Def is the positional
// definition tuple [class, css, rtlClass, rtlCss].
type SlotRecord struct {
	Slot string   `json:"slot" validate:"required"`
	Def  []string `json:"def" validate:"min=1,max=4"`
}

// InsertResponse is returned by POST /styles/insert
type InsertResponse struct {
	Classes string `json:"classes"`
	Sheet   string `json:"sheet"`
	Index   int    `json:"index"`
}

// SheetInfo describes one sheet in GET /styles
type SheetInfo struct {
	Name   string `json:"name"`
	Rules  int    `json:"rules"`
	Index  int    `json:"index"`
	Closed bool   `json:"closed"`
}

// Server serves a registry over HTTP
type Server struct {
	*Router
	reg  *styling.Registry
	live *live.Server
}

// New creates the HTTP surface for reg. A nil live server disables the
// /live endpoint.
func New(reg *styling.Registry, liveServer *live.Server, log zerolog.Logger) *Server {
	s := &Server{
		Router: NewRouter(log),
		reg:    reg,
		live:   liveServer,
	}

	s.Use(requestLogger{})

	s.HandleAPI(http.MethodGet, "/healthz", s.health)
	s.HandleAPI(http.MethodGet, "/stats", s.stats)
	s.HandleAPI(http.MethodGet, "/styles", s.listSheets)
	s.HandleAPI(http.MethodPost, "/styles/insert", s.insert)
	s.Handle(http.MethodGet, "/styles/[file]", s.sheetCSS)
	s.Handle(http.MethodGet, "/components/[name]", s.component)
	s.Handle(http.MethodGet, "/live/[sheet]", s.liveStream)

	return s
}

func (s *Server) health(Ctx) (any, error) {
	return map[string]string{"status": "ok"}, nil
}

func (s *Server) stats(Ctx) (any, error) {
	return map[string]any{
		"registry": s.reg.Stats(),
		"cached":   s.reg.CachedClasses(),
	}, nil
}

func (s *Server) listSheets(Ctx) (any, error) {
	names := s.reg.Sheets()
	out := make([]SheetInfo, 0, len(names))
	for _, name := range names {
		sheet, ok := s.reg.Lookup(name)
		if !ok {
			continue
		}
		out = append(out, SheetInfo{
			Name:   name,
			Rules:  sheet.Len(),
			Index:  sheet.Index(),
			Closed: sheet.Closed(),
		})
	}
	return out, nil
}

func (s *Server) insert(ctx Ctx) (any, error) {
	var req InsertRequest
	body := http.MaxBytesReader(ctx.ResponseWriter(), ctx.Request().Body, maxBodySize)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, Errorf(http.StatusBadRequest, "invalid request body: %v", err)
	}
	if err := validate.Struct(req); err != nil {
		return nil, Errorf(http.StatusBadRequest, "invalid request: %v", err)
	}

	defs := &styling.Definitions{}
	for _, rec := range req.Definitions {
		defs.Set(rec.Slot, styling.Tuple(rec.Def...))
	}

	sheet := s.reg.Sheet(req.Sheet)
	classes, err := s.reg.InsertStyles(defs, req.RTL, sheet)
	if err != nil {
		return nil, &HTTPError{Code: insertStatus(err), Err: err}
	}

	return InsertResponse{Classes: classes, Sheet: sheet.Name(), Index: sheet.Index()}, nil
}

func insertStatus(err error) int {
	switch {
	case errors.Is(err, styling.ErrMalformedRule), errors.Is(err, styling.ErrIndexSize):
		return http.StatusUnprocessableEntity
	case errors.Is(err, styling.ErrSheetClosed):
		return http.StatusGone
	case errors.Is(err, styling.ErrCacheFull):
		return http.StatusInsufficientStorage
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) sheetCSS(ctx Ctx) (*vdom.VNode, error) {
	name, ok := strings.CutSuffix(ctx.Param("file"), ".css")
	if !ok {
		return nil, Errorf(http.StatusNotFound, "not a stylesheet: %s", ctx.Param("file"))
	}
	sheet, ok := s.reg.Lookup(name)
	if !ok {
		return nil, Errorf(http.StatusNotFound, "no sheet %q", name)
	}

	ctx.SetHeader("Cache-Control", "no-cache")
	ctx.SetHeader("X-Rule-Index", strconv.Itoa(sheet.Index()))
	return nil, ctx.Write(http.StatusOK, "text/css; charset=utf-8", []byte(sheet.CSS()))
}

// component renders a component from query props. page=true wraps it in a
// document carrying the sheet's <style> element.
func (s *Server) component(ctx Ctx) (*vdom.VNode, error) {
	q := ctx.Query()
	rtl, _ := strconv.ParseBool(q.Get("rtl"))
	sheet, ok := s.reg.Lookup(q.Get("sheet"))
	if !ok {
		return nil, Errorf(http.StatusNotFound, "no sheet %q", q.Get("sheet"))
	}

	node, err := components.ByName(components.Context{
		Registry: s.reg,
		RTL:      rtl,
		Sheet:    sheet,
	}, ctx.Param("name"), q)
	if err != nil {
		if errors.Is(err, components.ErrUnknownComponent) {
			return nil, Errorf(http.StatusNotFound, "%v", err)
		}
		return nil, &HTTPError{Code: insertStatus(err), Err: err}
	}

	if page, _ := strconv.ParseBool(q.Get("page")); !page {
		return node, nil
	}

	dir := "ltr"
	if rtl {
		dir = "rtl"
	}
	return vdom.NewElement("html", vdom.Props{"dir": dir},
		vdom.NewElement("head", nil, sheet.Node()),
		vdom.NewElement("body", nil, node),
	), nil
}

func (s *Server) liveStream(ctx Ctx) (*vdom.VNode, error) {
	if s.live == nil {
		return nil, Errorf(http.StatusNotFound, "live updates disabled")
	}
	s.live.Serve(ctx.ResponseWriter(), ctx.Request(), ctx.Param("sheet"))
	return nil, nil
}

// requestLogger logs each request once its handler has run
type requestLogger struct{}

func (requestLogger) Before(Ctx) error { return nil }

func (requestLogger) After(ctx Ctx) error {
	ctx.Logger().Debug().Int("status", ctx.StatusCode()).Msg("request")
	return nil
}
