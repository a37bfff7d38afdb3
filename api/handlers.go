// Package api serves the merge and resolution operations over HTTP.
package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/skekre98/bundlecfg/bundle"
	"github.com/skekre98/bundlecfg/config"
	"github.com/skekre98/bundlecfg/config/source"
	"github.com/skekre98/bundlecfg/overlay"
	"github.com/skekre98/bundlecfg/web"
)

// SettingsFunc returns the current settings. It is called once per request.
type SettingsFunc func() config.Settings

// MergeRequest is the body of POST /merge.
type MergeRequest struct {
	Base     map[string]any   `json:"base" binding:"required"`
	Overlays []map[string]any `json:"overlays"`

	// Profile, when set, inserts that profile's built-in fragment
	// directly after the base.
	Profile string `json:"profile" binding:"omitempty,oneof=production development"`
}

// MergeResponse is the body returned by POST /merge.
type MergeResponse struct {
	Config map[string]any `json:"config"`

	// ChangedKeys are the top-level keys whose value differs from the base.
	ChangedKeys []string `json:"changedKeys"`
}

// Handler implements the API endpoints.
type Handler struct {
	Settings SettingsFunc
	Logger   zerolog.Logger
}

// Register mounts the endpoints on r.
func (h *Handler) Register(r web.Router) {
	r.POST("/merge", h.merge)
	r.GET("/config", h.config)
	r.GET("/plan", h.plan)
}

func (h *Handler) merge(c *gin.Context) {
	var req MergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Problem(c, http.StatusBadRequest, "invalid merge request: "+err.Error())
		return
	}

	base, err := staticSource("base", req.Base)
	if err != nil {
		h.fail(c, err)
		return
	}
	extra := make([]config.ConfigSource, 0, len(req.Overlays))
	for i, o := range req.Overlays {
		src, err := staticSource(fmt.Sprintf("overlays[%d]", i), o)
		if err != nil {
			h.fail(c, err)
			return
		}
		extra = append(extra, src)
	}

	r := &overlay.Resolver{Base: base, Overlays: extra}
	if req.Profile != "" {
		if r, err = overlay.ForProfile(req.Profile, base, extra...); err != nil {
			h.fail(c, err)
			return
		}
	}
	r.Logger = h.Logger

	merged, err := r.Resolve(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	changed := config.ChangedKeys(base.Data, merged)
	if changed == nil {
		changed = []string{}
	}
	c.JSON(http.StatusOK, MergeResponse{Config: merged.ToMap(), ChangedKeys: changed})
}

// config resolves the configured base and overlays. ?format=yaml switches
// the encoding.
func (h *Handler) config(c *gin.Context) {
	format := c.DefaultQuery("format", overlay.FormatJSON)
	if format != overlay.FormatJSON && format != overlay.FormatYAML {
		web.Problem(c, http.StatusBadRequest, fmt.Sprintf("unsupported format %q", format))
		return
	}

	merged, ok := h.resolve(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := overlay.Encode(&buf, merged, format); err != nil {
		h.fail(c, err)
		return
	}
	contentType := "application/json; charset=utf-8"
	if format == overlay.FormatYAML {
		contentType = "application/yaml; charset=utf-8"
	}
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// plan reports the esbuild options the resolved configuration produces.
func (h *Handler) plan(c *gin.Context) {
	merged, ok := h.resolve(c)
	if !ok {
		return
	}

	engine := bundle.NewEngine(h.Settings().Bundle, h.Logger)
	opts, err := engine.Options(merged)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bundle.Describe(opts))
}

func (h *Handler) resolve(c *gin.Context) (config.Mapping, bool) {
	r, err := overlay.FromSettings(h.Settings().Build)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	r.Logger = h.Logger

	merged, err := r.Resolve(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return merged, true
}

// fail maps err onto a problem response. Input problems are 400; anything
// else is logged and reported as 500.
func (h *Handler) fail(c *gin.Context, err error) {
	var bindErr *config.BindError
	switch {
	case errors.Is(err, config.ErrMalformedInput),
		errors.Is(err, overlay.ErrUnknownProfile),
		errors.As(err, &bindErr):
		web.Problem(c, http.StatusBadRequest, err.Error())
	default:
		h.Logger.Error().Err(err).Str("req_id", web.RequestIDFrom(c)).Msg("request failed")
		web.Problem(c, http.StatusInternalServerError, err.Error())
	}
}

func staticSource(label string, data map[string]any) (*source.StaticSource, error) {
	m, err := config.MappingFrom(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	return &source.StaticSource{Label: label, Data: m}, nil
}
