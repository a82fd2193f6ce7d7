package restserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/chrissnell/pvestimate/internal/log"
	"github.com/chrissnell/pvestimate/pkg/responseformat"
	"github.com/chrissnell/pvestimate/pkg/solar"
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(ctrl.restConfig.EnableCORS),
	}
}

// PostSolarEstimate estimates the yield for a JSON request body
func (h *Handlers) PostSolarEstimate(w http.ResponseWriter, req *http.Request) {
	req.Body = http.MaxBytesReader(w, req.Body, maxBodyBytes)

	var body EstimateRequest
	dec := json.NewDecoder(req.Body)
	if err := dec.Decode(&body); err != nil {
		h.badBody(w, req, err)
		return
	}
	if _, err := dec.Token(); err != io.EOF {
		h.writeError(w, req, http.StatusBadRequest, "request body must contain a single JSON object", nil)
		return
	}

	h.estimate(w, req, body)
}

// GetSolarEstimate estimates the yield for query parameters
func (h *Handlers) GetSolarEstimate(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	fields := map[string]string{}

	number := func(name string) *float64 {
		s := strings.TrimSpace(q.Get(name))
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			fields[name] = "must be a number, got " + strconv.Quote(s)
			return nil
		}
		return &v
	}

	body := EstimateRequest{
		Latitude:      number(solar.FieldLatitude),
		Longitude:     number(solar.FieldLongitude),
		SystemKWp:     number(solar.FieldSystemKWp),
		RoofTiltDeg:   number(solar.FieldRoofTiltDeg),
		RoofAspectDeg: number(solar.FieldRoofAspectDeg),
	}
	if q.Has(solar.FieldShadingLevel) {
		s := q.Get(solar.FieldShadingLevel)
		body.ShadingLevel = &s
	}

	if len(fields) > 0 {
		h.writeError(w, req, http.StatusBadRequest, "malformed query parameters", fields)
		return
	}

	h.estimate(w, req, body)
}

func (h *Handlers) estimate(w http.ResponseWriter, req *http.Request, body EstimateRequest) {
	missing := map[string]string{}
	lat, lon := 0.0, 0.0
	if body.Latitude == nil {
		missing[solar.FieldLatitude] = "is required"
	} else {
		lat = *body.Latitude
	}
	if body.Longitude == nil {
		missing[solar.FieldLongitude] = "is required"
	} else {
		lon = *body.Longitude
	}

	// without coordinates there is nothing to estimate, only fields to report
	var (
		estimate solar.Estimate
		err      error
	)
	if len(missing) > 0 {
		err = solar.Validate(lat, lon, body.rawConfig())
	} else {
		estimate, err = h.controller.estimator.CalculateCoordinates(lat, lon, body.rawConfig())
	}

	var invalid *solar.InvalidConfigError
	switch {
	case errors.As(err, &invalid) || len(missing) > 0:
		fields := map[string]string{}
		if invalid != nil {
			fields = invalid.FieldMap()
		}
		for k, v := range missing {
			fields[k] = v
		}
		log.Debugw("rejected estimate request", "fields", fields, "request_id", log.RequestID(req.Context()))
		h.writeError(w, req, http.StatusUnprocessableEntity, "invalid solar configuration", fields)
	case err != nil:
		log.Errorf("error calculating estimate: %v", err)
		h.writeError(w, req, http.StatusInternalServerError, "internal error", nil)
	default:
		if err := h.formatter.WriteResponse(w, req, http.StatusOK, estimate); err != nil {
			log.Errorf("error writing estimate response: %v", err)
		}
	}
}

// badBody maps a JSON decoding failure to a 400 response
func (h *Handlers) badBody(w http.ResponseWriter, req *http.Request, err error) {
	var (
		typeErr  *json.UnmarshalTypeError
		maxBytes *http.MaxBytesError
	)
	switch {
	case errors.As(err, &maxBytes):
		h.writeError(w, req, http.StatusRequestEntityTooLarge, "request body too large", nil)
	case errors.As(err, &typeErr) && typeErr.Field != "":
		h.writeError(w, req, http.StatusBadRequest, "malformed request body",
			map[string]string{typeErr.Field: "must be a " + jsonKind(typeErr.Type.Kind().String()) + ", got " + typeErr.Value})
	case errors.Is(err, io.EOF):
		h.writeError(w, req, http.StatusBadRequest, "request body is empty", nil)
	default:
		h.writeError(w, req, http.StatusBadRequest, "malformed request body: "+err.Error(), nil)
	}
}

func jsonKind(kind string) string {
	if strings.HasPrefix(kind, "float") || strings.HasPrefix(kind, "int") {
		return "number"
	}
	return kind
}

// GetShadingLevels lists the shading tiers and their derates
func (h *Handlers) GetShadingLevels(w http.ResponseWriter, req *http.Request) {
	resp := ShadingLevelsResponse{Default: solar.ShadingNone.String()}
	for _, l := range solar.ShadingLevels() {
		resp.Levels = append(resp.Levels, ShadingLevelInfo{Level: l.String(), Derate: l.Derate()})
	}
	if err := h.formatter.WriteResponse(w, req, http.StatusOK, resp); err != nil {
		log.Errorf("error writing shading levels: %v", err)
	}
}

// GetHealth reports liveness and the active model
func (h *Handlers) GetHealth(w http.ResponseWriter, req *http.Request) {
	resp := HealthResponse{
		Status:          "ok",
		IrradianceModel: h.controller.estimator.ModelName(),
		LossesPercent:   h.controller.estimator.LossesPercent(),
	}
	if err := h.formatter.WriteResponse(w, req, http.StatusOK, resp); err != nil {
		log.Errorf("error writing health response: %v", err)
	}
}

func (h *Handlers) NotFound(w http.ResponseWriter, req *http.Request) {
	h.writeError(w, req, http.StatusNotFound, "not found", nil)
}

func (h *Handlers) MethodNotAllowed(w http.ResponseWriter, req *http.Request) {
	h.writeError(w, req, http.StatusMethodNotAllowed, "method not allowed", nil)
}

func (h *Handlers) writeError(w http.ResponseWriter, req *http.Request, status int, message string, fields map[string]string) {
	if err := h.formatter.WriteError(w, req, status, message, fields); err != nil {
		log.Errorf("error writing error response: %v", err)
	}
}
