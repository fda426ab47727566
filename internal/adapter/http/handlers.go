package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gorilla/mux"
	"github.com/paulmach/orb"

	"github.com/couchcryptid/sf-incident-map/internal/domain"
	"github.com/couchcryptid/sf-incident-map/internal/pipeline"
)

const (
	contentTypeGeoJSON = "application/geo+json"
	maxBodyBytes       = 1 << 20
)

// ClientConfig is the static map configuration served to the front end.
type ClientConfig struct {
	MapboxToken  string                 `json:"mapbox_token,omitempty"`
	InitialStyle string                 `json:"initial_style"`
	InitialView  domain.ViewState       `json:"initial_view"`
	Constraints  domain.ViewConstraints `json:"constraints"`
	Radius       domain.RadiusScale     `json:"radius"`
}

type styleOption struct {
	domain.MapStyle
	URL string `json:"url"`
}

type configResponse struct {
	ClientConfig
	Styles   []styleOption      `json:"styles"`
	MinLimit int                `json:"min_limit"`
	MaxLimit int                `json:"max_limit"`
	Query    domain.QueryParams `json:"query"`
}

// queryBody accepts dates as RFC 3339, SODA floating timestamps, or bare
// dates. Null or missing fields keep the current value.
type queryBody struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Limit     *int    `json:"limit"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Notice string `json:"notice,omitempty"`
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	styles := make([]styleOption, 0, len(domain.MapStyles))
	for _, st := range domain.MapStyles {
		u, _ := domain.StyleURL(st.Value)
		styles = append(styles, styleOption{MapStyle: st, URL: u})
	}
	sharedobs.WriteJSON(w, http.StatusOK, configResponse{
		ClientConfig: s.client,
		Styles:       styles,
		MinLimit:     domain.MinQueryLimit,
		MaxLimit:     domain.MaxQueryLimit,
		Query:        s.incidents.Query(),
	})
}

func (s *Server) handleStyle(w http.ResponseWriter, r *http.Request) {
	u, err := domain.StyleURL(mux.Vars(r)["value"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]string{"url": u})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var body queryBody
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	req, err := body.request()
	if err != nil {
		s.writeError(w, err)
		return
	}

	snap, err := s.incidents.Update(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, snap.Event(snap.Categories.Toggles))
}

func (b queryBody) request() (domain.QueryRequest, error) {
	var req domain.QueryRequest
	if b.StartDate != nil {
		t, err := domain.ParseQueryTime(*b.StartDate)
		if err != nil {
			return req, err
		}
		req.Start = &t
	}
	if b.EndDate != nil {
		t, err := domain.ParseQueryTime(*b.EndDate)
		if err != nil {
			return req, err
		}
		req.End = &t
	}
	req.Limit = b.Limit
	return req, nil
}

func (s *Server) handleIncidents(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	points, err := s.incidents.Points(f)
	if err != nil {
		s.writeError(w, err)
		return
	}

	data, err := domain.ToFeatureCollection(points).MarshalJSON()
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypeGeoJSON)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	ins, err := s.incidents.Insights(f)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, ins)
}

// parseFilter reads repeated category parameters and an optional
// bbox=minLon,minLat,maxLon,maxLat. Labels can contain commas, so categories
// are never split.
func parseFilter(r *http.Request) (pipeline.PointFilter, error) {
	var f pipeline.PointFilter
	q := r.URL.Query()
	if labels, ok := q["category"]; ok {
		f.Categories = labels
	}
	if raw := q.Get("bbox"); raw != "" {
		b, err := parseBBox(raw)
		if err != nil {
			return f, err
		}
		f.Bound = &b
	}
	return f, nil
}

func parseBBox(raw string) (orb.Bound, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return orb.Bound{}, fmt.Errorf("%w: bbox needs minLon,minLat,maxLon,maxLat", domain.ErrInvalidQuery)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("%w: bbox value %q", domain.ErrInvalidQuery, p)
		}
		v[i] = f
	}
	if v[2] < v[0] || v[3] < v[1] {
		return orb.Bound{}, fmt.Errorf("%w: bbox min exceeds max", domain.ErrInvalidQuery)
	}
	return orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}, nil
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	cats, err := s.incidents.Categories()
	if err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, cats)
}

func (s *Server) handleSetCategory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Visible *bool `json:"visible"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	if body.Visible == nil {
		s.writeError(w, fmt.Errorf("%w: visible is required", domain.ErrInvalidQuery))
		return
	}
	if err := s.incidents.SetCategoryVisible(mux.Vars(r)["label"], *body.Visible); err != nil {
		s.writeError(w, err)
		return
	}
	s.handleCategories(w, r)
}

func (s *Server) handleRadius(w http.ResponseWriter, r *http.Request) {
	zoom, err := strconv.ParseFloat(r.URL.Query().Get("zoom"), 64)
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: zoom must be a number", domain.ErrInvalidQuery))
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]float64{
		"zoom":   zoom,
		"radius": domain.PointRadius(zoom, s.client.Radius),
	})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	var view domain.ViewState
	if err := decodeBody(w, r, &view); err != nil {
		s.writeError(w, err)
		return
	}
	clamped := s.client.Constraints.Clamp(view)
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{
		"view":   clamped,
		"radius": domain.PointRadius(clamped.Zoom, s.client.Radius),
	})
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	if s.geocoder == nil {
		sharedobs.WriteJSON(w, http.StatusNotImplemented, errorResponse{Error: "place lookup is disabled"})
		return
	}
	rowID := mux.Vars(r)["rowID"]
	inc, ok, err := s.incidents.FindIncident(rowID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !ok {
		sharedobs.WriteJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("incident %q not in current results", rowID)})
		return
	}

	place, err := s.geocoder.ReverseGeocode(r.Context(), inc.Latitude, inc.Longitude)
	if err != nil {
		sharedobs.WriteJSON(w, http.StatusBadGateway, errorResponse{Error: "place lookup failed"})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, place)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: decode body: %w", domain.ErrInvalidQuery, err)
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownCategory), errors.Is(err, domain.ErrUnknownStyle):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrQueryInFlight):
		return http.StatusConflict
	case errors.Is(err, domain.ErrResponseNotList), errors.Is(err, domain.ErrTransport):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrNoSnapshot):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}
	if status == http.StatusBadGateway {
		resp.Notice = domain.NoticeFor(err)
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("unhandled api error", "error", err)
		resp.Error = http.StatusText(status)
	}
	sharedobs.WriteJSON(w, status, resp)
}
