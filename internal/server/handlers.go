package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/collagefm/pkg/buildinfo"
	"github.com/matzehuels/collagefm/pkg/collage"
	errs "github.com/matzehuels/collagefm/pkg/errors"
	"github.com/matzehuels/collagefm/pkg/pipeline"
	"github.com/matzehuels/collagefm/pkg/store"
)

var errNotFound = errs.New(errs.ErrCodeNotFound, "not found")

type errorResponse struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

type sizeClass struct {
	Kind      string `json:"kind"`
	Count     int    `json:"count"`
	Footprint int    `json:"footprint"`
}

type layoutResponse struct {
	GridSize int         `json:"grid_size"`
	Rows     int         `json:"rows"`
	Cols     int         `json:"cols"`
	Slots    int         `json:"slots"`
	Variants []string    `json:"variants"`
	Classes  []sizeClass `json:"classes"`
}

type layoutsResponse struct {
	Varying []layoutResponse `json:"varying"`
	Fixed   struct {
		Min int `json:"min"`
		Max int `json:"max"`
	} `json:"fixed"`
}

type collageResponse struct {
	ID          string       `json:"id"`
	Filename    string       `json:"filename"`
	ContentType string       `json:"content_type"`
	Params      store.Params `json:"params"`
	Dropped     int          `json:"dropped"`
	Failed      int          `json:"failed"`
	ImageURL    string       `json:"image_url"`
	CreatedAt   string       `json:"created_at"`
	ExpiresAt   string       `json:"expires_at"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) listLayouts(w http.ResponseWriter, r *http.Request) {
	var resp layoutsResponse
	for _, size := range collage.GridSizes() {
		l, err := collage.Lookup(size)
		if err != nil {
			writeError(w, err)
			return
		}
		lr := layoutResponse{
			GridSize: size,
			Rows:     l.Rows,
			Cols:     l.Cols,
			Slots:    l.TotalItemSlots,
			Variants: l.Variants(),
		}
		for _, sc := range l.SizeClasses {
			lr.Classes = append(lr.Classes, sizeClass{Kind: sc.Kind.String(), Count: sc.Count, Footprint: sc.Footprint})
		}
		resp.Varying = append(resp.Varying, lr)
	}
	resp.Fixed.Min, resp.Fixed.Max = collage.MinFixedDim, collage.MaxFixedDim
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) createCollage(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		writeError(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()
	result, err := s.runner.Execute(ctx, opts)
	if err != nil {
		s.logger.Warn("collage failed", "user", opts.Username, "err", err)
		writeError(w, err)
		return
	}

	rec := store.NewRecord(opts.StoreParams(result.Plan.Variant), result.Filename, result.ContentType, result.Data, s.ttl)
	rec.Dropped = result.Stats.Dropped
	rec.Failed = len(result.Failed)
	if err := s.store.Put(r.Context(), rec); err != nil {
		writeError(w, errs.Wrap(errs.ErrCodeInternal, err, "store collage"))
		return
	}

	w.Header().Set("Location", "/v1/collages/"+rec.ID)
	writeJSON(w, http.StatusCreated, toResponse(rec))
}

func (s *Server) getCollage(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(rec))
}

func (s *Server) getCollageImage(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", rec.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(rec.Image)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", rec.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(rec.Image)
}

func toResponse(rec *store.Record) collageResponse {
	return collageResponse{
		ID:          rec.ID,
		Filename:    rec.Filename,
		ContentType: rec.ContentType,
		Params:      rec.Params,
		Dropped:     rec.Dropped,
		Failed:      rec.Failed,
		ImageURL:    "/v1/collages/" + rec.ID + "/image",
		CreatedAt:   rec.CreatedAt.Format(timeLayout),
		ExpiresAt:   rec.ExpiresAt.Format(timeLayout),
	}
}

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError answers with the error's code and user message. Errors
// without a code are reported as internal without leaking their text.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		err = errNotFound
	case errors.Is(err, context.DeadlineExceeded):
		err = errs.Wrap(errs.ErrCodeTimeout, err, "request timed out")
	}
	code := errs.GetCode(err)
	msg := errs.UserMessage(err)
	if code == "" {
		code, msg = errs.ErrCodeInternal, "internal error"
	}
	writeJSON(w, errs.HTTPStatus(code), errorResponse{Code: code, Message: msg})
}
