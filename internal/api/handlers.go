package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	errs "github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/render/nodelink"
)

// maxBodyBytes bounds request bodies; a person record is tiny.
const maxBodyBytes = 1 << 20

// addRequest is the body of POST /people.
type addRequest struct {
	Name        string  `json:"name"`
	BirthDate   *string `json:"birthDate"`
	Description *string `json:"description"`
	Parents     []int   `json:"parents"`
	Children    []int   `json:"children"`
}

// updateRequest is the body of PATCH /people/{id}. Absent fields are left
// untouched; an empty parents or children array clears that set.
type updateRequest struct {
	Name          *string  `json:"name"`
	BirthDate     *string  `json:"birthDate"`
	Description   *string  `json:"description"`
	Parents       *[]int   `json:"parents"`
	Children      *[]int   `json:"children"`
	X             *float64 `json:"x"`
	Y             *float64 `json:"y"`
	ClearPosition bool     `json:"clearPosition"`
}

func (req updateRequest) update() (family.Update, error) {
	u := family.Update{
		Name:          req.Name,
		BirthDate:     req.BirthDate,
		Description:   req.Description,
		ClearPosition: req.ClearPosition,
	}
	if req.Parents != nil {
		u.Parents = ids(*req.Parents)
	}
	if req.Children != nil {
		u.Children = ids(*req.Children)
	}
	if (req.X == nil) != (req.Y == nil) {
		return u, errs.New(errs.ErrCodeInvalidInput, "x and y must be given together")
	}
	if req.X != nil {
		u.Position = &family.Position{X: *req.X, Y: *req.Y}
	}
	if req.Name != nil {
		if err := errs.ValidateName(*req.Name); err != nil {
			return u, err
		}
	}
	return u, nil
}

// ids returns a non-nil copy, so an explicit empty array replaces the set.
func ids(in []int) []int {
	return append([]int{}, in...)
}

// layoutResponse is returned by the layout routes.
type layoutResponse struct {
	Generations [][]int                 `json:"generations"`
	Positions   map[int]family.Position `json:"positions"`
	Unreached   []int                   `json:"unreached"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListPeople(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	people := s.store.People()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, people)
}

func (s *Server) handleGetPerson(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mu.Lock()
	p, ok := s.store.Get(id)
	s.mu.Unlock()
	if !ok {
		s.writeError(w, r, notFound(id))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleAddPerson(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	id, err := s.store.Add(r.Context(), family.NewPerson{
		Name:        req.Name,
		BirthDate:   req.BirthDate,
		Description: req.Description,
		Parents:     req.Parents,
		Children:    req.Children,
	})
	var p family.Person
	if err == nil {
		p, _ = s.store.Get(id)
	}
	s.mu.Unlock()

	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/people/"+strconv.Itoa(id))
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdatePerson(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req updateRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := req.update()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	ok, err := s.store.Update(r.Context(), id, u)
	p, _ := s.store.Get(id)
	s.mu.Unlock()

	switch {
	case err != nil:
		s.writeError(w, r, err)
	case !ok:
		s.writeError(w, r, notFound(id))
	default:
		writeJSON(w, http.StatusOK, p)
	}
}

func (s *Server) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	ok, err := s.store.Delete(r.Context(), id)
	s.mu.Unlock()

	switch {
	case err != nil:
		s.writeError(w, r, err)
	case !ok:
		s.writeError(w, r, notFound(id))
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	people := s.store.People()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.computeLayout(people))
}

func (s *Server) handleSaveLayout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	people := s.store.People()
	resp := s.computeLayout(people)
	err := s.store.SetPositions(r.Context(), resp.Positions)
	s.mu.Unlock()

	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) computeLayout(people []family.Person) layoutResponse {
	gens := layout.Generations(people)
	unreached := layout.Unreached(people, gens)
	if gens == nil {
		gens = [][]int{}
	}
	if unreached == nil {
		unreached = []int{}
	}
	return layoutResponse{
		Generations: gens,
		Positions:   layout.Compute(people, s.layout),
		Unreached:   unreached,
	}
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	violations := s.store.Check()
	s.mu.Unlock()

	out := make([]string, len(violations))
	for i, v := range violations {
		out[i] = v.String()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         len(violations) == 0,
		"violations": out,
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	people := s.store.People()
	s.mu.Unlock()

	positions := layout.Compute(people, s.layout)
	dot := nodelink.ToDOT(people, positions, nodelink.Options{
		Detailed: r.URL.Query().Get("detailed") == "true",
	})
	svg, err := nodelink.RenderSVG(r.Context(), dot)
	if err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrCodeInternal, err, "render diagram"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	w.Write(svg)
}

// =============================================================================
// Helpers
// =============================================================================

func pathID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errs.New(errs.ErrCodeInvalidInput, "invalid person id %q", raw)
	}
	return id, nil
}

func notFound(id int) error {
	return errs.New(errs.ErrCodeNotFound, "person %d not found", id)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(v)
}

// errorResponse is the body of every error reply.
type errorResponse struct {
	Code      errs.Code `json:"code"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch errs.GetCode(err) {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errs.ErrCodeNotFound:
		return http.StatusNotFound
	case errs.ErrCodeDuplicateID:
		return http.StatusConflict
	case errs.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	status := statusFor(err)
	msg := errs.UserMessage(err)
	if status >= http.StatusInternalServerError {
		// The cause may name paths or hosts; it goes to the log only.
		s.logger.Error("request failed", "err", err, "request_id", RequestIDFromContext(r.Context()))
		if errs.GetCode(err) == "" {
			msg = "internal error"
		}
	}
	writeJSON(w, status, errorResponse{
		Code:      code,
		Message:   msg,
		RequestID: RequestIDFromContext(r.Context()),
	})
}
