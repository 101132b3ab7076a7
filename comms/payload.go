package comms

import (
	"net/http"
	"strconv"
	"time"

	"github.com/CodedInternet/gotrifan/flightlog"
	"github.com/go-chi/render"
)

// StatePayload is the JSON form of a status snapshot.
type StatePayload struct {
	flightlog.Record
	Summary string `json:"summary"`
}

func NewStatePayload(rec flightlog.Record) *StatePayload {
	return &StatePayload{
		Record:  rec,
		Summary: rec.String(),
	}
}

func (p *StatePayload) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// ErrResponse renders an error with its HTTP status.
type ErrResponse struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	StatusText string `json:"status"`
	ErrorText  string `json:"error,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func newErrResponse(err error, code int, text string) render.Renderer {
	resp := &ErrResponse{
		Err:            err,
		HTTPStatusCode: code,
		StatusText:     text,
	}
	if err != nil {
		resp.ErrorText = err.Error()
	}
	return resp
}

func ErrInvalidRequest(err error) render.Renderer {
	return newErrResponse(err, http.StatusBadRequest, "Invalid request.")
}

func ErrUnauthorized(err error) render.Renderer {
	return newErrResponse(err, http.StatusUnauthorized, "Unauthorized.")
}

func ErrUnavailable(err error) render.Renderer {
	return newErrResponse(err, http.StatusServiceUnavailable, "Unavailable.")
}

func ErrRender(err error) render.Renderer {
	return newErrResponse(err, http.StatusInternalServerError, "Error rendering response.")
}

// StatusHandler serves the current snapshot.
func StatusHandler(capture flightlog.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := capture()
		rec.Time = time.Now()
		render.Render(w, r, NewStatePayload(rec))
	}
}

// HistoryHandler serves archived snapshots, newest first. The count is taken
// from the "n" query parameter.
func HistoryHandler(history HistorySource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if history == nil {
			render.Render(w, r, ErrUnavailable(errNoArchive))
			return
		}

		n := HISTORY_DEFAULT
		if q := r.URL.Query().Get("n"); q != "" {
			var err error
			if n, err = strconv.Atoi(q); err != nil || n <= 0 {
				render.Render(w, r, ErrInvalidRequest(errBadCount))
				return
			}
		}

		records, err := history.Recent(n)
		if err != nil {
			render.Render(w, r, ErrRender(err))
			return
		}

		payloads := make([]render.Renderer, 0, len(records))
		for _, rec := range records {
			payloads = append(payloads, NewStatePayload(rec))
		}
		render.RenderList(w, r, payloads)
	}
}
