package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"vantagecrm.io/internal/authz"
)

// validated is what a decoded resource payload must support. Domain
// validation runs before the guard; authorization never depends on it.
type validated interface {
	authz.Record
	Validate() error
}

// registerResource mounts the five uniform routes for one guarded collection.
func registerResource[T validated](a *API, rt authz.ResourceType, store authz.Store[T], auditor authz.Auditor, blank func() T) {
	guard := authz.NewGuard(a.catalog, rt, store, auditor)
	base := "/v1/" + string(rt)

	a.mux.HandleFunc("GET "+base, func(w http.ResponseWriter, r *http.Request) {
		recs, err := guard.List(r.Context())
		if err != nil {
			respondGuardError(w, err)
			return
		}
		if recs == nil {
			recs = []T{}
		}
		writeJSON(w, http.StatusOK, map[string]any{string(rt): recs})
	})

	a.mux.HandleFunc("POST "+base, func(w http.ResponseWriter, r *http.Request) {
		rec, ok := decodePayload(w, r, blank)
		if !ok {
			return
		}
		created, err := guard.Create(r.Context(), rec)
		if err != nil {
			respondGuardError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	})

	a.mux.HandleFunc("GET "+base+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		rec, err := guard.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			respondGuardError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	})

	a.mux.HandleFunc("PUT "+base+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		rec, ok := decodePayload(w, r, blank)
		if !ok {
			return
		}
		updated, err := guard.Update(r.Context(), r.PathValue("id"), rec)
		if err != nil {
			respondGuardError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	})

	a.mux.HandleFunc("DELETE "+base+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		if err := guard.Delete(r.Context(), r.PathValue("id")); err != nil {
			respondGuardError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func decodePayload[T validated](w http.ResponseWriter, r *http.Request, blank func() T) (T, bool) {
	rec := blank()
	if err := json.NewDecoder(r.Body).Decode(rec); err != nil {
		if errors.Is(err, io.EOF) {
			respondError(w, http.StatusBadRequest, "request body is required")
		} else {
			respondError(w, http.StatusBadRequest, "invalid JSON payload")
		}
		return rec, false
	}
	if err := rec.Validate(); err != nil {
		respondGuardError(w, err)
		return rec, false
	}
	return rec, true
}
