package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"partydesk.org/internal/audit"
	"partydesk.org/internal/party"
)

// handleEntities dispatches /v1/<entity> and /v1/<entity>/<id> for every
// entity in the registry.
func (a *API) handleEntities(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/")
	if rest == "" || strings.Count(rest, "/") > 1 {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	slug, idPart, hasID := strings.Cut(rest, "/")
	d, ok := a.reg.Lookup(slug)
	if !ok {
		writeError(w, r, http.StatusNotFound, fmt.Sprintf("unknown entity %q", slug))
		return
	}

	if !hasID {
		switch r.Method {
		case http.MethodGet:
			a.listRecords(w, r, d)
		case http.MethodPost:
			a.createRecord(w, r, d)
		default:
			methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
		}
		return
	}

	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getRecord(w, r, d, id)
	case http.MethodPut, http.MethodPatch:
		a.updateRecord(w, r, d, id)
	case http.MethodDelete:
		a.deleteRecord(w, r, d, id)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete)
	}
}

func (a *API) listRecords(w http.ResponseWriter, r *http.Request, d *party.Descriptor) {
	items, err := a.store.List(r.Context(), d)
	if err != nil {
		handlePartyError(w, r, err)
		return
	}
	if items == nil {
		items = []party.Record{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) getRecord(w http.ResponseWriter, r *http.Request, d *party.Descriptor, id int64) {
	rec, err := a.store.Get(r.Context(), d, id)
	if err != nil {
		handlePartyError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (a *API) createRecord(w http.ResponseWriter, r *http.Request, d *party.Descriptor) {
	var raw map[string]any
	if err := decodeJSONLoose(w, r, &raw); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	rec, err := d.Normalize(raw, true)
	if err != nil {
		handlePartyError(w, r, err)
		return
	}
	created, err := a.store.Create(r.Context(), d, rec)
	if err != nil {
		handlePartyError(w, r, err)
		return
	}

	a.auditRecord(r, d, "create", created.ID())

	w.Header().Set("Location", fmt.Sprintf("/v1/%s/%d", d.Slug, created.ID()))
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) updateRecord(w http.ResponseWriter, r *http.Request, d *party.Descriptor, id int64) {
	var raw map[string]any
	if err := decodeJSONLoose(w, r, &raw); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	update, err := d.Normalize(raw, false)
	if err != nil {
		handlePartyError(w, r, err)
		return
	}
	updated, err := a.store.Update(r.Context(), d, id, update)
	if err != nil {
		handlePartyError(w, r, err)
		return
	}

	a.auditRecord(r, d, "update", id)
	writeJSON(w, http.StatusOK, updated)
}

func (a *API) deleteRecord(w http.ResponseWriter, r *http.Request, d *party.Descriptor, id int64) {
	if err := a.store.Delete(r.Context(), d, id); err != nil {
		handlePartyError(w, r, err)
		return
	}
	a.auditRecord(r, d, "delete", id)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) auditRecord(r *http.Request, d *party.Descriptor, action string, id int64) {
	_ = audit.LogEvent(r.Context(), "party."+d.Slug+"."+action, map[string]any{
		"entity": d.Slug,
		"id":     id,
	})
}

func handlePartyError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, party.ErrInvalidInput), errors.Is(err, party.ErrDuplicate):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, party.ErrNotFound), errors.Is(err, party.ErrUnknownEntity):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, party.ErrReferenced):
		writeError(w, r, http.StatusConflict, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSONLoose decodes into a map without rejecting unknown fields;
// Normalize does the per-entity field validation afterwards.
func decodeJSONLoose(w http.ResponseWriter, r *http.Request, dst *map[string]any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	if *dst == nil {
		return errors.New("request body is required")
	}
	return nil
}
