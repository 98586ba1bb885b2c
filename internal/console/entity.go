package console

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"partydesk.org/internal/console/apiclient"
	"partydesk.org/internal/console/session"
	"partydesk.org/internal/party"
)

type listPage struct {
	Title    string
	User     apiclient.User
	SignedIn bool
	Error    string
	Entity   *party.Descriptor
	Columns  []string
	Rows     []listRow
}

type listRow struct {
	ID    int64
	Cells []string
}

type formPage struct {
	Title    string
	User     apiclient.User
	SignedIn bool
	Error    string
	Action   string
	Fields   []formField
}

type formField struct {
	Name      string
	Label     string
	InputType string
	Value     string
	Required  bool
	Editable  bool
	Options   []Option
}

// handleEntity dispatches /v1/<slug>, /v1/<slug>/new, /v1/<slug>/<id>/edit and
// /v1/<slug>/<id>/delete.
func (s *Server) handleEntity(w http.ResponseWriter, r *http.Request, ctrl *session.Controller) {
	token, _ := ctrl.Token()
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/"), "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	d, ok := s.reg.Lookup(parts[0])
	if !ok {
		http.NotFound(w, r)
		return
	}
	res := apiclient.NewResource[party.Record](s.api, d.Slug).WithToken(token)

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		s.listEntity(w, r, ctrl, d, res, "")
	case len(parts) == 2 && parts[1] == "new":
		s.newEntity(w, r, ctrl, d, res, token)
	case len(parts) == 3 && (parts[2] == "edit" || parts[2] == "delete"):
		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || id <= 0 {
			http.NotFound(w, r)
			return
		}
		if parts[2] == "edit" {
			s.editEntity(w, r, ctrl, d, res, token, id)
		} else {
			s.deleteEntity(w, r, ctrl, d, res, id)
		}
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) listEntity(w http.ResponseWriter, r *http.Request, ctrl *session.Controller, d *party.Descriptor, res *apiclient.Resource[party.Record], errMsg string) {
	rows, err := res.List(r.Context())
	if err != nil {
		if s.kickIfAuth(w, r, ctrl, err) {
			return
		}
		s.render(w, "list", listPage{Title: d.Name, SignedIn: true, Entity: d, Error: friendlyError(err, "")})
		return
	}

	token, _ := ctrl.Token()
	labels := s.refLabels(r, token, d)

	page := listPage{Title: d.Name, SignedIn: true, Entity: d, Error: errMsg}
	for _, f := range d.Fields {
		page.Columns = append(page.Columns, f.Label)
	}
	for _, rec := range rows {
		row := listRow{ID: rec.ID()}
		for _, f := range d.Fields {
			row.Cells = append(row.Cells, cellValue(f, rec, labels))
		}
		page.Rows = append(page.Rows, row)
	}
	s.render(w, "list", page)
}

func (s *Server) newEntity(w http.ResponseWriter, r *http.Request, ctrl *session.Controller, d *party.Descriptor, res *apiclient.Resource[party.Record], token string) {
	switch r.Method {
	case http.MethodGet:
		s.renderForm(w, r, d, token, nil, "")
	case http.MethodPost:
		body, err := parseEntityForm(r, d, true)
		if err != nil {
			s.renderForm(w, r, d, token, nil, err.Error())
			return
		}
		if _, err := res.Create(r.Context(), body); err != nil {
			if s.kickIfAuth(w, r, ctrl, err) {
				return
			}
			s.renderForm(w, r, d, token, party.Record(body), friendlyError(err, ""))
			return
		}
		if d.Lookup {
			s.lookups.Invalidate(d.Slug)
		}
		http.Redirect(w, r, "/v1/"+d.Slug, http.StatusSeeOther)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) editEntity(w http.ResponseWriter, r *http.Request, ctrl *session.Controller, d *party.Descriptor, res *apiclient.Resource[party.Record], token string, id int64) {
	switch r.Method {
	case http.MethodGet:
		rec, err := res.Get(r.Context(), id)
		if err != nil {
			if s.kickIfAuth(w, r, ctrl, err) {
				return
			}
			if errors.Is(err, apiclient.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			s.renderForm(w, r, d, token, nil, friendlyError(err, ""))
			return
		}
		s.renderFormFor(w, r, d, token, rec, fmt.Sprintf("/v1/%s/%d/edit", d.Slug, id), "")
	case http.MethodPost:
		body, err := parseEntityForm(r, d, false)
		if err != nil {
			s.renderFormFor(w, r, d, token, nil, fmt.Sprintf("/v1/%s/%d/edit", d.Slug, id), err.Error())
			return
		}
		if _, err := res.Update(r.Context(), id, body); err != nil {
			if s.kickIfAuth(w, r, ctrl, err) {
				return
			}
			s.renderFormFor(w, r, d, token, party.Record(body), fmt.Sprintf("/v1/%s/%d/edit", d.Slug, id), friendlyError(err, ""))
			return
		}
		if d.Lookup {
			s.lookups.Invalidate(d.Slug)
		}
		http.Redirect(w, r, "/v1/"+d.Slug, http.StatusSeeOther)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) deleteEntity(w http.ResponseWriter, r *http.Request, ctrl *session.Controller, d *party.Descriptor, res *apiclient.Resource[party.Record], id int64) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := res.Delete(r.Context(), id); err != nil {
		if s.kickIfAuth(w, r, ctrl, err) {
			return
		}
		s.listEntity(w, r, ctrl, d, res, friendlyError(err, ""))
		return
	}
	if d.Lookup {
		s.lookups.Invalidate(d.Slug)
	}
	http.Redirect(w, r, "/v1/"+d.Slug, http.StatusSeeOther)
}

// kickIfAuth signs the session out and redirects to login when the API
// rejected the token mid-session.
func (s *Server) kickIfAuth(w http.ResponseWriter, r *http.Request, ctrl *session.Controller, err error) bool {
	if !errors.Is(err, apiclient.ErrAuth) {
		return false
	}
	_ = ctrl.Logout()
	http.Redirect(w, r, "/login", http.StatusSeeOther)
	return true
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, d *party.Descriptor, token string, rec party.Record, errMsg string) {
	s.renderFormFor(w, r, d, token, rec, "/v1/"+d.Slug+"/new", errMsg)
}

func (s *Server) renderFormFor(w http.ResponseWriter, r *http.Request, d *party.Descriptor, token string, rec party.Record, action, errMsg string) {
	page := formPage{Title: d.Name, SignedIn: true, Action: action, Error: errMsg}
	for _, f := range d.Fields {
		ff := formField{
			Name:      f.Name,
			Label:     f.Label,
			InputType: inputType(f.Kind),
			Required:  f.Required,
			Editable:  f.Editable || strings.HasSuffix(action, "/new"),
		}
		if rec != nil {
			ff.Value = fieldValue(f, rec)
		}
		if f.Kind == party.KindRef {
			opts, err := s.lookups.Options(r.Context(), token, f.Ref)
			if err == nil {
				ff.Options = opts
			}
		}
		page.Fields = append(page.Fields, ff)
	}
	s.render(w, "form", page)
}

// refLabels resolves reference field values to display labels, best
// effort; a failed lookup falls back to raw ids.
func (s *Server) refLabels(r *http.Request, token string, d *party.Descriptor) map[string]map[int64]string {
	labels := make(map[string]map[int64]string)
	for _, f := range d.Fields {
		if f.Kind != party.KindRef {
			continue
		}
		if _, done := labels[f.Ref]; done {
			continue
		}
		opts, err := s.lookups.Options(r.Context(), token, f.Ref)
		if err != nil {
			continue
		}
		m := make(map[int64]string, len(opts))
		for _, o := range opts {
			m[o.ID] = o.Label
		}
		labels[f.Ref] = m
	}
	return labels
}

// parseEntityForm converts posted form values into an API payload. Empty
// inputs are omitted so partial edits keep stored values; create still
// fails server-side when a required field is missing.
func parseEntityForm(r *http.Request, d *party.Descriptor, create bool) (map[string]any, error) {
	if err := r.ParseForm(); err != nil {
		return nil, errors.New("malformed form submission")
	}
	body := make(map[string]any)
	for _, f := range d.Fields {
		if !create && !f.Editable {
			continue
		}
		v := strings.TrimSpace(r.PostFormValue(f.Name))
		if v == "" {
			continue
		}
		switch f.Kind {
		case party.KindInt, party.KindRef:
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%s must be a number", f.Label)
			}
			body[f.Name] = n
		default:
			body[f.Name] = v
		}
	}
	return body, nil
}

func inputType(k party.Kind) string {
	switch k {
	case party.KindInt:
		return "number"
	case party.KindDate:
		return "date"
	default:
		return "text"
	}
}

// fieldValue renders a stored value back into a form input.
func fieldValue(f party.Field, rec party.Record) string {
	switch f.Kind {
	case party.KindInt, party.KindRef:
		if _, ok := rec[f.Name]; !ok {
			return ""
		}
		return strconv.FormatInt(rec.Int(f.Name), 10)
	default:
		return rec.String(f.Name)
	}
}

func cellValue(f party.Field, rec party.Record, labels map[string]map[int64]string) string {
	switch f.Kind {
	case party.KindRef:
		id := rec.Int(f.Name)
		if id == 0 {
			return ""
		}
		if m, ok := labels[f.Ref]; ok {
			if label, ok := m[id]; ok {
				return label
			}
		}
		return fmt.Sprintf("#%d", id)
	case party.KindInt:
		if _, ok := rec[f.Name]; !ok {
			return ""
		}
		return strconv.FormatInt(rec.Int(f.Name), 10)
	default:
		return rec.String(f.Name)
	}
}
