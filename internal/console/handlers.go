package console

import (
	"errors"
	"net/http"

	"partydesk.org/internal/console/apiclient"
	"partydesk.org/internal/console/session"
	"partydesk.org/internal/party"
)

type authPage struct {
	Title    string
	User     apiclient.User
	SignedIn bool
	Error    string
	Name     string
	Email    string
}

type homePage struct {
	Title    string
	User     apiclient.User
	SignedIn bool
	Error    string
	Groups   []entityGroup
}

type entityGroup struct {
	Title    string
	Entities []*party.Descriptor
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request, ctrl *session.Controller) {
	page := authPage{Title: "Sign in"}
	switch r.Method {
	case http.MethodGet:
		s.render(w, "login", page)
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			page.Error = "malformed form submission"
			s.render(w, "login", page)
			return
		}
		email := r.PostFormValue("email")
		page.Email = email

		token, _, err := s.api.Login(r.Context(), email, r.PostFormValue("password"))
		if err != nil {
			page.Error = friendlyError(err, "Invalid credentials")
			s.render(w, "login", page)
			return
		}
		if err := ctrl.Login(token); err != nil {
			page.Error = "could not start a session, please try again"
			s.render(w, "login", page)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request, _ *session.Controller) {
	page := authPage{Title: "Create account"}
	switch r.Method {
	case http.MethodGet:
		s.render(w, "register", page)
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			page.Error = "malformed form submission"
			s.render(w, "register", page)
			return
		}
		page.Name = r.PostFormValue("name")
		page.Email = r.PostFormValue("email")

		_, err := s.api.Register(r.Context(), page.Name, page.Email, r.PostFormValue("password"))
		if err != nil {
			page.Error = friendlyError(err, "registration failed")
			s.render(w, "register", page)
			return
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctrl := s.newController(w, r)
	_ = ctrl.Logout()
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request, ctrl *session.Controller) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	user, err := session.Validate(r.Context(), ctrl, s.api)
	if err != nil {
		// One failed validation is conclusive; the session is already
		// signed out, so send the operator back to the login form.
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	s.render(w, "home", homePage{
		Title:    "Home",
		User:     user,
		SignedIn: true,
		Groups: []entityGroup{
			{Title: "Reference types", Entities: s.reg.Group(party.GroupType)},
			{Title: "Parties and details", Entities: s.reg.Group(party.GroupInfo)},
			{Title: "Roles and relationships", Entities: s.reg.Group(party.GroupRelation)},
		},
	})
}

// friendlyError maps client sentinel errors onto operator-facing text.
func friendlyError(err error, authMsg string) string {
	switch {
	case errors.Is(err, apiclient.ErrAuth):
		return authMsg
	case errors.Is(err, apiclient.ErrNetwork):
		return "cannot reach the API, check your connection and try again"
	case errors.Is(err, apiclient.ErrValidation), errors.Is(err, apiclient.ErrNotFound):
		return err.Error()
	default:
		return "the API reported an internal error, try again later"
	}
}
