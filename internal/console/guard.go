package console

import (
	"net/http"

	"partydesk.org/internal/console/session"
)

// newController binds a session controller to this request's cookie.
func (s *Server) newController(w http.ResponseWriter, r *http.Request) *session.Controller {
	return session.NewController(session.NewCookieStore(w, r, s.cookies))
}

// requireSession gates a page on a present session token. The check is
// purely local: no API call happens before the redirect, so a signed-out
// browser costs the API nothing. 303 keeps the guarded URL out of the
// back-stack.
func (s *Server) requireSession(next func(http.ResponseWriter, *http.Request, *session.Controller)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctrl := s.newController(w, r)
		if ctrl.Resolve() != session.StateAuthenticated {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r, ctrl)
	}
}

// publicOnly sends an already signed-in session home instead of showing
// the login or register page again.
func (s *Server) publicOnly(next func(http.ResponseWriter, *http.Request, *session.Controller)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctrl := s.newController(w, r)
		if ctrl.Resolve() == session.StateAuthenticated {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next(w, r, ctrl)
	}
}
