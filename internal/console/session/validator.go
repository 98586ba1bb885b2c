package session

import (
	"context"

	"partydesk.org/internal/console/apiclient"
)

// Validate settles whether the stored token is still good by asking the API
// who it belongs to, once. Any failure is conclusive: the session is signed
// out whether the token was rejected or the call never reached the server.
// A transient blip at worst forces a re-login.
func Validate(ctx context.Context, ctrl *Controller, client *apiclient.Client) (apiclient.User, error) {
	token, ok := ctrl.Token()
	if !ok {
		ctrl.transition(StateUnauthenticated)
		return apiclient.User{}, apiclient.ErrAuth
	}

	user, err := client.WithToken(token).Me(ctx)
	if err != nil {
		_ = ctrl.Logout()
		return apiclient.User{}, err
	}

	ctrl.transition(StateAuthenticated)
	return user, nil
}
