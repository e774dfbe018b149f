package auth

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"notedeck/internal/model"
)

const (
	principalContextKey = "principal"
	claimsContextKey    = "session_claims"
)

// StoreSession binds the parsed session claims and the derived principal
// to the request context. Called by the principal middleware after the
// denylist check, so any handler observing a principal is seeing a live
// session. Roles come from the store, not from the token: the token only
// proves identity, so a role granted mid-session is honored on the very
// next request.
func StoreSession(c echo.Context, claims *SessionClaims, roles model.RoleList) {
	uid, _ := uuid.Parse(claims.UserID)
	c.Set(principalContextKey, Principal{
		UserID: uid,
		Roles:  roles,
	})
	c.Set(claimsContextKey, claims)
}

// CurrentPrincipal returns the principal bound to the request, or a zero
// (anonymous) principal when none is.
func CurrentPrincipal(c echo.Context) (Principal, bool) {
	p, ok := c.Get(principalContextKey).(Principal)
	if !ok || p.Anonymous() {
		return Principal{}, false
	}
	return p, true
}

// CurrentClaims returns the raw session claims bound to the request.
func CurrentClaims(c echo.Context) (*SessionClaims, bool) {
	claims, ok := c.Get(claimsContextKey).(*SessionClaims)
	return claims, ok && claims != nil
}
