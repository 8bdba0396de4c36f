package auth

import "net/http"

const (
	AuthorizationHeader = "Authorization"
	// ConnectionParamKey is the key of the token inside the websocket connection_init payload.
	ConnectionParamKey = "authorization"
	bearerPrefix       = "Bearer "
)

// BearerToken formats the authorization value, empty when not logged in.
func (c Credentials) BearerToken() string {
	if !c.Authenticated() {
		return ""
	}
	return bearerPrefix + c.Token
}

// Authorize sets the Authorization header on an outgoing HTTP request.
// Anonymous credentials leave the request untouched.
func (c Credentials) Authorize(req *http.Request) {
	if !c.Authenticated() {
		return
	}
	req.Header.Set(AuthorizationHeader, c.BearerToken())
}

// ConnectionParams is the payload of the websocket connection_init message.
// The same bearer token as the HTTP path is re-sent there.
func (c Credentials) ConnectionParams() map[string]any {
	return map[string]any{ConnectionParamKey: c.BearerToken()}
}
