package common

// AuthorizationHeaderName carries the bearer identity token on HTTP requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token inside the authorization header.
const BearerPrefix = "Bearer "
