package common

// AuthorizationHeaderName is the HTTP header carrying the bearer access token.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token in the Authorization header.
const BearerPrefix = "Bearer "

// RefreshTokenSize is the number of random bytes in a refresh token (256 bits).
const RefreshTokenSize = 32
