package common

// TokenHashProperty is the reserved property name holding the fingerprint
// of the last issued auth token. Callers must not use it for their own data.
const TokenHashProperty = "TOKEN_HASH"

// DefaultSessionPrefix namespaces every session key in the backing store.
const DefaultSessionPrefix = "gophusers:"
