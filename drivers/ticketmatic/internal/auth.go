package driver

import (
	"encoding/base64"
	"net/http"
)

// CredentialProvider attaches the account credential to outgoing requests.
// It holds no mutable state and is shared by every stream.
type CredentialProvider interface {
	Apply(req *http.Request)
}

type basicAuth struct {
	header string
}

// NewBasicAuth builds the Authorization header once from the api key pair
func NewBasicAuth(key, secret string) CredentialProvider {
	token := base64.StdEncoding.EncodeToString([]byte(key + ":" + secret))
	return &basicAuth{header: "Basic " + token}
}

func (b *basicAuth) Apply(req *http.Request) {
	req.Header.Set("Authorization", b.header)
}
