package tfs

import (
	"encoding/base64"
	"net/url"
	"strings"

	"github.com/dharmasatrya/flightquery/internal/models"
)

// Token is the transport form of a query: URL-safe base64 with no padding.
type Token string

func (t Token) String() string {
	return string(t)
}

func TokenFromBytes(b []byte) Token {
	return Token(base64.RawURLEncoding.EncodeToString(b))
}

// Bytes decodes the token. Padding and the standard alphabet are tolerated
// because tokens copied out of browser URLs sometimes carry them.
func (t Token) Bytes() ([]byte, error) {
	s := strings.TrimSpace(string(t))
	if i := strings.IndexByte(s, '&'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRight(s, "=")
	s = strings.NewReplacer("+", "-", "/", "_").Replace(s)

	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, &TokenError{Kind: ErrMalformedToken, Msg: "invalid base64", Err: err}
	}
	return b, nil
}

// RequestParams builds the query string the transport sends alongside a token.
// Language and currency are request parameters, not token fields.
func RequestParams(token Token, session models.SessionToken, language, currency string) url.Values {
	v := url.Values{}
	v.Set("tfs", token.String())
	if session != "" {
		v.Set("tfu", string(session))
	}
	if language != "" {
		v.Set("hl", language)
	}
	if currency != "" {
		v.Set("curr", currency)
	}
	return v
}
