package handlers

import (
	"errors"
	"net/url"
	"strings"
)

const maxURLLength = 2048

var errInvalidURL = errors.New("invalid destination url")

// validateDestinationURL checks that the destination is an absolute
// http(s) URL of reasonable length.
func validateDestinationURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxURLLength {
		return "", errInvalidURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", errInvalidURL
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", errInvalidURL
	}

	return u.String(), nil
}
