package youtube

import (
	"net/url"
	"regexp"
	"strings"
)

// ValidatedURL is a URL which has passed the allow-list check. Services
// in this package refuse to touch anything else, so a raw string cannot
// accidentally reach an external tool invocation.
type ValidatedURL string

func (validated ValidatedURL) String() string { return string(validated) }

// Only these shapes of YouTube URL are ever handed to the external
// tools. Anything else is rejected before a subprocess is considered.
var permittedURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https?://(www\.)?youtube\.com/watch\?v=`),
	regexp.MustCompile(`^https?://youtu\.be/`),
	regexp.MustCompile(`^https?://(www\.)?youtube\.com/embed/`),
	regexp.MustCompile(`^https?://music\.youtube\.com/watch\?v=`),
	regexp.MustCompile(`^https?://(www\.)?youtube\.com/playlist\?list=`),
}

// ValidateURL checks the raw input against the allow-list, returning a
// ValidatedURL on success. The check is pure; no network or subprocess
// activity occurs. Surrounding whitespace is ignored.
func ValidateURL(raw string) (ValidatedURL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", &URLNotPermittedError{reason: "URL is empty"}
	}

	for _, pattern := range permittedURLPatterns {
		if pattern.MatchString(trimmed) {
			return ValidatedURL(trimmed), nil
		}
	}

	// The error reason deliberately avoids echoing the full input; only
	// the host is named so logs and responses cannot leak query data.
	if parsed, err := url.Parse(trimmed); err == nil && parsed.Host != "" {
		return "", &URLNotPermittedError{reason: "host '" + parsed.Host + "' is not a recognised YouTube endpoint"}
	}

	return "", &URLNotPermittedError{reason: "URL is not a recognised YouTube video or playlist link"}
}
