package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"
)

// LaunchDataMarker is the fragment parameter carrying serialized mini-app
// launch data.
const LaunchDataMarker = "tgWebAppData"

const (
	labelInvalidURL = "[Invalid URL]"
	labelNoUserData = "[No user data]"
	noNameFallback  = "No name"
)

type launchUser struct {
	ID        json.RawMessage `json:"id"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Username  string          `json:"username"`
}

// AuthPayload selects the part of raw that is exchanged for a token: the
// launch data fragment parameter, the query string of a URL, or raw itself.
func AuthPayload(raw string) string {
	payload, _ := selectPayload(raw)
	return payload
}

// ExtractIdentity reads the account key and display label from the launch
// user record carried by raw.
func ExtractIdentity(raw string) (AccountIdentity, error) {
	payload, err := selectPayload(raw)
	if err != nil {
		return AccountIdentity{}, err
	}

	decoded, err := url.PathUnescape(payload)
	if err != nil {
		return AccountIdentity{}, fmt.Errorf("%w: %v", ErrURIMalformed, err)
	}
	if !utf8.ValidString(decoded) {
		return AccountIdentity{}, fmt.Errorf("%w: invalid utf-8 sequence", ErrURIMalformed)
	}

	userJSON := parseLenientQuery(decoded).Get("user")
	if userJSON == "" {
		return AccountIdentity{}, ErrNoUserData
	}

	var user launchUser
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return AccountIdentity{}, fmt.Errorf("%w: %v", ErrMalformedUser, err)
	}

	id := strings.Trim(strings.TrimSpace(string(user.ID)), `"`)
	if id == "" || id == "null" {
		return AccountIdentity{}, fmt.Errorf("%w: user id is missing", ErrMalformedUser)
	}

	return AccountIdentity{
		Key:   AccountKey(id),
		Label: formatLabel(id, user),
	}, nil
}

// LabelFor returns the display label for raw, degrading to a marker label
// when the identity cannot be extracted.
func LabelFor(raw string) string {
	identity, err := ExtractIdentity(raw)
	if err == nil {
		return identity.Label
	}

	switch {
	case errors.Is(err, ErrInvalidURL):
		return labelInvalidURL
	case errors.Is(err, ErrNoUserData):
		return labelNoUserData
	default:
		return fmt.Sprintf("[Error: %s]", err)
	}
}

func formatLabel(id string, user launchUser) string {
	firstName := user.FirstName
	if firstName == "" {
		firstName = noNameFallback
	}

	var b strings.Builder
	b.WriteString("[")
	b.WriteString(id)
	b.WriteString("_")
	b.WriteString(firstName)
	if user.LastName != "" {
		b.WriteString(" ")
		b.WriteString(user.LastName)
	}
	if user.Username != "" {
		b.WriteString(" (@")
		b.WriteString(user.Username)
		b.WriteString(")")
	}
	b.WriteString("]")

	return b.String()
}

func selectPayload(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)

	parsed, err := url.Parse(trimmed)
	if err != nil {
		if strings.Contains(trimmed, "://") {
			return trimmed, fmt.Errorf("%w: %v", ErrInvalidURL, err)
		}
		return trimmed, nil
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return trimmed, nil
	}

	if strings.Contains(parsed.EscapedFragment(), LaunchDataMarker) {
		if data := parseLenientQuery(parsed.EscapedFragment()).Get(LaunchDataMarker); data != "" {
			return data, nil
		}
	}

	return parsed.RawQuery, nil
}

// parseLenientQuery splits form-encoded data into pairs. A malformed escape
// stays as literal text instead of dropping its pair.
func parseLenientQuery(s string) url.Values {
	values := url.Values{}
	for _, pair := range strings.Split(s, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		values.Add(unescapeLenient(key), unescapeLenient(value))
	}

	return values
}

func unescapeLenient(s string) string {
	s = strings.ReplaceAll(s, "+", " ")
	if decoded, err := url.PathUnescape(s); err == nil {
		return decoded
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) {
			if v, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil {
				b.WriteByte(byte(v))
				i += 2
				continue
			}
		}
		b.WriteByte(s[i])
	}

	return b.String()
}
