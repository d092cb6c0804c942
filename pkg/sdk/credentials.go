package sdk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// User is the account record returned by a role login and persisted alongside the token.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role"`
}

// UnmarshalJSON accepts both "id" and "_id" identifiers, as strings or numbers,
// and normalizes the role tag.
func (u *User) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       json.RawMessage `json:"id"`
		MongoID  json.RawMessage `json:"_id"`
		Name     string          `json:"name"`
		Email    string          `json:"email"`
		Role     string          `json:"role"`
		UserName string          `json:"username"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id, err := decodeID(raw.ID)
	if err != nil {
		return fmt.Errorf("decode user id: %w", err)
	}
	if id == "" {
		if id, err = decodeID(raw.MongoID); err != nil {
			return fmt.Errorf("decode user _id: %w", err)
		}
	}

	u.ID = id
	u.Name = raw.Name
	if u.Name == "" {
		u.Name = raw.UserName
	}
	u.Email = raw.Email
	u.Role = NormalizeRole(raw.Role)
	return nil
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// Session is a point-in-time view of the authentication state.
// Token is non-empty exactly when User is non-nil.
type Session struct {
	Token string
	User  *User
}

// Authenticated reports whether the session carries a token and a user.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// Role returns the normalized role of the session user, or "" when unauthenticated.
func (s Session) Role() Role {
	if s.User == nil {
		return ""
	}
	return NormalizeRole(string(s.User.Role))
}

// stripBearer removes a leading "Bearer" scheme so only the raw credential is
// stored. A value holding only the scheme yields "".
func stripBearer(token string) string {
	fields := strings.Fields(token)
	switch {
	case len(fields) == 0:
		return ""
	case strings.EqualFold(fields[0], "bearer"):
		return strings.Join(fields[1:], " ")
	default:
		return strings.TrimSpace(token)
	}
}
