package auth

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// UserType is the role family of an authenticated account.
type UserType string

const (
	UserTypeUser    UserType = "user"
	UserTypeAdmin   UserType = "admin"
	UserTypeGamenet UserType = "gamenet"
)

// ParseUserType validates a stored or server-provided role string.
func ParseUserType(s string) (UserType, error) {
	switch t := UserType(strings.ToLower(strings.TrimSpace(s))); t {
	case UserTypeUser, UserTypeAdmin, UserTypeGamenet:
		return t, nil
	default:
		return "", fmt.Errorf("auth: unknown user type %q", s)
	}
}

// Valid reports whether t is one of the known role families.
func (t UserType) Valid() bool {
	_, err := ParseUserType(string(t))
	return err == nil
}

// ID is an identifier the API may send as a JSON number or string.
type ID string

// UnmarshalJSON accepts 42, "42" and "a1b2".
func (id *ID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*id = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*id = ID(raw)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("auth: invalid id %s: %w", s, err)
	}
	*id = ID(n.String())
	return nil
}

// User is the cached profile of the signed-in account.
type User struct {
	ID          ID       `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Avatar      string   `json:"avatar,omitempty"`
	GamenetID   ID       `json:"gamenet_id,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Permissions != nil {
		c.Permissions = append([]string(nil), u.Permissions...)
	}
	return &c
}

// Persistence records where a credential was written at login time.
type Persistence int

const (
	// PersistSession keeps the credential for the lifetime of the process.
	PersistSession Persistence = iota
	// PersistDurable keeps the credential across restarts ("remember me").
	PersistDurable
)

func (p Persistence) String() string {
	if p == PersistDurable {
		return "persistent"
	}
	return "session"
}

// PersistenceFor maps the remember-me flag to a persistence mode.
func PersistenceFor(rememberMe bool) Persistence {
	if rememberMe {
		return PersistDurable
	}
	return PersistSession
}

// Credential is the active session: token, profile and role.
//
// At most one credential is active per controller. IssuedVia is fixed at
// login and only changes on the next login.
type Credential struct {
	Token       string
	User        *User
	UserType    UserType
	Permissions []string
	IssuedVia   Persistence
}

// UserID returns the profile id, or "" when no profile is attached.
func (c *Credential) UserID() string {
	if c == nil || c.User == nil {
		return ""
	}
	return string(c.User.ID)
}

// Timestamp decodes either an RFC 3339 string or unix seconds.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON accepts "2026-01-02T15:04:05Z", 1767366245 or null.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		t.Time = time.Time{}
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return fmt.Errorf("auth: invalid timestamp %q: %w", raw, err)
		}
		t.Time = parsed
		return nil
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("auth: invalid timestamp %s: %w", s, err)
	}
	t.Time = time.Unix(int64(secs), 0)
	return nil
}

// MarshalJSON writes RFC 3339, or null for the zero time.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}
