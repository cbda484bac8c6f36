// Package models defines the client-side data types of the SecretKey
// credential manager: platform credentials, pages of them, and the auth DTOs.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date without time of day, serialised as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar date in UTC.
func NewDate(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	// Some backends send a full timestamp; keep only the date part.
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// PlatformCredential is one stored credential. ID and CreatedDate are
// assigned by the server and never change; the other fields are replaced
// wholesale on update.
type PlatformCredential struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	CreatedDate Date   `json:"createdDate"`
}

// Fields returns the mutable part of the record.
func (p PlatformCredential) Fields() Fields {
	return Fields{Name: p.Name, URL: p.URL, Username: p.Username, Password: p.Password}
}

// WithFields returns a copy of p with its mutable fields replaced by f.
func (p PlatformCredential) WithFields(f Fields) PlatformCredential {
	p.Name, p.URL, p.Username, p.Password = f.Name, f.URL, f.Username, f.Password
	return p
}

// String never includes the password.
func (p PlatformCredential) String() string {
	return fmt.Sprintf("%s (%s) %s@%s", p.Name, p.ID, p.Username, p.URL)
}

// Fields is the create/update payload of a platform credential.
type Fields struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate reports the first blank field. Whitespace-only values count as blank.
func (f Fields) Validate() error {
	checks := []struct {
		name  string
		value string
	}{
		{"name", f.Name},
		{"url", f.URL},
		{"username", f.Username},
		{"password", f.Password},
	}
	for _, c := range checks {
		if strings.TrimSpace(c.value) == "" {
			return &ValidationError{Field: c.name, Reason: "must not be empty"}
		}
	}
	return nil
}
