package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFields_Validate(t *testing.T) {
	valid := Fields{Name: "GitHub", URL: "https://github.com", Username: "alice", Password: "s3cret"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name  string
		mut   func(f *Fields)
		field string
	}{
		{"empty name", func(f *Fields) { f.Name = "" }, "name"},
		{"blank url", func(f *Fields) { f.URL = "   " }, "url"},
		{"empty username", func(f *Fields) { f.Username = "" }, "username"},
		{"empty password", func(f *Fields) { f.Password = "" }, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			tt.mut(&f)
			err := f.Validate()
			require.ErrorIs(t, err, ErrValidation)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestPlatformCredential_JSONRoundTripShape(t *testing.T) {
	raw := `{"id":"p1","name":"AWS","url":"https://aws.amazon.com","username":"root","password":"pw","createdDate":"2025-03-14"}`

	var p PlatformCredential
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "2025-03-14", p.CreatedDate.String())

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestDate_UnmarshalAcceptsTimestampAndNull(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-01-02T10:11:12Z"`), &d))
	assert.Equal(t, "2024-01-02", d.String())

	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.True(t, d.IsZero())

	require.Error(t, json.Unmarshal([]byte(`"yesterday"`), &d))
}

func TestNewDate_TruncatesToUTCDate(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	d := NewDate(time.Date(2026, 10, 17, 1, 30, 0, 0, loc))
	assert.Equal(t, "2026-10-16", d.String())
}

func TestWithFields_KeepsIdentity(t *testing.T) {
	created := NewDate(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	p := PlatformCredential{ID: "id-1", Name: "a", URL: "b", Username: "c", Password: "d", CreatedDate: created}

	got := p.WithFields(Fields{Name: "n", URL: "u", Username: "us", Password: "pw"})

	assert.Equal(t, "id-1", got.ID)
	assert.Equal(t, created, got.CreatedDate)
	assert.Equal(t, Fields{Name: "n", URL: "u", Username: "us", Password: "pw"}, got.Fields())
}

func TestPlatformCredential_StringHidesPassword(t *testing.T) {
	p := PlatformCredential{ID: "1", Name: "x", URL: "u", Username: "n", Password: "topsecret"}
	assert.NotContains(t, p.String(), "topsecret")
}

func TestAuthRequest_Validate(t *testing.T) {
	require.NoError(t, AuthRequest{Username: "u", Password: "p"}.Validate())
	require.ErrorIs(t, AuthRequest{Username: " ", Password: "p"}.Validate(), ErrValidation)
	require.ErrorIs(t, AuthRequest{Username: "u"}.Validate(), ErrValidation)
}
