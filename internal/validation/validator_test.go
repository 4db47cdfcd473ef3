package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/ticket-tracker/pkg/util/errorutil"
)

type samplePayload struct {
	Name   string  `json:"name" validate:"required,min=3,max=5"`
	Email  string  `json:"email" validate:"required,email"`
	Status *string `json:"status,omitempty" validate:"omitnil,oneof=todo done"`
}

func strPtr(s string) *string { return &s }

func TestValidator_Struct(t *testing.T) {
	v := New()

	require.NoError(t, v.Struct(samplePayload{Name: "abcd", Email: "a@b.co"}))
	require.NoError(t, v.Struct(samplePayload{Name: "abcd", Email: "a@b.co", Status: strPtr("done")}))

	err := v.Struct(samplePayload{Name: "ab", Email: "nope", Status: strPtr("later")})
	domainErr := apperrors.ToDomainError(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, apperrors.CodeValidationFailed, domainErr.Code)
	assert.Equal(t, 400, domainErr.HTTPStatus)
	assert.Equal(t, map[string]any{
		"name":   "must be at least 3 characters",
		"email":  "must be a valid email address",
		"status": "must be one of: todo, done",
	}, domainErr.Details)
}

func TestValidator_Required(t *testing.T) {
	err := New().Struct(samplePayload{})
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "is required", domainErr.Details["name"])
	assert.Equal(t, "is required", domainErr.Details["email"])
}

type secretPayload struct {
	Password string `json:"password" validate:"required,maxbytes=8"`
}

func TestValidator_MaxBytes(t *testing.T) {
	v := New()

	require.NoError(t, v.Struct(secretPayload{Password: "12345678"}))

	// four runes, eight bytes: within the limit
	require.NoError(t, v.Struct(secretPayload{Password: "éééé"}))

	// five runes, ten bytes: over the byte limit although short in characters
	err := v.Struct(secretPayload{Password: "ééééé"})
	domainErr := apperrors.ToDomainError(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, apperrors.CodeValidationFailed, domainErr.Code)
	assert.Equal(t, "must be at most 8 bytes", domainErr.Details["password"])
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"name":"abc","email":"a@b.co"}`},
		{name: "null pointer", body: `{"name":"abc","status":null}`},
		{name: "empty", body: ``, wantErr: true},
		{name: "whitespace", body: "  \n", wantErr: true},
		{name: "unknown key", body: `{"name":"abc","owner":"x"}`, wantErr: true},
		{name: "wrong type", body: `{"name":5}`, wantErr: true},
		{name: "array", body: `[]`, wantErr: true},
		{name: "malformed", body: `{"name":`, wantErr: true},
		{name: "trailing data", body: `{"name":"abc"}{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst samplePayload
			err := DecodeJSON([]byte(tt.body), &dst)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeValidationFailed, apperrors.ToDomainError(err).Code)
		})
	}
}

func TestDecodeJSON_NullLeavesPointerNil(t *testing.T) {
	var dst samplePayload
	require.NoError(t, DecodeJSON([]byte(`{"status":null}`), &dst))
	assert.Nil(t, dst.Status)
}
