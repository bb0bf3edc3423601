package validation

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,pwd"`
}

func TestStruct_Valid(t *testing.T) {
	err := Struct(signup{Name: "Juan", Email: "juan@example.com", Password: "secret123"})
	assert.NoError(t, err)
}

func TestToDetails_UsesJSONNames(t *testing.T) {
	err := Struct(signup{Email: "nope", Password: "123"})
	require.Error(t, err)

	details := ToDetails(err)
	assert.Equal(t, "is required", details["name"])
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Equal(t, "must be between 6 and 72 bytes long", details["password"])
}

func TestStruct_PasswordBytes(t *testing.T) {
	cases := []struct {
		name     string
		password string
		ok       bool
	}{
		{"5 ascii bytes", "12345", false},
		{"6 ascii bytes", "123456", true},
		{"72 ascii bytes", strings.Repeat("a", 72), true},
		{"73 ascii bytes", strings.Repeat("a", 73), false},
		{"3 runes 6 bytes", "ééé", true},
		{"36 runes 72 bytes", strings.Repeat("é", 36), true},
		{"37 runes 74 bytes", strings.Repeat("é", 37), false},
		{"40 runes 80 bytes", strings.Repeat("é", 40), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Struct(signup{Name: "A", Email: "a@example.com", Password: tc.password})
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, ToDetails(err), "password")
		})
	}
}

func TestToDetails_InvalidJSON(t *testing.T) {
	var v map[string]any
	err := json.Unmarshal([]byte("{"), &v)
	require.Error(t, err)

	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))
}

func TestToDetails_Other(t *testing.T) {
	assert.Nil(t, ToDetails(nil))
	assert.Equal(t, map[string]string{"payload": "invalid payload"}, ToDetails(errors.New("boom")))
}
