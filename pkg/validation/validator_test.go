package validation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type profileInput struct {
	Firstname string `json:"firstname" validate:"required,alphadash,max=255"`
	Lastname  string `json:"lastname" validate:"required,alphadash,max=255"`
}

type passwordInput struct {
	Password     string `json:"password" validate:"required,pwd"`
	Confirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

func TestStruct_AlphaDash(t *testing.T) {
	assert.Nil(t, Struct(profileInput{Firstname: "Mary-Jane", Lastname: "O_Neil2"}))
	assert.Nil(t, Struct(profileInput{Firstname: "José", Lastname: "Ñuñez"}))

	details := Struct(profileInput{Firstname: "Mary Jane", Lastname: ""})
	assert.Equal(t, "may only contain letters, numbers, dashes and underscores", details["firstname"])
	assert.Equal(t, "is required", details["lastname"])
}

func TestStruct_MaxLength(t *testing.T) {
	details := Struct(profileInput{Firstname: strings.Repeat("a", 256), Lastname: "ok"})
	assert.Equal(t, "must be at most 255 characters long", details["firstname"])
}

func TestStruct_PasswordPolicy(t *testing.T) {
	details := Struct(passwordInput{Password: "short", Confirmation: "short"})
	assert.Equal(t, "must be at least 8 characters long", details["password"])

	details = Struct(passwordInput{Password: "Str0ngPass!", Confirmation: "Str0ngPass?"})
	assert.Equal(t, "confirmation does not match", details["password_confirmation"])

	assert.Nil(t, Struct(passwordInput{Password: "Str0ngPass!", Confirmation: "Str0ngPass!"}))
}

func TestToDetails_InvalidJSON(t *testing.T) {
	var v map[string]any
	err := json.Unmarshal([]byte("{"), &v)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))
	assert.Nil(t, ToDetails(nil))
}
