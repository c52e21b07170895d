package validation

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
)

type sample struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Username string `json:"username" binding:"required,uname"`
}

func TestToDetailsUsesJSONFieldNames(t *testing.T) {
	Init()

	err := binding.Validator.ValidateStruct(&sample{
		Email:    "not-an-email",
		Password: "short",
		Username: "ok-but-has-dashes",
	})
	if err == nil {
		t.Fatal("expected validation errors")
	}

	details := ToDetails(err)
	for _, field := range []string{"email", "password", "username"} {
		if _, ok := details[field]; !ok {
			t.Errorf("details missing %q: %v", field, details)
		}
	}
	if details["password"] != "min length 8" {
		t.Errorf("password detail = %q", details["password"])
	}
}

func TestToDetailsHandlesNonValidatorErrors(t *testing.T) {
	if ToDetails(nil) != nil {
		t.Error("nil error should map to nil details")
	}

	details := ToDetails(errAny{})
	if details["payload"] != "invalid payload" {
		t.Errorf("fallback details = %v", details)
	}
}

type errAny struct{}

func (errAny) Error() string { return "boom" }
