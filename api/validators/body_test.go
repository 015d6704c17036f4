package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/fest-cart/pkg/errors"
)

type addItemBody struct {
	EventID string `json:"event_id" validate:"required,max=8,printascii"`
}

func decode(t *testing.T, body string) error {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var dest addItemBody
	return DecodeJSONBody(req, &dest)
}

func TestDecodeJSONBody(t *testing.T) {
	if err := decode(t, `{"event_id":"robo"}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := map[string]string{
		"empty body":    ``,
		"malformed":     `{"event_id":`,
		"unknown field": `{"event_id":"robo","qty":2}`,
		"missing id":    `{}`,
		"too long":      `{"event_id":"abcdefghij"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			err := decode(t, body)
			if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestValidationDetailsUseJSONNames(t *testing.T) {
	err := pkgerrors.As(decode(t, `{}`))
	details, ok := err.Details().(map[string]string)
	if !ok || details["event_id"] != "is required" {
		t.Fatalf("unexpected details %#v", err.Details())
	}
}

func TestValidSessionID(t *testing.T) {
	if !ValidSessionID("3f2b8f6e-4f0c-4b8e-9a53-2b9d8f1c7a10") {
		t.Fatalf("expected uuid to be accepted")
	}
	for _, bad := range []string{"", "alice", "../../etc/passwd"} {
		if ValidSessionID(bad) {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}
