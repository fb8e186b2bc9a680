package apierr

import (
	"net/http"
	"testing"
)

func TestHTTPStatus_KnownCodes(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{Validation("bad input"), http.StatusBadRequest},
		{SessionNotFound("sess1"), http.StatusNotFound},
		{AnalysisNotReady("sess1"), http.StatusConflict},
		{RateLimitExceeded(), http.StatusTooManyRequests},
		{Internal(), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := c.err.HTTPStatus(); got != c.want {
			t.Errorf("%s: expected status %d, got %d", c.err.Code, c.want, got)
		}
	}
}

func TestValidation_CarriesFieldDetails(t *testing.T) {
	err := Validation("invalid request", FieldDetail{Field: "clientId", Message: "required"})
	if len(err.Details) != 1 || err.Details[0].Field != "clientId" {
		t.Fatalf("expected field detail to survive, got %+v", err.Details)
	}
}

func TestAs_PassesThroughAPIError(t *testing.T) {
	original := SessionNotFound("sess1")
	if got := As(original); got != original {
		t.Fatalf("expected As to return the same *Error, got %+v", got)
	}
}

func TestAs_WrapsUnknownError(t *testing.T) {
	got := As(http.ErrBodyNotAllowed)
	if got.Code != CodeInternal {
		t.Fatalf("expected CodeInternal for unknown error, got %s", got.Code)
	}
}

func TestAs_NilIsNil(t *testing.T) {
	if As(nil) != nil {
		t.Fatal("expected nil in, nil out")
	}
}
