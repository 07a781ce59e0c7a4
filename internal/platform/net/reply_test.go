package net

import (
	"errors"
	"net/http"
	"testing"

	perr "hellomama/internal/platform/errors"
)

func TestError(t *testing.T) {
	status, w := Error(nil, "r1")
	if status != http.StatusOK || w.RequestID != "r1" || w.Error != "" {
		t.Fatalf("nil error envelope = %d %+v", status, w)
	}

	err := perr.WithField(perr.New(perr.ErrorCodeValidation, "stage is required"), "stage")
	status, w = Error(err, "r2")
	if status != http.StatusBadRequest || w.Code != perr.ErrorCodeValidation || w.Field != "stage" {
		t.Fatalf("validation envelope = %d %+v", status, w)
	}

	status, w = Error(errors.New("boom"), "")
	if status != http.StatusInternalServerError || w.Error != "boom" || w.Status != "Internal Server Error" {
		t.Fatalf("plain error envelope = %d %+v", status, w)
	}
}
