package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppErrorCodes(t *testing.T) {
	tests := []struct {
		err  *AppError
		code int
	}{
		{NewNotFound("missing"), http.StatusNotFound},
		{NewForbidden("nope"), http.StatusForbidden},
		{NewBadRequest("bad"), http.StatusBadRequest},
		{NewConflict("busy"), http.StatusConflict},
	}

	for _, tt := range tests {
		if tt.err.Code != tt.code {
			t.Errorf("code = %d, want %d", tt.err.Code, tt.code)
		}
		if !IsCode(tt.err, tt.code) {
			t.Errorf("IsCode(%v, %d) = false", tt.err, tt.code)
		}
	}
}

func TestAsAppErrorUnwraps(t *testing.T) {
	wrapped := fmt.Errorf("request ride: %w", NewConflict("You already have an ongoing ride request"))

	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("AsAppError() did not find wrapped AppError")
	}
	if appErr.Code != http.StatusConflict {
		t.Errorf("code = %d, want 409", appErr.Code)
	}

	if _, ok := AsAppError(errors.New("plain")); ok {
		t.Error("AsAppError() matched a plain error")
	}
	if IsCode(errors.New("plain"), http.StatusNotFound) {
		t.Error("IsCode() matched a plain error")
	}
}

func TestCreatePaginationMeta(t *testing.T) {
	params := &PaginationParams{Page: 2, PageSize: 10}
	meta := CreatePaginationMeta(params, 25)

	if meta.Page != 2 || meta.PageSize != 10 {
		t.Errorf("meta page/size = %d/%d", meta.Page, meta.PageSize)
	}
	if meta.Total != 25 {
		t.Errorf("total = %d, want 25", meta.Total)
	}
	if meta.TotalPages != 3 {
		t.Errorf("total pages = %d, want 3", meta.TotalPages)
	}

	empty := CreatePaginationMeta(&PaginationParams{Page: 1, PageSize: 20}, 0)
	if empty.TotalPages != 0 {
		t.Errorf("empty total pages = %d, want 0", empty.TotalPages)
	}
}
