// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContextDefault(t *testing.T) {
	assert.Equal(t, LatestVersion, FromContext(context.Background()))
	assert.Equal(t, "2020-01-01", FromContext(WithContext(context.Background(), "2020-01-01")))
}

func TestMiddleware(t *testing.T) {
	var seen string
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, LatestVersion, seen)
	assert.Equal(t, LatestVersion, rec.Header().Get(Header))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(Header, "2020-01-01")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "2020-01-01", seen)
	assert.Equal(t, "2020-01-01", rec.Header().Get(Header))
}
