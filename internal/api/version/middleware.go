// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package version

import "net/http"

// Middleware stores the requested API version in the request context and
// echoes it back in the response header.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		version := r.Header.Get(Header)
		if version == "" {
			version = LatestVersion
		}

		w.Header().Set(Header, version)
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), version)))
	})
}
