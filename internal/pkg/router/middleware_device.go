package router

import (
	"net/http"
	"strings"
)

// HeaderDeviceID is the header that identifies the calling device.
const HeaderDeviceID = "X-Device-ID"

func middlewareDeviceID(exemptEndpoints map[string]map[string]struct{}) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := matchedRoutePath(r)

			if s, ok := exemptEndpoints[r.Method]; ok {
				if _, skip := s[path]; skip {
					next.ServeHTTP(w, r)
					return
				}
			}

			if strings.TrimSpace(r.Header.Get(HeaderDeviceID)) == "" {
				writeJSON(w, map[string]string{"message": "Device identifier required"}, http.StatusBadRequest)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
