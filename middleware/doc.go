// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request IDs

WithRequestID tags each request with an id (the caller's X-Request-ID or a
fresh UUID) and echoes it back in the response:

	mux.HandleFunc("GET /health", middleware.WithRequestID(handler))

Handlers read it with RequestID(r.Context()).

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithRequestID(middleware.WithLogging(handler)))

Logs request start (method, path, remote, request_id) and completion
(status, duration_ms, request_id).

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, DELETE, OPTIONS with headers Content-Type,
If-None-Match, X-Request-ID. ETag and X-Request-ID are exposed to scripts.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse JSON request bodies:

	var req models.CreateQuestionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
*/
package middleware
