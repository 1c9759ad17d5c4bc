package http

import (
	"context"
	"net/http"

	applog "salesreport/internal/log"
)

type claimsKey struct{}

// SubjectFromContext returns the username of the authenticated caller.
func SubjectFromContext(ctx context.Context) string {
	s, _ := ctx.Value(claimsKey{}).(string)
	return s
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	username, password, ok := s.readCredentials(w, r)
	if !ok {
		return
	}

	msg, err := s.auth.Signup(r.Context(), username, password)
	if err != nil {
		s.writeError(w, r, applog.OpSignup, err)
		return
	}

	applog.FromContext(r.Context()).WithComponent(applog.ComponentAuth).InfoContext(r.Context(),
		"User registered", applog.FieldUsername, username)
	NewResponse().
		Status(http.StatusCreated).
		JSON(map[string]string{"message": msg}).
		Write(w)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	username, password, ok := s.readCredentials(w, r)
	if !ok {
		return
	}

	token, err := s.auth.Login(r.Context(), username, password)
	if err != nil {
		s.writeError(w, r, applog.OpLogin, err)
		return
	}

	NewResponse().JSON(map[string]string{"access": token}).Write(w)
}

func (s *Server) readCredentials(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Invalid request body",
			applog.FieldOperation, applog.OpParse, applog.FieldError, err.Error())
		BadRequestError("invalid request body").Write(w)
		return "", "", false
	}
	return parser.Get("username"), parser.Get("password"), true
}

// requireBearer rejects requests without a valid bearer token and stores the
// token subject in the request context.
func (s *Server) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			UnauthorizedError("authentication credentials were not provided").Write(w)
			return
		}
		claims, err := s.auth.Verify(token)
		if err != nil {
			s.writeError(w, r, applog.OpVerify, err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
