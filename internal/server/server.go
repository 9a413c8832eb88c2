// Package server exposes the engine over the JSON-over-HTTP protocol used by
// identity provider SDKs: every operation is a POST to "/" naming the
// operation in the X-Amz-Target header.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	goCognito "github.com/MrEthical07/goCognito"
	"github.com/MrEthical07/goCognito/token"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	targetHeader  = "X-Amz-Target"
	targetPrefix  = "AWSCognitoIdentityProviderService."
	contentType   = "application/x-amz-json-1.1"
	maxBodyBytes  = 1 << 20
	codeInternal  = "InternalErrorException"
	codeBadInput  = "InvalidParameterException"
	codeUnknownOp = "UnsupportedOperationException"
)

// Engine is the subset of *goCognito.Engine the server dispatches to.
type Engine interface {
	InitiateAuth(ctx context.Context, req goCognito.InitiateAuthRequest) (*goCognito.AuthResponse, error)
	AdminInitiateAuth(ctx context.Context, req goCognito.AdminInitiateAuthRequest) (*goCognito.AuthResponse, error)
	RespondToAuthChallenge(ctx context.Context, req goCognito.RespondToAuthChallengeRequest) (*goCognito.AuthResponse, error)
	UpdateUserAttributes(ctx context.Context, req goCognito.UpdateUserAttributesRequest) (*goCognito.UpdateUserAttributesResponse, error)
	AdminUpdateUserAttributes(ctx context.Context, req goCognito.AdminUpdateUserAttributesRequest) (*goCognito.UpdateUserAttributesResponse, error)
	VerifyUserAttribute(ctx context.Context, req goCognito.VerifyUserAttributeRequest) error
	GetUserAttributeVerificationCode(ctx context.Context, req goCognito.GetUserAttributeVerificationCodeRequest) (*goCognito.GetUserAttributeVerificationCodeResponse, error)
}

// KeySet publishes the token verification keys.
type KeySet interface {
	JWKS() token.JWKS
}

type operation func(ctx context.Context, body []byte) (any, error)

// Server routes HTTP requests to the engine.
type Server struct {
	engine     Engine
	keys       KeySet
	gatherer   prometheus.Gatherer
	logger     *zap.Logger
	operations map[string]operation
}

// New returns the HTTP handler. gatherer may be nil, in which case /metrics
// serves the default registry.
func New(engine Engine, keys KeySet, gatherer prometheus.Gatherer, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s := &Server{
		engine:   engine,
		keys:     keys,
		gatherer: gatherer,
		logger:   logger,
	}
	s.operations = map[string]operation{
		"InitiateAuth":                     handle(engine.InitiateAuth),
		"AdminInitiateAuth":                handle(engine.AdminInitiateAuth),
		"RespondToAuthChallenge":           handle(engine.RespondToAuthChallenge),
		"UpdateUserAttributes":             handle(engine.UpdateUserAttributes),
		"AdminUpdateUserAttributes":        handle(engine.AdminUpdateUserAttributes),
		"GetUserAttributeVerificationCode": handle(engine.GetUserAttributeVerificationCode),
		"VerifyUserAttribute": handle(func(ctx context.Context, req goCognito.VerifyUserAttributeRequest) (struct{}, error) {
			return struct{}{}, engine.VerifyUserAttribute(ctx, req)
		}),
	}
	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware(s.logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Get("/{poolID}/.well-known/jwks.json", s.jwks)
	r.Post("/", s.dispatch)
	return r
}

func (s *Server) jwks(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.keys.JWKS())
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	target := r.Header.Get(targetHeader)
	name := strings.TrimPrefix(target, targetPrefix)
	op, ok := s.operations[name]
	if !ok || name == target {
		writeError(w, http.StatusBadRequest, codeUnknownOp, "Unsupported operation: "+target)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadInput, "could not read request body")
		return
	}

	resp, err := op(r.Context(), body)
	if err != nil {
		s.writeEngineError(w, name, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("write response failed", zap.String("operation", name), zap.Error(err))
	}
}

func (s *Server) writeEngineError(w http.ResponseWriter, operation string, err error) {
	var badInput *badInputError
	if errors.As(err, &badInput) {
		writeError(w, http.StatusBadRequest, codeBadInput, badInput.Error())
		return
	}

	var cerr *goCognito.Error
	if errors.As(err, &cerr) {
		status := http.StatusBadRequest
		if cerr.Kind == goCognito.KindSigningError {
			status = http.StatusInternalServerError
			s.logger.Error("operation failed", zap.String("operation", operation), zap.Error(err))
		}
		writeError(w, status, cerr.Code(), cerr.Error())
		return
	}

	s.logger.Error("operation failed", zap.String("operation", operation), zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
}

type errorBody struct {
	Type    string `json:"__type"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Type: code, Message: message})
}

type badInputError struct {
	err error
}

func (e *badInputError) Error() string {
	return "invalid request body: " + e.err.Error()
}

func (e *badInputError) Unwrap() error {
	return e.err
}

func handle[Req, Resp any](fn func(context.Context, Req) (Resp, error)) operation {
	return func(ctx context.Context, body []byte) (any, error) {
		var req Req
		if len(body) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				return nil, &badInputError{err: err}
			}
		}
		return fn(ctx, req)
	}
}
