package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

var _ api.AuthServiceHandler = (*AuthService)(nil)

// AuthService issues user tokens to trusted front-end clients.
type AuthService struct {
	store         storage.Store
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(store storage.Store, authenticator auth.Authenticator, jwtManager *auth.JWTManager, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		store:         store,
		authenticator: authenticator,
		jwtManager:    jwtManager,
		logger:        logger,
	}
}

// IssueToken authenticates the client, records the user it vouches for and
// returns a token acting as that user.
func (s *AuthService) IssueToken(ctx context.Context, req *connect.Request[api.IssueTokenRequest]) (*connect.Response[api.IssueTokenResponse], error) {
	s.logger.Info("IssueToken request", "client_id", req.Msg.ClientID, "user_id", req.Msg.User.ID)

	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	if err := s.authenticator.Authenticate(ctx, req.Msg.ClientID, req.Msg.ClientSecret); err != nil {
		s.logger.Warn("Client authentication failed", "client_id", req.Msg.ClientID)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return nil, connect.NewError(connect.CodeUnauthenticated, err)
		}
		return nil, connect.NewError(connect.CodeInternal, errOperationFailed)
	}

	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		return tx.UpsertUser(ctx, fromAPIUser(req.Msg.User))
	})
	if err != nil {
		return nil, toConnectError(s.logger, "IssueToken", err)
	}

	issuedAt := time.Now()
	token, err := s.jwtManager.Generate(req.Msg.User.ID, req.Msg.ClientID)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", req.Msg.User.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, errOperationFailed)
	}

	s.logger.Info("Token issued", "client_id", req.Msg.ClientID, "user_id", req.Msg.User.ID)
	return connect.NewResponse(&api.IssueTokenResponse{
		Token:     token,
		ExpiresAt: issuedAt.Add(s.jwtManager.TTL()).Unix(),
	}), nil
}
