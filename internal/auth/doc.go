// Package auth provides the authentication core: password hashing, bearer
// token issuance and verification, the request authentication gate, and
// the account service orchestrating them.
//
// # Configuration
//
//	TOKEN_SECRET=<secret>     # HMAC signing secret, auto-generated if empty
//	TOKEN_EXPIRY=1h           # Bearer token lifetime
//	BCRYPT_COST=12            # bcrypt cost factor
//	MAX_LOGIN_ATTEMPTS=5      # Failed logins before lockout
//	RATE_LIMIT_WINDOW=15m     # Window for counting attempts
//	LOCKOUT_DURATION=30m      # Lockout length after too many failures
//
// # Usage
//
// Initialize in entrypoint:
//
//	tokens := auth.NewTokenService(cfg.Auth.TokenSecret, cfg.Auth.TokenExpiry)
//	service, err := auth.NewService(userRepo, tokens, cfg.Auth)
//	protected.Use(auth.RequireAuth(tokens))
//
// Extract the authenticated identity in handlers:
//
//	claims, ok := auth.CurrentClaims(c)
package auth
