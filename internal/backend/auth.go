package backend

import (
	"context"
	"net/http"
	"strings"

	"github.com/diogenes-ai-code/gtadmin/internal/errors"
)

// User is the account behind a session.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is a signed-in session of the auth service.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	User         User   `json:"user"`
}

type passwordGrant struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn signs in with email and password. Accounts that authenticate but
// are not on the allow-list are signed out again and get a Forbidden
// "access denied" error.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, errors.InvalidArgs("email and password are required")
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+"/auth/v1/token?grant_type=password",
		passwordGrant{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	// The token endpoint is always called with the anonymous key.
	req.Header.Set("Authorization", "Bearer "+c.anonKey)

	var sess Session
	if err := c.do(req, "sign in", &sess); err != nil {
		if errors.Is(err, errors.KindInvalidArgs) {
			// The auth service answers bad credentials with 400.
			return nil, errors.Wrap(err, errors.KindUnauthorized, "invalid login credentials")
		}
		return nil, err
	}

	c.mu.Lock()
	c.session = &sess
	c.mu.Unlock()

	if !c.IsAllowedEmail(sess.User.Email) {
		c.logger.Warn("sign in rejected: account not on allow-list", "email", sess.User.Email)
		if err := c.SignOut(ctx); err != nil {
			c.logger.Warn("sign out after rejected sign in failed", "error", err)
		}
		return nil, errors.Forbidden("access denied").
			WithSuggestion("This portal is only available to administrators")
	}

	c.logger.Info("signed in", "email", sess.User.Email)
	s := sess
	return &s, nil
}

// SignOut ends the current session. The local session is dropped even if
// the remote call fails. Signing out without a session is a no-op.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	sess := c.session
	c.session = nil
	c.mu.Unlock()

	if sess == nil {
		return nil
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+sess.AccessToken)
	return c.do(req, "sign out", nil)
}
