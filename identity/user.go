// Package identity manages the users on whose behalf the tests call the case engine.
package identity

import (
	"context"
	"sync"

	"github.com/cafienne/engine-contract-tests/client"
	"github.com/cafienne/engine-contract-tests/cmmn"
)

// Logger receives token lifecycle messages. *logging.Logger implements it.
type Logger interface {
	Debugf(message string, args ...interface{})
}

type nullLogger struct{}

func (nullLogger) Debugf(string, ...interface{}) {}

// User is someone known to the token service by ID. A User is safe for concurrent use,
// and a nil *User makes anonymous requests.
type User struct {
	ID string

	lock   sync.Mutex
	token  string
	info   *cmmn.UserInformation
	logger Logger
}

// Anonymous is the user without an id. It never has a token.
var Anonymous = NewUser("")

func NewUser(id string) *User {
	return &User{ID: id}
}

// WithLogger sets where token changes are logged, and returns the same user.
func (u *User) WithLogger(logger Logger) *User {
	u.lock.Lock()
	u.logger = logger
	u.lock.Unlock()
	return u
}

func (u *User) String() string {
	return u.UserID()
}

func (u *User) UserID() string {
	if u == nil {
		return ""
	}
	return u.ID
}

// BearerToken returns the current token, or "" if the user has not logged in.
func (u *User) BearerToken() string {
	if u == nil {
		return ""
	}
	u.lock.Lock()
	defer u.lock.Unlock()
	return u.token
}

// SetToken replaces the token.
func (u *User) SetToken(token string) {
	u.lock.Lock()
	defer u.lock.Unlock()
	logger := u.getLogger()
	switch {
	case u.token == token:
		logger.Debugf("New token for user %s is same as before", u.ID)
	case u.token == "":
		logger.Debugf("Setting token for user %s", u.ID)
	default:
		logger.Debugf("Updating token for user %s", u.ID)
	}
	u.token = token
}

func (u *User) ClearToken() {
	u.lock.Lock()
	defer u.lock.Unlock()
	u.getLogger().Debugf("Clearing token for user %s", u.ID)
	u.token = ""
}

// Information returns what the engine told about this user at the last login.
func (u *User) Information() (cmmn.UserInformation, bool) {
	if u == nil {
		return cmmn.UserInformation{}, false
	}
	u.lock.Lock()
	defer u.lock.Unlock()
	if u.info == nil {
		return cmmn.UserInformation{}, false
	}
	return *u.info, true
}

// TokenSource issues tokens for users.
type TokenSource interface {
	Token(ctx context.Context, user *User) (string, error)
}

// InformationSource tells what the engine knows about a user.
type InformationSource interface {
	GetUserInformation(ctx context.Context, user client.Principal, opts ...client.CallOption) (cmmn.UserInformation, error)
}

// Login fetches a fresh token and then the user's information from the engine. The second
// step fails if the user is not registered in any tenant.
func (u *User) Login(ctx context.Context, tokens TokenSource, platform InformationSource) error {
	if err := u.RefreshToken(ctx, tokens); err != nil {
		return err
	}
	info, err := platform.GetUserInformation(ctx, u)
	if err != nil {
		return err
	}
	u.lock.Lock()
	u.info = &info
	u.lock.Unlock()
	return nil
}

// RefreshToken fetches a new token without touching the user information.
func (u *User) RefreshToken(ctx context.Context, tokens TokenSource) error {
	token, err := tokens.Token(ctx, u)
	if err != nil {
		return err
	}
	u.SetToken(token)
	return nil
}

func (u *User) getLogger() Logger {
	if u.logger == nil {
		return nullLogger{}
	}
	return u.logger
}
