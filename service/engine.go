// Package service wraps the case engine API, one type per area of the API. Every call
// checks the response status: by default the status that the operation normally returns,
// or the one given with client.ExpectStatus. A call that receives an unexpected status
// fails with a *client.StatusError.
package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/cafienne/engine-contract-tests/client"
)

// Engine is what all services share: the HTTP client, and the session whose consistency
// headers are exchanged on every call. Session may be nil.
type Engine struct {
	Client  *client.Client
	Session *client.Session
	Logger  client.Logger
}

// Services gives access to every area of the API through one Engine.
type Services struct {
	Cases       CaseService
	CaseFile    CaseFileService
	CasePlan    CasePlanService
	CaseHistory CaseHistoryService
	CaseTeam    CaseTeamService
	Tasks       TaskService
	Tenants     TenantService
	Platform    PlatformService
	Repository  RepositoryService
	Requests    RequestService
	Debug       DebugService
}

// NewServices creates all services. repositoryFolder is where case definitions to be
// deployed are read from.
func NewServices(engine Engine, repositoryFolder string) Services {
	return Services{
		Cases:       CaseService{engine},
		CaseFile:    CaseFileService{engine},
		CasePlan:    CasePlanService{engine},
		CaseHistory: CaseHistoryService{engine},
		CaseTeam:    CaseTeamService{engine},
		Tasks:       TaskService{engine},
		Tenants:     TenantService{engine},
		Platform:    PlatformService{engine},
		Repository:  RepositoryService{Engine: engine, Folder: repositoryFolder},
		Requests:    RequestService{engine},
		Debug:       DebugService{engine},
	}
}

// WithSession returns the same services bound to another session.
func (s Services) WithSession(session *client.Session) Services {
	engine := s.Cases.Engine
	engine.Session = session
	return NewServices(engine, s.Repository.Folder)
}

func (e Engine) call(ctx context.Context, operation string, r client.Request, usual int, opts []client.CallOption) (*client.Response, error) {
	r.Session = e.Session
	resp, err := e.Client.Do(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	if err := resp.Check(client.ExpectedStatus(usual, opts)); err != nil {
		return resp, fmt.Errorf("%s: %w", operation, err)
	}
	return resp, nil
}

// callJSON is like call, but decodes a successful response into the given value.
func (e Engine) callJSON(ctx context.Context, operation string, r client.Request, usual int, opts []client.CallOption, into interface{}) (*client.Response, error) {
	resp, err := e.call(ctx, operation, r, usual, opts)
	if err != nil {
		return resp, err
	}
	if resp.OK() && into != nil {
		if err := resp.Decode(into); err != nil {
			return resp, fmt.Errorf("%s: %w", operation, err)
		}
	}
	return resp, nil
}

func (e Engine) debugf(message string, args ...interface{}) {
	if e.Logger != nil {
		e.Logger.Debugf(message, args...)
	}
}

func (e Engine) infof(message string, args ...interface{}) {
	if e.Logger != nil {
		e.Logger.Infof(message, args...)
	}
}

// escapePath escapes each segment of a slash separated path.
func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

func tenantQuery(tenant string) url.Values {
	if tenant == "" {
		return nil
	}
	return url.Values{"tenant": []string{tenant}}
}

func userID(p client.Principal) string {
	if p == nil {
		return "anonymous"
	}
	return p.UserID()
}
