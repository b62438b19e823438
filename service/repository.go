package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"

	"github.com/cafienne/engine-contract-tests/client"
	"github.com/cafienne/engine-contract-tests/compare"
)

// RepositoryService deploys case definitions. Definitions are read from Folder on the
// local file system.
type RepositoryService struct {
	Engine
	Folder string
}

// ValidationError holds the messages of a definition that the engine rejected.
type ValidationError struct {
	StatusText string
	Messages   []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Validation failed: %s\n%s", e.StatusText, strings.Join(e.Messages, "\n"))
}

// ReadDefinition parses a definitions file from the repository folder.
func (s RepositoryService) ReadDefinition(fileName string) (*etree.Document, error) {
	if _, err := os.Stat(s.Folder); err != nil {
		return nil, fmt.Errorf("the configured repository folder '%s' cannot be found", s.Folder)
	}
	path := filepath.Join(s.Folder, fileName)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("file %s cannot be found on the local file system", path)
	}
	doc := etree.NewDocument()
	doc.ReadSettings.PreserveCData = true
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("file %s is not valid XML: %w", path, err)
	}
	return doc, nil
}

// DeployCase deploys the definitions under the given name in a tenant.
func (s RepositoryService) DeployCase(ctx context.Context, user client.Principal, modelName, tenant string, definition *etree.Document, opts ...client.CallOption) error {
	if user == nil {
		return errors.New("a user must be specified to deploy a case")
	}
	_, err := s.call(ctx, "Deployment of case "+modelName,
		client.Request{Method: "POST", Path: "repository/deploy/" + modelName, Query: tenantQuery(tenant), User: user, XML: definition}, 204, opts)
	return err
}

// LoadCaseDefinition fetches a deployed definition from the engine. The ".xml" extension
// of fileName is optional.
func (s RepositoryService) LoadCaseDefinition(ctx context.Context, user client.Principal, fileName, tenant string, opts ...client.CallOption) (*etree.Document, error) {
	modelName := strings.TrimSuffix(fileName, ".xml")
	resp, err := s.call(ctx, "LoadCaseDefinition "+modelName,
		client.Request{Path: "repository/load/" + modelName, Query: tenantQuery(tenant), User: user}, 200, opts)
	if err != nil || !resp.OK() {
		return nil, err
	}
	return resp.XML()
}

// ListCaseDefinitions returns the names of the definitions deployed in the tenant.
func (s RepositoryService) ListCaseDefinitions(ctx context.Context, user client.Principal, tenant string, opts ...client.CallOption) ([]string, error) {
	var names []string
	resp, err := s.callJSON(ctx, "ListCaseDefinitions for user "+userID(user),
		client.Request{Path: "repository/list", Query: tenantQuery(tenant), User: user}, 200, opts, &names)
	if err == nil && resp.OK() {
		s.debugf("Cases deployed in the server: %v", names)
	}
	return names, err
}

// ValidateCaseDefinition sends a definition for validation. If the engine rejects it as
// expected, the validation messages are returned. If it rejects it unexpectedly, the
// error is a *ValidationError.
func (s RepositoryService) ValidateCaseDefinition(ctx context.Context, user client.Principal, definition *etree.Document, opts ...client.CallOption) ([]string, error) {
	expected := client.ExpectedStatus(200, opts)
	resp, err := s.Client.Do(ctx, client.Request{Method: "POST", Path: "repository/validate", User: user, XML: definition, Session: s.Session})
	if err != nil {
		return nil, fmt.Errorf("ValidateCaseDefinition: %w", err)
	}
	if resp.OK() {
		return nil, resp.Check(expected)
	}
	var messages []string
	if err := resp.Decode(&messages); err != nil {
		messages = []string{resp.Text()}
	}
	if resp.Status != expected {
		return messages, &ValidationError{StatusText: resp.StatusText, Messages: messages}
	}
	return messages, nil
}

// ValidateAndDeploy deploys a definitions file from the repository folder, unless the
// engine already has an identical copy.
func (s RepositoryService) ValidateAndDeploy(ctx context.Context, user client.Principal, fileName, tenant string) error {
	definition, err := s.ReadDefinition(fileName)
	if err != nil {
		return err
	}
	serverVersion, err := s.LoadCaseDefinition(ctx, user, fileName, tenant)
	var statusErr *client.StatusError
	switch {
	case err == nil:
		if compare.SameXML(definition, serverVersion) {
			s.debugf("Skipping deployment of %s, as server already has it", fileName)
			return nil
		}
	case errors.As(err, &statusErr):
		s.debugf("Server does not have %s yet: %s", fileName, err)
	default:
		return err
	}
	if _, err := s.ValidateCaseDefinition(ctx, user, definition); err != nil {
		return err
	}
	return s.DeployCase(ctx, user, fileName, tenant, definition)
}
