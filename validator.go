package main

import (
	"fmt"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/options"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/authorization"
)

// newAuthorized returns the predicate for the authorized users file, or nil
// when no file is configured and every Canvas user is authorized.
func newAuthorized(usersFile string, done <-chan bool) (options.AuthorizedFunc, error) {
	if usersFile == "" {
		return nil, nil
	}

	users, err := authorization.NewUsersFile(usersFile, done, nil)
	if err != nil {
		return nil, fmt.Errorf("could not load authorized users file: %v", err)
	}
	return users.Authorized, nil
}
