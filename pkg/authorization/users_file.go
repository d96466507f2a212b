package authorization

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/sessions"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/logger"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/watcher"
)

// UsersFile authorizes the Canvas user ids listed in a file, one per line.
// Lines starting with # are comments. The file is reloaded whenever it
// changes on disk.
type UsersFile struct {
	path  string
	users atomic.Pointer[map[string]struct{}]
}

// NewUsersFile loads path and watches it until done is closed. onUpdate, if
// set, is called after every reload attempt.
func NewUsersFile(path string, done <-chan bool, onUpdate func()) (*UsersFile, error) {
	u := &UsersFile{path: path}
	if err := u.load(); err != nil {
		return nil, err
	}

	if err := watcher.WatchFileForUpdates(path, done, func() {
		if err := u.load(); err != nil {
			logger.Errorf("%v: no changes were made to the authorized users", err)
		}
		if onUpdate != nil {
			onUpdate()
		}
	}); err != nil {
		return nil, fmt.Errorf("could not watch authorized users file: %v", err)
	}
	return u, nil
}

func (u *UsersFile) load() error {
	r, err := os.Open(u.path)
	if err != nil {
		return fmt.Errorf("could not open authorized users file: %v", err)
	}
	defer r.Close()

	csvReader := csv.NewReader(r)
	csvReader.Comma = ','
	csvReader.Comment = '#'
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return fmt.Errorf("could not read authorized users file: %v", err)
	}

	users := make(map[string]struct{}, len(records))
	for _, record := range records {
		id := strings.TrimSpace(record[0])
		if id == "" {
			continue
		}
		users[id] = struct{}{}
	}
	u.users.Store(&users)
	logger.Printf("loaded %d authorized users from %s", len(users), u.path)
	return nil
}

// Authorized reports whether the session's Canvas user is listed.
func (u *UsersFile) Authorized(_ context.Context, session *sessions.SessionState) bool {
	if session == nil || session.UserID == "" {
		return false
	}
	users := u.users.Load()
	if users == nil {
		return false
	}
	_, ok := (*users)[session.UserID]
	return ok
}
