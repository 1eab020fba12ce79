// Package inmem implements the domain repositories on in-memory maps. It
// backs the API tests and local runs that do not need PostgreSQL.
package inmem

import (
	"sync"

	"github.com/lchelle/servicediary/core/feedback"
	"github.com/lchelle/servicediary/core/org"
	"github.com/lchelle/servicediary/core/record"
	"github.com/lchelle/servicediary/core/user"
)

// DB holds the shared tables. One mutex serializes all access so a batch
// write observes a consistent view.
type DB struct {
	mu       sync.Mutex
	users    map[string]user.User
	orgs     map[string]org.Organization
	records  []record.Record
	feedback []feedback.Feedback
	seq      int64
}

func NewDB() *DB {
	return &DB{
		users: make(map[string]user.User),
		orgs:  make(map[string]org.Organization),
	}
}
