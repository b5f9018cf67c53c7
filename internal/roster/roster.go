// Package roster loads approval rights from a YAML file and keeps them
// current while the file is edited.
package roster

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/alexanderramin/ambitions/internal/domain"
	"github.com/alexanderramin/ambitions/internal/repository"
	"gopkg.in/yaml.v3"
)

// File is the on-disk roster format.
//
//	approvers:
//	  - email: head.of.sales@example.com
//	    all: true
//	  - email: mona@example.com
//	    owners: [alice@example.com, bob@example.com]
type File struct {
	Approvers []Entry `yaml:"approvers"`
}

type Entry struct {
	Email  string   `yaml:"email"`
	All    bool     `yaml:"all,omitempty"`
	Owners []string `yaml:"owners,omitempty"`
}

// OwnerDirectory resolves goal owner ids to directory entries.
type OwnerDirectory interface {
	GetByID(ctx context.Context, id string) (*domain.Person, error)
}

type grant struct {
	all    bool
	owners map[string]bool
}

// Roster answers approval questions from the most recently loaded file. It is
// safe for concurrent use.
type Roster struct {
	path   string
	people OwnerDirectory

	mu     sync.RWMutex
	grants map[string]grant
}

// Load reads path and returns a Roster backed by it.
func Load(path string, people OwnerDirectory) (*Roster, error) {
	r := &Roster{path: path, people: people}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Path returns the file the roster was loaded from.
func (r *Roster) Path() string { return r.path }

// Reload re-reads the file. On error the previous grants stay in effect.
func (r *Roster) Reload() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("reading roster: %w", err)
	}
	grants, err := parse(data)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.grants = grants
	r.mu.Unlock()
	return nil
}

// parse decodes and validates roster YAML, keyed by normalized approver email.
func parse(data []byte) (map[string]grant, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing roster: %w", err)
	}
	grants := make(map[string]grant, len(f.Approvers))
	for i, e := range f.Approvers {
		email := domain.NormalizeEmail(e.Email)
		if email == "" {
			return nil, fmt.Errorf("roster approvers[%d]: email is required", i)
		}
		if !e.All && len(e.Owners) == 0 {
			return nil, fmt.Errorf("roster approvers[%d] (%s): set all or list owners", i, email)
		}
		g := grants[email]
		g.all = g.all || e.All
		if g.owners == nil {
			g.owners = make(map[string]bool)
		}
		for _, o := range e.Owners {
			g.owners[domain.NormalizeEmail(o)] = true
		}
		grants[email] = g
	}
	return grants, nil
}

// Len reports how many approvers are loaded.
func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.grants)
}

// CanApprove reports whether the roster grants approverEmail approval over
// goals owned by ownerID.
func (r *Roster) CanApprove(ctx context.Context, approverEmail, ownerID string) (bool, error) {
	r.mu.RLock()
	g, ok := r.grants[domain.NormalizeEmail(approverEmail)]
	r.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if g.all {
		return true, nil
	}
	if r.people == nil {
		return false, nil
	}
	owner, err := r.people.GetByID(ctx, ownerID)
	if repository.IsNotFound(err) {
		// An owner outside the directory cannot be matched by email.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("looking up goal owner %s: %w", ownerID, err)
	}
	return g.owners[domain.NormalizeEmail(owner.Email)], nil
}
