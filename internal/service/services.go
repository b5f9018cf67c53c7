package service

import (
	"github.com/alexanderramin/ambitions/internal/repository"
)

// Services is the wired set of use cases over one store. All of them share a
// single KeyedLocker, which is what makes per-goal serialization hold across
// use cases.
type Services struct {
	Lifecycle LifecycleService
	Goals     GoalService
	Hierarchy HierarchyService
	Assembler Assembler
	People    PersonService
	Locks     *KeyedLocker
}

// New wires every service over store. A nil approver falls back to the
// directory manager relationship.
func New(store repository.Store, approver Approver, opts ...Option) *Services {
	if approver == nil {
		approver = NewDirectoryApprover(store.Repos().People)
	}
	locks := NewKeyedLocker()
	asm := NewAssembler(store, opts...)
	hier := NewHierarchyService(store, locks, opts...)
	return &Services{
		Lifecycle: NewLifecycleService(store, locks, approver, hier, asm, opts...),
		Goals:     NewGoalService(store, locks, hier, asm, opts...),
		Hierarchy: hier,
		Assembler: asm,
		People:    NewPersonService(store, opts...),
		Locks:     locks,
	}
}
