package application

import (
	"fmt"
	"sync"

	"github.com/bnema/solana-counter/internal/domain"
	"github.com/bnema/solana-counter/internal/ports"
)

// ResolvedProgram is a program client bound to its derived counter address.
type ResolvedProgram struct {
	domain.ProgramContext
	Program ports.CounterProgram
}

// ProgramSupplier derives the counter address once and hands out the same
// ResolvedProgram to every consumer.
type ProgramSupplier struct {
	program ports.CounterProgram
	seed    string

	once     sync.Once
	resolved ResolvedProgram
	err      error
	ready    bool
	mu       sync.RWMutex
}

func NewProgramSupplier(program ports.CounterProgram, seed string) *ProgramSupplier {
	if seed == "" {
		seed = domain.CounterSeed
	}

	return &ProgramSupplier{program: program, seed: seed}
}

// Setup resolves the program context. Subsequent calls return the first result.
func (s *ProgramSupplier) Setup() (ResolvedProgram, error) {
	s.once.Do(func() {
		if s.program == nil {
			s.err = fmt.Errorf("setup counter program: %w", domain.ErrProgramNotReady)
			return
		}

		programCtx, err := domain.DeriveProgramContext(s.program.ProgramID(), s.seed)
		if err != nil {
			s.err = fmt.Errorf("setup counter program: %w", err)
			return
		}

		s.mu.Lock()
		s.resolved = ResolvedProgram{ProgramContext: programCtx, Program: s.program}
		s.ready = true
		s.mu.Unlock()
	})

	if s.err != nil {
		return ResolvedProgram{}, s.err
	}
	return s.resolved, nil
}

// Resolved reports the program context without resolving it.
func (s *ProgramSupplier) Resolved() (ResolvedProgram, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.resolved, s.ready
}
