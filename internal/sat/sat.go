// Package sat provides a small CNF builder and subprocess bindings to
// external SAT solver binaries speaking the DIMACS format.
package sat

import (
	"fmt"
	"strings"
)

// Solution is one satisfying assignment as signed literals: positive means
// true, negative means false. A nil Solution means unsatisfiable.
type Solution []int64

// SAT is a CNF formula over variables 1..Variables.
type SAT struct {
	Variables uint64
	Clauses   [][]int64
}

// NewVar allocates the next unused variable and returns its index.
func (s *SAT) NewVar() int64 {
	s.Variables++
	return int64(s.Variables)
}

// AddClause appends one disjunction of literals.
func (s *SAT) AddClause(literals ...int64) {
	s.Clauses = append(s.Clauses, literals)
}

// AtMostK encodes a Sinz sequential counter bounding how many of the
// literals may be true. It is a no-op when k covers all literals and
// forces every literal false when k is zero or negative.
func (s *SAT) AtMostK(literals []int64, k int) {
	n := len(literals)
	if k >= n {
		return
	}
	if k <= 0 {
		for _, lit := range literals {
			s.AddClause(-lit)
		}
		return
	}

	// regs[i][j] reads: at least j+1 of the first i+1 literals are true.
	// Only prefixes 0..n-2 need registers.
	regs := make([][]int64, n-1)
	for i := range regs {
		regs[i] = make([]int64, k)
		for j := range regs[i] {
			regs[i][j] = s.NewVar()
		}
	}

	s.AddClause(-literals[0], regs[0][0])
	for j := 1; j < k; j++ {
		s.AddClause(-regs[0][j])
	}
	for i := 1; i < n-1; i++ {
		s.AddClause(-literals[i], regs[i][0])
		s.AddClause(-regs[i-1][0], regs[i][0])
		for j := 1; j < k; j++ {
			s.AddClause(-literals[i], -regs[i-1][j-1], regs[i][j])
			s.AddClause(-regs[i-1][j], regs[i][j])
		}
		s.AddClause(-literals[i], -regs[i-1][k-1])
	}
	s.AddClause(-literals[n-1], -regs[n-2][k-1])
}

// ToDIMACS renders the formula in DIMACS-CNF form for solver stdin.
func (s SAT) ToDIMACS() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "p cnf %d %d\n", s.Variables, len(s.Clauses))
	for _, clause := range s.Clauses {
		for _, literal := range clause {
			fmt.Fprintf(&builder, "%d ", literal)
		}
		builder.WriteString("0\n")
	}
	return builder.String()
}
