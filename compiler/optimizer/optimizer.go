// Package optimizer analyzes resolved commands for the planner: which
// groups of a join keep their keys and which columns a command reads.
package optimizer

import (
	"fmt"

	"github.com/brimdata/vdb/compiler/ast"
	"github.com/brimdata/vdb/metadata"
	"go.uber.org/zap"
)

type Optimizer struct {
	md     metadata.Metadata
	logger *zap.Logger
}

func New(md metadata.Metadata, logger *zap.Logger) *Optimizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Optimizer{md: md, logger: logger}
}

// FindKeyPreserved returns the groups of a resolved FROM clause whose rows
// appear at most once in the clause's result.
func FindKeyPreserved(fc ast.FromClause, md metadata.Metadata) ([]*ast.GroupSymbol, error) {
	return New(md, nil).FindKeyPreserved(fc)
}

func (o *Optimizer) FindKeyPreserved(fc ast.FromClause) ([]*ast.GroupSymbol, error) {
	set, err := o.findKeyPreserved(fc)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("key preserved groups", zap.Strings("groups", set.names()))
	return set.groups, nil
}

// KeyPreserved returns the key preserved groups of a resolved query.  A
// FROM clause listing several clauses is treated as a join of all of its
// groups on the equalities of the WHERE clause.
func (o *Optimizer) KeyPreserved(q *ast.Query) ([]*ast.GroupSymbol, error) {
	if q.From == nil || len(q.From.Clauses) == 0 {
		return nil, nil
	}
	if len(q.From.Clauses) == 1 {
		return o.FindKeyPreserved(q.From.Clauses[0])
	}
	set, err := o.commaJoin(q.From.Clauses, q.Where)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("key preserved groups", zap.Strings("groups", set.names()))
	return set.groups, nil
}

func unresolved(g *ast.GroupSymbol) error {
	return fmt.Errorf("optimizer: group %q is not resolved", g.Name)
}
