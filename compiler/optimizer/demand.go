package optimizer

import (
	"github.com/brimdata/vdb/compiler/ast"
	"github.com/brimdata/vdb/compiler/optimizer/demand"
	"github.com/brimdata/vdb/metadata"
)

// DemandForCommand returns the catalog columns a resolved command and the
// commands nested in it refer to, keyed by group and then column.
// Temporary groups are left out since no source provides them.
func DemandForCommand(cmd ast.Command) demand.Demand {
	d := demand.None()
	ast.Inspect(cmd, func(c ast.Command) bool {
		for _, e := range ast.Exprs(c) {
			d = demand.Union(d, demandForExpr(e))
		}
		return true
	})
	return d
}

func demandForExpr(e ast.Expr) demand.Demand {
	d := demand.None()
	ast.Walk(e, func(e ast.Expr) bool {
		if el, ok := e.(*ast.ElementSymbol); ok {
			d = demand.Union(d, demandForElement(el))
		}
		return true
	})
	return d
}

func demandForElement(e *ast.ElementSymbol) demand.Demand {
	if e.ID == nil {
		return demand.None()
	}
	if _, ok := e.ID.(*metadata.TempID); ok {
		return demand.None()
	}
	full := e.ID.FullName()
	return demand.Column(metadata.GroupName(full), metadata.ShortName(full))
}
