package stmt

import (
	"github.com/oarkflow/qwery/resultset"
	"github.com/oarkflow/qwery/scope"
)

// Execute registers Query under Name in s's local view chain (per
// scope.Scope.LookupView/BindView, §4.6) and reports no rows. A later
// statement naming Name as a FROM/DESCRIBE source in the same (or a
// child) scope resolves it through the view chain rather than the
// factory.
func (cv *CreateView) Execute(s scope.Scope) (*resultset.ResultSet, error) {
	s.BindView(cv.Name, cv.Query)
	return resultset.Empty(nil), nil
}
