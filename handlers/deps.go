package handlers

import (
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/hrflow/handler"
	"github.com/BaSui01/hrflow/notify"
	"github.com/BaSui01/hrflow/oracle"
	"github.com/BaSui01/hrflow/persistence"
)

// Deps are the collaborators shared by all built-in handlers. Oracle and
// Notifier may be nil; handlers then skip the steps that need them.
type Deps struct {
	Directory persistence.Directory
	Notifier  notify.Notifier
	Oracle    oracle.Oracle
	Logger    *zap.Logger
}

func (d Deps) normalize() Deps {
	if d.Directory == nil {
		d.Directory = persistence.NewMemoryDirectory()
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return d
}

// All returns the built-in handler set sharing one dependency bundle.
func All(deps Deps) []handler.Handler {
	return []handler.Handler{
		NewEmployeeManagement(deps),
		NewOnboarding(deps),
		NewPerformance(deps),
		NewRecruitment(deps),
	}
}

// containsAny reports whether the lower-cased request contains one of
// the keywords.
func containsAny(request string, keywords ...string) bool {
	lower := strings.ToLower(request)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// stringFromCtx reads an optional string value out of the request
// context.
func stringFromCtx(reqCtx map[string]any, key string) string {
	if reqCtx == nil {
		return ""
	}
	v, _ := reqCtx[key].(string)
	return v
}
