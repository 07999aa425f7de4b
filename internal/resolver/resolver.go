// Package resolver holds the marker handlers that reconcile inline markers
// with the descriptors an external document already declared. The external
// document always wins; inline markers fill what it left unset.
package resolver

import (
	"github.com/toyz/descres/internal/annotations"
	"github.com/toyz/descres/internal/config"
	"github.com/toyz/descres/internal/models"
	"github.com/toyz/descres/internal/processor"
)

// Handlers returns the dispatch table contents. Classification-read markers
// (Remote, Local, LocalBean, the home adapters, WebService) have no handler;
// they are read by classification when a component-defining marker runs.
func Handlers(cfg config.Options) []*processor.Handler {
	r := &resolver{cfg: cfg}

	handlers := []*processor.Handler{
		r.componentHandler(annotations.StatelessMarker, models.SessionKind, models.Stateless),
		r.componentHandler(annotations.StatefulMarker, models.SessionKind, models.Stateful),
		r.componentHandler(annotations.SingletonMarker, models.SessionKind, models.Singleton),
		r.componentHandler(annotations.MessageDrivenMarker, models.MessageDrivenKind, models.NoSessionType),

		r.attributeHandler(accessTimeoutAttribute),
		r.attributeHandler(lockAttribute),
		r.attributeHandler(asynchronousAttribute),
		r.attributeHandler(transactionAttribute),

		r.concurrencyManagementHandler(),
		r.startupHandler(),
		r.dependsOnHandler(),

		r.interceptorsHandler(),
		r.excludeDefaultInterceptorsHandler(),
		r.timeoutHandler(),
	}
	for _, kind := range models.LifecycleKinds() {
		handlers = append(handlers, r.lifecycleHandler(kind))
	}
	return handlers
}

// New builds a processor over the resolver's handlers
func New(cfg config.Options, opts ...processor.Option) (*processor.Processor, error) {
	opts = append([]processor.Option{processor.WithConfig(cfg)}, opts...)
	return processor.New(Handlers(cfg), opts...)
}

type resolver struct {
	cfg config.Options
}

// componentDependencies makes every handler that needs a component context
// wait for the component-defining markers of the same element
var componentDependencies = annotations.ComponentDefiningTypes()

var lifecycleMarkers = map[models.LifecycleKind]annotations.MarkerType{
	models.PostConstruct:   annotations.PostConstructMarker,
	models.PreDestroy:      annotations.PreDestroyMarker,
	models.PostActivate:    annotations.PostActivateMarker,
	models.PrePassivate:    annotations.PrePassivateMarker,
	models.AroundInvoke:    annotations.AroundInvokeMarker,
	models.AroundTimeout:   annotations.AroundTimeoutMarker,
	models.AroundConstruct: annotations.AroundConstructMarker,
}
