package health

import (
	"context"
	"net/http"

	"github.com/jackccrawford/msona/config"
)

// Probes builds an aggregator covering every external service the access
// layer talks to. Services without credentials get a static degraded probe
// instead of a network call they could never pass.
func Probes(cfg *config.Config, client *http.Client) *Aggregator {
	agg := NewAggregator(AggregatorConfig{})
	problems := cfg.Validate()

	agg.Register(NewEndpointChecker("quotes", cfg.Quotes.BaseURL, client))

	register := func(name, url string) {
		if reason, ok := problems[name]; ok {
			agg.Register(unconfigured(name, reason.Error()))
			return
		}
		agg.Register(NewEndpointChecker(name, url, client))
	}
	register("catalog", cfg.Catalog.TokenURL)
	register("speech", cfg.Speech.BaseURL)
	register("ai", cfg.AI.BaseURL)

	return agg
}

func unconfigured(name, reason string) Checker {
	return NewCheckFunc(name, func(context.Context) Result {
		return Result{Status: StatusDegraded, Message: reason}
	})
}
