// Package health runs diagnostic checks over the pieces a dashboard session
// depends on: credential storage tiers, the auth API, the stored token and
// the login limiter.
//
// A Checker reports Healthy, Degraded or Unhealthy. An Aggregator runs a set
// of checkers under one deadline and folds them into a Report:
//
//	agg := health.NewAggregator()
//	agg.Register("api", health.NewAPIChecker(client))
//	agg.Register("storage.persistent", health.NewTierChecker(tier))
//
//	report := agg.Run(ctx)
//	if report.Status == health.StatusUnhealthy {
//	    ...
//	}
package health
