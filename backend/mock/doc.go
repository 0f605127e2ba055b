// Package mock provides test double implementations of the backend
// collaborator contracts.
//
// MockSearcher records every backend.SearchRequest it receives so tests can
// assert on the weight vectors and path filters the coordinator produced,
// and MockAggregator counts aggregation calls so cache single-flight
// behavior can be verified.
package mock
