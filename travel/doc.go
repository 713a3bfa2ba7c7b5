// Package travel holds the travel concierge's domain layer: a client for the
// booking-com15 RapidAPI endpoints, function tools that search flights,
// hotels and attractions while recording findings in shared session state,
// and the specialist agent descriptors built on them.
package travel
