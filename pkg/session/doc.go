/*
Package session mediates every access the bot makes to per-user dialogue state.

The Manager wraps a ports.SessionStore with the behaviors a webhook turn needs:
a single readiness guard per inbound batch, loads that fail softly into a default
session, saves that surface store outages, and optional per-user serialization of
whole turns across goroutines (and, with a DistributedLocker, across replicas).
*/
package session
