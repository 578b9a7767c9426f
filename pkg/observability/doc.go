/*
Package observability turns turn lifecycle hooks into Prometheus metrics and structured logs.

Metrics live on a private registry so tests and multiple servers in one process never
collide; Handler exposes them for scraping.
*/
package observability
