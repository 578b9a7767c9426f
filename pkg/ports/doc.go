/*
Package ports defines the driven ports (interfaces) of the uranai bot.

These interfaces decouple the dialogue and the turn orchestrator from external
systems, so the same core runs against redis or memory, OpenAI or a fake, and any
ledger sink.

# Key Interfaces

  - SessionStore: persists per-user Session records with expiry.
  - DistributedLocker: serializes turns for the same user across replicas.
  - Generator: produces the report text for a request.
  - Ledger: appends completed requests for operator review.
  - Replier: delivers reply messages through a one-time reply handle.
*/
package ports
