/*
Package domain contains the core domain models of the uranai intake bot.

It defines the per-user dialogue Session, the inbound Event and its tagged Input,
the outbound Message union, and the side effects a turn may request. The package
is kept pure and free of I/O so that the dialogue machine and the turn orchestrator
can share it without pulling in adapters.

# Key Entities

  - Session: the persisted dialogue progress (step + captured fields).
  - Step: the position in the fixed name → birth → theme → generation dialogue.
  - Input: what the user sent (free text, a theme selection, or something unsupported).
  - Message: what the bot replies with (plain text or a theme quick-reply prompt).
  - RunGeneration: the side effect requested when a theme is selected.
*/
package domain
