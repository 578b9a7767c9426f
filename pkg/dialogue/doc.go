/*
Package dialogue implements the intake dialogue as a pure state machine.

Transition takes the current Session and the user's Input and returns the next
Session, the messages to reply with and, when a theme has been selected, the
generation side effect to run. It performs no I/O: loading, persisting and
executing side effects belong to the turn orchestrator.

The dialogue is a fixed sequence:

	start → awaiting_name → awaiting_birth → awaiting_theme → generating

Validation failures (empty name, malformed birth date, free text where a theme is
expected) keep the session where it is and re-prompt. Protocol violations (an
unknown step, a postback arriving out of order) reset the session.
*/
package dialogue
