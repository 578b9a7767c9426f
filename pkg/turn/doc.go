/*
Package turn drives one inbound event end to end.

A turn loads the user's session, runs the dialogue transition, executes the
generation side effect when one is requested, replies through the event's
one-shot reply handle, and always persists the resulting session before
returning, even when a collaborator fails or the turn panics.
*/
package turn
