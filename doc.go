/*
Package uranai is a LINE bot that collects a user's name, birth date and fortune theme
over a short chat, then has a language model draft a personalized reading for an
operator to review.

# Architecture

Each webhook delivery is a batch of events. The HTTP boundary verifies the signature,
checks once that the session store is reachable, and hands the batch to a dispatcher
that runs one turn per event concurrently. A turn loads the user's session, feeds the
input to a pure dialogue state machine, runs the generation side effect when the
machine asks for it, persists the new session and replies through the event's
one-time reply token.

	webhook -> dispatch -> turn (session, dialogue, generator, ledger, replier)

The dialogue never persists the Generating step: a failed or interrupted generation
puts the user back at theme selection with their answers intact.

# Usage

	cfg, err := config.Load("uranai.yaml")
	if err != nil {
		log.Fatal(err)
	}
	app, err := uranai.New(cfg, uranai.WithLogger(logger))
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	http.ListenAndServe(cfg.ListenAddr, app.Handler)

Collaborators (store, generator, ledger, replier) can be replaced with options,
which is how the tests drive full conversations without network access.
*/
package uranai
