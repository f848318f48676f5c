/*
Package runner implements the terminal chat loop.

It bridges the session Manager and a pluggable IOHandler: it prints the
history, reads a line, sanitizes it, submits it, and prints the bot's answer.
Resets triggered by the post-booking timer are printed as they happen.

# Key Components

  - Runner: the read-submit-print loop for one session.
  - IOHandler: decouples how messages are shown and input is read.
  - TextHandler: interactive terminal IO with an optional markdown renderer.
  - JSONHandler: JSON-lines IO for scripts and pipes.

# Usage

	r := runner.NewRunner(
		runner.WithSessionID("cli"),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	if err := r.Run(ctx, manager); err != nil {
		log.Fatal(err)
	}
*/
package runner
