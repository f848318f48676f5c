/*
Package hotelbot is a chat client for a hotel-booking assistant.

A conversation moves through four stages: booking, selecting, confirming and
done. Each user message is posted to the backend endpoint of the current stage
and the JSON reply decides what the bot says and which stage comes next. A
finished booking resets the conversation to its welcome message after a short
delay.

# Usage

	client, err := hotelbot.New(hotelbot.WithBaseURL("http://127.0.0.1:8000"))
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	conv, err := client.Submit(ctx, "session-1", "A hotel in Lisbon for two nights")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(conv.Stage)

The same core powers three hosts, all started from cmd/hotelbot: a terminal
chat (pkg/runner), a web chat with an SSE update stream (pkg/adapters/http) and
an MCP server (pkg/adapters/mcp).
*/
package hotelbot
