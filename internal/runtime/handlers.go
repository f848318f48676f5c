package runtime

import (
	"github.com/aretw0/hotelbot/pkg/domain"
	"github.com/aretw0/hotelbot/pkg/ports"
)

// stageHandler binds a stage to its backend endpoint and reply interpretation.
type stageHandler struct {
	endpoint  string
	interpret func(reply domain.Reply) outcome
}

// outcome is what a stage makes of a successful reply.
type outcome struct {
	next     domain.Stage // empty keeps the current stage
	messages []domain.Message
}

// defaultHandlers is the booking flow. "done" has no handler: it only waits for the reset.
func defaultHandlers() map[domain.Stage]stageHandler {
	return map[domain.Stage]stageHandler{
		domain.StageBooking: {
			endpoint:  ports.EndpointRequestHotel,
			interpret: interpretBooking,
		},
		domain.StageSelecting: {
			endpoint:  ports.EndpointSelectHotel,
			interpret: advanceOnMessage(domain.StageConfirming),
		},
		domain.StageConfirming: {
			endpoint:  ports.EndpointBookHotel,
			interpret: advanceOnMessage(domain.StageDone),
		},
	}
}

// interpretBooking always answers; results mean the search is over.
func interpretBooking(reply domain.Reply) outcome {
	var out outcome
	if reply.Results != "" {
		out.next = domain.StageSelecting
	}

	text := reply.Reply
	if text == "" {
		text = reply.Summary + "\n\n" + reply.Results
	}
	out.messages = []domain.Message{domain.BotMessage(text)}
	return out
}

// advanceOnMessage moves to stage when the reply carries a message, and stays silent otherwise.
func advanceOnMessage(stage domain.Stage) func(domain.Reply) outcome {
	return func(reply domain.Reply) outcome {
		if reply.Message == "" {
			return outcome{}
		}
		return outcome{
			next:     stage,
			messages: []domain.Message{domain.BotMessage(reply.Message)},
		}
	}
}
