package notify

import "context"

// Message is one batched push to a set of device tokens.
type Message struct {
	Title  string
	Body   string
	Link   string
	Data   map[string]string
	Tokens []string
}

// SendResult reports per-token outcomes of a batched send. Individual
// token failures do not fail the batch.
type SendResult struct {
	SuccessCount int
	FailureCount int
}

// Messenger dispatches one push message to many tokens in a single call.
type Messenger interface {
	Send(ctx context.Context, msg Message) (SendResult, error)
}

// NoopMessenger discards messages. Used when no push credentials are
// configured, so the rest of the dispatch path still runs in development.
type NoopMessenger struct{}

func (NoopMessenger) Send(_ context.Context, msg Message) (SendResult, error) {
	return SendResult{SuccessCount: len(msg.Tokens)}, nil
}
