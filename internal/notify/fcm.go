package notify

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMMessenger sends multicast web pushes through Firebase Cloud
// Messaging.
type FCMMessenger struct {
	client *messaging.Client
}

// NewFCMMessenger initializes the Firebase app from a service-account
// credentials file and returns a messenger bound to its messaging client.
func NewFCMMessenger(ctx context.Context, credentialsFile string) (*FCMMessenger, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init fcm client: %w", err)
	}
	return &FCMMessenger{client: client}, nil
}

func (m *FCMMessenger) Send(ctx context.Context, msg Message) (SendResult, error) {
	multicast := &messaging.MulticastMessage{
		Tokens: msg.Tokens,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
		Webpush: &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Title: msg.Title,
				Body:  msg.Body,
			},
			FCMOptions: &messaging.WebpushFCMOptions{Link: msg.Link},
		},
	}

	batch, err := m.client.SendEachForMulticast(ctx, multicast)
	if err != nil {
		return SendResult{}, fmt.Errorf("fcm multicast: %w", err)
	}
	return SendResult{SuccessCount: batch.SuccessCount, FailureCount: batch.FailureCount}, nil
}
