package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrInvalidChannel is returned when the channel name is malformed.
	ErrInvalidChannel = errors.New("invalid channel name")

	// ErrEmptyMessage is returned when the message text is blank.
	ErrEmptyMessage = errors.New("message text is required")
)

// channelPattern limits channel names to a safe slug; channels are
// created implicitly on first post.
var channelPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// Message is one staff chat entry. Messages live in a capped Redis list
// per channel; there is no long-term archive.
type Message struct {
	ID         string    `json:"id"`
	Channel    string    `json:"channel"`
	AuthorUID  string    `json:"authorUid"`
	AuthorName string    `json:"authorName"`
	Text       string    `json:"text"`
	SentAt     time.Time `json:"sentAt"`
}

// Service stores and reads channel history in Redis.
type Service struct {
	rdb          *redis.Client
	historyLimit int64
}

// NewService creates the chat service. historyLimit caps how many
// messages each channel retains.
func NewService(rdb *redis.Client, historyLimit int) *Service {
	if historyLimit <= 0 {
		historyLimit = 500
	}
	return &Service{rdb: rdb, historyLimit: int64(historyLimit)}
}

func channelKey(channel string) string {
	return fmt.Sprintf("chat:%s", channel)
}

// ValidateChannel reports whether the channel name is acceptable.
func ValidateChannel(channel string) error {
	if !channelPattern.MatchString(channel) {
		return ErrInvalidChannel
	}
	return nil
}

// Post appends a message to the channel and trims history to the cap.
func (s *Service) Post(ctx context.Context, channel, authorUID, authorName, text string) (Message, error) {
	if err := ValidateChannel(channel); err != nil {
		return Message{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}

	msg := Message{
		ID:         uuid.NewString(),
		Channel:    channel,
		AuthorUID:  authorUID,
		AuthorName: authorName,
		Text:       text,
		SentAt:     time.Now().UTC(),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return Message{}, err
	}

	key := channelKey(channel)
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.LTrim(ctx, key, -s.historyLimit, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return Message{}, fmt.Errorf("append chat message: %w", err)
	}
	return msg, nil
}

// History returns the channel's retained messages, oldest first.
func (s *Service) History(ctx context.Context, channel string) ([]Message, error) {
	if err := ValidateChannel(channel); err != nil {
		return nil, err
	}

	raw, err := s.rdb.LRange(ctx, channelKey(channel), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read chat history: %w", err)
	}

	messages := make([]Message, 0, len(raw))
	for _, item := range raw {
		var msg Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			// Skip entries that fail to decode rather than failing the
			// whole channel read.
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}
