package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/Arleycht/stream-bot/message"
	"github.com/Arleycht/stream-bot/model"
	"github.com/Arleycht/stream-bot/twitch"
)

// Client — то, что сервису нужно от twitch.Client.
type Client interface {
	Messages() <-chan message.Message
	Pong(payload string) error
	Close() error
	Err() error
}

// Service читает поток сообщений клиента и передаёт их Handler.
type Service struct {
	client  Client
	handler *Handler
}

// New создаёт Service.
func New(client Client, handler *Handler) *Service {
	return &Service{client: client, handler: handler}
}

// Run обрабатывает сообщения до отмены контекста или конца потока.
// Конец потока возвращает причину остановки клиента.
func (s *Service) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.client.Close()
			return ctx.Err()
		case msg, ok := <-s.client.Messages():
			if !ok {
				err := s.client.Err()
				if errors.Is(err, twitch.ErrClientClosed) {
					return nil
				}
				return err
			}
			s.handler.Handle(s.client, msg)
		}
	}
}

// ChatSink принимает сообщения чата для хранения.
type ChatSink interface {
	Enqueue(model.ChatMessage) bool
}

// Handler печатает сообщения, отвечает на PING и отправляет PRIVMSG в хранилище.
type Handler struct {
	out  io.Writer
	sink ChatSink
	now  func() time.Time
}

// NewHandler собирает Handler. sink может быть nil.
func NewHandler(out io.Writer, sink ChatSink) *Handler {
	return &Handler{out: out, sink: sink, now: time.Now}
}

// Handle обрабатывает одно сообщение.
func (h *Handler) Handle(client Client, msg message.Message) {
	switch msg.Command {
	case message.Ping:
		if err := client.Pong(msg.Text); err != nil {
			log.Printf("service: PONG не отправлен: %v", err)
		}
	case message.PrivMsg:
		fmt.Fprintf(h.out, "%s: %s\n", msg.SourceName, msg.Text)
		if h.sink != nil {
			if ok := h.sink.Enqueue(h.toChatMessage(msg)); !ok {
				log.Printf("батчер: сообщение для канала %s отброшено", channelOf(msg))
			}
		}
	case message.Join:
		fmt.Fprintf(h.out, "\tJoined %s\n", strings.Join(msg.Channels, ", "))
	default:
		fmt.Fprintf(h.out, "\t%s -> %s\n", msg.Command, msg.Raw)
	}
}

func (h *Handler) toChatMessage(msg message.Message) model.ChatMessage {
	var hex string
	if msg.Tags.Color != nil {
		hex = msg.Tags.Color.Hex()
	}

	return model.ChatMessage{
		Channel:        channelOf(msg),
		UserID:         msg.Tags.UserID,
		SourceName:     msg.SourceName,
		Text:           msg.Text,
		Color:          hex,
		IsMod:          msg.Tags.IsMod,
		IsSubscriber:   msg.Tags.IsSubscriber,
		IsVIP:          msg.Tags.IsVIP,
		IsFirstMessage: msg.Tags.IsFirstMessage,
		EmoteCount:     emoteCount(msg.Tags.Emotes),
		Raw:            msg.Raw,
		ReceivedAt:     h.now().UTC(),
	}
}

func channelOf(msg message.Message) string {
	if len(msg.Channels) == 0 {
		return ""
	}
	return strings.TrimPrefix(msg.Channels[0], "#")
}

func emoteCount(entries []message.EmoteEntry) int {
	n := 0
	for _, e := range entries {
		n += len(e.Ranges)
	}
	return n
}
