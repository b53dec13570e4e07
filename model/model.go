package model

import "time"

// ChatMessage — строка PRIVMSG в виде, пригодном для хранения.
type ChatMessage struct {
	Channel        string
	UserID         uint32
	SourceName     string
	Text           string
	Color          string
	IsMod          bool
	IsSubscriber   bool
	IsVIP          bool
	IsFirstMessage bool
	EmoteCount     int
	Raw            string
	ReceivedAt     time.Time
}
