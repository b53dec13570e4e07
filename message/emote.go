package message

import (
	"errors"
	"fmt"
)

// EmoteServer — сервис, которому принадлежит эмоут.
type EmoteServer int

const (
	Twitch EmoteServer = iota
	Bttv
	FrankerFaceZ
	SevenTv
)

// ErrUnsupportedServer возвращается, если для сервиса эмоутов нет шаблона URL.
var ErrUnsupportedServer = errors.New("emote: unsupported server")

func (s EmoteServer) String() string {
	switch s {
	case Twitch:
		return "Twitch"
	case Bttv:
		return "Bttv"
	case FrankerFaceZ:
		return "FrankerFaceZ"
	case SevenTv:
		return "SevenTv"
	}
	return fmt.Sprintf("EmoteServer(%d)", int(s))
}

// Emote идентифицирует эмоут на конкретном сервисе.
type Emote struct {
	Server EmoteServer
	ID     uint32
}

func (e Emote) String() string {
	return fmt.Sprintf("%s:%d", e.Server, e.ID)
}

// URL возвращает адрес изображения эмоута в CDN сервиса.
func (e Emote) URL() (string, error) {
	switch e.Server {
	case Twitch:
		return fmt.Sprintf("https://static-cdn.jtvnw.net/emoticons/v2/%d/default/dark/1.0", e.ID), nil
	case Bttv:
		return fmt.Sprintf("https://cdn.betterttv.net/emote/%d/1x", e.ID), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedServer, e.Server)
}

// Range — пара смещений символов (начало, конец) внутри текста сообщения.
type Range struct {
	Start int
	End   int
}

// EmoteEntry — один эмоут и все места, где он встречается в тексте.
type EmoteEntry struct {
	Emote  Emote
	Ranges []Range
}
