package message

import (
	"errors"
	"log"
	"strings"

	"github.com/Arleycht/stream-bot/color"
)

var (
	// ErrMissingTagTerminator — после блока тегов нет пробела.
	ErrMissingTagTerminator = errors.New("message: tag block is not terminated by a space")
	// ErrMissingSourceTerminator — после префикса источника нет пробела.
	ErrMissingSourceTerminator = errors.New("message: source prefix is not terminated by a space")
)

// Message — полностью разобранная строка протокола.
type Message struct {
	Tags     Tags
	Source   string
	Command  Command
	Channels []string
	Text     string
	Raw      string

	// Производные поля
	SourceName  string
	SourceColor color.Color
}

// Observer получает диагностику нестрогого разбора: такие проблемы не
// прерывают декодирование строки.
type Observer interface {
	UnknownTag(key, value string)
	TagsDropped(raw string, err error)
}

// LogObserver пишет диагностику разбора в стандартный лог.
type LogObserver struct{}

func (LogObserver) UnknownTag(key, value string) {
	log.Printf("message: нераспознанный тег %q=%q", key, value)
}

func (LogObserver) TagsDropped(raw string, err error) {
	log.Printf("message: теги отброшены (%v): %s", err, raw)
}

// Parser декодирует строки протокола. Цвета источников берутся из Assignor.
type Parser struct {
	colors   color.Assignor
	observer Observer
}

// NewParser создаёт парсер. Если obs == nil, диагностика пишется в лог.
func NewParser(colors color.Assignor, obs Observer) *Parser {
	if obs == nil {
		obs = LogObserver{}
	}
	return &Parser{colors: colors, observer: obs}
}

// Parse разбирает строку вида
// [@tags ][:source ]COMMAND [params...][ :text].
func (p *Parser) Parse(line string) (Message, error) {
	buf := line

	var tags Tags
	if strings.HasPrefix(buf, "@") {
		i := strings.IndexByte(buf, ' ')
		if i < 0 {
			return Message{}, ErrMissingTagTerminator
		}
		raw := buf[1:i]
		buf = buf[i+1:]

		parsed, err := parseTags(raw, p.observer)
		if err != nil {
			p.observer.TagsDropped(raw, err)
			parsed = Tags{}
		}
		tags = parsed
	}

	var source string
	if strings.HasPrefix(buf, ":") {
		i := strings.IndexByte(buf, ' ')
		if i < 0 {
			return Message{}, ErrMissingSourceTerminator
		}
		source = strings.TrimLeft(buf[:i], ":")
		buf = buf[i+1:]
	}

	head, text, _ := strings.Cut(buf, ":")
	command, channels := parseCommand(head)

	name := sourceName(tags, source)

	return Message{
		Tags:        tags,
		Source:      source,
		Command:     command,
		Channels:    channels,
		Text:        text,
		Raw:         strings.Clone(line),
		SourceName:  name,
		SourceColor: p.colors.Color(name),
	}, nil
}

func parseCommand(head string) (Command, []string) {
	fields := strings.Fields(head)
	if len(fields) == 0 {
		return Unknown, nil
	}
	return ParseCommand(fields[0]), fields[1:]
}

// sourceName: display-name, затем ник до '!', затем весь префикс.
func sourceName(tags Tags, source string) string {
	if tags.DisplayName != nil {
		return *tags.DisplayName
	}
	if nick, _, ok := strings.Cut(source, "!"); ok {
		return nick
	}
	return source
}
