package message

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Arleycht/stream-bot/color"
)

// ErrMalformedEmote означает структурно неверный тег emotes; в этом случае
// весь набор тегов сообщения отбрасывается.
var ErrMalformedEmote = errors.New("tags: malformed emote range")

// Tags — метаданные одной строки протокола. Нулевое значение — теги по умолчанию.
type Tags struct {
	// Статус пользователя
	IsMod        bool
	IsSubscriber bool
	IsTurbo      bool
	IsVIP        bool

	IsFirstMessage     bool
	IsReturningChatter bool
	IsHighlighted      bool

	Color       *color.Color
	DisplayName *string
	UserID      uint32

	Emotes []EmoteEntry
}

// ignoredTags распознаются, но пока не используются.
var ignoredTags = map[string]struct{}{
	"badge-info":                     {},
	"badges":                         {},
	"bits":                           {},
	"client-nonce":                   {},
	"flags":                          {},
	"id":                             {},
	"emote-only":                     {},
	"emote-sets":                     {},
	"reply-parent-display-name":      {},
	"reply-parent-msg-body":          {},
	"reply-parent-msg-id":            {},
	"reply-parent-msg-login":         {},
	"reply-parent-user-id":           {},
	"reply-parent-user-login":        {},
	"reply-thread-parent-msg-id":     {},
	"reply-thread-parent-user-login": {},
	"room-id":                        {},
	"tmi-sent-ts":                    {},
	"user-type":                      {},
}

// parseTags разбирает блок тегов без ведущего '@'. Ошибка возвращается только
// для неверного emotes; остальные проблемы оставляют поле по умолчанию.
func parseTags(raw string, obs Observer) (Tags, error) {
	var tags Tags

	for _, entry := range strings.Split(raw, ";") {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}

		switch k {
		case "color":
			if hex, ok := strings.CutPrefix(v, "#"); ok {
				if n, err := strconv.ParseUint(hex, 16, 32); err == nil {
					c := color.Color(n)
					tags.Color = &c
				}
			}
		case "display-name":
			name := strings.Clone(v)
			tags.DisplayName = &name
		case "emotes":
			emotes, err := parseEmotes(v)
			if err != nil {
				return Tags{}, err
			}
			tags.Emotes = emotes
		case "first-msg":
			tags.IsFirstMessage = v == "1"
		case "mod":
			tags.IsMod = v == "1"
		case "msg-id":
			tags.IsHighlighted = v == "1"
		case "returning-chatter":
			tags.IsReturningChatter = v == "1"
		case "subscriber":
			tags.IsSubscriber = v == "1"
		case "turbo":
			tags.IsTurbo = v == "1"
		case "user-id":
			// ParseUint возвращает максимум при переполнении, поэтому ошибку проверяем явно
			if id, err := strconv.ParseUint(v, 10, 32); err == nil {
				tags.UserID = uint32(id)
			}
		case "vip":
			tags.IsVIP = v == "1"
		default:
			if _, ok := ignoredTags[k]; !ok {
				obs.UnknownTag(k, v)
			}
		}
	}

	return tags, nil
}

// parseEmotes разбирает значение вида "25:0-4,12-16/1902:6-10".
// Запись с нечисловым id пропускается, неверный диапазон прерывает разбор.
func parseEmotes(v string) ([]EmoteEntry, error) {
	if v == "" {
		return nil, nil
	}

	var emotes []EmoteEntry
	for _, entry := range strings.Split(v, "/") {
		rawID, rawRanges, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("%w: no ranges in %q", ErrMalformedEmote, entry)
		}

		id, err := strconv.ParseUint(rawID, 10, 32)
		if err != nil {
			continue
		}

		var ranges []Range
		for _, r := range strings.Split(rawRanges, ",") {
			rawStart, rawEnd, ok := strings.Cut(r, "-")
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrMalformedEmote, r)
			}
			start, err := strconv.ParseUint(rawStart, 10, strconv.IntSize-1)
			if err != nil {
				return nil, fmt.Errorf("%w: start %q", ErrMalformedEmote, r)
			}
			end, err := strconv.ParseUint(rawEnd, 10, strconv.IntSize-1)
			if err != nil {
				return nil, fmt.Errorf("%w: end %q", ErrMalformedEmote, r)
			}
			ranges = append(ranges, Range{Start: int(start), End: int(end)})
		}

		emotes = append(emotes, EmoteEntry{
			Emote:  Emote{Server: Twitch, ID: uint32(id)},
			Ranges: ranges,
		})
	}

	return emotes, nil
}
