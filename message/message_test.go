package message

import (
	"errors"
	"testing"

	"github.com/Arleycht/stream-bot/color"
)

const ronniLine = "@badge-info=;badges=turbo/1;color=#0D4200;display-name=ronni;emotes=25:0-4,12-16/1902:6-10;id=b34ccfc7-4977-403a-8a94-33c6bac34fb8;mod=0;room-id=1337;subscriber=0;tmi-sent-ts=1507246572675;turbo=1;user-id=1337;user-type=global_mod :ronni!ronni@ronni.tmi.twitch.tv PRIVMSG #ronni :Kappa Keepo Kappa"

type fixedColors struct {
	names []string
}

func (f *fixedColors) Color(name string) color.Color {
	f.names = append(f.names, name)
	return 0xABCDEF
}

func (f *fixedColors) SetColor(_ string, c color.Color) color.Color { return c }

type recordingObserver struct {
	unknown []string
	dropped []error
}

func (r *recordingObserver) UnknownTag(key, _ string) { r.unknown = append(r.unknown, key) }
func (r *recordingObserver) TagsDropped(_ string, err error) {
	r.dropped = append(r.dropped, err)
}

func newTestParser() (*Parser, *fixedColors, *recordingObserver) {
	colors := &fixedColors{}
	obs := &recordingObserver{}
	return NewParser(colors, obs), colors, obs
}

func TestParsePrivMsgWithTags(t *testing.T) {
	p, colors, obs := newTestParser()

	msg, err := p.Parse(ronniLine)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if msg.Command != PrivMsg {
		t.Fatalf("expected PrivMsg, got %s", msg.Command)
	}
	if len(msg.Channels) != 1 || msg.Channels[0] != "#ronni" {
		t.Fatalf("unexpected channels: %v", msg.Channels)
	}
	if msg.Text != "Kappa Keepo Kappa" {
		t.Fatalf("unexpected text: %q", msg.Text)
	}
	if msg.Source != "ronni!ronni@ronni.tmi.twitch.tv" {
		t.Fatalf("unexpected source: %q", msg.Source)
	}
	if msg.SourceName != "ronni" {
		t.Fatalf("unexpected source name: %q", msg.SourceName)
	}
	if msg.SourceColor != 0xABCDEF || len(colors.names) != 1 || colors.names[0] != "ronni" {
		t.Fatalf("color not resolved through assignor: %v %v", msg.SourceColor, colors.names)
	}
	if msg.Raw != ronniLine {
		t.Fatalf("raw line not preserved")
	}

	tags := msg.Tags
	if tags.Color == nil || *tags.Color != 0x0D4200 {
		t.Fatalf("unexpected color tag: %v", tags.Color)
	}
	if !tags.IsTurbo || tags.IsMod || tags.IsSubscriber {
		t.Fatalf("unexpected flags: %+v", tags)
	}
	if tags.UserID != 1337 {
		t.Fatalf("unexpected user id: %d", tags.UserID)
	}
	if len(tags.Emotes) != 2 {
		t.Fatalf("expected 2 emotes, got %d", len(tags.Emotes))
	}

	first, second := tags.Emotes[0], tags.Emotes[1]
	if first.Emote != (Emote{Server: Twitch, ID: 25}) || len(first.Ranges) != 2 ||
		first.Ranges[0] != (Range{0, 4}) || first.Ranges[1] != (Range{12, 16}) {
		t.Fatalf("unexpected first emote: %+v", first)
	}
	if second.Emote != (Emote{Server: Twitch, ID: 1902}) || len(second.Ranges) != 1 ||
		second.Ranges[0] != (Range{6, 10}) {
		t.Fatalf("unexpected second emote: %+v", second)
	}

	if len(obs.unknown) != 0 || len(obs.dropped) != 0 {
		t.Fatalf("unexpected diagnostics: %v %v", obs.unknown, obs.dropped)
	}
}

func TestParsePing(t *testing.T) {
	p, _, _ := newTestParser()

	msg, err := p.Parse("PING :tmi.twitch.tv")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if msg.Command != Ping || msg.Text != "tmi.twitch.tv" || msg.Source != "" || len(msg.Channels) != 0 {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if msg.SourceName != "" {
		t.Fatalf("expected empty source name, got %q", msg.SourceName)
	}
}

func TestParseWithoutTagsHasDefaultTags(t *testing.T) {
	p, _, _ := newTestParser()

	lines := []string{
		":tmi.twitch.tv 001 justinfan69 :Welcome, GLHF!",
		":ronni!ronni@ronni.tmi.twitch.tv JOIN #ronni",
		"PING :tmi.twitch.tv",
		":tmi.twitch.tv CAP * ACK :twitch.tv/tags",
	}

	for _, line := range lines {
		msg, err := p.Parse(line)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", line, err)
		}
		if !isDefaultTags(msg.Tags) {
			t.Fatalf("Parse(%q): expected default tags, got %+v", line, msg.Tags)
		}
	}
}

func TestParseTrailingTextIsNotTrimmed(t *testing.T) {
	p, _, _ := newTestParser()

	msg, err := p.Parse(":a!a@a PRIVMSG #chan : spaced :) ")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if msg.Text != " spaced :) " {
		t.Fatalf("unexpected text: %q", msg.Text)
	}
}

func TestParseSourceFallbacks(t *testing.T) {
	p, _, _ := newTestParser()

	tests := []struct {
		line string
		want string
	}{
		{":tmi.twitch.tv JOIN #chan", "tmi.twitch.tv"},
		{":nick!user@host JOIN #chan", "nick"},
		{"@display-name=Nick :nick!user@host JOIN #chan", "Nick"},
		{"@display-name= :nick!user@host JOIN #chan", ""},
		{"JOIN #chan", ""},
	}

	for _, tt := range tests {
		msg, err := p.Parse(tt.line)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", tt.line, err)
		}
		if msg.SourceName != tt.want {
			t.Fatalf("Parse(%q): expected source name %q, got %q", tt.line, tt.want, msg.SourceName)
		}
	}
}

func TestParseUnknownCommandWithChannels(t *testing.T) {
	p, _, _ := newTestParser()

	msg, err := p.Parse("@badge-info=;badges=moderator/1;color=#FF4500;display-name=mybot;emote-sets=0,300374282;mod=1;subscriber=0;user-type=mod :tmi.twitch.tv USERSTATE #bar")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if msg.Command != Unknown {
		t.Fatalf("expected Unknown, got %s", msg.Command)
	}
	if len(msg.Channels) != 1 || msg.Channels[0] != "#bar" || msg.Text != "" {
		t.Fatalf("unexpected body: %v %q", msg.Channels, msg.Text)
	}
	if !msg.Tags.IsMod || msg.SourceName != "mybot" {
		t.Fatalf("unexpected tags: %+v", msg.Tags)
	}
}

func TestParseStructuralErrors(t *testing.T) {
	p, _, _ := newTestParser()

	tests := []struct {
		line string
		want error
	}{
		{"@mod=1", ErrMissingTagTerminator},
		{":tmi.twitch.tv", ErrMissingSourceTerminator},
		{"@mod=1 :tmi.twitch.tv", ErrMissingSourceTerminator},
	}

	for _, tt := range tests {
		if _, err := p.Parse(tt.line); !errors.Is(err, tt.want) {
			t.Fatalf("Parse(%q): expected %v, got %v", tt.line, tt.want, err)
		}
	}
}

func TestParseMalformedEmoteFallsBackToDefaultTags(t *testing.T) {
	p, _, obs := newTestParser()

	msg, err := p.Parse("@display-name=ronni;mod=1;emotes=25:0- :ronni!ronni@host PRIVMSG #ronni :Kappa")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if !isDefaultTags(msg.Tags) {
		t.Fatalf("expected default tags, got %+v", msg.Tags)
	}
	if msg.SourceName != "ronni" {
		t.Fatalf("expected source name from prefix, got %q", msg.SourceName)
	}
	if len(obs.dropped) != 1 || !errors.Is(obs.dropped[0], ErrMalformedEmote) {
		t.Fatalf("expected one dropped-tags diagnostic, got %v", obs.dropped)
	}
}

func TestParseNilObserverLogs(t *testing.T) {
	p := NewParser(color.NewTable(), nil)

	msg, err := p.Parse("@weird-tag=1 PING :x")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if msg.Command != Ping {
		t.Fatalf("expected Ping, got %s", msg.Command)
	}
}

func isDefaultTags(tags Tags) bool {
	return !tags.IsMod && !tags.IsSubscriber && !tags.IsTurbo && !tags.IsVIP &&
		!tags.IsFirstMessage && !tags.IsReturningChatter && !tags.IsHighlighted &&
		tags.Color == nil && tags.DisplayName == nil && tags.UserID == 0 && len(tags.Emotes) == 0
}
