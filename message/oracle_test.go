package message

import (
	"strconv"
	"strings"
	"testing"

	twitchirc "github.com/gempir/go-twitch-irc/v4"
)

// Сверяем разбор PRIVMSG с go-twitch-irc на общих полях.
func TestParseAgreesWithGoTwitchIRC(t *testing.T) {
	lines := []string{
		ronniLine,
		"@badge-info=;badges=vip/1,partner/1;client-nonce=cd15335a5e2059c3b087e22612de485e;color=;display-name=fun2bfun;emotes=;first-msg=0;flags=;id=1fd20412-965f-4c96-beb3-52266448f564;mod=0;returning-chatter=0;room-id=102336968;subscriber=0;tmi-sent-ts=1661372052425;turbo=0;user-id=12345678;user-type=;vip=1 :fun2bfun!fun2bfun@fun2bfun.tmi.twitch.tv PRIVMSG #ronni :Kappa Keepo Kappa",
	}

	p, _, _ := newTestParser()
	for _, line := range lines {
		ours, err := p.Parse(line)
		if err != nil {
			t.Fatalf("Parse returned error: %v", err)
		}

		theirs, ok := twitchirc.ParseMessage(line).(*twitchirc.PrivateMessage)
		if !ok {
			t.Fatalf("go-twitch-irc did not decode a PRIVMSG")
		}

		if ours.Text != theirs.Message {
			t.Fatalf("text mismatch: %q vs %q", ours.Text, theirs.Message)
		}
		if ours.SourceName != theirs.User.DisplayName {
			t.Fatalf("display name mismatch: %q vs %q", ours.SourceName, theirs.User.DisplayName)
		}
		if strconv.FormatUint(uint64(ours.Tags.UserID), 10) != theirs.User.ID {
			t.Fatalf("user id mismatch: %d vs %s", ours.Tags.UserID, theirs.User.ID)
		}
		if strings.TrimPrefix(ours.Channels[0], "#") != theirs.Channel {
			t.Fatalf("channel mismatch: %v vs %s", ours.Channels, theirs.Channel)
		}
		if len(ours.Tags.Emotes) != len(theirs.Emotes) {
			t.Fatalf("emote count mismatch: %d vs %d", len(ours.Tags.Emotes), len(theirs.Emotes))
		}
		for i, e := range theirs.Emotes {
			entry := ours.Tags.Emotes[i]
			if strconv.FormatUint(uint64(entry.Emote.ID), 10) != e.ID {
				t.Fatalf("emote %d id mismatch: %d vs %s", i, entry.Emote.ID, e.ID)
			}
			if len(entry.Ranges) != len(e.Positions) {
				t.Fatalf("emote %d range count mismatch", i)
			}
			for j, pos := range e.Positions {
				if entry.Ranges[j].Start != pos.Start || entry.Ranges[j].End != pos.End {
					t.Fatalf("emote %d range %d mismatch: %+v vs %+v", i, j, entry.Ranges[j], pos)
				}
			}
		}
	}
}
