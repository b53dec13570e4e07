package message

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		token   string
		want    Command
		numeric bool
		banner  bool
	}{
		{"PRIVMSG", PrivMsg, false, false},
		{"PING", Ping, false, false},
		{"CAP", Cap, false, false},
		{"JOIN", Join, false, false},
		{"001", Welcome, true, true},
		{"002", YourHost, true, true},
		{"003", Created, true, true},
		{"004", MyInfo, true, true},
		{"353", NameReply, true, false},
		{"366", EndOfNames, true, false},
		{"372", Motd, true, true},
		{"375", MotdStart, true, true},
		{"376", MotdEnd, true, true},
		{"USERSTATE", Unknown, false, false},
		{"privmsg", Unknown, false, false},
		{"", Unknown, false, false},
	}

	for _, tt := range tests {
		got := ParseCommand(tt.token)
		if got != tt.want {
			t.Fatalf("ParseCommand(%q): expected %s, got %s", tt.token, tt.want, got)
		}
		if got.IsNumeric() != tt.numeric {
			t.Fatalf("%s.IsNumeric() = %v", got, got.IsNumeric())
		}
		if got.IsBanner() != tt.banner {
			t.Fatalf("%s.IsBanner() = %v", got, got.IsBanner())
		}
	}
}

func TestCommandString(t *testing.T) {
	if PrivMsg.String() != "PrivMsg" || NameReply.String() != "NameReply" {
		t.Fatalf("unexpected names: %s %s", PrivMsg, NameReply)
	}
	if Command(99).String() != "Unknown" {
		t.Fatalf("out of range command should render as Unknown")
	}
}

func TestEmoteURL(t *testing.T) {
	url, err := Emote{Server: Twitch, ID: 25}.URL()
	if err != nil || url != "https://static-cdn.jtvnw.net/emoticons/v2/25/default/dark/1.0" {
		t.Fatalf("unexpected twitch url: %q (%v)", url, err)
	}
	url, err = Emote{Server: Bttv, ID: 7}.URL()
	if err != nil || url != "https://cdn.betterttv.net/emote/7/1x" {
		t.Fatalf("unexpected bttv url: %q (%v)", url, err)
	}
	if _, err := (Emote{Server: SevenTv, ID: 1}).URL(); err == nil {
		t.Fatalf("expected error for 7tv")
	}
	if s := (Emote{Server: Twitch, ID: 25}).String(); s != "Twitch:25" {
		t.Fatalf("unexpected emote string %q", s)
	}
}
