package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Arleycht/stream-bot/tokens"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: chat-token <nick> <oauth-token> [expires-in]")
		os.Exit(1)
	}

	token := tokens.Token{
		Nick:   strings.ToLower(strings.TrimSpace(os.Args[1])),
		Access: strings.TrimSpace(os.Args[2]),
	}
	if token.Nick == "" || token.Access == "" {
		log.Fatal("nick and oauth token are required")
	}

	if len(os.Args) > 3 {
		ttl, err := time.ParseDuration(os.Args[3])
		if err != nil {
			log.Fatalf("parse expires-in: %v", err)
		}
		token.ExpiresAt = time.Now().Add(ttl)
	}

	store := tokens.FileTokenStore{Path: strings.TrimSpace(os.Getenv("TWITCH_TOKEN_FILE"))}
	if err := store.SaveChatToken(token); err != nil {
		log.Fatalf("save chat token: %v", err)
	}

	if token.ExpiresAt.IsZero() {
		fmt.Printf("ok, saved token for %s\n", token.Nick)
		return
	}
	fmt.Printf("ok, saved token for %s, expires at %s\n", token.Nick, token.ExpiresAt.Format(time.RFC3339))
}
