package tokens

import (
	"errors"
	"strings"
	"time"
)

// ErrTokenExpired — сохранённый токен истёк или скоро истечёт.
var ErrTokenExpired = errors.New("tokens: chat token expired")

// Token описывает учётные данные для входа в чат.
type Token struct {
	Nick      string
	Access    string
	ExpiresAt time.Time
}

// Password возвращает значение для команды PASS.
func (t Token) Password() string {
	if strings.HasPrefix(t.Access, "oauth:") {
		return t.Access
	}
	return "oauth:" + t.Access
}

// Usable сообщает, можно ли войти с токеном. Нулевой ExpiresAt — бессрочный токен.
func (t Token) Usable(now time.Time) bool {
	if t.Nick == "" || t.Access == "" {
		return false
	}
	return t.ExpiresAt.IsZero() || t.ExpiresAt.After(now.Add(5*time.Minute))
}

// TokenStore описывает хранилище токенов чата.
type TokenStore interface {
	LoadChatToken() (*Token, error)
	SaveChatToken(Token) error
}

// Load читает токен из хранилища и проверяет срок действия.
func Load(store TokenStore, now time.Time) (Token, error) {
	token, err := store.LoadChatToken()
	if err != nil {
		return Token{}, err
	}
	if !token.Usable(now) {
		return Token{}, ErrTokenExpired
	}
	return *token, nil
}
