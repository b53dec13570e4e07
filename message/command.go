package message

// Command — тип IRC-команды строки протокола.
type Command int

const (
	Unknown Command = iota

	Welcome  // 001
	YourHost // 002
	Created  // 003
	MyInfo   // 004

	NameReply  // 353
	EndOfNames // 366
	Motd       // 372
	MotdStart  // 375
	MotdEnd    // 376

	Ping    // PING
	Cap     // CAP
	Join    // JOIN
	PrivMsg // PRIVMSG

	commandCount
)

var commandTokens = map[string]Command{
	"PING":    Ping,
	"CAP":     Cap,
	"JOIN":    Join,
	"PRIVMSG": PrivMsg,

	"001": Welcome,
	"002": YourHost,
	"003": Created,
	"004": MyInfo,
	"353": NameReply,
	"366": EndOfNames,
	"372": Motd,
	"375": MotdStart,
	"376": MotdEnd,
}

var commandNames = [commandCount]string{
	Unknown:    "Unknown",
	Welcome:    "Welcome",
	YourHost:   "YourHost",
	Created:    "Created",
	MyInfo:     "MyInfo",
	NameReply:  "NameReply",
	EndOfNames: "EndOfNames",
	Motd:       "Motd",
	MotdStart:  "MotdStart",
	MotdEnd:    "MotdEnd",
	Ping:       "Ping",
	Cap:        "Cap",
	Join:       "Join",
	PrivMsg:    "PrivMsg",
}

// ParseCommand сопоставляет токен команды варианту Command.
// Нераспознанные токены дают Unknown, это не ошибка.
func ParseCommand(token string) Command {
	if cmd, ok := commandTokens[token]; ok {
		return cmd
	}
	return Unknown
}

// IsNumeric сообщает, является ли команда числовым ответом сервера.
func (c Command) IsNumeric() bool {
	return c >= Welcome && c <= MotdEnd
}

// IsBanner сообщает, относится ли команда к приветственному баннеру сервера
// (001–004 и MOTD). Такие строки не доходят до потребителя.
func (c Command) IsBanner() bool {
	switch c {
	case Welcome, YourHost, Created, MyInfo, Motd, MotdStart, MotdEnd:
		return true
	}
	return false
}

func (c Command) String() string {
	if c < 0 || c >= commandCount {
		return "Unknown"
	}
	return commandNames[c]
}
