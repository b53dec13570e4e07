package twitch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Arleycht/stream-bot/color"
	"github.com/Arleycht/stream-bot/message"
)

const (
	// SocketURL — защищённый websocket Twitch IRC.
	SocketURL = "wss://irc-ws.chat.twitch.tv:443"

	AnonymousNick = "justinfan69"
	AnonymousPass = "password"

	DefaultQueueSize = 1024

	// DefaultFlushTimeout ограничивает дозапись очереди после Close.
	DefaultFlushTimeout = 5 * time.Second
)

// ErrClientClosed возвращается операциями после Close или остановки цикла записи.
var ErrClientClosed = errors.New("twitch: client closed")

// Conn — транспорт с раздельными половинами чтения и записи.
// *websocket.Conn удовлетворяет интерфейсу: допускается один читатель и один писатель.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Dial открывает websocket к адресу чата.
func Dial(ctx context.Context, url string) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("twitch: dial %s: %w", url, err)
	}
	return conn, nil
}

// Client отправляет команды в транспорт и отдаёт разобранные сообщения.
// Чтение и запись работают в отдельных горутинах; очереди сохраняют порядок.
type Client struct {
	url          string
	nick         string
	pass         string
	queueSize    int
	flushTimeout time.Duration
	ignored      map[message.Command]bool
	observer     message.Observer

	conn     Conn
	parser   *message.Parser
	outbound chan string
	messages chan message.Message

	closeOnce sync.Once
	closing   chan struct{}

	readerDone chan struct{}
	writerDone chan struct{}

	errOnce sync.Once
	err     error

	stats counters
}

// Option настраивает Client.
type Option func(*Client)

// WithCredentials задаёт ник и пароль (oauth:...) вместо анонимного входа.
func WithCredentials(nick, pass string) Option {
	return func(c *Client) {
		c.nick = nick
		c.pass = pass
	}
}

// WithIgnoredCommands не доставляет потребителю сообщения указанных команд.
func WithIgnoredCommands(cmds ...message.Command) Option {
	return func(c *Client) {
		for _, cmd := range cmds {
			c.ignored[cmd] = true
		}
	}
}

// WithQueueSize задаёт ёмкость обеих очередей.
func WithQueueSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.queueSize = n
		}
	}
}

// WithURL меняет адрес подключения.
func WithURL(url string) Option {
	return func(c *Client) {
		c.url = url
	}
}

// WithObserver заменяет получателя диагностики разбора; nil отключает лог.
func WithObserver(obs message.Observer) Option {
	return func(c *Client) {
		c.observer = obs
	}
}

// Connect подключается к чату, запускает циклы чтения и записи и ставит в
// очередь команды аутентификации.
func Connect(ctx context.Context, colors color.Assignor, opts ...Option) (*Client, error) {
	c := newClient(opts...)

	conn, err := Dial(ctx, c.url)
	if err != nil {
		return nil, err
	}

	c.start(conn, colors)
	return c, nil
}

// New запускает клиента поверх уже открытого транспорта.
func New(conn Conn, colors color.Assignor, opts ...Option) *Client {
	c := newClient(opts...)
	c.start(conn, colors)
	return c
}

func newClient(opts ...Option) *Client {
	c := &Client{
		url:          SocketURL,
		nick:         AnonymousNick,
		pass:         AnonymousPass,
		queueSize:    DefaultQueueSize,
		flushTimeout: DefaultFlushTimeout,
		ignored:      make(map[message.Command]bool),
		observer:     message.LogObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) start(conn Conn, colors color.Assignor) {
	c.conn = conn
	c.parser = message.NewParser(colors, &statsObserver{stats: &c.stats, next: c.observer})
	c.outbound = make(chan string, c.queueSize)
	c.messages = make(chan message.Message, c.queueSize)
	c.closing = make(chan struct{})
	c.readerDone = make(chan struct{})
	c.writerDone = make(chan struct{})

	go c.writeLoop()
	go c.readLoop()

	if err := c.Authenticate(c.nick, c.pass); err != nil {
		log.Printf("twitch: аутентификация не поставлена в очередь: %v", err)
	}
}

// Authenticate ставит в очередь запрос тегов, PASS и NICK.
func (c *Client) Authenticate(nick, pass string) error {
	for _, line := range []string{
		"CAP REQ :twitch.tv/tags",
		"PASS " + pass,
		"NICK " + nick,
	} {
		if err := c.Send(line); err != nil {
			return err
		}
	}
	return nil
}

// JoinChannel ставит в очередь JOIN для канала без ведущего '#'.
func (c *Client) JoinChannel(name string) error {
	return c.Send("JOIN #" + name)
}

// Pong отвечает на PING сервера.
func (c *Client) Pong(payload string) error {
	return c.Send("PONG :" + payload)
}

// Send ставит произвольную строку протокола в очередь записи.
// Блокируется, пока в очереди нет места; Close прерывает ожидание.
func (c *Client) Send(text string) error {
	select {
	case <-c.closing:
		return ErrClientClosed
	case <-c.writerDone:
		return ErrClientClosed
	default:
	}

	select {
	case c.outbound <- text:
		return nil
	case <-c.closing:
		return ErrClientClosed
	case <-c.writerDone:
		return ErrClientClosed
	}
}

// Messages возвращает поток разобранных сообщений. Канал закрывается, когда
// транспорт закрыт или клиент остановлен.
//
// Очередь ограничена: если потребитель перестаёт читать, цикл чтения встаёт
// и перестаёт забирать данные из транспорта, пока место не освободится.
func (c *Client) Messages() <-chan message.Message {
	return c.messages
}

// Done закрывается после завершения цикла чтения.
func (c *Client) Done() <-chan struct{} {
	return c.readerDone
}

// Err возвращает причину остановки; nil, пока клиент работает.
func (c *Client) Err() error {
	select {
	case <-c.readerDone:
		return c.err
	default:
		return nil
	}
}

// Close дописывает уже поставленные команды и закрывает соединение.
// Не ждёт писателя: если дозапись не уложилась в flushTimeout, транспорт
// закрывается принудительно.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.fail(ErrClientClosed)
		close(c.closing)
		go c.forceClose()
	})
	return nil
}

func (c *Client) forceClose() {
	timer := time.NewTimer(c.flushTimeout)
	defer timer.Stop()

	select {
	case <-c.writerDone:
	case <-timer.C:
		log.Printf("twitch: очередь не дописана за %s, соединение закрыто", c.flushTimeout)
		c.conn.Close()
	}
}

// Stats возвращает снимок счётчиков клиента.
func (c *Client) Stats() Stats {
	return c.stats.snapshot()
}

// fail запоминает первую причину остановки.
func (c *Client) fail(err error) {
	c.errOnce.Do(func() {
		c.err = err
	})
}

func (c *Client) writeLoop() {
	defer close(c.writerDone)

	for {
		select {
		case line := <-c.outbound:
			if !c.write(line) {
				return
			}
		case <-c.closing:
			if c.drain() {
				c.shutdown()
			}
			return
		case <-c.readerDone:
			return
		}
	}
}

// drain дописывает то, что осталось в очереди к моменту Close.
func (c *Client) drain() bool {
	for {
		select {
		case line := <-c.outbound:
			if !c.write(line) {
				return false
			}
		default:
			return true
		}
	}
}

func (c *Client) write(line string) bool {
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
		c.fail(fmt.Errorf("twitch: write: %w", err))
		c.conn.Close()
		return false
	}
	c.stats.sent.Add(1)
	return true
}

// shutdown отправляет close-фрейм после того, как очередь записи опустела.
func (c *Client) shutdown() {
	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := c.conn.WriteMessage(websocket.CloseMessage, closeMsg); err != nil {
		log.Printf("twitch: close-фрейм не отправлен: %v", err)
	}
	c.conn.Close()
}

func (c *Client) readLoop() {
	defer close(c.readerDone)
	defer close(c.messages)
	defer c.conn.Close()

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			c.fail(fmt.Errorf("twitch: read: %w", err))
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		for _, line := range splitLines(string(data)) {
			if !c.deliver(line) {
				return
			}
		}
	}
}

// deliver разбирает строку и передаёт её потребителю. Возвращает false,
// если клиент закрывается.
func (c *Client) deliver(line string) bool {
	msg, err := c.parser.Parse(line)
	if err != nil {
		c.stats.malformed.Add(1)
		return true
	}
	if msg.Command.IsBanner() || c.ignored[msg.Command] {
		c.stats.filtered.Add(1)
		return true
	}

	c.stats.received.Add(1)
	select {
	case c.messages <- msg:
		return true
	case <-c.closing:
		return false
	}
}

// splitLines делит фрейм на строки протокола, отбрасывая \r и пустые строки.
func splitLines(frame string) []string {
	parts := strings.Split(frame, "\n")
	lines := parts[:0]
	for _, p := range parts {
		p = strings.TrimSuffix(p, "\r")
		if p != "" {
			lines = append(lines, p)
		}
	}
	return lines
}
