package color

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

// Color хранит значение цвета; RGB лежит в младших 24 битах.
type Color uint32

// RGB возвращает 24-битное значение цвета.
func (c Color) RGB() uint32 {
	return uint32(c) & 0xFFFFFF
}

// Hex форматирует цвет как "#RRGGBB".
func (c Color) Hex() string {
	return fmt.Sprintf("#%06X", c.RGB())
}

// DefaultPalette — цвета, из которых назначаются цвета новым пользователям.
var DefaultPalette = [15]Color{
	0xFF0000, 0x0000FF, 0x008000,
	0xB22222, 0xFF7F50, 0x9ACD32,
	0xFF4500, 0x2E8B57, 0xDAA520,
	0xD2691E, 0x5F9EA0, 0x1E90FF,
	0xFF69B4, 0x8A2BE2, 0x00FF7F,
}

// Assignor сопоставляет отображаемому имени цвет.
// Color идемпотентен для имени; SetColor явно переопределяет значение.
type Assignor interface {
	Color(name string) Color
	SetColor(name string, c Color) Color
}

// Table — потокобезопасная таблица цветов в памяти процесса.
// Чтения не блокируют друг друга, вставка нового имени исключает все остальные доступы.
type Table struct {
	mu     sync.RWMutex
	colors map[string]Color
	rnd    *rand.Rand
}

// NewTable создаёт пустую таблицу со случайным источником.
func NewTable() *Table {
	return NewTableWithSource(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// NewTableWithSource создаёт таблицу с заданным источником случайности.
func NewTableWithSource(src rand.Source) *Table {
	return &Table{
		colors: make(map[string]Color),
		rnd:    rand.New(src),
	}
}

// Color возвращает цвет имени, при первом обращении выбирая его из палитры.
func (t *Table) Color(name string) Color {
	if c, ok := t.Lookup(name); ok {
		return c
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// другой поток мог успеть вставить имя между блокировками
	if c, ok := t.colors[name]; ok {
		return c
	}
	c := DefaultPalette[t.rnd.IntN(len(DefaultPalette))]
	t.colors[name] = c
	return c
}

// Lookup возвращает цвет, только если он уже назначен.
func (t *Table) Lookup(name string) (Color, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	c, ok := t.colors[name]
	return c, ok
}

// SetColor записывает цвет для имени и возвращает его.
func (t *Table) SetColor(name string, c Color) Color {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.colors[name] = c
	return c
}

// Len возвращает число известных имён.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.colors)
}

// random выбирает цвет из палитры под write-блокировкой таблицы.
func (t *Table) random() Color {
	t.mu.Lock()
	defer t.mu.Unlock()
	return DefaultPalette[t.rnd.IntN(len(DefaultPalette))]
}
