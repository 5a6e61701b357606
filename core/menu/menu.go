package menu

import (
	"sync"

	"github.com/flavorsense/flavorsense/core"
)

type Menu struct {
	Breakfast string `json:"breakfast"`
	Lunch     string `json:"lunch"`
	Dinner    string `json:"dinner"`
}

// Update is a partial menu change: blank fields leave the current value unchanged.
type Update struct {
	Breakfast string `form:"breakfast"`
	Lunch     string `form:"lunch"`
	Dinner    string `form:"dinner"`
}

// Board holds today's menu, shared by every request.
type Board struct {
	mu   sync.RWMutex
	menu Menu
}

func NewBoard(initial Menu) *Board {
	return &Board{menu: initial}
}

// FromConfig returns the initial menu from conf.
func FromConfig(conf core.MenuConfig) Menu {
	return Menu{Breakfast: conf.Breakfast, Lunch: conf.Lunch, Dinner: conf.Dinner}
}

func (b *Board) Get() Menu {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.menu
}

// Update applies u and returns the resulting menu.
func (b *Board) Update(u Update) Menu {
	b.mu.Lock()
	defer b.mu.Unlock()

	if v := core.CleanString(u.Breakfast); v != "" {
		b.menu.Breakfast = v
	}
	if v := core.CleanString(u.Lunch); v != "" {
		b.menu.Lunch = v
	}
	if v := core.CleanString(u.Dinner); v != "" {
		b.menu.Dinner = v
	}
	return b.menu
}
