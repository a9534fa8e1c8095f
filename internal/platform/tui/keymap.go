package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/duotris/internal/core"
)

// binding is one key's meaning in a layout.
type binding struct {
	player core.PlayerID
	action core.Action
}

// Solo layout: arrows or WASD steer the active piece, Space swaps it.
var soloKeys = map[string]binding{
	"left":  {core.Player1, core.ActionLeft},
	"a":     {core.Player1, core.ActionLeft},
	"right": {core.Player1, core.ActionRight},
	"d":     {core.Player1, core.ActionRight},
	"up":    {core.Player1, core.ActionRotate},
	"w":     {core.Player1, core.ActionRotate},
	"down":  {core.Player1, core.ActionDown},
	"s":     {core.Player1, core.ActionDown},
	" ":     {core.Player1, core.ActionSwap},
	"enter": {core.Player1, core.ActionHardDrop},
	"x":     {core.Player1, core.ActionHardDrop},
}

// Co-op layout: Player 1 on WASD + E, Player 2 on the arrows + Enter.
var coopKeys = map[string]binding{
	"a":     {core.Player1, core.ActionLeft},
	"d":     {core.Player1, core.ActionRight},
	"w":     {core.Player1, core.ActionRotate},
	"s":     {core.Player1, core.ActionDown},
	"e":     {core.Player1, core.ActionHardDrop},
	"left":  {core.Player2, core.ActionLeft},
	"right": {core.Player2, core.ActionRight},
	"up":    {core.Player2, core.ActionRotate},
	"down":  {core.Player2, core.ActionDown},
	"enter": {core.Player2, core.ActionHardDrop},
}

// Keys shared by both layouts. Pause and restart go through Player 1.
var commonKeys = map[string]binding{
	"p":   {core.Player1, core.ActionPause},
	"r":   {core.Player1, core.ActionRestart},
	"b":   {core.Player1, core.ActionBack},
	"esc": {core.Player1, core.ActionBack},
}

// KeyMapper translates Bubble Tea key messages to game actions.
// This centralizes key bindings and makes them testable.
type KeyMapper struct {
	keys map[string]binding
}

// NewKeyMapper creates a key mapper with the solo layout.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{keys: soloKeys}
}

// NewCoopKeyMapper creates a key mapper that splits the keyboard between
// two players.
func NewCoopKeyMapper() *KeyMapper {
	return &KeyMapper{keys: coopKeys}
}

// MapKey translates a key message to the player it belongs to and the
// action. Returns whether it's a quit request.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (player core.PlayerID, action core.Action, isQuit bool) {
	key := msg.String()

	switch key {
	case "ctrl+c", "q":
		return core.Player1, core.ActionQuit, true
	}

	if b, ok := km.keys[key]; ok {
		return b.player, b.action, false
	}
	if b, ok := commonKeys[key]; ok {
		return b.player, b.action, false
	}
	return core.Player1, core.ActionNone, false
}

// MapKeyToFrame updates a single-player input frame. Keys bound to
// Player 2 are ignored. Returns true if the key was a quit request.
func (km *KeyMapper) MapKeyToFrame(msg tea.KeyMsg, frame *core.InputFrame) bool {
	player, action, isQuit := km.MapKey(msg)
	if action != core.ActionNone && player == core.Player1 {
		frame.Set(action)
	}
	return isQuit
}

// MapKeyToMultiFrame adds the key's action to the owning player's frame.
// Returns true if the key was a quit request.
func (km *KeyMapper) MapKeyToMultiFrame(msg tea.KeyMsg, frame *core.MultiInputFrame) bool {
	player, action, isQuit := km.MapKey(msg)
	if action != core.ActionNone {
		f := frame.Player(player)
		f.Set(action)
		frame.SetPlayer(player, f)
	}
	return isQuit
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionQuit
	MenuActionReplays
)

// MapKeyToMenuAction translates a key to a menu action.
func (km *KeyMapper) MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	key := msg.String()

	switch key {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	case "tab":
		return MenuActionReplays
	}

	return MenuActionNone
}
