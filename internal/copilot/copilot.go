// Package copilot is the collaboration room's assistant stub. Answers come
// from a Lua script defining suggest(doc, prompt).
package copilot

import (
	_ "embed"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

//go:embed default.lua
var defaultScript string

const entryPoint = "suggest"

// Copilot wraps a Lua state. A Lua state is not safe for concurrent use,
// so calls are serialized.
type Copilot struct {
	mu sync.Mutex
	L  *lua.LState
}

func newState() *lua.LState {
	return lua.NewState(lua.Options{
		CallStackSize: 120,
		RegistrySize:  120 * 20,
	})
}

// New loads the script at path, or the built-in script when path is empty.
func New(path string) (*Copilot, error) {
	L := newState()
	var err error
	if path == "" {
		err = L.DoString(defaultScript)
	} else {
		err = L.DoFile(path)
	}
	if err != nil {
		L.Close()
		return nil, fmt.Errorf("load copilot script %q: %w", path, err)
	}
	return newCopilot(L)
}

// NewFromSource loads a script from source text.
func NewFromSource(src string) (*Copilot, error) {
	L := newState()
	if err := L.DoString(src); err != nil {
		L.Close()
		return nil, fmt.Errorf("load copilot script: %w", err)
	}
	return newCopilot(L)
}

func newCopilot(L *lua.LState) (*Copilot, error) {
	if _, ok := L.GetGlobal(entryPoint).(*lua.LFunction); !ok {
		L.Close()
		return nil, fmt.Errorf("copilot script does not define %s(doc, prompt)", entryPoint)
	}
	return &Copilot{L: L}, nil
}

// Suggest asks the script for an answer to prompt about doc.
func (c *Copilot) Suggest(doc, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.L.CallByParam(lua.P{
		Fn:      c.L.GetGlobal(entryPoint),
		NRet:    1,
		Protect: true,
	}, lua.LString(doc), lua.LString(prompt)); err != nil {
		return "", fmt.Errorf("call %s: %w", entryPoint, err)
	}

	ret := c.L.Get(-1)
	c.L.Pop(1)
	if ret == lua.LNil {
		return "", nil
	}
	return lua.LVAsString(ret), nil
}

// Close shuts down the Lua state.
func (c *Copilot) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.L.Close()
}
