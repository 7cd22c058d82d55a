package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for flavor logic. Single-goroutine
// access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory tree.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	for _, sub := range []string{"reactions"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// ReactionContext holds pre-packed data for an animal reaction lookup.
type ReactionContext struct {
	Species     string
	State       string
	Interaction string
	Success     bool
	Trust       float64
	Fear        float64
	Happiness   float64
	Tamed       bool
	Rare        bool
}

// AnimalReaction calls the Lua animal_reaction function. Returns the
// built-in fallback line when no script is loaded or the call fails.
func (e *Engine) AnimalReaction(ctx ReactionContext) string {
	fallback := fallbackReaction(ctx)
	if e == nil {
		return fallback
	}

	fn := e.vm.GetGlobal("animal_reaction")
	if fn == lua.LNil {
		return fallback
	}

	t := e.vm.NewTable()
	t.RawSetString("species", lua.LString(ctx.Species))
	t.RawSetString("state", lua.LString(ctx.State))
	t.RawSetString("interaction", lua.LString(ctx.Interaction))
	t.RawSetString("trust", lua.LNumber(ctx.Trust))
	t.RawSetString("fear", lua.LNumber(ctx.Fear))
	t.RawSetString("happiness", lua.LNumber(ctx.Happiness))
	if ctx.Success {
		t.RawSetString("success", lua.LTrue)
	} else {
		t.RawSetString("success", lua.LFalse)
	}
	if ctx.Tamed {
		t.RawSetString("tamed", lua.LTrue)
	} else {
		t.RawSetString("tamed", lua.LFalse)
	}
	if ctx.Rare {
		t.RawSetString("rare", lua.LTrue)
	} else {
		t.RawSetString("rare", lua.LFalse)
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua animal_reaction error", zap.Error(err))
		return fallback
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	s, ok := result.(lua.LString)
	if !ok || s == "" {
		return fallback
	}
	return string(s)
}

// fallbackReaction is used when scripting is disabled or misbehaves.
func fallbackReaction(ctx ReactionContext) string {
	if !ctx.Success {
		return fmt.Sprintf("the %s shies away", ctx.Species)
	}
	switch {
	case ctx.Trust > 70:
		return fmt.Sprintf("the %s leans in happily", ctx.Species)
	case ctx.Fear > 50:
		return fmt.Sprintf("the %s accepts warily", ctx.Species)
	}
	return fmt.Sprintf("the %s watches you calmly", ctx.Species)
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	if e != nil {
		e.vm.Close()
	}
}
