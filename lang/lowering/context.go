// Package lowering translates a checked AST into an unresolved
// instruction list (symbolic jump targets instead of concrete addresses)
// and then resolves that list into the instruction set lang/compiler
// defines.
package lowering

import (
	"errors"
	"fmt"
	"go/token"

	"github.com/dolthub/swiss"
	"github.com/mna/dyl/lang/scanner"
)

// LabelContext allocates dense label ids and binds each, at most once, to
// an instruction position.
type LabelContext struct {
	positions []*uint32
}

// NewAnonymous allocates a fresh, as yet unbound, label id.
func (lc *LabelContext) NewAnonymous() uint32 {
	lc.positions = append(lc.positions, nil)
	return uint32(len(lc.positions) - 1)
}

// SetPosition binds id to pos. It is an error to bind an id twice or to
// bind an id that was never allocated.
func (lc *LabelContext) SetPosition(id, pos uint32) error {
	if int(id) >= len(lc.positions) {
		return fmt.Errorf("lowering: unknown label %d", id)
	}
	if lc.positions[id] != nil {
		return fmt.Errorf("lowering: label %d already defined at %d", id, *lc.positions[id])
	}
	p := pos
	lc.positions[id] = &p
	return nil
}

// Resolve returns the position bound to id, or an error if id is unknown
// or was never bound.
func (lc *LabelContext) Resolve(id uint32) (uint32, error) {
	if int(id) >= len(lc.positions) || lc.positions[id] == nil {
		return 0, fmt.Errorf("lowering: label %d has no bound position", id)
	}
	return *lc.positions[id], nil
}

// StackContext mirrors, at compile time, the shape of the runtime operand
// stack: one name per slot, empty string for an anonymous (unnamed)
// value. Resolving a name returns its depth from the current top.
type StackContext struct {
	names []string
}

// PushAnonymous records that an unnamed value was pushed.
func (sc *StackContext) PushAnonymous() { sc.names = append(sc.names, "") }

// NameTopAnonymous gives the top anonymous slot a name, turning it into a
// resolvable binding. It is an error to call this when the stack is empty
// or the top slot already has a name.
func (sc *StackContext) NameTopAnonymous(name string) error {
	if len(sc.names) == 0 {
		return errors.New("lowering: no top variable")
	}
	top := len(sc.names) - 1
	if sc.names[top] != "" {
		return errors.New("lowering: top variable is not anonymous")
	}
	sc.names[top] = name
	return nil
}

// PopTopAnonymous drops the top slot. It is an error to call this when
// the stack is empty or the top slot is named.
func (sc *StackContext) PopTopAnonymous() error {
	if len(sc.names) == 0 {
		return errors.New("lowering: stack is empty")
	}
	top := len(sc.names) - 1
	if sc.names[top] != "" {
		return errors.New("lowering: top variable is not anonymous")
	}
	sc.names = sc.names[:top]
	return nil
}

// Resolve returns the depth from the current top of the nearest slot
// named name, shadowing outer bindings of the same name.
func (sc *StackContext) Resolve(name string) (uint16, bool) {
	for i := len(sc.names) - 1; i >= 0; i-- {
		if sc.names[i] == name {
			return uint16(len(sc.names) - 1 - i), true
		}
	}
	return 0, false
}

// Depth reports the current number of tracked slots.
func (sc *StackContext) Depth() int { return len(sc.names) }

// NewSubcontext returns a marker that DropSubcontext truncates back to.
func (sc *StackContext) NewSubcontext() int { return len(sc.names) }

// DropSubcontext discards every slot pushed since marker was obtained.
func (sc *StackContext) DropSubcontext(marker int) { sc.names = sc.names[:marker] }

// Context carries the sub-contexts lowering threads through a Program,
// plus its own diagnostic channel — the same scanner.ErrorList type
// parsing and type checking use, aggregated and reported the same way,
// but each pass owns its own list rather than one shared instance.
type Context struct {
	Labels LabelContext
	Stack  StackContext
	Errors scanner.ErrorList

	file *token.File

	// funcTable maps a declared function's name to the label id marking
	// its entry point; built while lowering Program and used only to
	// reject a duplicate function name. Nothing looks a call target up
	// in it.
	funcTable *swiss.Map[string, uint32]
}

// NewContext returns a Context reporting positions relative to file.
func NewContext(file *token.File) *Context {
	return &Context{
		file:      file,
		funcTable: swiss.NewMap[string, uint32](4),
	}
}

func (ctx *Context) error(pos token.Pos, msg string) {
	ctx.Errors.Add(ctx.file.Position(pos), msg)
}

// defineFunc records name's entry label, returning false if name was
// already declared.
func (ctx *Context) defineFunc(name string, label uint32) bool {
	if _, ok := ctx.funcTable.Get(name); ok {
		return false
	}
	ctx.funcTable.Put(name, label)
	return true
}

