// Package machine implements the dyl bytecode interpreter: a single
// operand stack and an instruction pointer driven by a flat
// switch-dispatch loop, one case per opcode.
package machine

import (
	"context"
	"fmt"

	"github.com/mna/dyl/lang/compiler"
)

// Thread identifies a single run of the interpreter. The machine has
// no concurrency of its own (a single operand stack, never shared
// across goroutines); Thread's MaxSteps and the context.Context passed
// to Run exist solely so a caller can bound or cancel a runaway
// program from the outside, checked only between instructions, never
// preempting one mid-dispatch. Unlike the teacher's machine.Thread,
// there is no background goroutine watching ctx.Done(): every dyl
// opcode is O(1), so a direct ctx.Err() check right before dispatching
// the next instruction observes cancellation just as promptly, without
// the extra goroutine or the atomic.Bool needed to hand its result back.
type Thread struct {
	// Name optionally names the thread in error messages. Left empty,
	// errors simply omit it.
	Name string

	// MaxSteps caps the number of instructions Run will dispatch before
	// aborting with a Cancelled RuntimeError. A value <= 0 means no
	// limit.
	MaxSteps int

	steps, maxSteps uint64
}

// Run executes insns from instruction 0 until f_stop halts the machine
// or a RuntimeError aborts it. There is no recovery: the first error
// stops execution immediately. ctx is checked between instructions: if
// it is cancelled, Run returns a Cancelled RuntimeError wrapping
// context.Cause(ctx); once th.MaxSteps instructions have been
// dispatched, it returns a Cancelled RuntimeError wrapping a
// step-budget-exceeded error.
func Run(ctx context.Context, th *Thread, insns []compiler.Instruction) (Value, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	th.init()

	var stack []Value
	var pc uint32

	for {
		th.steps++
		if th.steps > th.maxSteps {
			return nil, th.err(&RuntimeError{Kind: Cancelled, PC: pc, Cause: fmt.Errorf("step budget of %d instructions exceeded", th.MaxSteps)})
		}
		if ctx.Err() != nil {
			return nil, th.err(&RuntimeError{Kind: Cancelled, PC: pc, Cause: context.Cause(ctx)})
		}

		if int(pc) >= len(insns) {
			return nil, th.err(&RuntimeError{Kind: OutOfBoundStackAccess, PC: pc, Depth: int(pc), Len: len(insns)})
		}

		next, result, err := step(pc, insns[pc], &stack)
		if err != nil {
			return nil, th.err(err)
		}
		if result != nil {
			return result, nil
		}
		pc = next
	}
}

// init performs one-time setup of th's step budget.
func (th *Thread) init() {
	if th.MaxSteps <= 0 {
		th.maxSteps--
	} else {
		th.maxSteps = uint64(th.MaxSteps)
	}
}

func (th *Thread) err(err error) error {
	if th == nil || th.Name == "" {
		return err
	}
	return fmt.Errorf("thread %s: %w", th.Name, err)
}

// step executes the single instruction at pc against stack, returning
// either the next pc to dispatch (continue) or a non-nil result
// (f_stop was reached). Exactly one of (next valid, result non-nil) is
// meaningful on a nil error.
func step(pc uint32, insn compiler.Instruction, stack *[]Value) (next uint32, result Value, err error) {
	switch insn := insn.(type) {
	case compiler.PushIInsn:
		*stack = append(*stack, Integer(insn.N))
		return pc + 1, nil, nil

	case compiler.AddIInsn:
		a, b, err := popTwoIntegers(pc, stack)
		if err != nil {
			return 0, nil, err
		}
		*stack = append(*stack, a+b)
		return pc + 1, nil, nil

	case compiler.FStopInsn:
		s := *stack
		if len(s) != 1 {
			return 0, nil, &RuntimeError{Kind: StackNotSingleton, PC: pc, Len: len(s)}
		}
		return 0, s[0], nil

	case compiler.PushCopyInsn:
		v, err := peekDepth(pc, *stack, int(insn.K))
		if err != nil {
			return 0, nil, err
		}
		*stack = append(*stack, v)
		return pc + 1, nil, nil

	case compiler.PopCopyInsn:
		v, err := pop(pc, stack)
		if err != nil {
			return 0, nil, err
		}
		if err := overwriteAtOffset(pc, stack, int(insn.K), v); err != nil {
			return 0, nil, err
		}
		return pc + 1, nil, nil

	case compiler.PopInsn:
		if err := drop(pc, stack, int(insn.N)); err != nil {
			return 0, nil, err
		}
		return pc + 1, nil, nil

	case compiler.ResVInsn:
		for i := uint16(0); i < insn.N; i++ {
			*stack = append(*stack, Integer(0))
		}
		return pc + 1, nil, nil

	case compiler.CallInsn:
		*stack = append(*stack, InstructionPointer(pc+1))
		return insn.Addr, nil, nil

	case compiler.RetInsn:
		v, err := peekDepth(pc, *stack, int(insn.IPOffset))
		if err != nil {
			return 0, nil, err
		}
		retAddr, err := asInstructionPointer(pc, v)
		if err != nil {
			return 0, nil, err
		}
		if err := shrinkTo(pc, stack, int(insn.Shrink)); err != nil {
			return 0, nil, err
		}
		return uint32(retAddr), nil, nil

	case compiler.GotoInsn:
		return insn.Addr, nil, nil

	case compiler.CondJmpInsn:
		v, err := pop(pc, stack)
		if err != nil {
			return 0, nil, err
		}
		i, err := asInteger(pc, v)
		if err != nil {
			return 0, nil, err
		}
		switch {
		case i < 0:
			return insn.Neg, nil, nil
		case i == 0:
			return insn.Null, nil, nil
		default:
			return insn.Pos, nil, nil
		}

	case compiler.NegInsn:
		v, err := pop(pc, stack)
		if err != nil {
			return 0, nil, err
		}
		i, err := asInteger(pc, v)
		if err != nil {
			return 0, nil, err
		}
		*stack = append(*stack, -i)
		return pc + 1, nil, nil

	case compiler.MulInsn:
		a, b, err := popTwoIntegers(pc, stack)
		if err != nil {
			return 0, nil, err
		}
		*stack = append(*stack, a*b)
		return pc + 1, nil, nil

	default:
		panic(fmt.Sprintf("machine: unhandled instruction type %T", insn))
	}
}

// pop removes and returns the top of *stack.
func pop(pc uint32, stack *[]Value) (Value, error) {
	s := *stack
	if len(s) == 0 {
		return nil, &RuntimeError{Kind: EmptyStack, PC: pc}
	}
	v := s[len(s)-1]
	*stack = s[:len(s)-1]
	return v, nil
}

// popTwoIntegers pops the top two values, in pop order (first popped
// is the right-hand operand in push order, i.e. the more recently
// pushed value), and requires both to be Integer.
func popTwoIntegers(pc uint32, stack *[]Value) (Integer, Integer, error) {
	va, err := pop(pc, stack)
	if err != nil {
		return 0, 0, err
	}
	vb, err := pop(pc, stack)
	if err != nil {
		return 0, 0, err
	}
	a, err := asInteger(pc, va)
	if err != nil {
		return 0, 0, err
	}
	b, err := asInteger(pc, vb)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

// peekDepth returns the value at depth slots below the current top
// (depth 0 is the top itself) without modifying stack.
func peekDepth(pc uint32, stack []Value, depth int) (Value, error) {
	idx := len(stack) - 1 - depth
	if idx < 0 || idx >= len(stack) {
		return nil, &RuntimeError{Kind: OutOfBoundStackAccess, PC: pc, Depth: depth, Len: len(stack)}
	}
	return stack[idx], nil
}

// overwriteAtOffset writes v into the slot offset positions from the
// current top, counting the top itself as offset 1 (pop_copy's
// convention, distinct from push_copy/ret's zero-indexed depth: offset
// k lands on the slot that was at depth k before v was popped (depth
// k-1 after), i.e. index len(*stack)-k in the post-pop stack).
func overwriteAtOffset(pc uint32, stack *[]Value, offset int, v Value) error {
	s := *stack
	idx := len(s) - offset
	if offset < 1 || idx < 0 || idx >= len(s) {
		return &RuntimeError{Kind: OutOfBoundStackAccess, PC: pc, Depth: offset, Len: len(s)}
	}
	s[idx] = v
	return nil
}

// drop removes the top n slots.
func drop(pc uint32, stack *[]Value, n int) error {
	s := *stack
	if n < 0 || n > len(s) {
		return &RuntimeError{Kind: OutOfBoundStackAccess, PC: pc, Depth: n, Len: len(s)}
	}
	*stack = s[:len(s)-n]
	return nil
}

// shrinkTo truncates the stack to its current length minus shrink,
// keeping the bottom (current length - shrink) slots.
func shrinkTo(pc uint32, stack *[]Value, shrink int) error {
	s := *stack
	newLen := len(s) - shrink
	if newLen < 0 || newLen > len(s) {
		return &RuntimeError{Kind: OutOfBoundStackAccess, PC: pc, Depth: shrink, Len: len(s)}
	}
	*stack = s[:newLen]
	return nil
}
