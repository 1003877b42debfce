package absexec

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	absint "github.com/wcbup/Abstract-Interpretation"
)

const (
	assertionsDisabledField = "$assertionsDisabled"
	assertionErrorClass     = "java/lang/AssertionError"
)

// Interpreter explores every path of one method over abstract values.
// It is not safe for concurrent use.
type Interpreter struct {
	method   *absint.Method
	opts     Options
	active   *stateSet
	findings *Findings
	logger   Logger
	runID    string

	rounds       int
	terminal     map[Status]int
	returns      []Value
	deduplicated int
}

// New prepares an interpreter for m whose parameters hold params. Parameter
// i is stored in local slot i with home slot i.
func New(m *absint.Method, params []Value, opts Options) (*Interpreter, error) {
	if m == nil {
		return nil, errors.New("method cannot be nil")
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid method %s: %w", m.ID(), err)
	}
	if len(m.Code) == 0 {
		return nil, fmt.Errorf("method %s has no code", m.ID())
	}

	runID := uuid.Must(uuid.NewV4()).String()
	in := &Interpreter{
		method:   m,
		opts:     opts,
		active:   newStateSet(),
		findings: newFindings(),
		logger:   newLoggerFromOptions(opts).With(map[string]any{"run": runID[:8]}),
		runID:    runID,
		terminal: make(map[Status]int),
	}

	root := NewState(m, Parameters(params...))
	if opts.EnableMemo {
		in.active.markSeen(root)
	}
	in.active.push(root)
	return in, nil
}

// Findings returns the findings accumulated so far.
func (in *Interpreter) Findings() *Findings { return in.findings }

// Active returns the states of the next round.
func (in *Interpreter) Active() []*State { return in.active.states }

// Rounds returns the number of completed rounds.
func (in *Interpreter) Rounds() int { return in.rounds }

// Run explores until no state is active or maxRounds rounds have run.
// maxRounds <= 0 means unbounded. Running out of budget is not an error; it
// is reported through Result.Halt.
func (in *Interpreter) Run(ctx context.Context, maxRounds int) (*Result, error) {
	in.logger.With(map[string]any{
		"method": in.method.ID(),
		"codes":  len(in.method.Code),
		"budget": maxRounds,
	}).Infof("Starting abstract interpretation")

	halt := HaltExhausted
	for !in.active.isEmpty() {
		if maxRounds > 0 && in.rounds >= maxRounds {
			halt = HaltBudget
			in.logger.With(map[string]any{
				"rounds": in.rounds,
				"active": len(in.active.states),
			}).Warnf("Round budget exhausted")
			break
		}

		// Check context cancellation
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := in.round(); err != nil {
			return nil, err
		}
	}

	res := in.result(halt)
	in.logger.With(map[string]any{
		"rounds":    res.Rounds,
		"halt":      res.Halt,
		"terminal":  res.TerminalCount(),
		"confirmed": len(res.Confirmed),
		"possible":  len(res.Possible),
	}).Infof("Execution completed")
	return res, nil
}

// round steps every active state once and makes the successors the next
// round's active set.
func (in *Interpreter) round() error {
	current := in.active.drain()
	for _, state := range current {
		next, err := in.Step(state)
		if err != nil {
			return err
		}
		for _, s := range next {
			if in.opts.EnableMemo && in.active.markSeen(s) {
				in.deduplicated++
				continue
			}
			in.active.push(s)
		}
	}
	in.rounds++
	return nil
}

// Step executes one instruction of state's active frame and returns the
// successor states. The result is empty only when the state terminated.
// state itself may be reused as a successor.
func (in *Interpreter) Step(state *State) ([]*State, error) {
	frame := state.Top()
	if frame == nil {
		return nil, nil
	}
	instr, ok := frame.Method.At(frame.PC)
	if !ok {
		return nil, fmt.Errorf("%s: pc=%d outside method code (len %d)", frame.Method.ID(), frame.PC, len(frame.Method.Code))
	}

	in.logger.With(map[string]any{
		"state":   fmt.Sprintf("s%d", state.id),
		"lineage": state.lineage,
		"pc":      frame.PC,
		"op":      instr.Op,
		"depth":   state.Depth(),
		"stack":   frame.stack.len(),
		"top":     stackPreview(frame, in.previewDepth()),
	}).Debugf("Executing %s", instr)

	next, err := in.execute(state, frame, instr)
	if err != nil {
		var unsupported *UnsupportedError
		if errors.Is(err, ErrUnsupported) && !errors.As(err, &unsupported) {
			reason := strings.TrimPrefix(err.Error(), ErrUnsupported.Error()+": ")
			err = &UnsupportedError{Method: frame.Method.ID(), PC: frame.PC, Instr: instr, Reason: reason}
		}
		return nil, fmt.Errorf("error at %s pc=%d op=%s: %w", frame.Method.ID(), frame.PC, instr.Op, err)
	}

	if state.Terminal() {
		in.finish(state)
	}
	for _, s := range next {
		if s != state && s.id == state.id {
			s.id = in.active.nextStateID
			in.active.nextStateID++
			s.parentID = state.id

			in.logger.With(map[string]any{
				"state":   fmt.Sprintf("s%d", s.id),
				"parent":  fmt.Sprintf("s%d", s.parentID),
				"lineage": s.lineage,
				"pc":      s.Top().PC,
			}).Debugf("Created successor state")
		}
	}
	return next, nil
}

func (in *Interpreter) previewDepth() int {
	if in.opts.LogStackPreviewDepth > 0 {
		return in.opts.LogStackPreviewDepth
	}
	return 3
}

// finish folds a terminal state into the run statistics.
func (in *Interpreter) finish(state *State) {
	in.terminal[state.status]++
	if state.status == Returned && !state.ret.IsVoid() {
		seen := false
		for _, r := range in.returns {
			if Same(r, state.ret) {
				seen = true
				break
			}
		}
		if !seen {
			in.returns = append(in.returns, state.ret.WithoutHome())
		}
	}
	in.logger.With(map[string]any{
		"state":   fmt.Sprintf("s%d", state.id),
		"lineage": state.lineage,
		"status":  state.status,
		"result":  state.ret,
	}).Debugf("Terminal state reached")
}

func (in *Interpreter) result(halt HaltReason) *Result {
	confirmed, possible := in.findings.Details()
	terminal := make(map[Status]int, len(in.terminal))
	for k, v := range in.terminal {
		terminal[k] = v
	}
	returns := make([]Value, len(in.returns))
	copy(returns, in.returns)
	return &Result{
		RunID:            in.runID,
		Method:           in.method.ID(),
		Confirmed:        in.findings.Confirmed(),
		Possible:         in.findings.Possible(),
		ConfirmedDetails: confirmed,
		PossibleDetails:  possible,
		Rounds:           in.rounds,
		Halt:             halt,
		Active:           len(in.active.states),
		Terminal:         terminal,
		ReturnValues:     returns,
		Deduplicated:     in.deduplicated,
	}
}

// ============================================================================
// INSTRUCTION HANDLERS
// ============================================================================

// execute applies instr to the state. Jumps set the pc themselves; every
// other instruction advances it by one.
func (in *Interpreter) execute(state *State, f *Frame, instr absint.Instruction) ([]*State, error) {
	switch instr.Op {
	case absint.OpPush:
		return in.execPush(state, f, instr)

	case absint.OpLoad:
		if err := requireInt(instr.Type); err != nil {
			return nil, err
		}
		v, ok := f.Local(instr.Index)
		if !ok {
			return nil, fmt.Errorf("%w: load of unset local %d", ErrUnsupported, instr.Index)
		}
		f.Push(v.WithHome(instr.Index))
		f.PC++
		return []*State{state}, nil

	case absint.OpStore:
		if err := requireInt(instr.Type); err != nil {
			return nil, err
		}
		v, err := f.pop()
		if err != nil {
			return nil, err
		}
		f.forgetHome(instr.Index)
		f.SetLocal(instr.Index, v.WithHome(instr.Index))
		f.PC++
		return []*State{state}, nil

	case absint.OpBinary:
		return in.execBinary(state, f, instr)

	case absint.OpNegate:
		if err := requireInt(instr.Type); err != nil {
			return nil, err
		}
		v, err := f.pop()
		if err != nil {
			return nil, err
		}
		r, err := NegateValue(v)
		if err != nil {
			return nil, err
		}
		f.Push(r)
		f.PC++
		return []*State{state}, nil

	case absint.OpIncr:
		v, ok := f.Local(instr.Index)
		if !ok {
			return nil, fmt.Errorf("%w: increment of unset local %d", ErrUnsupported, instr.Index)
		}
		r, err := AddValues(v, Exact(instr.Amount))
		if err != nil {
			return nil, err
		}
		f.forgetHome(instr.Index)
		f.SetLocal(instr.Index, r.WithHome(instr.Index))
		f.PC++
		return []*State{state}, nil

	case absint.OpGoto:
		f.PC = instr.Target
		return []*State{state}, nil

	case absint.OpIf:
		right, err := f.pop()
		if err != nil {
			return nil, err
		}
		left, err := f.pop()
		if err != nil {
			return nil, err
		}
		return in.execBranch(state, f, instr, left, right)

	case absint.OpIfZ:
		v, err := f.pop()
		if err != nil {
			return nil, err
		}
		return in.execBranch(state, f, instr, v, Exact(0))

	case absint.OpGet:
		if !instr.Static || instr.Field.Name != assertionsDisabledField {
			return nil, fmt.Errorf("%w: field %s.%s", ErrUnsupported, instr.Field.Class, instr.Field.Name)
		}
		f.Push(Exact(0))
		f.PC++
		return []*State{state}, nil

	case absint.OpNew:
		if instr.Class != assertionErrorClass {
			return nil, fmt.Errorf("%w: construction of %s", ErrUnsupported, instr.Class)
		}
		state.terminate(AssertionFailed)
		return nil, nil

	case absint.OpReturn:
		return in.execReturn(state, f, instr)

	default:
		return nil, fmt.Errorf("%w: opcode %q", ErrUnsupported, instr.Name)
	}
}

func requireInt(t absint.TypeTag) error {
	if t != absint.TypeInt && t != absint.TypeBoolean {
		return fmt.Errorf("%w: type %q", ErrUnsupported, t)
	}
	return nil
}

// execPush pushes an integer constant.
func (in *Interpreter) execPush(state *State, f *Frame, instr absint.Instruction) ([]*State, error) {
	if !instr.HasValue {
		return nil, fmt.Errorf("%w: non-integer constant", ErrUnsupported)
	}
	f.Push(Exact(instr.Value))
	f.PC++
	return []*State{state}, nil
}

// execBinary pops right then left, applies the operator and pushes the
// result. A division that certainly faults terminates the state.
func (in *Interpreter) execBinary(state *State, f *Frame, instr absint.Instruction) ([]*State, error) {
	if err := requireInt(instr.Type); err != nil {
		return nil, err
	}
	right, err := f.pop()
	if err != nil {
		return nil, err
	}
	left, err := f.pop()
	if err != nil {
		return nil, err
	}

	var r Value
	switch instr.Operator {
	case absint.Add:
		r, err = AddValues(left, right)
	case absint.Sub:
		r, err = SubValues(left, right)
	case absint.Mul:
		r, err = MulValues(left, right)
	case absint.Div, absint.Rem:
		var sev Severity
		if instr.Operator == absint.Div {
			r, sev, err = DivValues(left, right)
		} else {
			r, sev, err = RemValues(left, right)
		}
		if err != nil {
			return nil, err
		}
		if sev != NoFault {
			in.recordFault(state, f, sev, left, right)
		}
		if sev == ConfirmedFault {
			state.terminate(Faulted)
			return nil, nil
		}
	default:
		return nil, fmt.Errorf("%w: binary operator %q", ErrUnsupported, instr.Operator)
	}
	if err != nil {
		return nil, err
	}
	f.Push(r)
	f.PC++
	return []*State{state}, nil
}

func (in *Interpreter) recordFault(state *State, f *Frame, sev Severity, left, right Value) {
	in.findings.Record(sev, ArithmeticException, Site{Method: f.Method.ID(), PC: f.PC})
	in.logger.With(map[string]any{
		"state":    fmt.Sprintf("s%d", state.id),
		"lineage":  state.lineage,
		"pc":       f.PC,
		"severity": sev,
		"dividend": left,
		"divisor":  right,
	}).Infof("Division by zero %s", sev)
}

// execBranch is shared by if and ifz. On an undecided comparison the state
// forks: the new state takes the jump, the original falls through, and each
// writes its branch's refinements into its own locals.
func (in *Interpreter) execBranch(state *State, f *Frame, instr absint.Instruction, left, right Value) ([]*State, error) {
	outcome, err := Compare(instr.Condition, left, right)
	if err != nil {
		return nil, err
	}

	if outcome.Kind == Concrete {
		if outcome.Holds {
			f.PC = instr.Target
		} else {
			f.PC++
		}
		return []*State{state}, nil
	}

	taken := state.clone()
	taken.lineage = state.lineage + ".T"
	taken.Top().PC = instr.Target
	applyRefinements(taken.Top(), outcome.OnTrue)

	state.lineage += ".F"
	f.PC++
	applyRefinements(f, outcome.OnFalse)

	in.logger.With(map[string]any{
		"state":   fmt.Sprintf("s%d", state.id),
		"pc":      f.PC - 1,
		"outcome": outcome,
	}).Debugf("Forking on %s", instr.Condition)

	return []*State{taken, state}, nil
}

func applyRefinements(f *Frame, refs []Refinement) {
	for _, r := range refs {
		f.SetLocal(r.Slot, r.Value.WithHome(r.Slot))
	}
}

// execReturn hands a non-void result to the caller, or records it as the
// final result when the frame is the last one.
func (in *Interpreter) execReturn(state *State, f *Frame, instr absint.Instruction) ([]*State, error) {
	ret := Void()
	if instr.Type != absint.TypeNone {
		if err := requireInt(instr.Type); err != nil {
			return nil, err
		}
		v, err := f.pop()
		if err != nil {
			return nil, err
		}
		ret = v.WithoutHome()
	}

	state.popFrame()
	if caller := state.Top(); caller != nil {
		if !ret.IsVoid() {
			caller.Push(ret)
		}
		return []*State{state}, nil
	}

	state.ret = ret
	state.status = Returned
	return nil, nil
}
