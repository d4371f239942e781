// Package emitter lowers a resolved HIR program into one bytecode.Chunk per
// function, method, and constructor, plus a synthesized chunk for
// module-level code.
//
// Two constructs the grammar and resolver fully support have no opcode to
// carry them in the current instruction set: object field storage (no
// SETFIELD/GETFIELD exists among the fixed opcodes) and closures over
// captured locals (no opcode reads an upvalue cell). Emit rejects both with
// a tagged Error rather than silently dropping the construct; see emitAssign
// and the Lambda case of emitExpr below.
package emitter

import (
	"fmt"

	"github.com/brief-lang/brief/lang/bytecode"
	"github.com/brief-lang/brief/lang/hir"
	"github.com/brief-lang/brief/lang/token"
)

// ErrorKind classifies an emission failure.
type ErrorKind int

const (
	// ErrUnsupported marks a node shape the current opcode set cannot
	// express: object field access/assignment, indexing, casts, method
	// calls, lambdas, and interpolation with a hole.
	ErrUnsupported ErrorKind = iota
	ErrBadCall
)

// Error is an emission diagnostic.
type Error struct {
	Kind ErrorKind
	Span token.Span
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// builtinNames mirrors the resolver's fixed built-in set; print is excluded
// because it compiles straight to the dedicated PRINT opcode instead of
// going through CALL's string-dispatch convention.
var builtinNames = map[string]bool{
	"len": true, "int": true, "dub": true, "str": true,
	"rt_concat2": true, "rt_concat3": true, "rt_concat4": true, "rt_concat5": true,
}

// Emit lowers a resolved Program into its chunks. Chunks[0] is always the
// module-init chunk (see emitModule); one further chunk follows per
// FuncDecl, CtorDecl, and MethodDecl, named "name" ("Class.new" for a
// constructor, "Class.method" for a method), in declaration order. A
// ClassDecl whose constructor or any method cannot be emitted (see the
// package doc) fails the whole call; callers that want partial results
// should emit declarations one at a time instead.
func Emit(prog *hir.Program) ([]*bytecode.Chunk, error) {
	e := &emitter{}
	module, err := e.emitModule(prog)
	if err != nil {
		return nil, err
	}
	chunks := []*bytecode.Chunk{module}

	for _, d := range prog.Decls {
		switch d := d.(type) {
		case *hir.FuncDecl:
			c, err := e.emitFunction(d)
			if err != nil {
				return nil, err
			}
			chunks = append(chunks, c)
		case *hir.ClassDecl:
			cs, err := e.emitClass(d)
			if err != nil {
				return nil, err
			}
			chunks = append(chunks, cs...)
		}
	}
	return chunks, nil
}

type emitter struct{}

// chunkBuilder holds the per-chunk emission state: the chunk under
// construction, the fixed SymbolRef->register mapping for its declared
// locals/params, and the scratch-register watermark used for intermediate
// expression results above that fixed range.
type chunkBuilder struct {
	chunk   *bytecode.Chunk
	regs    map[hir.SymbolRef]uint8
	base    uint8 // one past the highest fixed local/param register
	counter uint8 // next free scratch register; reset to base per statement
	maxRegs uint8
}

func newChunkBuilder(name string, locals *hir.SymbolTable, paramCount uint8) *chunkBuilder {
	base := locals.RegisterCount()
	return &chunkBuilder{
		chunk:   bytecode.NewChunk(name),
		regs:    locals.Registers(),
		base:    base,
		counter: base,
		maxRegs: base,
	}
}

func (b *chunkBuilder) allocate() uint8 {
	r := b.counter
	b.counter++
	if b.counter > b.maxRegs {
		b.maxRegs = b.counter
	}
	return r
}

// resetScratch drops any scratch registers claimed evaluating the previous
// statement, so a long function body does not exhaust the register file one
// statement at a time.
func (b *chunkBuilder) resetScratch() { b.counter = b.base }

func (b *chunkBuilder) emit(in bytecode.Instruction) int { return b.chunk.Emit(in) }

func (b *chunkBuilder) patchJumpTarget(ip int, target int) {
	disp := int16(target - (ip + 1))
	in := b.chunk.Code[ip]
	in.SetOffset(disp)
	b.chunk.Patch(ip, in)
}

func (b *chunkBuilder) registerFor(ref hir.SymbolRef) (uint8, bool) {
	r, ok := b.regs[ref]
	return r, ok
}

// finish closes out the chunk. alreadyReturned is true when the body's last
// statement was already emitted in tail position (see emitBlock): in that
// case every path through the body ends in an explicit RET, and appending
// another would be unreachable. Otherwise finish appends the implicit
// "fall off the end returns Null" RET.
func (b *chunkBuilder) finish(paramCount uint8, alreadyReturned bool) *bytecode.Chunk {
	if !alreadyReturned {
		nullIdx := b.chunk.AddConstant(bytecode.NullConstant())
		r := b.allocate()
		b.emit(bytecode.New2(bytecode.LOADK, r, nullIdx))
		b.emit(bytecode.New1(bytecode.RET, r))
	}
	b.chunk.MaxRegisters = b.maxRegs
	b.chunk.ParamCount = paramCount
	return b.chunk
}

func errUnsupported(sp token.Span, format string, args ...any) error {
	return &Error{Kind: ErrUnsupported, Span: sp, Msg: fmt.Sprintf(format, args...)}
}

// emitModule synthesizes a chunk for every module-scope VarDecl and
// ConstDecl, run before any other chunk. This is this package's resolution
// of the open question of what to do with top-level code (documented in
// DESIGN.md): hoist it into a dedicated init chunk, always present as
// chunks[0], since the resolver already numbers module-scope declarations
// as ordinary Local registers exactly as a function body's locals (see
// hir.Resolve's doc comment) — a straight-line init chunk preserves their
// declared evaluation order without needing a separate hoisting pass.
// FuncDecl, ClassDecl, ImportDecl, and BadDecl contribute nothing here; they
// are not executable statements.
func (e *emitter) emitModule(prog *hir.Program) (*bytecode.Chunk, error) {
	b := newChunkBuilder("<module>", prog.Locals, 0)
	for _, d := range prog.Decls {
		switch d := d.(type) {
		case *hir.VarDecl:
			if err := e.emitModuleBinding(b, d.Symbol, d.Init, d.Span()); err != nil {
				return nil, err
			}
		case *hir.ConstDecl:
			if err := e.emitModuleBinding(b, d.Symbol, d.Init, d.Span()); err != nil {
				return nil, err
			}
		}
		b.resetScratch()
	}
	return b.finish(0, false), nil
}

func (e *emitter) emitModuleBinding(b *chunkBuilder, ref hir.SymbolRef, init hir.Expr, sp token.Span) error {
	reg, ok := b.registerFor(ref)
	if !ok {
		return errUnsupported(sp, "module-level declaration has no assigned register")
	}
	if init == nil {
		nullIdx := b.chunk.AddConstant(bytecode.NullConstant())
		b.emit(bytecode.New2(bytecode.LOADK, reg, nullIdx))
		return nil
	}
	return e.emitExpr(b, init, reg)
}

func (e *emitter) emitFunction(d *hir.FuncDecl) (*bytecode.Chunk, error) {
	b := newChunkBuilder(d.Name, d.Locals, uint8(len(d.Params)))
	returned, err := e.emitBlock(b, d.Body, true)
	if err != nil {
		return nil, err
	}
	return b.finish(uint8(len(d.Params)), returned), nil
}

// emitClass emits a constructor chunk ("Class.new") followed by one chunk
// per method ("Class.method"). A constructor's body always opens with the
// implicit obj.field = param assignments hir.ctorDecl prepends (see
// lang/hir/desugar.go); those are MemberAccess assignment targets, which
// emitExpr's Assign case rejects outright (see the package doc) whenever
// the constructor takes at least one field-initializing parameter. A
// zero-field, zero-assignment constructor still emits cleanly.
func (e *emitter) emitClass(d *hir.ClassDecl) ([]*bytecode.Chunk, error) {
	var chunks []*bytecode.Chunk
	if d.Ctor != nil {
		c, err := e.emitCtor(d.Name, d.Ctor)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	for _, m := range d.Methods {
		c, err := e.emitMethod(d.Name, m)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, nil
}

func (e *emitter) emitCtor(className string, d *hir.CtorDecl) (*bytecode.Chunk, error) {
	paramCount := uint8(len(d.Params)) + 1 // +1 for the obj receiver in register 0
	b := newChunkBuilder(className+".new", d.Locals, paramCount)
	returned, err := e.emitBlock(b, d.Body, true)
	if err != nil {
		return nil, err
	}
	return b.finish(paramCount, returned), nil
}

func (e *emitter) emitMethod(className string, d *hir.MethodDecl) (*bytecode.Chunk, error) {
	paramCount := uint8(len(d.Params))
	if d.IsInstance {
		paramCount++ // the obj receiver
	}
	b := newChunkBuilder(className+"."+d.Name, d.Locals, paramCount)
	returned, err := e.emitBlock(b, d.Body, true)
	if err != nil {
		return nil, err
	}
	return b.finish(paramCount, returned), nil
}

// emitBlock emits each statement of blk in order. When tailReturn is true,
// blk is a function/method/ctor body and its last statement is emitted in
// tail position: a bare expression statement or an if/else writes its
// value into a fresh register followed by an explicit RET, so the body's
// last expression becomes the function's result without needing a surface
// `ret`. Any other kind of last statement (including an explicit ret,
// which already emits its own RET) falls through to the ordinary
// statement emission below. The returned bool reports whether the block
// is now guaranteed to have executed a RET, so finish can skip its
// trailing implicit-Null return.
func (e *emitter) emitBlock(b *chunkBuilder, blk *hir.Block, tailReturn bool) (bool, error) {
	n := len(blk.Stmts)
	for i, s := range blk.Stmts {
		isTail := tailReturn && i == n-1
		if isTail {
			switch s := s.(type) {
			case *hir.ExprStmt:
				r := b.allocate()
				if err := e.emitExpr(b, s.X, r); err != nil {
					return false, err
				}
				b.emit(bytecode.New1(bytecode.RET, r))
				return true, nil
			case *hir.IfStmt:
				r := b.allocate()
				if err := e.emitIfValue(b, s, r); err != nil {
					return false, err
				}
				b.emit(bytecode.New1(bytecode.RET, r))
				return true, nil
			}
		}
		if err := e.emitStmt(b, s); err != nil {
			return false, err
		}
		if isTail {
			_, isReturn := s.(*hir.ReturnStmt)
			return isReturn, nil
		}
		b.resetScratch()
	}
	return false, nil
}

func (e *emitter) emitStmt(b *chunkBuilder, s hir.Stmt) error {
	switch s := s.(type) {
	case *hir.VarDecl:
		return e.emitModuleBinding(b, s.Symbol, s.Init, s.Span())
	case *hir.ConstDecl:
		return e.emitModuleBinding(b, s.Symbol, s.Init, s.Span())
	case *hir.IfStmt:
		return e.emitIf(b, s)
	case *hir.WhileStmt:
		return e.emitWhile(b, s)
	case *hir.ForStmt:
		return e.emitFor(b, s)
	case *hir.ReturnStmt:
		return e.emitReturn(b, s)
	case *hir.BreakStmt, *hir.ContinueStmt:
		// Not implemented in the current core: accepted without crashing,
		// emitted as nothing, per the break/continue contract.
		return nil
	case *hir.ExprStmt:
		r := b.allocate()
		return e.emitExpr(b, s.X, r)
	case *hir.BadStmt:
		return errUnsupported(s.Span(), "malformed statement reached emission")
	default:
		return errUnsupported(s.Span(), "unhandled statement %T", s)
	}
}

func (e *emitter) emitReturn(b *chunkBuilder, s *hir.ReturnStmt) error {
	if s.Value == nil {
		nullIdx := b.chunk.AddConstant(bytecode.NullConstant())
		r := b.allocate()
		b.emit(bytecode.New2(bytecode.LOADK, r, nullIdx))
		b.emit(bytecode.New1(bytecode.RET, r))
		return nil
	}
	r := b.allocate()
	if err := e.emitExpr(b, s.Value, r); err != nil {
		return err
	}
	b.emit(bytecode.New1(bytecode.RET, r))
	return nil
}

// emitIf emits: cond into a scratch register, JIF past the then-block
// (patched once the then-block's end — or, with an else, the jump past the
// else-block — is known), the then-block, and (if present) an
// unconditional JMP past the else-block followed by the else-block itself.
func (e *emitter) emitIf(b *chunkBuilder, s *hir.IfStmt) error {
	condReg := b.allocate()
	if err := e.emitExpr(b, s.Cond, condReg); err != nil {
		return err
	}
	jifIP := b.emit(bytecode.NewJump(bytecode.JIF, condReg, 0))

	if _, err := e.emitBlock(b, s.Then, false); err != nil {
		return err
	}

	if s.Else == nil {
		b.patchJumpTarget(jifIP, b.chunk.Len())
		return nil
	}

	jmpIP := b.emit(bytecode.NewJump(bytecode.JMP, 0, 0))
	b.patchJumpTarget(jifIP, b.chunk.Len())
	if _, err := e.emitBlock(b, s.Else, false); err != nil {
		return err
	}
	b.patchJumpTarget(jmpIP, b.chunk.Len())
	return nil
}

// emitIfValue emits the same JIF/JMP-lowered if/else shape as emitIf, but
// in expression position: both the then-branch and the else-branch (an
// absent else loads Null) feed their last statement's value into the
// shared target register via emitBlockValue, so whichever branch runs
// leaves the if/else's result in target. Used when an if/else is the tail
// statement of a function body (see emitBlock).
func (e *emitter) emitIfValue(b *chunkBuilder, s *hir.IfStmt, target uint8) error {
	condReg := b.allocate()
	if err := e.emitExpr(b, s.Cond, condReg); err != nil {
		return err
	}
	jifIP := b.emit(bytecode.NewJump(bytecode.JIF, condReg, 0))

	if err := e.emitBlockValue(b, s.Then, target); err != nil {
		return err
	}
	jmpIP := b.emit(bytecode.NewJump(bytecode.JMP, 0, 0))
	b.patchJumpTarget(jifIP, b.chunk.Len())

	if s.Else != nil {
		if err := e.emitBlockValue(b, s.Else, target); err != nil {
			return err
		}
	} else {
		nullIdx := b.chunk.AddConstant(bytecode.NullConstant())
		b.emit(bytecode.New2(bytecode.LOADK, target, nullIdx))
	}
	b.patchJumpTarget(jmpIP, b.chunk.Len())
	return nil
}

// emitBlockValue emits blk the way emitBlock does, except its last
// statement (or, for an empty block, Null) is made to produce its value in
// target instead of being emitted for side effects only. Only reachable
// from emitIfValue, for an if/else branch that itself ends in a nested
// if/else or bare expression. An explicit ret as the last statement
// contributes its value the same way (so the enclosing tail RET fires
// once, at the outer level) rather than emitting its own RET here; any
// other last-statement kind is emitted normally and then contributes Null.
func (e *emitter) emitBlockValue(b *chunkBuilder, blk *hir.Block, target uint8) error {
	n := len(blk.Stmts)
	if n == 0 {
		nullIdx := b.chunk.AddConstant(bytecode.NullConstant())
		b.emit(bytecode.New2(bytecode.LOADK, target, nullIdx))
		return nil
	}
	for i, s := range blk.Stmts {
		if i < n-1 {
			if err := e.emitStmt(b, s); err != nil {
				return err
			}
			b.resetScratch()
			continue
		}
		switch s := s.(type) {
		case *hir.ExprStmt:
			return e.emitExpr(b, s.X, target)
		case *hir.IfStmt:
			return e.emitIfValue(b, s, target)
		case *hir.ReturnStmt:
			if s.Value == nil {
				nullIdx := b.chunk.AddConstant(bytecode.NullConstant())
				b.emit(bytecode.New2(bytecode.LOADK, target, nullIdx))
				return nil
			}
			return e.emitExpr(b, s.Value, target)
		default:
			if err := e.emitStmt(b, s); err != nil {
				return err
			}
			nullIdx := b.chunk.AddConstant(bytecode.NullConstant())
			b.emit(bytecode.New2(bytecode.LOADK, target, nullIdx))
			return nil
		}
	}
	return nil
}

// emitWhile emits the loop condition at the top of each iteration, a JIF
// past the body, the body, and a JMP back to the condition.
func (e *emitter) emitWhile(b *chunkBuilder, s *hir.WhileStmt) error {
	condIP := b.chunk.Len()
	condReg := b.allocate()
	if err := e.emitExpr(b, s.Cond, condReg); err != nil {
		return err
	}
	jifIP := b.emit(bytecode.NewJump(bytecode.JIF, condReg, 0))
	b.resetScratch()

	if _, err := e.emitBlock(b, s.Body, false); err != nil {
		return err
	}
	b.emit(bytecode.NewJump(bytecode.JMP, 0, int16(condIP-(b.chunk.Len()+1))))
	b.patchJumpTarget(jifIP, b.chunk.Len())
	return nil
}

// emitFor emits the (preserved, unflattened) C-style for loop: init once,
// then the same condition/body/post/back-edge shape as emitWhile, with post
// emitted at the end of each iteration ahead of the back-edge jump.
func (e *emitter) emitFor(b *chunkBuilder, s *hir.ForStmt) error {
	if s.Init != nil {
		if err := e.emitStmt(b, s.Init); err != nil {
			return err
		}
		b.resetScratch()
	}

	condIP := b.chunk.Len()
	var jifIP int
	hasCond := s.Cond != nil
	if hasCond {
		condReg := b.allocate()
		if err := e.emitExpr(b, s.Cond, condReg); err != nil {
			return err
		}
		jifIP = b.emit(bytecode.NewJump(bytecode.JIF, condReg, 0))
		b.resetScratch()
	}

	if _, err := e.emitBlock(b, s.Body, false); err != nil {
		return err
	}

	if s.Post != nil {
		r := b.allocate()
		if err := e.emitExpr(b, s.Post, r); err != nil {
			return err
		}
		b.resetScratch()
	}

	b.emit(bytecode.NewJump(bytecode.JMP, 0, int16(condIP-(b.chunk.Len()+1))))
	if hasCond {
		b.patchJumpTarget(jifIP, b.chunk.Len())
	}
	return nil
}

// emitExpr compiles e so its result lands in register target, per the
// target-register contract the emitter uses uniformly for every expression
// shape (the caller picks where the value should live; emitExpr never
// invents its own destination).
func (e *emitter) emitExpr(b *chunkBuilder, expr hir.Expr, target uint8) error {
	switch expr := expr.(type) {
	case *hir.Literal:
		return e.emitLiteral(b, expr, target)
	case *hir.Variable:
		return e.emitVariable(b, expr, target)
	case *hir.BinaryOp:
		return e.emitBinaryOp(b, expr, target)
	case *hir.UnaryOp:
		return e.emitUnaryOp(b, expr, target)
	case *hir.Assign:
		return e.emitAssign(b, expr, target)
	case *hir.Call:
		return e.emitCall(b, expr, target)
	case *hir.Ternary:
		return e.emitTernary(b, expr, target)
	case *hir.Interpolation:
		return e.emitInterpolation(b, expr, target)
	case *hir.MemberAccess:
		return errUnsupported(expr.Span(), "object field access has no opcode in the current core")
	case *hir.Index:
		return errUnsupported(expr.Span(), "indexing has no opcode in the current core")
	case *hir.Cast:
		return errUnsupported(expr.Span(), "casts are not emitted; use the int/dub/str builtins instead")
	case *hir.MethodCall:
		return errUnsupported(expr.Span(), "method calls have no opcode in the current core")
	case *hir.Lambda:
		return errUnsupported(expr.Span(), "lambdas are not emitted: closures need an upvalue opcode the current core lacks")
	case *hir.BadExpr:
		return errUnsupported(expr.Span(), "malformed expression reached emission")
	default:
		return errUnsupported(expr.Span(), "unhandled expression %T", expr)
	}
}

func (e *emitter) emitLiteral(b *chunkBuilder, lit *hir.Literal, target uint8) error {
	var c bytecode.Constant
	switch lit.Kind {
	case token.INTEGER:
		c = bytecode.IntConstant(lit.Value.(int64))
	case token.DOUBLE:
		c = bytecode.DoubleConstant(lit.Value.(float64))
	case token.CHARACTER:
		c = bytecode.IntConstant(int64(lit.Value.(rune)))
	case token.TRUE:
		c = bytecode.BoolConstant(true)
	case token.FALSE:
		c = bytecode.BoolConstant(false)
	case token.NULL:
		c = bytecode.NullConstant()
	case token.STR_PART:
		c = bytecode.StrConstant(lit.Value.(string))
	default:
		return errUnsupported(lit.Span(), "unhandled literal kind %s", lit.Kind)
	}
	idx := b.chunk.AddConstant(c)
	b.emit(bytecode.New2(bytecode.LOADK, target, idx))
	return nil
}

func (e *emitter) emitVariable(b *chunkBuilder, v *hir.Variable, target uint8) error {
	if v.Symbol == hir.BuiltinSymbol {
		return errUnsupported(v.Span(), "%q names a built-in function, not a value", v.Name)
	}
	src, ok := b.registerFor(v.Symbol)
	if !ok {
		return errUnsupported(v.Span(), "%q has no assigned register (global function/class names are not runtime values)", v.Name)
	}
	if src == target {
		return nil
	}
	b.emit(bytecode.New2(bytecode.MOVE, target, src))
	return nil
}

var binaryOpcodes = map[token.Token]bytecode.Opcode{
	token.PLUS:     bytecode.ADD,
	token.MINUS:    bytecode.SUB,
	token.STAR:     bytecode.MUL,
	token.SLASH:    bytecode.DIVF,
	token.PERCENT:  bytecode.MOD,
	token.STARSTAR: bytecode.POW,
	token.EQL:      bytecode.CMP_EQ,
	token.NEQ:      bytecode.CMP_NE,
	token.LT:       bytecode.CMP_LT,
	token.LE:       bytecode.CMP_LE,
	token.GT:       bytecode.CMP_GT,
	token.GE:       bytecode.CMP_GE,
}

// emitBinaryOp dispatches most operators straight to their matching
// arithmetic/comparison opcode. && and || are handled separately: no
// logical-and/or opcode exists, since both short-circuit and the current
// core lowers that control flow with JIF/JMP instead (see emitLogical).
// The grammar has exactly one division operator; it always compiles to
// DIVF (documented in DESIGN.md — DIVI is reachable only once a surface
// integer-division operator is added).
func (e *emitter) emitBinaryOp(b *chunkBuilder, bo *hir.BinaryOp, target uint8) error {
	if bo.Op == token.AMPAMP || bo.Op == token.PIPEPIPE {
		return e.emitLogical(b, bo, target)
	}
	op, ok := binaryOpcodes[bo.Op]
	if !ok {
		return errUnsupported(bo.Span(), "operator %s has no opcode in the current core", bo.Op)
	}
	left := b.allocate()
	if err := e.emitExpr(b, bo.Left, left); err != nil {
		return err
	}
	right := b.allocate()
	if err := e.emitExpr(b, bo.Right, right); err != nil {
		return err
	}
	b.emit(bytecode.NewInstruction(op, target, left, right))
	return nil
}

// emitLogical lowers && and || to short-circuiting JIF/JMP control flow,
// evaluating into target directly: && keeps the left operand's value when
// it is falsy (skipping the right operand entirely), otherwise evaluates
// and keeps the right operand; || does the mirror image.
func (e *emitter) emitLogical(b *chunkBuilder, bo *hir.BinaryOp, target uint8) error {
	if err := e.emitExpr(b, bo.Left, target); err != nil {
		return err
	}
	if bo.Op == token.AMPAMP {
		jifIP := b.emit(bytecode.NewJump(bytecode.JIF, target, 0))
		if err := e.emitExpr(b, bo.Right, target); err != nil {
			return err
		}
		b.patchJumpTarget(jifIP, b.chunk.Len())
		return nil
	}
	jifIP := b.emit(bytecode.NewJump(bytecode.JIF, target, 0))
	jmpIP := b.emit(bytecode.NewJump(bytecode.JMP, 0, 0))
	b.patchJumpTarget(jifIP, b.chunk.Len())
	if err := e.emitExpr(b, bo.Right, target); err != nil {
		return err
	}
	b.patchJumpTarget(jmpIP, b.chunk.Len())
	return nil
}

func (e *emitter) emitUnaryOp(b *chunkBuilder, u *hir.UnaryOp, target uint8) error {
	var op bytecode.Opcode
	switch u.Op {
	case token.MINUS:
		op = bytecode.NEG
	case token.BANG:
		op = bytecode.NOT
	default:
		return errUnsupported(u.Span(), "unary operator %s has no opcode in the current core", u.Op)
	}
	src := b.allocate()
	if err := e.emitExpr(b, u.X, src); err != nil {
		return err
	}
	b.emit(bytecode.New2(op, target, src))
	return nil
}

// emitTernary lowers cond ? then : else to the same JIF/JMP shape as
// emitIf, but expression-valued: both arms write directly into target.
func (e *emitter) emitTernary(b *chunkBuilder, t *hir.Ternary, target uint8) error {
	condReg := b.allocate()
	if err := e.emitExpr(b, t.Cond, condReg); err != nil {
		return err
	}
	jifIP := b.emit(bytecode.NewJump(bytecode.JIF, condReg, 0))
	if err := e.emitExpr(b, t.Then, target); err != nil {
		return err
	}
	jmpIP := b.emit(bytecode.NewJump(bytecode.JMP, 0, 0))
	b.patchJumpTarget(jifIP, b.chunk.Len())
	if err := e.emitExpr(b, t.Else, target); err != nil {
		return err
	}
	b.patchJumpTarget(jmpIP, b.chunk.Len())
	return nil
}

// emitAssign writes Value into the register backing Target (declaring or
// reusing that register's binding was already settled by hir.Resolve; here
// there is only ever an existing fixed register to write into). A
// MemberAccess target — the ctor's implicit and explicit `obj.field =
// value` statements — has no backing register at all, since there is no
// object value variant or field-store opcode; it is rejected rather than
// silently dropped.
func (e *emitter) emitAssign(b *chunkBuilder, a *hir.Assign, target uint8) error {
	v, ok := a.Target.(*hir.Variable)
	if !ok {
		if _, isMember := a.Target.(*hir.MemberAccess); isMember {
			return errUnsupported(a.Span(), "object field assignment has no opcode in the current core")
		}
		return errUnsupported(a.Span(), "unsupported assignment target %T", a.Target)
	}
	dst, ok := b.registerFor(v.Symbol)
	if !ok {
		return errUnsupported(a.Span(), "%q has no assigned register", v.Name)
	}
	if err := e.emitExpr(b, a.Value, dst); err != nil {
		return err
	}
	if dst != target {
		b.emit(bytecode.New2(bytecode.MOVE, target, dst))
	}
	return nil
}

// emitCall special-cases `print`, which compiles straight to the dedicated
// PRINT opcode (arity must be at least 1; only the first argument's display
// form is used, matching the built-in contract), and otherwise lowers to
// the CALL convention: the builtin's name is loaded as a string into a
// scratch register, its arguments fill the consecutive registers above it,
// and CALL's b operand names that string register (not a constant index —
// the runtime contract takes the callee name as a value, so a string
// produced any other way would dispatch identically).
func (e *emitter) emitCall(b *chunkBuilder, c *hir.Call, target uint8) error {
	v, ok := c.Callee.(*hir.Variable)
	if !ok || v.Symbol != hir.BuiltinSymbol {
		return &Error{Kind: ErrBadCall, Span: c.Span(), Msg: "CALL only dispatches to built-in functions in the current core"}
	}
	if v.Name == "print" {
		return e.emitPrint(b, c, target)
	}
	if !builtinNames[v.Name] {
		return &Error{Kind: ErrBadCall, Span: c.Span(), Msg: fmt.Sprintf("%q is not a known built-in", v.Name)}
	}

	calleeReg := b.allocate()
	nameIdx := b.chunk.AddConstant(bytecode.StrConstant(v.Name))
	b.emit(bytecode.New2(bytecode.LOADK, calleeReg, nameIdx))

	if int(calleeReg)+len(c.Args)+1 > 255 {
		return &Error{Kind: ErrBadCall, Span: c.Span(), Msg: "too many call arguments for the register file"}
	}
	for _, arg := range c.Args {
		argReg := b.allocate()
		if err := e.emitExpr(b, arg, argReg); err != nil {
			return err
		}
	}
	b.emit(bytecode.NewInstruction(bytecode.CALL, target, calleeReg, uint8(len(c.Args))))
	return nil
}

func (e *emitter) emitPrint(b *chunkBuilder, c *hir.Call, target uint8) error {
	if len(c.Args) == 0 {
		return &Error{Kind: ErrBadCall, Span: c.Span(), Msg: "print requires at least one argument"}
	}
	arg := b.allocate()
	if err := e.emitExpr(b, c.Args[0], arg); err != nil {
		return err
	}
	b.emit(bytecode.New1(bytecode.PRINT, arg))
	nullIdx := b.chunk.AddConstant(bytecode.NullConstant())
	b.emit(bytecode.New2(bytecode.LOADK, target, nullIdx))
	return nil
}

// emitInterpolation supports only the all-text case (no holes), which
// collapses to a single string constant; any hole is rejected, since a hole
// carries a raw ast.Expr that was deliberately left unresolved by
// hir.Resolve (see Interpolation's doc comment in lang/hir/desugar.go) and
// so cannot be compiled without a second resolution pass this package does
// not perform.
func (e *emitter) emitInterpolation(b *chunkBuilder, in *hir.Interpolation, target uint8) error {
	var text string
	for _, part := range in.Parts {
		if part.Hole != nil {
			return errUnsupported(in.Span(), "interpolation with a hole is not emitted in the current core")
		}
		text += part.Text
	}
	idx := b.chunk.AddConstant(bytecode.StrConstant(text))
	b.emit(bytecode.New2(bytecode.LOADK, target, idx))
	return nil
}
