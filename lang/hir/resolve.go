package hir

import (
	"fmt"

	"github.com/brief-lang/brief/lang/token"
)

// SymbolRef is a dense identifier for a resolved binding.
type SymbolRef int

// BuiltinSymbol is the sentinel SymbolRef assigned to a name that resolved
// to one of the fixed built-in functions rather than to a user binding.
const BuiltinSymbol SymbolRef = -1

// SymbolKind describes where a symbol's value lives at runtime.
type SymbolKind int

const (
	KindLocal SymbolKind = iota
	KindParam
	KindUpvalue
	KindGlobal
)

// Symbol is one entry in a SymbolTable: a name plus where it lives.
type Symbol struct {
	Name  string
	Kind  SymbolKind
	Ref   SymbolRef // the SymbolRef this entry was registered under, for the emitter's symbol->register lookup
	Index int       // register number for Local/Param/Upvalue; unused for Global
	Gname string    // name for Global
	Span  token.Span
}

// SymbolTable collects every symbol declared within one function, method, or
// constructor body (including its parameters), in declaration order. The
// emitter uses it to size a chunk's register file.
type SymbolTable struct {
	Symbols []*Symbol
}

func NewSymbolTable() *SymbolTable { return &SymbolTable{} }

func (t *SymbolTable) add(s *Symbol) { t.Symbols = append(t.Symbols, s) }

// Registers builds the SymbolRef->register map the emitter uses to turn a
// resolved Variable/Param reference into a register operand. Global entries
// are omitted: they carry no register of their own.
func (t *SymbolTable) Registers() map[SymbolRef]uint8 {
	m := make(map[SymbolRef]uint8, len(t.Symbols))
	for _, s := range t.Symbols {
		if s.Kind == KindLocal || s.Kind == KindParam || s.Kind == KindUpvalue {
			m[s.Ref] = uint8(s.Index)
		}
	}
	return m
}

// RegisterCount reports how many registers this table's Local/Param/Upvalue
// entries span, i.e. one past the highest register index in use. The
// emitter starts allocating scratch registers from here.
func (t *SymbolTable) RegisterCount() uint8 {
	n := 0
	for _, s := range t.Symbols {
		if s.Kind == KindLocal || s.Kind == KindParam || s.Kind == KindUpvalue {
			if s.Index+1 > n {
				n = s.Index + 1
			}
		}
	}
	return uint8(n)
}

// Upvalue describes a captured outer-frame variable: whether it is local to
// the immediately enclosing frame (vs. itself an upvalue of that frame), and
// its index there. Lambda capture discovery does not populate this in the
// current core (see Lambda's doc comment); it exists so the shape is ready
// once closures are implemented.
type Upvalue struct {
	IsLocal bool
	Index   int
}

// scopeEntry binds one name to a SymbolRef within a single lexical block.
type scopeEntry struct {
	name string
	ref  SymbolRef
}

// scope is one frame of the lexical scope stack: a flat list of bindings
// plus a parent pointer, mirroring the block chain of a Pascal/Starlark-style
// resolver (teacher's lang/resolver.block), but without that resolver's
// Cell/Free upvalue promotion machinery, since this language has no closures
// over mutable locals yet.
type scope struct {
	bindings []scopeEntry
	parent   *scope
	isFunc   bool // true at a function/method/ctor boundary; bounds the local-counter reset
}

// declare adds a new binding to this scope, shadowing any binding of the
// same name from an enclosing scope. It does not check for a duplicate in
// this same scope; callers that need strict duplicate rejection use
// declareStrict.
func (s *scope) declare(name string, ref SymbolRef) {
	s.bindings = append(s.bindings, scopeEntry{name, ref})
}

// lookupLocal searches only this scope (not its parents), walking backward
// so the most recent binding of a shadowed name wins.
func (s *scope) lookupLocal(name string) (SymbolRef, bool) {
	for i := len(s.bindings) - 1; i >= 0; i-- {
		if s.bindings[i].name == name {
			return s.bindings[i].ref, true
		}
	}
	return 0, false
}

// ErrorKind classifies a resolution failure.
type ErrorKind int

const (
	ErrUndefinedVariable ErrorKind = iota
	ErrDuplicateSymbol
	ErrInvalidCapture
	ErrOther
)

// Error is a resolution diagnostic.
type Error struct {
	Kind ErrorKind
	Span token.Span
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// builtins is the fixed set of names that resolve to BuiltinSymbol rather
// than to a user declaration, regardless of scope.
var builtins = map[string]bool{
	"print": true, "len": true, "int": true, "dub": true, "str": true,
	"rt_concat2": true, "rt_concat3": true, "rt_concat4": true, "rt_concat5": true,
}

// Resolver walks a desugared Program and assigns a SymbolRef to every
// declaration and every name reference. Each Local/Param symbol also gets a
// per-function register number in Symbol.Index (see resetLocals); Global
// symbols are looked up by name at emission time and carry no register of
// their own.
type Resolver struct {
	env         *scope
	nextRef     SymbolRef
	localCount  int // register counter for the current function; reset per function scope
	globals     map[string]bool
	Errors      []*Error
	curLocals   *SymbolTable
}

// Resolve performs name resolution over a desugared Program in place,
// returning any errors encountered. Module-scope variables and constants are
// assigned Local registers exactly as function bodies are (module scope is
// simply the outermost chunk); function and class declarations are assigned
// Global symbols keyed by name.
func Resolve(prog *Program) []*Error {
	r := &Resolver{globals: map[string]bool{}}
	r.pushScope(true)
	r.curLocals = NewSymbolTable()
	for _, d := range prog.Decls {
		r.hoistDecl(d)
	}
	for _, d := range prog.Decls {
		r.resolveDecl(d)
	}
	prog.Locals = r.curLocals
	r.popScope()
	return r.Errors
}

func (r *Resolver) errorf(kind ErrorKind, sp token.Span, format string, args ...any) {
	r.Errors = append(r.Errors, &Error{Kind: kind, Span: sp, Msg: fmt.Sprintf(format, args...)})
}

func (r *Resolver) newRef() SymbolRef {
	ref := r.nextRef
	r.nextRef++
	return ref
}

func (r *Resolver) pushScope(isFunc bool) {
	r.env = &scope{parent: r.env, isFunc: isFunc}
}

func (r *Resolver) popScope() {
	r.env = r.env.parent
}

// resetLocals starts a fresh per-function register numbering at
// startIndex. Every caller passes 0 and then declares the receiver (if any)
// and the parameters first, so they take the lowest registers and every
// local declared in the body gets the next free register. This corrects a defect in the grounding reference, whose
// equivalent counter is never reset across function boundaries and so
// drifts upward monotonically for the lifetime of a whole resolve pass,
// contradicting the chunk-local register model the emitter depends on.
func (r *Resolver) resetLocals(startIndex int) {
	r.localCount = startIndex
}

func (r *Resolver) nextLocal() int {
	i := r.localCount
	r.localCount++
	return i
}

// declareStrict declares name as a fresh Local (or Param) in the current
// scope, rejecting it as a DuplicateSymbol if already bound in that exact
// scope (shadowing a binding from an enclosing scope is fine). Used for
// VarDecl, ConstDecl, and Param — every binding form where the grammar
// guarantees a genuine new declaration.
func (r *Resolver) declareStrict(name string, kind SymbolKind, sp token.Span) SymbolRef {
	if _, ok := r.env.lookupLocal(name); ok {
		r.errorf(ErrDuplicateSymbol, sp, "%q is already declared in this scope", name)
	}
	ref := r.newRef()
	index := 0
	if kind == KindLocal || kind == KindParam {
		index = r.nextLocal()
	}
	r.env.declare(name, ref)
	r.curLocals.add(&Symbol{Name: name, Kind: kind, Ref: ref, Index: index, Span: sp})
	return ref
}

// declareReceiver binds the implicit `obj` receiver name as a Param in
// register 0, ahead of the constructor's or instance method's declared
// parameters (which start at register 1).
func (r *Resolver) declareReceiver(sp token.Span) {
	ref := r.newRef()
	index := r.nextLocal()
	r.env.declare("obj", ref)
	r.curLocals.add(&Symbol{Name: "obj", Kind: KindParam, Ref: ref, Index: index, Span: sp})
}

// declareGlobal binds name as a Global in the current (module) scope,
// rejecting duplicates, and does not consume a register.
func (r *Resolver) declareGlobal(name string, sp token.Span) SymbolRef {
	if r.globals[name] {
		r.errorf(ErrDuplicateSymbol, sp, "%q is already declared", name)
	}
	r.globals[name] = true
	ref := r.newRef()
	r.env.declare(name, ref)
	r.curLocals.add(&Symbol{Name: name, Kind: KindGlobal, Ref: ref, Gname: name, Span: sp})
	return ref
}

// lookupChain walks the scope chain from innermost to outermost, returning
// the first binding found. This is the mechanism that satisfies the
// reassignment-reuses-symbol requirement: a bare `x := expr` reassigning an
// outer x must resolve to that outer SymbolRef rather than shadow it with a
// fresh one (see declareOrReuse).
func (r *Resolver) lookupChain(name string) (SymbolRef, bool) {
	for s := r.env; s != nil; s = s.parent {
		if ref, ok := s.lookupLocal(name); ok {
			return ref, true
		}
	}
	return 0, false
}

// declareOrReuse implements the `:=` binding form produced by the parser
// for in-body bare assignment (ast.AssignExpr{Op: token.DEFINE}). If name is
// already bound anywhere in the enclosing scope chain, that binding is
// reused (satisfying the scope-reuse invariant for reassignment inside a
// loop body or nested block); otherwise a fresh Local is declared in the
// current scope exactly like declareStrict, but without rejecting a
// same-scope duplicate, since reuse-in-place is the whole point here.
func (r *Resolver) declareOrReuse(name string, sp token.Span) SymbolRef {
	if ref, ok := r.lookupChain(name); ok {
		return ref
	}
	ref := r.newRef()
	index := r.nextLocal()
	r.env.declare(name, ref)
	r.curLocals.add(&Symbol{Name: name, Kind: KindLocal, Ref: ref, Index: index, Span: sp})
	return ref
}

func (r *Resolver) resolveVariable(name string, sp token.Span) SymbolRef {
	if ref, ok := r.lookupChain(name); ok {
		return ref
	}
	if builtins[name] {
		return BuiltinSymbol
	}
	r.errorf(ErrUndefinedVariable, sp, "undefined variable %q", name)
	return BuiltinSymbol
}

// hoistDecl registers every top-level function and class name before any
// body is resolved, so forward references between top-level declarations
// (a function calling one declared later in the file) work. Module-scope
// variables and constants are not hoisted.
func (r *Resolver) hoistDecl(d Decl) {
	switch d := d.(type) {
	case *FuncDecl:
		d.Symbol = r.declareGlobal(d.Name, d.Span())
	case *ClassDecl:
		d.Symbol = r.declareGlobal(d.Name, d.Span())
	case *VarDecl:
		// module-scope vars/consts are declared in resolveDecl, in source
		// order, since (unlike funcs/classes) their initializers run in
		// sequence and may read the current value of an earlier one.
	case *ConstDecl:
	case *ImportDecl:
	case *BadDecl:
	}
}

func (r *Resolver) resolveDecl(d Decl) {
	switch d := d.(type) {
	case *VarDecl:
		if d.Init != nil {
			r.resolveExpr(d.Init)
		}
		d.Symbol = r.declareStrict(d.Name, KindLocal, d.Span())
	case *ConstDecl:
		r.resolveExpr(d.Init)
		d.Symbol = r.declareStrict(d.Name, KindLocal, d.Span())
	case *FuncDecl:
		r.resolveFuncDecl(d)
	case *ClassDecl:
		r.resolveClassDecl(d)
	case *ImportDecl:
		// nothing to resolve; module names are not bound as symbols
	case *BadDecl:
	}
}

func (r *Resolver) resolveFuncDecl(d *FuncDecl) {
	r.pushScope(true)
	savedLocals, savedCount := r.curLocals, r.localCount
	r.curLocals = d.Locals
	r.resetLocals(0)

	for _, p := range d.Params {
		p.Symbol = r.declareStrict(p.Name, KindParam, p.Span())
	}
	r.resolveBlock(d.Body)

	r.popScope()
	r.curLocals, r.localCount = savedLocals, savedCount
}

func (r *Resolver) resolveClassDecl(d *ClassDecl) {
	if d.Ctor != nil {
		r.resolveCtorDecl(d.Ctor)
	}
	for _, m := range d.Methods {
		r.resolveMethodDecl(m)
	}
}

func (r *Resolver) resolveCtorDecl(d *CtorDecl) {
	r.pushScope(true)
	savedLocals, savedCount := r.curLocals, r.localCount
	r.curLocals = d.Locals
	r.resetLocals(0)

	// `obj` is an implicit receiver binding visible throughout the
	// constructor body, ahead of the declared parameters.
	r.declareReceiver(d.Span())

	for _, p := range d.Params {
		p.Symbol = r.declareStrict(p.Name, KindParam, p.Span())
	}
	r.resolveBlock(d.Body)

	r.popScope()
	r.curLocals, r.localCount = savedLocals, savedCount
}

func (r *Resolver) resolveMethodDecl(d *MethodDecl) {
	r.pushScope(true)
	savedLocals, savedCount := r.curLocals, r.localCount
	r.curLocals = d.Locals
	r.resetLocals(0)

	if d.IsInstance {
		r.declareReceiver(d.Span())
	}
	for _, p := range d.Params {
		p.Symbol = r.declareStrict(p.Name, KindParam, p.Span())
	}
	r.resolveBlock(d.Body)

	r.popScope()
	r.curLocals, r.localCount = savedLocals, savedCount
}

func (r *Resolver) resolveBlock(b *Block) {
	r.pushScope(false)
	for _, s := range b.Stmts {
		r.resolveStmt(s)
	}
	r.popScope()
}

func (r *Resolver) resolveStmt(s Stmt) {
	switch s := s.(type) {
	case *VarDecl:
		if s.Init != nil {
			r.resolveExpr(s.Init)
		}
		s.Symbol = r.declareStrict(s.Name, KindLocal, s.Span())
	case *ConstDecl:
		r.resolveExpr(s.Init)
		s.Symbol = r.declareStrict(s.Name, KindLocal, s.Span())
	case *IfStmt:
		r.resolveExpr(s.Cond)
		r.resolveBlock(s.Then)
		if s.Else != nil {
			r.resolveBlock(s.Else)
		}
	case *WhileStmt:
		r.resolveExpr(s.Cond)
		r.resolveBlock(s.Body)
	case *ForStmt:
		r.pushScope(false)
		if s.Init != nil {
			r.resolveStmt(s.Init)
		}
		if s.Cond != nil {
			r.resolveExpr(s.Cond)
		}
		if s.Post != nil {
			r.resolveExpr(s.Post)
		}
		for _, inner := range s.Body.Stmts {
			r.resolveStmt(inner)
		}
		r.popScope()
	case *ReturnStmt:
		if s.Value != nil {
			r.resolveExpr(s.Value)
		}
	case *BreakStmt, *ContinueStmt, *BadStmt:
	case *ExprStmt:
		r.resolveExpr(s.X)
	}
}

func (r *Resolver) resolveExpr(e Expr) {
	switch e := e.(type) {
	case *Literal:
	case *Variable:
		e.Symbol = r.resolveVariable(e.Name, e.Span())
	case *MemberAccess:
		r.resolveExpr(e.Object)
	case *Index:
		r.resolveExpr(e.Object)
		r.resolveExpr(e.Idx)
	case *BinaryOp:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *UnaryOp:
		r.resolveExpr(e.X)
	case *Assign:
		r.resolveAssign(e)
	case *Call:
		r.resolveExpr(e.Callee)
		for _, a := range e.Args {
			r.resolveExpr(a)
		}
	case *MethodCall:
		r.resolveExpr(e.Object)
		for _, a := range e.Args {
			r.resolveExpr(a)
		}
	case *Cast:
		r.resolveExpr(e.X)
	case *Interpolation:
		// Interpolation holes are AST expressions, not HIR, and are not
		// resolved by any pass: the emitter rejects every interpolation
		// that has a hole (see Interpolation's doc comment).
	case *Ternary:
		r.resolveExpr(e.Cond)
		r.resolveExpr(e.Then)
		r.resolveExpr(e.Else)
	case *Lambda:
		r.resolveLambda(e)
	case *BadExpr:
	}
}

// resolveAssign resolves the value first (so `x := x + 1` sees the outer x
// before the new-or-reused binding is installed), then resolves the target:
// a Declare assignment (`:=`) declares-or-reuses the target name; every
// other assignment target must already be bound (a plain Variable) or is a
// MemberAccess/Index whose object expression is resolved normally.
func (r *Resolver) resolveAssign(e *Assign) {
	r.resolveExpr(e.Value)

	if e.Declare {
		v, ok := e.Target.(*Variable)
		if !ok {
			r.errorf(ErrOther, e.Span(), "left side of := must be a plain name")
			return
		}
		v.Symbol = r.declareOrReuse(v.Name, e.Span())
		return
	}

	r.resolveExpr(e.Target)
}

func (r *Resolver) resolveLambda(e *Lambda) {
	r.pushScope(true)
	savedLocals, savedCount := r.curLocals, r.localCount
	r.curLocals = NewSymbolTable()
	r.resetLocals(0)

	for _, p := range e.Params {
		p.Symbol = r.declareStrict(p.Name, KindParam, p.Span())
	}
	r.resolveBlock(e.Body)

	r.popScope()
	r.curLocals, r.localCount = savedLocals, savedCount
}
