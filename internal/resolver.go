package internal

// Resolver errors, exported so a driver can dispatch on Kind.

// ResolveErrorKind names the two static errors the resolver can raise.
type ResolveErrorKind int

const (
	DuplicatedLocalName ResolveErrorKind = iota
	NoSuchName
)

func (k ResolveErrorKind) String() string {
	switch k {
	case DuplicatedLocalName:
		return "DuplicatedLocalName"
	case NoSuchName:
		return "NoSuchName"
	default:
		return "ResolveError"
	}
}

// ResolveError is raised by the resolver; it is fatal to the resolution
// call that produced it.
type ResolveError struct {
	Kind ResolveErrorKind
	Msg  string
	Pos  Pos
}

func (e *ResolveError) Error() string { return e.Msg }

func newResolveError(kind ResolveErrorKind, msg string, pos Pos) *ResolveError {
	return &ResolveError{Kind: kind, Msg: msg, Pos: pos}
}

// resolver walks an AST subtree, stateful only in curBlock: a single
// left-to-right pass that hoists each block's local declarations before
// visiting sub-expressions, so forward references within a block still
// resolve as locals.
type resolver struct {
	curBlock *Block
}

func resolveNames(program *Block) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if re, ok := r.(*ResolveError); ok {
				err = re
				return
			}
			panic(r)
		}
	}()
	r := &resolver{}
	r.visitBlock(program)
	return nil
}

// resolveIncomplete resolves node in the context of a block that already
// has its own declarations partially populated — used by the REPL's
// decl-list and statement entry points, where each line extends the same
// long-lived program block instead of starting a fresh resolution pass.
func resolveIncomplete(block *Block, node Node) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if re, ok := r.(*ResolveError); ok {
				err = re
				return
			}
			panic(r)
		}
	}()
	if dl, ok := node.(*DeclareList); ok {
		addDeclarationsToBlock(block, dl)
	}
	r := &resolver{curBlock: block}
	r.visit(node)
	return nil
}

func addDeclarationsToBlock(b *Block, decls *DeclareList) {
	if b.Attr.nameToLocal == nil {
		b.Attr.nameToLocal = make(map[string]int)
	}
	decls.Attr.StartIndex = len(b.Attr.LocalInfo)
	for _, pair := range decls.Decls {
		if _, exists := b.Attr.nameToLocal[pair.Name]; exists {
			panic(newResolveError(DuplicatedLocalName, "duplicated local name: "+pair.Name, decls.Start()))
		}
		b.Attr.nameToLocal[pair.Name] = len(b.Attr.LocalInfo)
		b.Attr.LocalInfo = append(b.Attr.LocalInfo, VarInfo{Name: pair.Name})
	}
}

// resolveFromBlock walks ancestors starting at block looking for name as a
// local, exactly like the C++ resolve_from_block free function.
func resolveFromBlock(block *Block, name string) (*Block, int) {
	for b := block; b != nil; b = b.Attr.Parent {
		if b.Attr.nameToLocal != nil {
			if idx, ok := b.Attr.nameToLocal[name]; ok {
				return b, idx
			}
		}
	}
	panic(newResolveError(NoSuchName, "no such name: "+name, Pos{}))
}

func addNonlocalToBlock(b *Block, name string, start *Block) int {
	if b.Attr.nameToNonlocal == nil {
		b.Attr.nameToNonlocal = make(map[string]int)
	}
	if idx, ok := b.Attr.nameToNonlocal[name]; ok {
		return idx
	}
	target, index := resolveFromBlock(start, name)
	idx := len(b.Attr.NonlocalIndexes)
	b.Attr.nameToNonlocal[name] = idx
	b.Attr.NonlocalIndexes = append(b.Attr.NonlocalIndexes, NonLocalInfo{Target: target, Index: index})
	return idx
}

// enter sets r.curBlock to block (recording its parent) and returns a
// closure that restores the previous block — the Go analogue of the C++
// RestoreOnExit RAII guard, used with defer.
func (r *resolver) enter(block *Block) func() {
	origin := r.curBlock
	r.curBlock = block
	block.Attr.Parent = origin
	return func() { r.curBlock = origin }
}

func (r *resolver) visitBlock(block *Block) {
	restore := r.enter(block)
	defer restore()

	// first sweep: hoist every declare-list's names before any expression
	// in the block is walked, so forward references within the block
	// resolve as local.
	for _, stmt := range block.Stmts {
		if dl, ok := stmt.(*DeclareList); ok {
			addDeclarationsToBlock(block, dl)
		}
	}

	// second sweep: visit every statement's expressions/sub-blocks.
	for _, stmt := range block.Stmts {
		r.visit(stmt)
	}
}

func (r *resolver) visit(node Node) {
	switch n := node.(type) {
	case *Block:
		r.visitBlock(n)
	case *DeclareList:
		for _, pair := range n.Decls {
			if pair.Initial != nil {
				r.visit(pair.Initial)
			}
		}
	case *Condition:
		r.visit(n.Cond)
		r.visitBlock(n.ThenBlock)
		if n.ElseBlock != nil {
			r.visit(n.ElseBlock)
		}
	case *While:
		r.visit(n.Cond)
		r.visitBlock(n.Block)
	case *Return:
		if n.Value != nil {
			r.visit(n.Value)
		}
	case *Break, *Continue, *Empty:
		// no sub-expressions
	case *ExpStmt:
		r.visit(n.Value)
	case *Op:
		for _, arg := range n.Args {
			r.visit(arg)
		}
	case *Var:
		attr := r.curBlock.Attr
		if attr.nameToLocal != nil {
			if idx, ok := attr.nameToLocal[n.Name]; ok {
				n.Attr = VarAttr{IsLocal: true, Index: idx}
				return
			}
		}
		idx := addNonlocalToBlock(r.curBlock, n.Name, r.curBlock.Attr.Parent)
		n.Attr = VarAttr{IsLocal: false, Index: idx}
	case *Func:
		r.visitFunc(n)
	case *List:
		for _, item := range n.Items {
			r.visit(item)
		}
	case *NullLit, *BoolLit, *IntLit, *FloatLit, *StringLit:
		// leaves
	default:
		panic("resolver: unhandled node type")
	}
}

// visitFunc treats the function's parameters as the first declarations of
// its body block, then resolves the body under that block as current.
func (r *resolver) visitFunc(fn *Func) {
	restore := r.enter(fn.Block)
	defer restore()

	if len(fn.Params) > 0 {
		params := &DeclareList{}
		for _, p := range fn.Params {
			params.Decls = append(params.Decls, DeclPair{Name: p})
		}
		addDeclarationsToBlock(fn.Block, params)
	}

	for _, stmt := range fn.Block.Stmts {
		if dl, ok := stmt.(*DeclareList); ok {
			addDeclarationsToBlock(fn.Block, dl)
		}
	}
	for _, stmt := range fn.Block.Stmts {
		r.visit(stmt)
	}
}
