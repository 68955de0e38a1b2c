package ast

import "github.com/cirrusshell/cirrus/token"

// ArithExpr is the sum type for the arithmetic grammar.
type ArithExpr interface {
	Node
	arithExpr()
}

// ArithNum is an integer literal.
type ArithNum struct {
	NumPos token.Pos
	Value int64
}

func (a *ArithNum) Pos() token.Pos { return a.NumPos }
func (*ArithNum) arithExpr() {}

// ArithVar is a bare identifier or a `$NAME` reference, resolved against the
// variable table at evaluation time (non-numeric or unset => 0).
type ArithVar struct {
	VarPos token.Pos
	Name string
}

func (a *ArithVar) Pos() token.Pos { return a.VarPos }
func (*ArithVar) arithExpr() {}

// ArithUnary is a prefix unary operator: `- + ! ~`.
type ArithUnary struct {
	OpPos token.Pos
	Op ArithUnaryOp
	X ArithExpr
}

// ArithUnaryOp enumerates the unary prefix operators.
type ArithUnaryOp int

const (
	ArithNeg ArithUnaryOp = iota // -
	ArithNot // !
	ArithBitNot // ~
)

func (a *ArithUnary) Pos() token.Pos { return a.OpPos }
func (*ArithUnary) arithExpr() {}

// ArithBinary is any binary operator from the precedence table, excluding
// assignment (see ArithAssign).
type ArithBinary struct {
	OpPos token.Pos
	Op ArithOp
	X, Y ArithExpr
}

func (a *ArithBinary) Pos() token.Pos { return a.OpPos }
func (*ArithBinary) arithExpr() {}

// ArithAssign is `name(op)=expr`, including compound forms (`+=`, `-=`,...).
// The evaluator applies each assignment to the runtime as soon as it is
// evaluated; assignments are not buffered, so an error later in the same
// expression leaves earlier assignments in place.
type ArithAssign struct {
	OpPos token.Pos
	Name string
	Op ArithOp // ArithAssignOp itself, or the compound op being applied before assigning
	X ArithExpr
}

func (a *ArithAssign) Pos() token.Pos { return a.OpPos }
func (*ArithAssign) arithExpr() {}

// ArithCond is the ternary `cond ? x : y`.
type ArithCond struct {
	QuestPos token.Pos
	Cond, X, Y ArithExpr
}

func (a *ArithCond) Pos() token.Pos { return a.QuestPos }
func (*ArithCond) arithExpr() {}

// ArithOp enumerates the binary/assignment operators, ordered low-to-high
// precedence to match the table.
type ArithOp int

const (
	ArithAssignOp ArithOp = iota
	ArithAddAssign
	ArithSubAssign
	ArithMulAssign
	ArithQuoAssign
	ArithRemAssign

	ArithLOr
	ArithLAnd

	ArithOr
	ArithXor
	ArithAnd

	ArithEql
	ArithNeq

	ArithLss
	ArithGtr
	ArithLeq
	ArithGeq

	ArithShl
	ArithShr

	ArithAdd
	ArithSub

	ArithMul
	ArithQuo
	ArithRem
)
