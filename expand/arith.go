package expand

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cirrusshell/cirrus/ast"
)

// ArithError reports a failure from the arithmetic evaluator: division or
// modulo by zero, or an assignment whose target is read-only.
type ArithError struct {
	Message string
}

func (e *ArithError) Error() string { return e.Message }

// EvalArith evaluates an arithmetic expression against env. Any ArithAssign
// nodes encountered apply immediately via env.Set; if a later part of the
// same expression returns an error, assignments already made stay in place.
func EvalArith(e ast.ArithExpr, env Setter) (int64, error) {
	switch e := e.(type) {
	case *ast.ArithNum:
 return e.Value, nil
	case *ast.ArithVar:
 return atoi(env.Get(e.Name).Value), nil
	case *ast.ArithUnary:
 x, err := EvalArith(e.X, env)
 if err != nil {
 return 0, err
 }
 switch e.Op {
 case ast.ArithNeg:
 return -x, nil
 case ast.ArithNot:
 return oneIf(x == 0), nil
 case ast.ArithBitNot:
 return ^x, nil
 }
 return 0, &ArithError{Message: "unknown unary operator"}
	case *ast.ArithBinary:
 x, err := EvalArith(e.X, env)
 if err != nil {
 return 0, err
 }
 // Short-circuit && and || per usual shell arithmetic semantics.
 switch e.Op {
 case ast.ArithLAnd:
 if x == 0 {
 return 0, nil
 }
 y, err := EvalArith(e.Y, env)
 if err != nil {
 return 0, err
 }
 return oneIf(y != 0), nil
 case ast.ArithLOr:
 if x != 0 {
 return 1, nil
 }
 y, err := EvalArith(e.Y, env)
 if err != nil {
 return 0, err
 }
 return oneIf(y != 0), nil
 }
 y, err := EvalArith(e.Y, env)
 if err != nil {
 return 0, err
 }
 return binArith(e.Op, x, y)
	case *ast.ArithAssign:
 cur := atoi(env.Get(e.Name).Value)
 rhs, err := EvalArith(e.X, env)
 if err != nil {
 return 0, err
 }
 val, err := applyAssign(e.Op, cur, rhs)
 if err != nil {
 return 0, err
 }
 if err := env.Set(e.Name, Variable{Set: true, Value: strconv.FormatInt(val, 10)}); err != nil {
 return 0, err
 }
 return val, nil
	case *ast.ArithCond:
 cond, err := EvalArith(e.Cond, env)
 if err != nil {
 return 0, err
 }
 if cond != 0 {
 return EvalArith(e.X, env)
 }
 return EvalArith(e.Y, env)
	}
	return 0, &ArithError{Message: fmt.Sprintf("unsupported arithmetic node %T", e)}
}

func atoi(s string) int64 {
	s = strings.TrimSpace(s)
	n, _ := strconv.ParseInt(s, 0, 64)
	return n
}

func oneIf(b bool) int64 {
	if b {
 return 1
	}
	return 0
}

func applyAssign(op ast.ArithOp, cur, rhs int64) (int64, error) {
	switch op {
	case ast.ArithAssignOp:
 return rhs, nil
	case ast.ArithAddAssign:
 return cur + rhs, nil
	case ast.ArithSubAssign:
 return cur - rhs, nil
	case ast.ArithMulAssign:
 return cur * rhs, nil
	case ast.ArithQuoAssign:
 if rhs == 0 {
 return 0, &ArithError{Message: "division by zero"}
 }
 return cur / rhs, nil
	case ast.ArithRemAssign:
 if rhs == 0 {
 return 0, &ArithError{Message: "division by zero"}
 }
 return cur % rhs, nil
	}
	return 0, &ArithError{Message: "unknown assignment operator"}
}

func binArith(op ast.ArithOp, x, y int64) (int64, error) {
	switch op {
	case ast.ArithOr:
 return x | y, nil
	case ast.ArithXor:
 return x ^ y, nil
	case ast.ArithAnd:
 return x & y, nil
	case ast.ArithEql:
 return oneIf(x == y), nil
	case ast.ArithNeq:
 return oneIf(x != y), nil
	case ast.ArithLss:
 return oneIf(x < y), nil
	case ast.ArithGtr:
 return oneIf(x > y), nil
	case ast.ArithLeq:
 return oneIf(x <= y), nil
	case ast.ArithGeq:
 return oneIf(x >= y), nil
	case ast.ArithShl:
 return x << uint(y), nil
	case ast.ArithShr:
 return x >> uint(y), nil
	case ast.ArithAdd:
 return x + y, nil
	case ast.ArithSub:
 return x - y, nil
	case ast.ArithMul:
 return x * y, nil
	case ast.ArithQuo:
 if y == 0 {
 return 0, &ArithError{Message: "division by zero"}
 }
 return x / y, nil
	case ast.ArithRem:
 if y == 0 {
 return 0, &ArithError{Message: "division by zero"}
 }
 return x % y, nil
	}
	return 0, &ArithError{Message: "unknown binary operator"}
}
