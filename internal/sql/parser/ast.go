package parser

// Statement is the root interface for all parsed statements.
type Statement interface {
	stmtNode()
}

// ShowColumnsStmt is SHOW COLUMNS FROM <locator>.
type ShowColumnsStmt struct {
	Locator string
}

func (*ShowColumnsStmt) stmtNode() {}

// SelectStmt is SELECT <projection> FROM <locator> with optional WHERE,
// GROUP BY, ORDER BY, LIMIT and OFFSET clauses.
type SelectStmt struct {
	Locator string

	Star  bool // SELECT *
	Items []SelectItem

	Where   Expr
	GroupBy []string
	OrderBy []OrderItem

	HasLimit  bool
	Limit     int64
	HasOffset bool
	Offset    int64
}

func (*SelectStmt) stmtNode() {}

// SelectItem is one projection entry with an optional alias.
type SelectItem struct {
	Expr  Expr
	Alias string
}

// OrderItem is one ORDER BY key.
type OrderItem struct {
	Column string
	Desc   bool
}

// ----- Expressions -----

type Expr interface {
	exprNode()
}

// ColumnRef references a column by bare name.
type ColumnRef struct {
	Name string
}

func (*ColumnRef) exprNode() {}

type LiteralKind uint8

const (
	LitInt LiteralKind = iota
	LitFloat
	LitString
	LitBool
)

// Literal is an integer, float, quoted string or boolean literal.
type Literal struct {
	Kind  LiteralKind
	Int   int64
	Float float64
	Str   string
	Bool  bool
}

func (*Literal) exprNode() {}

type CompareOp uint8

const (
	OpEq CompareOp = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

func (op CompareOp) String() string {
	switch op {
	case OpEq:
		return "="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	default:
		return ">="
	}
}

// Compare is <operand> <op> <operand>.
type Compare struct {
	Op    CompareOp
	Left  Expr
	Right Expr
}

func (*Compare) exprNode() {}

type LogicOp uint8

const (
	OpAnd LogicOp = iota
	OpOr
)

// Logic is a boolean connective; AND binds tighter than OR.
type Logic struct {
	Op    LogicOp
	Left  Expr
	Right Expr
}

func (*Logic) exprNode() {}

type AggFunc uint8

const (
	AggCount AggFunc = iota
	AggSum
	AggAvg
	AggMin
	AggMax
)

func (f AggFunc) String() string {
	switch f {
	case AggCount:
		return "count"
	case AggSum:
		return "sum"
	case AggAvg:
		return "avg"
	case AggMin:
		return "min"
	default:
		return "max"
	}
}

// Aggregate is COUNT/SUM/AVG/MIN/MAX over a column, or COUNT(*).
type Aggregate struct {
	Fn     AggFunc
	Column string
	Star   bool // COUNT(*) only
}

func (*Aggregate) exprNode() {}
