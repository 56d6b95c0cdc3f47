package tabq

import (
	"github.com/ai-aide/tabq/internal/sql/executor"
	"github.com/ai-aide/tabq/internal/table"
)

// Re-exports so callers only import the facade.
type (
	Result = executor.Result
	Column = table.Column
	Value  = table.Value
	Type   = table.Type
)

const (
	TypeString  = table.TypeString
	TypeInteger = table.TypeInteger
	TypeFloat   = table.TypeFloat
	TypeBoolean = table.TypeBoolean
	TypeDate    = table.TypeDate
)
