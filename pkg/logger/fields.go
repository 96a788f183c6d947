package logger

import "go.uber.org/zap"

type Field = zap.Field

var (
	Skip     = zap.Skip
	Binary   = zap.Binary
	Bool     = zap.Bool
	String   = zap.String
	Strings  = zap.Strings
	Int      = zap.Int
	Int64    = zap.Int64
	Uint     = zap.Uint
	Uint64   = zap.Uint64
	Float64  = zap.Float64
	Duration = zap.Duration
	Time     = zap.Time
	Any      = zap.Any
	Err      = zap.Error
)

func GetError(e error) Field {
	return zap.Error(e)
}
