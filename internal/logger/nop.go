package logger

// NoOp discards everything. Fatal does not exit.
type NoOp struct{}

// NewNop returns a NoOp logger.
func NewNop() Logger { return &NoOp{} }

func (*NoOp) Debug(string, ...Field) {}
func (*NoOp) Info(string, ...Field)  {}
func (*NoOp) Warn(string, ...Field)  {}
func (*NoOp) Error(string, ...Field) {}
func (*NoOp) Fatal(string, ...Field) {}
func (n *NoOp) With(...Field) Logger { return n }
func (*NoOp) Sync() error            { return nil }
