package logger

// Nop returns a logger that discards everything. Used as the default
// when a chart is built without an explicit logger.
func Nop() Logger { return nop{} }

type nop struct{}

func (nop) WithField(string, any) Logger     { return nop{} }
func (nop) WithFields(map[string]any) Logger { return nop{} }
func (nop) WithError(error) Logger           { return nop{} }

func (nop) Debug(...any) {}
func (nop) Info(...any)  {}
func (nop) Warn(...any)  {}
func (nop) Error(...any) {}

func (nop) Debugf(string, ...any) {}
func (nop) Infof(string, ...any)  {}
func (nop) Warnf(string, ...any)  {}
func (nop) Errorf(string, ...any) {}

func (nop) SetLevel(Level)  {}
func (nop) GetLevel() Level { return Disabled }
