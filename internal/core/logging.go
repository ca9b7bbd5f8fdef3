package core

import "go.uber.org/zap"

// logger receives warnings for recoverable parse failures (a malformed
// compact attribute, an unparseable AttributeInfo message) that this
// package chooses to skip rather than fail the whole read. Silent by
// default; set via SetLogger from the top-level Open call.
var logger = zap.NewNop()

// SetLogger installs the logger used for recoverable parse warnings.
// Called once from Open before any reads begin; not safe to call
// concurrently with in-flight reads.
func SetLogger(l *zap.Logger) {
	if l != nil {
		logger = l
	}
}
