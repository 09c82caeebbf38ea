// Package diagnostics defines the three fatal, non-recoverable error kinds
// produced by the Cesium pipeline: lexical, parse, and codegen errors. None
// of them are retried or wrapped further by the stages that raise them — the
// CLI driver is the only place that adds I/O context (see cmd/cesium).
package diagnostics

import "fmt"

// LexicalError is raised by the lexer on an unrecognized character, a
// malformed numeric literal, or an unterminated string. It carries the
// source line on which the scan failed.
type LexicalError struct {
	Message string
	Line    int
}

func (e *LexicalError) Error() string {
	return fmt.Sprintf("lexical error at line %d: %s", e.Line, e.Message)
}

// NewLexicalError constructs a LexicalError.
func NewLexicalError(line int, format string, args ...interface{}) *LexicalError {
	return &LexicalError{Message: fmt.Sprintf(format, args...), Line: line}
}

// ParseError is raised by the parser on any grammar violation. Message
// already names the expected and found lexeme; there is no separate field
// for them because callers compose the description at the point of failure.
type ParseError struct {
	Message string
	Line    int
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error at line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

// NewParseError constructs a ParseError.
func NewParseError(line int, format string, args ...interface{}) *ParseError {
	return &ParseError{Message: fmt.Sprintf(format, args...), Line: line}
}

// CodegenError is raised by the emitter on undeclared variables, calls to
// undefined functions, unsupported types, or type-mismatched operands.
type CodegenError struct {
	Message string
	Line    int
}

func (e *CodegenError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("codegen error at line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("codegen error: %s", e.Message)
}

// NewCodegenError constructs a CodegenError.
func NewCodegenError(line int, format string, args ...interface{}) *CodegenError {
	return &CodegenError{Message: fmt.Sprintf(format, args...), Line: line}
}
