package parser

import (
	"fmt"

	"github.com/panyam/coredsl/decl"
)

// Ensure EOF is defined
const eof = 0

// Token kinds produced by the Lexer.  All expression operators share the
// OPERATOR kind and are told apart by their text.
const (
	IDENTIFIER = iota + 1
	INT_LITERAL
	FLOAT_LITERAL
	CHAR_LITERAL
	STRING_LITERAL
	OPERATOR

	// Punctuation
	LBRACE
	RBRACE
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	ATTR_OPEN // [[
	SEMICOLON
	COMMA
	COLON
	QUESTION
	DOT
	ARROW // ->

	// Keywords
	IMPORT
	INSTRUCTION_SET
	CORE
	EXTENDS
	PROVIDES
	ARCH_STATE
	FUNCTIONS
	INSTRUCTIONS
	ALWAYS
	ENCODING
	ASSEMBLY
	BEHAVIOR
	EXTERN
	STATIC
	REGISTER
	CONST
	VOLATILE
	IF
	ELSE
	FOR
	WHILE
	DO
	SWITCH
	CASE
	DEFAULT
	RETURN
	BREAK
	CONTINUE
	SPAWN
	SIGNED
	UNSIGNED
	CHAR
	SHORT
	INT
	LONG
	BOOL
	VOID
	FLOAT
	DOUBLE
	ENUM
	STRUCT
	UNION
	TRUE
	FALSE
)

var keywords = map[string]int{
	"import":              IMPORT,
	"InstructionSet":      INSTRUCTION_SET,
	"Core":                CORE,
	"extends":             EXTENDS,
	"provides":            PROVIDES,
	"architectural_state": ARCH_STATE,
	"functions":           FUNCTIONS,
	"instructions":        INSTRUCTIONS,
	"always":              ALWAYS,
	"encoding":            ENCODING,
	"assembly":            ASSEMBLY,
	"behavior":            BEHAVIOR,
	"extern":              EXTERN,
	"static":              STATIC,
	"register":            REGISTER,
	"const":               CONST,
	"volatile":            VOLATILE,
	"if":                  IF,
	"else":                ELSE,
	"for":                 FOR,
	"while":               WHILE,
	"do":                  DO,
	"switch":              SWITCH,
	"case":                CASE,
	"default":             DEFAULT,
	"return":              RETURN,
	"break":               BREAK,
	"continue":            CONTINUE,
	"spawn":               SPAWN,
	"signed":              SIGNED,
	"unsigned":            UNSIGNED,
	"char":                CHAR,
	"short":               SHORT,
	"int":                 INT,
	"long":                LONG,
	"bool":                BOOL,
	"void":                VOID,
	"float":               FLOAT,
	"double":              DOUBLE,
	"enum":                ENUM,
	"struct":              STRUCT,
	"union":               UNION,
	"true":                TRUE,
	"false":               FALSE,
}

var tokenNames = map[int]string{
	eof:            "EOF",
	IDENTIFIER:     "IDENTIFIER",
	INT_LITERAL:    "INT_LITERAL",
	FLOAT_LITERAL:  "FLOAT_LITERAL",
	CHAR_LITERAL:   "CHAR_LITERAL",
	STRING_LITERAL: "STRING_LITERAL",
	OPERATOR:       "OPERATOR",
	LBRACE:         "'{'",
	RBRACE:         "'}'",
	LPAREN:         "'('",
	RPAREN:         "')'",
	LBRACKET:       "'['",
	RBRACKET:       "']'",
	ATTR_OPEN:      "'[['",
	SEMICOLON:      "';'",
	COMMA:          "','",
	COLON:          "':'",
	QUESTION:       "'?'",
	DOT:            "'.'",
	ARROW:          "'->'",
}

func init() {
	for text, tok := range keywords {
		tokenNames[tok] = fmt.Sprintf("'%s'", text)
	}
}

// TokenString returns a printable name for a token kind.
func TokenString(tok int) string {
	if name, ok := tokenNames[tok]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", tok)
}

// Operator and punctuation symbols ordered so that longer ones are matched
// first.  Symbols not in punctuation are lexed as OPERATOR.
var symbols = []string{
	"<<=", ">>=",
	"[[", "::", "->", "++", "--", "<<", ">>", "<=", ">=", "==", "!=", "&&", "||",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
	"+", "-", "*", "/", "%", "<", ">", "=", "!", "~", "&", "|", "^",
	"{", "}", "(", ")", "[", "]", ";", ",", ":", "?", ".",
}

var punctuation = map[string]int{
	"{":  LBRACE,
	"}":  RBRACE,
	"(":  LPAREN,
	")":  RPAREN,
	"[[": ATTR_OPEN,
	"[":  LBRACKET,
	"]":  RBRACKET,
	";":  SEMICOLON,
	",":  COMMA,
	":":  COLON,
	"?":  QUESTION,
	".":  DOT,
	"->": ARROW,
}

// TokenValue is the semantic value of a lexed token.
type TokenValue struct {
	decl.NodeInfo
	Kind int
	Text string // Raw text for most tokens, decoded contents for char and string literals
}
