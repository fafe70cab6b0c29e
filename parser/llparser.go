package parser

import (
	"fmt"
	"strings"

	"github.com/panyam/coredsl/decl"
	gfn "github.com/panyam/goutils/fn"
)

// LLParser is a hand written recursive descent parser for CoreDSL documents.
type LLParser struct {
	lexer            *Lexer
	peekedTokenValue *TokenValue
	peekedToken      int
	lastTokenEnd     decl.Location

	// > 0 while parsing the size of `unsigned<...>` where '>' closes the type
	noGreater int

	PanicOnError bool
}

func NewLLParser(lexer *Lexer) *LLParser {
	return &LLParser{lexer: lexer}
}

// Parse reads a complete document into file.
func (p *LLParser) Parse(file *decl.DescriptionContent) (err error) {
	file.StartPos = p.peekStart()
	for {
		peekedToken := p.PeekToken()
		if peekedToken == eof {
			if lexErr := p.lexer.LastError(); lexErr != nil {
				return lexErr
			}
			file.StopPos = p.lastTokenEnd
			return nil
		}
		switch peekedToken {
		case IMPORT:
			imp, err := p.ParseImport()
			if err != nil {
				return err
			}
			file.Imports = append(file.Imports, imp)
		case INSTRUCTION_SET:
			isa, err := p.ParseInstructionSet()
			if err != nil {
				return err
			}
			file.Definitions = append(file.Definitions, isa)
		case CORE:
			core, err := p.ParseCoreDef()
			if err != nil {
				return err
			}
			file.Definitions = append(file.Definitions, core)
		case SEMICOLON:
			p.Advance()
		default:
			return p.Errorf("expected 'import', 'InstructionSet' or 'Core', found: %s", TokenString(peekedToken))
		}
	}
}

func (p *LLParser) Errorf(format string, args ...any) error {
	if lexErr := p.lexer.LastError(); lexErr != nil && p.peekedToken == eof {
		// The lexer gave up first, its error is more precise
		return lexErr
	}
	s := fmt.Sprintf(format, args...)
	p.lexer.Error(s)
	if p.PanicOnError {
		panic(p.lexer.lastError)
	}
	return p.lexer.lastError
}

func (p *LLParser) Advance() int {
	p.PeekToken()
	last := p.peekedToken
	p.lastTokenEnd = p.peekedTokenValue.StopPos
	p.peekedTokenValue = nil
	p.peekedToken = -1
	return last
}

func (p *LLParser) PeekToken() int {
	if p.peekedTokenValue == nil {
		p.peekedTokenValue = &TokenValue{}
		p.peekedToken = p.lexer.Lex(p.peekedTokenValue)
	}
	return p.peekedToken
}

// peekText returns the text of the upcoming token.
func (p *LLParser) peekText() string {
	p.PeekToken()
	return p.peekedTokenValue.Text
}

func (p *LLParser) peekStart() decl.Location {
	p.PeekToken()
	return p.peekedTokenValue.StartPos
}

// peekOp returns true if the upcoming token is one of the given operators.
func (p *LLParser) peekOp(ops ...string) bool {
	if p.PeekToken() != OPERATOR {
		return false
	}
	text := p.peekText()
	for _, op := range ops {
		if op == text {
			return true
		}
	}
	return false
}

// Expect checks if the current peeked token is one of the expected tokens.
// It does NOT advance.
func (p *LLParser) Expect(tokensIn ...int) (foundToken int, err error) {
	peekedToken := p.PeekToken()
	for _, tok := range tokensIn {
		if tok == peekedToken {
			return tok, nil
		}
	}
	var errMsg string
	if len(tokensIn) == 1 {
		errMsg = fmt.Sprintf("expected %s, found: %s", TokenString(tokensIn[0]), TokenString(peekedToken))
	} else {
		expectedStrings := gfn.Map(tokensIn, func(t int) string { return TokenString(t) })
		errMsg = fmt.Sprintf("expected one of: [%s], found: %s", strings.Join(expectedStrings, ", "), TokenString(peekedToken))
	}
	return -1, p.Errorf("%s", errMsg)
}

// AdvanceIf expects one of the given tokens and advances if found.
// Returns the matched token type and its semantic value.
func (p *LLParser) AdvanceIf(tokensIn ...int) (foundToken int, tokenValue *TokenValue, err error) {
	if _, err = p.Expect(tokensIn...); err != nil {
		return -1, nil, err
	}
	foundToken = p.peekedToken
	tokenValue = p.peekedTokenValue
	p.Advance()
	return
}

// ExpectOp consumes the given operator or fails.
func (p *LLParser) ExpectOp(op string) (*TokenValue, error) {
	if !p.peekOp(op) {
		return nil, p.Errorf("expected '%s', found: %s", op, TokenString(p.PeekToken()))
	}
	tv := p.peekedTokenValue
	p.Advance()
	return tv, nil
}

// ParseName consumes an identifier and returns its text.
func (p *LLParser) ParseName() (string, *TokenValue, error) {
	_, tv, err := p.AdvanceIf(IDENTIFIER)
	if err != nil {
		return "", nil, err
	}
	return tv.Text, tv, nil
}

func (p *LLParser) parseReference(instructionSetsOnly bool) (*decl.Reference, error) {
	name, tv, err := p.ParseName()
	if err != nil {
		return nil, err
	}
	return &decl.Reference{NodeInfo: tv.NodeInfo, Name: name, InstructionSetsOnly: instructionSetsOnly}, nil
}

func (p *LLParser) withGreaterAllowed(fn func() (decl.Expression, error)) (decl.Expression, error) {
	saved := p.noGreater
	p.noGreater = 0
	defer func() { p.noGreater = saved }()
	return fn()
}

// ParseImport parses `import "uri" [;]`.
func (p *LLParser) ParseImport() (out *decl.Import, err error) {
	_, kw, err := p.AdvanceIf(IMPORT)
	if err != nil {
		return nil, err
	}
	_, uri, err := p.AdvanceIf(STRING_LITERAL)
	if err != nil {
		return nil, err
	}
	out = &decl.Import{NodeInfo: decl.NodeInfo{StartPos: kw.StartPos, StopPos: uri.StopPos}, URI: uri.Text}
	if p.PeekToken() == SEMICOLON {
		p.Advance()
	}
	return out, nil
}

// ParseInstructionSet parses `InstructionSet Name [extends Super] { ... }`.
func (p *LLParser) ParseInstructionSet() (out *decl.InstructionSet, err error) {
	_, kw, err := p.AdvanceIf(INSTRUCTION_SET)
	if err != nil {
		return nil, err
	}
	out = &decl.InstructionSet{}
	out.StartPos = kw.StartPos
	if out.Name, _, err = p.ParseName(); err != nil {
		return nil, err
	}
	if p.PeekToken() == EXTENDS {
		p.Advance()
		if out.SuperType, err = p.parseReference(true); err != nil {
			return nil, err
		}
	}
	if err = p.ParseISABody(&out.ISABody); err != nil {
		return nil, err
	}
	out.StopPos = p.lastTokenEnd
	return out, nil
}

// ParseCoreDef parses `Core Name [provides A, B] { ... }`.
func (p *LLParser) ParseCoreDef() (out *decl.CoreDef, err error) {
	_, kw, err := p.AdvanceIf(CORE)
	if err != nil {
		return nil, err
	}
	out = &decl.CoreDef{}
	out.StartPos = kw.StartPos
	if out.Name, _, err = p.ParseName(); err != nil {
		return nil, err
	}
	if p.PeekToken() == PROVIDES {
		p.Advance()
		for {
			ref, err := p.parseReference(true)
			if err != nil {
				return nil, err
			}
			out.ProvidedInstructionSets = append(out.ProvidedInstructionSets, ref)
			if p.PeekToken() != COMMA {
				break
			}
			p.Advance()
		}
	}
	if err = p.ParseISABody(&out.ISABody); err != nil {
		return nil, err
	}
	out.StopPos = p.lastTokenEnd
	return out, nil
}

// ParseISABody parses the braced sections of an instruction set or core.
func (p *LLParser) ParseISABody(body *decl.ISABody) (err error) {
	if _, _, err = p.AdvanceIf(LBRACE); err != nil {
		return
	}
	for {
		switch p.PeekToken() {
		case RBRACE:
			p.Advance()
			return nil
		case SEMICOLON:
			p.Advance()
		case ARCH_STATE:
			p.Advance()
			if err = p.parseSection(func() error {
				if isDeclarationStart(p.PeekToken()) {
					ds, err := p.ParseDeclarationStatement()
					if err != nil {
						return err
					}
					body.Declarations = append(body.Declarations, ds)
					return nil
				}
				stmt, err := p.ParseExpressionStatement()
				if err != nil {
					return err
				}
				body.Assignments = append(body.Assignments, stmt)
				return nil
			}); err != nil {
				return
			}
		case FUNCTIONS:
			p.Advance()
			if err = p.parseSection(func() error {
				f, err := p.ParseFunctionDefinition()
				if err == nil {
					body.Functions = append(body.Functions, f)
				}
				return err
			}); err != nil {
				return
			}
		case INSTRUCTIONS:
			p.Advance()
			attrs, err := p.ParseAttributes()
			if err != nil {
				return err
			}
			body.CommonInstructionAttributes = append(body.CommonInstructionAttributes, attrs...)
			if err = p.parseSection(func() error {
				instr, err := p.ParseInstruction()
				if err == nil {
					body.Instructions = append(body.Instructions, instr)
				}
				return err
			}); err != nil {
				return err
			}
		case ALWAYS:
			p.Advance()
			if err = p.parseSection(func() error {
				ab, err := p.ParseAlwaysBlock()
				if err == nil {
					body.AlwaysBlocks = append(body.AlwaysBlocks, ab)
				}
				return err
			}); err != nil {
				return
			}
		default:
			return p.Errorf("expected 'architectural_state', 'functions', 'instructions' or 'always', found: %s", TokenString(p.PeekToken()))
		}
	}
}

// parseSection parses `{ item* }` calling parseItem for every item.
func (p *LLParser) parseSection(parseItem func() error) (err error) {
	if _, _, err = p.AdvanceIf(LBRACE); err != nil {
		return
	}
	for {
		switch p.PeekToken() {
		case RBRACE:
			p.Advance()
			return nil
		case SEMICOLON:
			p.Advance()
		case eof:
			return p.Errorf("unexpected end of input, expected '}'")
		default:
			if err = parseItem(); err != nil {
				return
			}
		}
	}
}

// ParseAttributes parses zero or more `[[name]]`, `[[name=expr]]` or
// `[[name(expr, ...)]]` annotations.
func (p *LLParser) ParseAttributes() (out []*decl.Attribute, err error) {
	for p.PeekToken() == ATTR_OPEN {
		start := p.peekStart()
		p.Advance()
		attr := &decl.Attribute{}
		attr.StartPos = start
		if attr.Name, _, err = p.ParseName(); err != nil {
			return nil, err
		}
		if p.peekOp("=") {
			p.Advance()
			param, err := p.withGreaterAllowed(p.ParseExpression)
			if err != nil {
				return nil, err
			}
			attr.Parameters = []decl.Expression{param}
		} else if p.PeekToken() == LPAREN {
			p.Advance()
			if attr.Parameters, err = p.ParseArgList(); err != nil {
				return nil, err
			}
		}
		if _, _, err = p.AdvanceIf(RBRACKET); err != nil {
			return nil, err
		}
		if _, _, err = p.AdvanceIf(RBRACKET); err != nil {
			return nil, err
		}
		attr.StopPos = p.lastTokenEnd
		out = append(out, attr)
	}
	return
}

// ParseArgList parses comma separated expressions up to and including the closing ')'.
func (p *LLParser) ParseArgList() (args []decl.Expression, err error) {
	if p.PeekToken() == RPAREN {
		p.Advance()
		return nil, nil
	}
	for {
		arg, err := p.withGreaterAllowed(p.ParseExpression)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		tok, _, err := p.AdvanceIf(COMMA, RPAREN)
		if err != nil {
			return nil, err
		}
		if tok == RPAREN {
			return args, nil
		}
	}
}

// ParseFunctionDefinition parses `[extern] type name(params) [[attrs]] (body | ;)`.
func (p *LLParser) ParseFunctionDefinition() (out *decl.FunctionDefinition, err error) {
	out = &decl.FunctionDefinition{}
	out.StartPos = p.peekStart()
	if p.PeekToken() == EXTERN {
		p.Advance()
		out.Extern = true
	}
	if out.ReturnType, err = p.ParseTypeSpecifier(); err != nil {
		return nil, err
	}
	if out.Name, _, err = p.ParseName(); err != nil {
		return nil, err
	}
	if _, _, err = p.AdvanceIf(LPAREN); err != nil {
		return nil, err
	}
	for p.PeekToken() != RPAREN {
		param, err := p.ParseParameterDeclaration()
		if err != nil {
			return nil, err
		}
		_, isVoid := param.Type.(*decl.VoidTypeSpecifier)
		if !(isVoid && param.Declarator == nil && len(out.Parameters) == 0 && p.PeekToken() == RPAREN) {
			out.Parameters = append(out.Parameters, param)
		}
		if p.PeekToken() != COMMA {
			break
		}
		p.Advance()
	}
	if _, _, err = p.AdvanceIf(RPAREN); err != nil {
		return nil, err
	}
	if out.Attributes, err = p.ParseAttributes(); err != nil {
		return nil, err
	}
	if p.PeekToken() == SEMICOLON {
		p.Advance()
	} else if out.Body, err = p.ParseCompoundStatement(); err != nil {
		return nil, err
	}
	out.StopPos = p.lastTokenEnd
	return out, nil
}

func (p *LLParser) ParseParameterDeclaration() (out *decl.ParameterDeclaration, err error) {
	out = &decl.ParameterDeclaration{}
	out.StartPos = p.peekStart()
	if out.Type, err = p.ParseTypeSpecifier(); err != nil {
		return nil, err
	}
	if p.PeekToken() == IDENTIFIER {
		if out.Declarator, err = p.ParseDeclarator(false); err != nil {
			return nil, err
		}
	}
	out.StopPos = p.lastTokenEnd
	return out, nil
}

// ParseInstruction parses `Name [[attrs]] { encoding: ...; assembly: ...; behavior: stmt }`.
func (p *LLParser) ParseInstruction() (out *decl.Instruction, err error) {
	out = &decl.Instruction{}
	out.StartPos = p.peekStart()
	if out.Name, _, err = p.ParseName(); err != nil {
		return nil, err
	}
	if out.Attributes, err = p.ParseAttributes(); err != nil {
		return nil, err
	}
	if _, _, err = p.AdvanceIf(LBRACE); err != nil {
		return nil, err
	}
	for {
		tok, _, err := p.AdvanceIf(ENCODING, ASSEMBLY, BEHAVIOR, RBRACE)
		if err != nil {
			return nil, err
		}
		if tok == RBRACE {
			break
		}
		if _, _, err = p.AdvanceIf(COLON); err != nil {
			return nil, err
		}
		switch tok {
		case ENCODING:
			if out.Encoding, err = p.ParseEncoding(); err != nil {
				return nil, err
			}
			if _, _, err = p.AdvanceIf(SEMICOLON); err != nil {
				return nil, err
			}
		case ASSEMBLY:
			if out.Assembly, err = p.ParseAssembly(); err != nil {
				return nil, err
			}
			if _, _, err = p.AdvanceIf(SEMICOLON); err != nil {
				return nil, err
			}
		case BEHAVIOR:
			if out.Behavior, err = p.ParseStatement(); err != nil {
				return nil, err
			}
		}
	}
	out.StopPos = p.lastTokenEnd
	return out, nil
}

// ParseEncoding parses `field :: field :: ...` where a field is a literal
// bit value or a named bit range `name[hi:lo]`.
func (p *LLParser) ParseEncoding() (out *decl.Encoding, err error) {
	out = &decl.Encoding{}
	out.StartPos = p.peekStart()
	for {
		switch p.PeekToken() {
		case INT_LITERAL:
			tv := p.peekedTokenValue
			if _, err := decl.ParseInteger(tv.Text); err != nil {
				return nil, p.Errorf("%s", err.Error())
			}
			p.Advance()
			out.Fields = append(out.Fields, &decl.BitValue{NodeInfo: tv.NodeInfo, Value: tv.Text})
		case IDENTIFIER:
			bf := &decl.BitField{}
			bf.StartPos = p.peekStart()
			bf.Name, _, _ = p.ParseName()
			if _, _, err = p.AdvanceIf(LBRACKET); err != nil {
				return nil, err
			}
			if bf.StartIndex, err = p.parseIntegerConstant(); err != nil {
				return nil, err
			}
			bf.EndIndex = bf.StartIndex
			if p.PeekToken() == COLON {
				p.Advance()
				if bf.EndIndex, err = p.parseIntegerConstant(); err != nil {
					return nil, err
				}
			}
			if _, _, err = p.AdvanceIf(RBRACKET); err != nil {
				return nil, err
			}
			bf.StopPos = p.lastTokenEnd
			out.Fields = append(out.Fields, bf)
		default:
			return nil, p.Errorf("expected a bit field or bit value, found: %s", TokenString(p.PeekToken()))
		}
		if !p.peekOp("::") {
			break
		}
		p.Advance()
	}
	out.StopPos = p.lastTokenEnd
	return out, nil
}

func (p *LLParser) parseIntegerConstant() (*decl.IntegerConstant, error) {
	if _, err := p.Expect(INT_LITERAL); err != nil {
		return nil, err
	}
	tv := p.peekedTokenValue
	if _, err := decl.ParseInteger(tv.Text); err != nil {
		return nil, p.Errorf("%s", err.Error())
	}
	p.Advance()
	out := &decl.IntegerConstant{Value: tv.Text}
	out.NodeInfo = tv.NodeInfo
	return out, nil
}

// ParseAssembly parses `"operands"` or `{"mnemonic", "operands"}`.
func (p *LLParser) ParseAssembly() (out *decl.AssemblyDescription, err error) {
	out = &decl.AssemblyDescription{}
	out.StartPos = p.peekStart()
	if p.PeekToken() == LBRACE {
		p.Advance()
		if out.Mnemonic, err = p.parseStringLiteral(); err != nil {
			return nil, err
		}
		if _, _, err = p.AdvanceIf(COMMA); err != nil {
			return nil, err
		}
		if out.Operands, err = p.parseStringLiteral(); err != nil {
			return nil, err
		}
		if _, _, err = p.AdvanceIf(RBRACE); err != nil {
			return nil, err
		}
	} else if out.Operands, err = p.parseStringLiteral(); err != nil {
		return nil, err
	}
	out.StopPos = p.lastTokenEnd
	return out, nil
}

// parseStringLiteral reads one or more adjacent string literals.
func (p *LLParser) parseStringLiteral() (string, error) {
	if _, err := p.Expect(STRING_LITERAL); err != nil {
		return "", err
	}
	var sb strings.Builder
	for p.PeekToken() == STRING_LITERAL {
		sb.WriteString(p.peekedTokenValue.Text)
		p.Advance()
	}
	return sb.String(), nil
}

// ParseAlwaysBlock parses `name [[attrs]] { ... }`.
func (p *LLParser) ParseAlwaysBlock() (out *decl.AlwaysBlock, err error) {
	out = &decl.AlwaysBlock{}
	out.StartPos = p.peekStart()
	if out.Name, _, err = p.ParseName(); err != nil {
		return nil, err
	}
	if out.Attributes, err = p.ParseAttributes(); err != nil {
		return nil, err
	}
	if out.Behavior, err = p.ParseCompoundStatement(); err != nil {
		return nil, err
	}
	out.StopPos = p.lastTokenEnd
	return out, nil
}

// --- Declarations and types ---

func isTypeStart(tok int) bool {
	switch tok {
	case SIGNED, UNSIGNED, CHAR, SHORT, INT, LONG, BOOL, VOID, FLOAT, DOUBLE, ENUM, STRUCT, UNION:
		return true
	}
	return false
}

func isDeclarationStart(tok int) bool {
	switch tok {
	case EXTERN, STATIC, REGISTER, CONST, VOLATILE, ATTR_OPEN:
		return true
	}
	return isTypeStart(tok)
}

// ParseDeclaration parses storage and qualifiers, attributes, the type and
// the declarators.  The terminating ';' is not consumed.
func (p *LLParser) ParseDeclaration() (out *decl.Declaration, err error) {
	out = &decl.Declaration{}
	out.StartPos = p.peekStart()
	for done := false; !done; {
		switch p.PeekToken() {
		case EXTERN, STATIC, REGISTER:
			out.Storage = append(out.Storage, p.peekText())
			p.Advance()
		case CONST, VOLATILE:
			out.Qualifiers = append(out.Qualifiers, p.peekText())
			p.Advance()
		case ATTR_OPEN:
			attrs, err := p.ParseAttributes()
			if err != nil {
				return nil, err
			}
			out.Attributes = append(out.Attributes, attrs...)
		default:
			done = true
		}
	}
	if out.Type, err = p.ParseTypeSpecifier(); err != nil {
		return nil, err
	}
	for {
		d, err := p.ParseDeclarator(true)
		if err != nil {
			return nil, err
		}
		out.Declarators = append(out.Declarators, d)
		if p.PeekToken() != COMMA {
			break
		}
		p.Advance()
	}
	out.StopPos = p.lastTokenEnd
	return out, nil
}

func (p *LLParser) ParseDeclarationStatement() (out *decl.DeclarationStatement, err error) {
	out = &decl.DeclarationStatement{}
	out.StartPos = p.peekStart()
	if out.Declaration, err = p.ParseDeclaration(); err != nil {
		return nil, err
	}
	if _, _, err = p.AdvanceIf(SEMICOLON); err != nil {
		return nil, err
	}
	out.StopPos = p.lastTokenEnd
	return out, nil
}

// ParseDeclarator parses `name[dim]... [[attrs]] [= initializer]`.
func (p *LLParser) ParseDeclarator(allowInitializer bool) (out *decl.Declarator, err error) {
	out = &decl.Declarator{}
	out.StartPos = p.peekStart()
	if out.Name, _, err = p.ParseName(); err != nil {
		return nil, err
	}
	for p.PeekToken() == LBRACKET {
		p.Advance()
		dim, err := p.withGreaterAllowed(p.ParseExpression)
		if err != nil {
			return nil, err
		}
		out.Dimensions = append(out.Dimensions, dim)
		if _, _, err = p.AdvanceIf(RBRACKET); err != nil {
			return nil, err
		}
	}
	if out.Attributes, err = p.ParseAttributes(); err != nil {
		return nil, err
	}
	if allowInitializer && p.peekOp("=") {
		p.Advance()
		if out.Initializer, err = p.ParseInitializer(); err != nil {
			return nil, err
		}
	}
	out.StopPos = p.lastTokenEnd
	return out, nil
}

// ParseInitializer parses an expression or a brace enclosed initializer list.
func (p *LLParser) ParseInitializer() (decl.Initializer, error) {
	start := p.peekStart()
	if p.PeekToken() != LBRACE {
		value, err := p.withGreaterAllowed(p.ParseExpression)
		if err != nil {
			return nil, err
		}
		return &decl.ExpressionInitializer{NodeInfo: decl.NodeInfo{StartPos: start, StopPos: p.lastTokenEnd}, Value: value}, nil
	}
	p.Advance()
	out := &decl.ListInitializer{}
	for p.PeekToken() != RBRACE {
		init, err := p.ParseInitializer()
		if err != nil {
			return nil, err
		}
		out.Initializers = append(out.Initializers, init)
		if p.PeekToken() != COMMA {
			break
		}
		p.Advance()
	}
	if _, _, err := p.AdvanceIf(RBRACE); err != nil {
		return nil, err
	}
	out.NodeInfo = decl.NodeInfo{StartPos: start, StopPos: p.lastTokenEnd}
	return out, nil
}

// ParseTypeSpecifier parses a type such as `bool`, `unsigned int`,
// `signed<XLEN>`, `double` or `struct Name`.
func (p *LLParser) ParseTypeSpecifier() (out decl.TypeSpecifier, err error) {
	start := p.peekStart()
	tok := p.PeekToken()
	text := p.peekText()
	switch tok {
	case BOOL:
		p.Advance()
		out = &decl.BoolTypeSpecifier{}
	case VOID:
		p.Advance()
		out = &decl.VoidTypeSpecifier{}
	case FLOAT, DOUBLE:
		p.Advance()
		out = &decl.FloatTypeSpecifier{Shorthand: text}
	case ENUM:
		p.Advance()
		name, _, err := p.ParseName()
		if err != nil {
			return nil, err
		}
		out = &decl.EnumTypeSpecifier{Name: name}
	case STRUCT, UNION:
		p.Advance()
		name, _, err := p.ParseName()
		if err != nil {
			return nil, err
		}
		out = &decl.UserTypeSpecifier{Kind: text, Name: name}
	case SIGNED, UNSIGNED:
		p.Advance()
		return p.parseIntegerTypeRest(text, start)
	case CHAR, SHORT, INT, LONG:
		return p.parseIntegerTypeRest("", start)
	default:
		return nil, p.Errorf("expected a type, found: %s", TokenString(tok))
	}
	setTypeSpecInfo(out, start, p.lastTokenEnd)
	return out, nil
}

// parseIntegerTypeRest parses what follows an optional signed/unsigned
// keyword: a `<size>` or a shorthand such as `int`, `long long` or `short int`.
func (p *LLParser) parseIntegerTypeRest(signedness string, start decl.Location) (decl.TypeSpecifier, error) {
	out := &decl.IntegerTypeSpecifier{Signedness: signedness}
	if signedness != "" && p.peekOp("<") {
		p.Advance()
		p.noGreater++
		size, err := p.ParseChainedExpr()
		p.noGreater--
		if err != nil {
			return nil, err
		}
		out.Size = size
		if _, err := p.ExpectOp(">"); err != nil {
			return nil, err
		}
	} else {
		switch p.PeekToken() {
		case CHAR, SHORT, INT, LONG:
			out.Shorthand = p.peekText()
			p.Advance()
			// long long, long int, short int
			for p.PeekToken() == INT || (out.Shorthand == "long" && p.PeekToken() == LONG) {
				p.Advance()
			}
		default:
			if signedness == "" {
				return nil, p.Errorf("expected an integer type, found: %s", TokenString(p.PeekToken()))
			}
		}
	}
	out.NodeInfo = decl.NodeInfo{StartPos: start, StopPos: p.lastTokenEnd}
	return out, nil
}

func setTypeSpecInfo(ts decl.TypeSpecifier, start, end decl.Location) {
	info := decl.NodeInfo{StartPos: start, StopPos: end}
	switch t := ts.(type) {
	case *decl.BoolTypeSpecifier:
		t.NodeInfo = info
	case *decl.VoidTypeSpecifier:
		t.NodeInfo = info
	case *decl.FloatTypeSpecifier:
		t.NodeInfo = info
	case *decl.EnumTypeSpecifier:
		t.NodeInfo = info
	case *decl.UserTypeSpecifier:
		t.NodeInfo = info
	case *decl.IntegerTypeSpecifier:
		t.NodeInfo = info
	}
}

// --- Statements ---

// ParseStatement parses any statement including declarations.
func (p *LLParser) ParseStatement() (out decl.Statement, err error) {
	start := p.peekStart()
	switch p.PeekToken() {
	case LBRACE:
		return p.ParseCompoundStatement()
	case IF:
		return p.ParseIfStatement()
	case FOR:
		return p.ParseForLoop()
	case WHILE:
		p.Advance()
		cond, err := p.parseParenthesizedCondition()
		if err != nil {
			return nil, err
		}
		body, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		w := &decl.WhileLoop{Condition: cond, Body: body}
		w.NodeInfo = decl.NodeInfo{StartPos: start, StopPos: p.lastTokenEnd}
		return w, nil
	case DO:
		p.Advance()
		body, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		if _, _, err = p.AdvanceIf(WHILE); err != nil {
			return nil, err
		}
		cond, err := p.parseParenthesizedCondition()
		if err != nil {
			return nil, err
		}
		if _, _, err = p.AdvanceIf(SEMICOLON); err != nil {
			return nil, err
		}
		d := &decl.DoWhileLoop{Body: body, Condition: cond}
		d.NodeInfo = decl.NodeInfo{StartPos: start, StopPos: p.lastTokenEnd}
		return d, nil
	case SWITCH:
		return p.ParseSwitchStatement()
	case RETURN:
		p.Advance()
		r := &decl.ReturnStatement{}
		if p.PeekToken() != SEMICOLON {
			if r.Value, err = p.ParseExpression(); err != nil {
				return nil, err
			}
		}
		if _, _, err = p.AdvanceIf(SEMICOLON); err != nil {
			return nil, err
		}
		r.NodeInfo = decl.NodeInfo{StartPos: start, StopPos: p.lastTokenEnd}
		return r, nil
	case SPAWN:
		p.Advance()
		body, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		s := &decl.SpawnStatement{Body: body}
		s.NodeInfo = decl.NodeInfo{StartPos: start, StopPos: p.lastTokenEnd}
		return s, nil
	case BREAK, CONTINUE:
		tok := p.Advance()
		if _, _, err = p.AdvanceIf(SEMICOLON); err != nil {
			return nil, err
		}
		info := decl.NodeInfo{StartPos: start, StopPos: p.lastTokenEnd}
		if tok == BREAK {
			b := &decl.BreakStatement{}
			b.NodeInfo = info
			return b, nil
		}
		c := &decl.ContinueStatement{}
		c.NodeInfo = info
		return c, nil
	case SEMICOLON:
		p.Advance()
		e := &decl.EmptyStatement{}
		e.NodeInfo = decl.NodeInfo{StartPos: start, StopPos: p.lastTokenEnd}
		return e, nil
	}
	if isDeclarationStart(p.PeekToken()) {
		return p.ParseDeclarationStatement()
	}
	return p.ParseExpressionStatement()
}

func (p *LLParser) parseParenthesizedCondition() (decl.Expression, error) {
	if _, _, err := p.AdvanceIf(LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.withGreaterAllowed(p.ParseExpression)
	if err != nil {
		return nil, err
	}
	if _, _, err = p.AdvanceIf(RPAREN); err != nil {
		return nil, err
	}
	return cond, nil
}

func (p *LLParser) ParseExpressionStatement() (out *decl.ExpressionStatement, err error) {
	out = &decl.ExpressionStatement{}
	out.StartPos = p.peekStart()
	if out.Expression, err = p.ParseExpression(); err != nil {
		return nil, err
	}
	if _, _, err = p.AdvanceIf(SEMICOLON); err != nil {
		return nil, err
	}
	out.StopPos = p.lastTokenEnd
	return out, nil
}

func (p *LLParser) ParseCompoundStatement() (out *decl.CompoundStatement, err error) {
	out = &decl.CompoundStatement{}
	out.StartPos = p.peekStart()
	if _, _, err = p.AdvanceIf(LBRACE); err != nil {
		return nil, err
	}
	for p.PeekToken() != RBRACE {
		if p.PeekToken() == eof {
			return nil, p.Errorf("unexpected end of input, expected '}'")
		}
		stmt, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, stmt)
	}
	p.Advance()
	out.StopPos = p.lastTokenEnd
	return out, nil
}

func (p *LLParser) ParseIfStatement() (out *decl.IfStatement, err error) {
	out = &decl.IfStatement{}
	out.StartPos = p.peekStart()
	if _, _, err = p.AdvanceIf(IF); err != nil {
		return nil, err
	}
	if out.Condition, err = p.parseParenthesizedCondition(); err != nil {
		return nil, err
	}
	if out.Then, err = p.ParseStatement(); err != nil {
		return nil, err
	}
	if p.PeekToken() == ELSE {
		p.Advance()
		if out.Else, err = p.ParseStatement(); err != nil {
			return nil, err
		}
	}
	out.StopPos = p.lastTokenEnd
	return out, nil
}

// ParseForLoop parses `for (init; cond; step) body` where init is either a
// declaration or a list of expressions.
func (p *LLParser) ParseForLoop() (out *decl.ForLoop, err error) {
	out = &decl.ForLoop{}
	out.StartPos = p.peekStart()
	if _, _, err = p.AdvanceIf(FOR); err != nil {
		return nil, err
	}
	if _, _, err = p.AdvanceIf(LPAREN); err != nil {
		return nil, err
	}
	if isDeclarationStart(p.PeekToken()) {
		if out.StartDeclaration, err = p.ParseDeclaration(); err != nil {
			return nil, err
		}
	} else if p.PeekToken() != SEMICOLON {
		if out.StartExpressions, err = p.parseExpressionList(); err != nil {
			return nil, err
		}
	}
	if _, _, err = p.AdvanceIf(SEMICOLON); err != nil {
		return nil, err
	}
	if p.PeekToken() != SEMICOLON {
		if out.Condition, err = p.ParseExpression(); err != nil {
			return nil, err
		}
	}
	if _, _, err = p.AdvanceIf(SEMICOLON); err != nil {
		return nil, err
	}
	if p.PeekToken() != RPAREN {
		if out.LoopExpressions, err = p.parseExpressionList(); err != nil {
			return nil, err
		}
	}
	if _, _, err = p.AdvanceIf(RPAREN); err != nil {
		return nil, err
	}
	if out.Body, err = p.ParseStatement(); err != nil {
		return nil, err
	}
	out.StopPos = p.lastTokenEnd
	return out, nil
}

func (p *LLParser) parseExpressionList() (out []decl.Expression, err error) {
	for {
		e, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
		if p.PeekToken() != COMMA {
			return out, nil
		}
		p.Advance()
	}
}

func (p *LLParser) ParseSwitchStatement() (out *decl.SwitchStatement, err error) {
	out = &decl.SwitchStatement{}
	out.StartPos = p.peekStart()
	if _, _, err = p.AdvanceIf(SWITCH); err != nil {
		return nil, err
	}
	if out.Condition, err = p.parseParenthesizedCondition(); err != nil {
		return nil, err
	}
	if _, _, err = p.AdvanceIf(LBRACE); err != nil {
		return nil, err
	}
	for p.PeekToken() != RBRACE {
		section := &decl.SwitchSection{}
		section.StartPos = p.peekStart()
		tok, _, err := p.AdvanceIf(CASE, DEFAULT)
		if err != nil {
			return nil, err
		}
		if tok == CASE {
			if section.Case, err = p.ParseExpression(); err != nil {
				return nil, err
			}
		}
		if _, _, err = p.AdvanceIf(COLON); err != nil {
			return nil, err
		}
		for next := p.PeekToken(); next != CASE && next != DEFAULT && next != RBRACE; next = p.PeekToken() {
			if next == eof {
				return nil, p.Errorf("unexpected end of input in switch statement")
			}
			stmt, err := p.ParseStatement()
			if err != nil {
				return nil, err
			}
			section.Items = append(section.Items, stmt)
		}
		section.StopPos = p.lastTokenEnd
		out.Sections = append(out.Sections, section)
	}
	p.Advance()
	out.StopPos = p.lastTokenEnd
	return out, nil
}

// --- Expressions ---

// ParseExpression is the entry point for parsing any expression.  The comma
// operator is not supported.
func (p *LLParser) ParseExpression() (decl.Expression, error) {
	return p.ParseAssignmentExpr()
}

// ParseAssignmentExpr: ConditionalExpr ( ASSIGN_OP AssignmentExpr )?
func (p *LLParser) ParseAssignmentExpr() (decl.Expression, error) {
	target, err := p.ParseConditionalExpr()
	if err != nil {
		return nil, err
	}
	if p.PeekToken() == OPERATOR && decl.IsAssignmentOperator(p.peekText()) && !p.greaterBlocked(p.peekText()) {
		op := p.peekText()
		p.Advance()
		value, err := p.ParseAssignmentExpr()
		if err != nil {
			return nil, err
		}
		out := &decl.AssignmentExpression{Target: target, Operator: op, Value: value}
		out.NodeInfo = decl.NodeInfo{StartPos: target.Pos(), StopPos: value.End()}
		return out, nil
	}
	return target, nil
}

// ParseConditionalExpr: ChainedExpr ( '?' Expression ':' ConditionalExpr )?
func (p *LLParser) ParseConditionalExpr() (decl.Expression, error) {
	cond, err := p.ParseChainedExpr()
	if err != nil {
		return nil, err
	}
	if p.PeekToken() != QUESTION {
		return cond, nil
	}
	p.Advance()
	then, err := p.withGreaterAllowed(p.ParseExpression)
	if err != nil {
		return nil, err
	}
	if _, _, err = p.AdvanceIf(COLON); err != nil {
		return nil, err
	}
	otherwise, err := p.ParseConditionalExpr()
	if err != nil {
		return nil, err
	}
	out := &decl.ConditionalExpression{Condition: cond, ThenExpression: then, ElseExpression: otherwise}
	out.NodeInfo = decl.NodeInfo{StartPos: cond.Pos(), StopPos: otherwise.End()}
	return out, nil
}

func (p *LLParser) greaterBlocked(op string) bool {
	return p.noGreater > 0 && strings.HasPrefix(op, ">")
}

// ChainedExpr : UnaryExpr ( BINARY_OP UnaryExpr ) *
// Operands and operators are collected first and precedences sorted out by Unchain.
func (p *LLParser) ParseChainedExpr() (decl.Expression, error) {
	left, err := p.ParseUnaryExpr()
	if err != nil {
		return nil, err
	}
	chain := &ChainedExpr{Children: []decl.Expression{left}}

	for p.PeekToken() == OPERATOR && IsBinaryOperator(p.peekText()) && !p.greaterBlocked(p.peekText()) {
		op := p.peekText()
		p.Advance()

		next, err := p.ParseUnaryExpr()
		if err != nil {
			return nil, err
		}
		chain.Children = append(chain.Children, next)
		chain.Operators = append(chain.Operators, op)
	}
	chain.Unchain(&coreDSLPrecedencer{})
	if chain.UnchainedExpr == nil {
		return nil, p.Errorf("malformed expression %s", chain)
	}
	return chain.UnchainedExpr, nil
}

var prefixOperators = []string{"++", "--", "~", "!", "-", "+", "&", "*"}

// UnaryExpr: PREFIX_OP UnaryExpr | '(' Type ')' UnaryExpr | PostfixExpr
func (p *LLParser) ParseUnaryExpr() (decl.Expression, error) {
	start := p.peekStart()
	if p.peekOp(prefixOperators...) {
		op := p.peekText()
		p.Advance()
		operand, err := p.ParseUnaryExpr()
		if err != nil {
			return nil, err
		}
		out := &decl.PrefixExpression{Operator: op, Operand: operand}
		out.NodeInfo = decl.NodeInfo{StartPos: start, StopPos: operand.End()}
		return out, nil
	}
	if p.PeekToken() == LPAREN {
		p.Advance()
		if isTypeStart(p.PeekToken()) {
			return p.parseCastRest(start)
		}
		inner, err := p.withGreaterAllowed(p.ParseExpression)
		if err != nil {
			return nil, err
		}
		if _, _, err = p.AdvanceIf(RPAREN); err != nil {
			return nil, err
		}
		paren := &decl.ParenthesisExpression{Inner: inner}
		paren.NodeInfo = decl.NodeInfo{StartPos: start, StopPos: p.lastTokenEnd}
		return p.parsePostfixOps(paren)
	}
	primary, err := p.ParsePrimaryExpr()
	if err != nil {
		return nil, err
	}
	return p.parsePostfixOps(primary)
}

// parseCastRest parses the rest of `(type) operand` or `(signed|unsigned)
// operand` after the opening parenthesis.
func (p *LLParser) parseCastRest(start decl.Location) (decl.Expression, error) {
	out := &decl.CastExpression{}
	typeStart := p.peekStart()
	if tok := p.PeekToken(); tok == SIGNED || tok == UNSIGNED {
		signedness := p.peekText()
		p.Advance()
		if p.PeekToken() == RPAREN {
			out.Signedness = signedness
		} else {
			ts, err := p.parseIntegerTypeRest(signedness, typeStart)
			if err != nil {
				return nil, err
			}
			out.TargetType = ts
		}
	} else {
		ts, err := p.ParseTypeSpecifier()
		if err != nil {
			return nil, err
		}
		out.TargetType = ts
	}
	if _, _, err := p.AdvanceIf(RPAREN); err != nil {
		return nil, err
	}
	operand, err := p.ParseUnaryExpr()
	if err != nil {
		return nil, err
	}
	out.Operand = operand
	out.NodeInfo = decl.NodeInfo{StartPos: start, StopPos: operand.End()}
	return out, nil
}

// parsePostfixOps applies indexing, bit ranges, calls, member access and
// postfix increments to an operand.
func (p *LLParser) parsePostfixOps(expr decl.Expression) (decl.Expression, error) {
	start := expr.Pos()
	for {
		switch p.PeekToken() {
		case LBRACKET:
			p.Advance()
			access := &decl.ArrayAccessExpression{Target: expr}
			var err error
			if access.Index, err = p.withGreaterAllowed(p.ParseExpression); err != nil {
				return nil, err
			}
			if p.PeekToken() == COLON {
				p.Advance()
				if access.IndexUpper, err = p.withGreaterAllowed(p.ParseExpression); err != nil {
					return nil, err
				}
			}
			if _, _, err = p.AdvanceIf(RBRACKET); err != nil {
				return nil, err
			}
			access.NodeInfo = decl.NodeInfo{StartPos: start, StopPos: p.lastTokenEnd}
			expr = access
		case LPAREN:
			p.Advance()
			args, err := p.ParseArgList()
			if err != nil {
				return nil, err
			}
			call := &decl.FunctionCallExpression{Target: expr, Arguments: args}
			call.NodeInfo = decl.NodeInfo{StartPos: start, StopPos: p.lastTokenEnd}
			expr = call
		case DOT, ARROW:
			op := p.peekText()
			p.Advance()
			member, err := p.parseReference(false)
			if err != nil {
				return nil, err
			}
			access := &decl.MemberAccessExpression{Target: expr, Operator: op, Member: member}
			access.NodeInfo = decl.NodeInfo{StartPos: start, StopPos: p.lastTokenEnd}
			expr = access
		case OPERATOR:
			if !p.peekOp("++", "--") {
				return expr, nil
			}
			op := p.peekText()
			p.Advance()
			post := &decl.PostfixExpression{Operand: expr, Operator: op}
			post.NodeInfo = decl.NodeInfo{StartPos: start, StopPos: p.lastTokenEnd}
			expr = post
		default:
			return expr, nil
		}
	}
}

// PrimaryExpr: IDENTIFIER | literal
func (p *LLParser) ParsePrimaryExpr() (decl.Expression, error) {
	tok := p.PeekToken()
	tv := p.peekedTokenValue
	switch tok {
	case IDENTIFIER:
		p.Advance()
		out := &decl.EntityReference{Target: &decl.Reference{NodeInfo: tv.NodeInfo, Name: tv.Text}}
		out.NodeInfo = tv.NodeInfo
		return out, nil
	case INT_LITERAL:
		return p.parseIntegerConstant()
	case FLOAT_LITERAL:
		if _, err := decl.ParseDecimal(tv.Text); err != nil {
			return nil, p.Errorf("%s", err.Error())
		}
		p.Advance()
		out := &decl.FloatConstant{Value: tv.Text}
		out.NodeInfo = tv.NodeInfo
		return out, nil
	case CHAR_LITERAL:
		p.Advance()
		out := &decl.CharacterConstant{Value: []rune(tv.Text)[0]}
		out.NodeInfo = tv.NodeInfo
		return out, nil
	case STRING_LITERAL:
		value, err := p.parseStringLiteral()
		if err != nil {
			return nil, err
		}
		out := &decl.StringConstant{Value: value}
		out.NodeInfo = decl.NodeInfo{StartPos: tv.StartPos, StopPos: p.lastTokenEnd}
		return out, nil
	case TRUE, FALSE:
		p.Advance()
		out := &decl.BoolConstant{Value: tok == TRUE}
		out.NodeInfo = tv.NodeInfo
		return out, nil
	}
	return nil, p.Errorf("expected an expression, found: %s", TokenString(tok))
}
