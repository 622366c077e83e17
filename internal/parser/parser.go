// Package parser turns a token.Token stream into an internal/ast tree. It is
// a plain producer (spec §1's "external collaborator"): downstream stages
// consume only the resulting *ast.Program.
package parser

import (
	"fmt"

	"github.com/langweave/glyph/internal/ast"
	"github.com/langweave/glyph/internal/diagnostics"
	"github.com/langweave/glyph/internal/lexer"
	"github.com/langweave/glyph/internal/token"
)

const (
	_ int = iota
	precLowest
	precOr
	precAnd
	precEquals
	precCompare
	precSum
	precProduct
	precPrefix
	precPostfix
)

var precedences = map[token.Type]int{
	token.OR:      precOr,
	token.AND:     precAnd,
	token.EQ:      precEquals,
	token.NOT_EQ:  precEquals,
	token.LT:      precCompare,
	token.LE:      precCompare,
	token.GT:      precCompare,
	token.GE:      precCompare,
	token.PLUS:    precSum,
	token.MINUS:   precSum,
	token.STAR:    precProduct,
	token.SLASH:   precProduct,
	token.PERCENT: precProduct,
	token.DOT:     precPostfix,
	token.LPAREN:  precPostfix,
	token.LBRACKET: precPostfix,
	token.QUESTION: precPostfix,
}

// Parser is a token-list recursive-descent / Pratt parser.
type Parser struct {
	toks   []token.Token
	pos    int
	file   string
	Errors []*diagnostics.Diagnostic
}

// New tokenizes src and returns a Parser positioned at the first token.
func New(src, file string) *Parser {
	return &Parser{toks: lexer.All(src), file: file}
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos]
}

func (p *Parser) peek() token.Token {
	if p.pos+1 >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+1]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) curIs(t token.Type) bool { return p.cur().Type == t }

func (p *Parser) expect(t token.Type) (token.Token, bool) {
	if p.curIs(t) {
		return p.advance(), true
	}
	tok := p.cur()
	p.Errors = append(p.Errors, diagnostics.New("P001", tok, p.file,
		fmt.Sprintf("expected %s, got %s (%q)", t, tok.Type, tok.Lexeme)))
	return tok, false
}

func (p *Parser) errorf(tok token.Token, format string, args ...interface{}) {
	p.Errors = append(p.Errors, diagnostics.New("P000", tok, p.file, fmt.Sprintf(format, args...)))
}

// ParseProgram parses the whole token stream into a *ast.Program.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{File: p.file}
	for !p.curIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		} else {
			// Recover: skip the offending token so we keep collecting errors.
			p.advance()
		}
	}
	return prog
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur().Type {
	case token.BIND:
		return p.parseConstantDeclaration()
	case token.WEAVE:
		return p.parseMutableDeclaration()
	case token.CHANT:
		return p.parseFunctionDeclaration()
	case token.VARIANT:
		return p.parseVariantDeclaration()
	case token.ASPECT:
		return p.parseAspectDeclaration()
	case token.EMBODY:
		return p.parseEmbodyDeclaration()
	case token.WHILST:
		return p.parseWhilstStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.SKIP:
		return &ast.SkipStatement{Token: p.advance()}
	case token.STOP:
		return &ast.StopStatement{Token: p.advance()}
	case token.YIELD:
		return p.parseYieldStatement()
	case token.IDENT:
		if p.cur().Lexeme == "shape" {
			return p.parseShapeDeclaration()
		}
		if p.peek().Type == token.WALRUS {
			return p.parseAssignStatement()
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseConstantDeclaration() *ast.ConstantDeclaration {
	tok := p.advance() // 'bind'
	nameTok, _ := p.expect(token.IDENT)
	cd := &ast.ConstantDeclaration{Token: tok, Name: &ast.Identifier{Token: nameTok, Value: nameTok.Lexeme}}
	if p.curIs(token.COLON) {
		p.advance()
		cd.TypeAnnotation = p.parseTypeAnnotation()
	}
	p.expect(token.TO)
	cd.Value = p.parseExpression(precLowest)
	return cd
}

func (p *Parser) parseMutableDeclaration() *ast.MutableDeclaration {
	tok := p.advance() // 'weave'
	nameTok, _ := p.expect(token.IDENT)
	md := &ast.MutableDeclaration{Token: tok, Name: &ast.Identifier{Token: nameTok, Value: nameTok.Lexeme}}
	if p.curIs(token.COLON) {
		p.advance()
		md.TypeAnnotation = p.parseTypeAnnotation()
	}
	p.expect(token.TO)
	md.Value = p.parseExpression(precLowest)
	return md
}

func (p *Parser) parseAssignStatement() *ast.AssignStatement {
	nameTok := p.advance()
	as := &ast.AssignStatement{Token: nameTok, Name: &ast.Identifier{Token: nameTok, Value: nameTok.Lexeme}}
	p.expect(token.WALRUS)
	as.Value = p.parseExpression(precLowest)
	return as
}

func (p *Parser) parseYieldStatement() *ast.YieldStatement {
	tok := p.advance()
	ys := &ast.YieldStatement{Token: tok}
	if !p.curIs(token.END) && !p.curIs(token.OTHERWISE) && !p.curIs(token.WHEN) && !p.curIs(token.EOF) {
		ys.Value = p.parseExpression(precLowest)
	}
	return ys
}

// parseBlockUntil parses statements until the current token is one of `stop`.
func (p *Parser) parseBlockUntil(stop ...token.Type) *ast.BlockStatement {
	bs := &ast.BlockStatement{Token: p.cur()}
	isStop := func() bool {
		for _, s := range stop {
			if p.curIs(s) {
				return true
			}
		}
		return false
	}
	for !isStop() && !p.curIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt == nil {
			p.advance()
			continue
		}
		bs.Statements = append(bs.Statements, stmt)
	}
	return bs
}

func (p *Parser) parseFunctionDeclaration() *ast.FunctionDeclaration {
	tok := p.advance() // 'chant'
	nameTok, _ := p.expect(token.IDENT)
	fd := &ast.FunctionDeclaration{Token: tok, Name: &ast.Identifier{Token: nameTok, Value: nameTok.Lexeme}}
	fd.TypeParams = p.parseOptionalTypeParams()
	p.expect(token.LPAREN)
	fd.Params = p.parseParamList()
	p.expect(token.RPAREN)
	if p.curIs(token.ARROW) {
		p.advance()
		fd.ReturnType = p.parseTypeAnnotation()
	}
	p.advanceIfThen()
	fd.Body = p.parseBlockUntil(token.END)
	p.expect(token.END)
	return fd
}

// advanceIfThen consumes a `then` keyword spelled as IDENT (kept lightweight:
// the lexer does not reserve "then" so every block-introducer uses it as a
// plain identifier token).
func (p *Parser) advanceIfThen() {
	if p.cur().Type == token.IDENT && p.cur().Lexeme == "then" {
		p.advance()
	}
}

func (p *Parser) parseOptionalTypeParams() []*ast.Identifier {
	if !p.curIs(token.LT) {
		return nil
	}
	p.advance()
	var params []*ast.Identifier
	for !p.curIs(token.GT) && !p.curIs(token.EOF) {
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		idTok, _ := p.expect(token.IDENT)
		params = append(params, &ast.Identifier{Token: idTok, Value: idTok.Lexeme})
	}
	p.expect(token.GT)
	return params
}

func (p *Parser) parseParamList() []*ast.Param {
	var params []*ast.Param
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		nameTok, _ := p.expect(token.IDENT)
		param := &ast.Param{Name: &ast.Identifier{Token: nameTok, Value: nameTok.Lexeme}}
		if p.curIs(token.COLON) {
			p.advance()
			param.TypeAnnotation = p.parseTypeAnnotation()
		}
		params = append(params, param)
	}
	return params
}

func (p *Parser) parseShapeDeclaration() *ast.ShapeDeclaration {
	tok := p.advance() // 'shape'
	nameTok, _ := p.expect(token.IDENT)
	sd := &ast.ShapeDeclaration{Token: tok, Name: &ast.Identifier{Token: nameTok, Value: nameTok.Lexeme}}
	sd.TypeParams = p.parseOptionalTypeParams()
	p.advanceIfThen()
	for !p.curIs(token.END) && !p.curIs(token.EOF) {
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		fieldTok, _ := p.expect(token.IDENT)
		p.expect(token.COLON)
		fieldType := p.parseTypeAnnotation()
		sd.Fields = append(sd.Fields, &ast.ShapeField{
			Name:           &ast.Identifier{Token: fieldTok, Value: fieldTok.Lexeme},
			TypeAnnotation: fieldType,
		})
	}
	p.expect(token.END)
	return sd
}

func (p *Parser) parseVariantDeclaration() *ast.VariantDeclaration {
	tok := p.advance() // 'variant'
	nameTok, _ := p.expect(token.IDENT)
	vd := &ast.VariantDeclaration{Token: tok, Name: &ast.Identifier{Token: nameTok, Value: nameTok.Lexeme}}
	vd.TypeParams = p.parseOptionalTypeParams()
	p.advanceIfThen()
	for !p.curIs(token.END) && !p.curIs(token.EOF) {
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		caseTok, _ := p.expect(token.IDENT)
		vc := &ast.VariantCase{Name: &ast.Identifier{Token: caseTok, Value: caseTok.Lexeme}}
		if p.curIs(token.LPAREN) {
			p.advance()
			for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
				if p.curIs(token.COMMA) {
					p.advance()
					continue
				}
				fieldTok, _ := p.expect(token.IDENT)
				p.expect(token.COLON)
				ft := p.parseTypeAnnotation()
				vc.Fields = append(vc.Fields, &ast.ShapeField{
					Name:           &ast.Identifier{Token: fieldTok, Value: fieldTok.Lexeme},
					TypeAnnotation: ft,
				})
			}
			p.expect(token.RPAREN)
		}
		vd.Cases = append(vd.Cases, vc)
	}
	p.expect(token.END)
	return vd
}

func (p *Parser) parseAspectDeclaration() *ast.AspectDeclaration {
	tok := p.advance() // 'aspect'
	nameTok, _ := p.expect(token.IDENT)
	ad := &ast.AspectDeclaration{Token: tok, Name: &ast.Identifier{Token: nameTok, Value: nameTok.Lexeme}}
	if p.curIs(token.LPAREN) {
		p.advance()
		selfTok, _ := p.expect(token.IDENT)
		ad.Self = &ast.Identifier{Token: selfTok, Value: selfTok.Lexeme}
		p.expect(token.RPAREN)
	}
	p.advanceIfThen()
	for !p.curIs(token.END) && !p.curIs(token.EOF) {
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		methodTok, _ := p.expect(token.IDENT)
		m := &ast.AspectMethod{Name: &ast.Identifier{Token: methodTok, Value: methodTok.Lexeme}}
		p.expect(token.LPAREN)
		m.Params = p.parseParamList()
		p.expect(token.RPAREN)
		if p.curIs(token.ARROW) {
			p.advance()
			m.ReturnType = p.parseTypeAnnotation()
		}
		ad.Methods = append(ad.Methods, m)
	}
	p.expect(token.END)
	return ad
}

func (p *Parser) parseEmbodyDeclaration() *ast.EmbodyDeclaration {
	tok := p.advance() // 'embody'
	aspectTok, _ := p.expect(token.IDENT)
	ed := &ast.EmbodyDeclaration{Token: tok, AspectName: &ast.Identifier{Token: aspectTok, Value: aspectTok.Lexeme}}
	if p.curIs(token.FOR) {
		p.advance()
		ed.TargetType = p.parseTypeAnnotation()
	}
	p.advanceIfThen()
	for !p.curIs(token.END) && !p.curIs(token.EOF) {
		if p.curIs(token.CHANT) {
			ed.Methods = append(ed.Methods, p.parseFunctionDeclaration())
			continue
		}
		p.advance()
	}
	p.expect(token.END)
	return ed
}

func (p *Parser) parseWhilstStatement() *ast.WhilstStatement {
	tok := p.advance()
	ws := &ast.WhilstStatement{Token: tok}
	ws.Condition = p.parseExpression(precLowest)
	p.advanceIfThen()
	ws.Body = p.parseBlockUntil(token.END)
	p.expect(token.END)
	return ws
}

func (p *Parser) parseForStatement() *ast.ForStatement {
	tok := p.advance()
	nameTok, _ := p.expect(token.IDENT)
	fs := &ast.ForStatement{Token: tok, Name: &ast.Identifier{Token: nameTok, Value: nameTok.Lexeme}}
	p.expect(token.IN)
	fs.Iterable = p.parseExpression(precLowest)
	p.advanceIfThen()
	fs.Body = p.parseBlockUntil(token.END)
	p.expect(token.END)
	return fs
}

func (p *Parser) parseExpressionStatement() *ast.ExpressionStatement {
	tok := p.cur()
	expr := p.parseExpression(precLowest)
	return &ast.ExpressionStatement{Token: tok, Expression: expr}
}
