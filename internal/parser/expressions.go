package parser

import (
	"strconv"

	"github.com/langweave/glyph/internal/ast"
	"github.com/langweave/glyph/internal/token"
)

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.cur().Type]; ok {
		return pr
	}
	return precLowest
}

// parseExpression is a standard Pratt parser: parse a prefix/primary
// expression, then fold in infix/postfix operators while their precedence
// exceeds minPrec.
func (p *Parser) parseExpression(minPrec int) ast.Expression {
	left := p.parsePrefix()
	for !p.curIs(token.EOF) && minPrec < p.peekPrecedence() {
		switch p.cur().Type {
		case token.LPAREN:
			left = p.parseCallExpression(left, nil)
		case token.LBRACKET:
			left = p.parseIndexExpression(left)
		case token.DOT:
			left = p.parseFieldAccess(left)
		case token.QUESTION:
			tok := p.advance()
			left = &ast.TryExpression{Token: tok, Value: left}
		default:
			left = p.parseInfixExpression(left)
		}
	}
	return left
}

func (p *Parser) parsePrefix() ast.Expression {
	tok := p.cur()
	switch tok.Type {
	case token.NUMBER:
		p.advance()
		v, _ := strconv.ParseFloat(tok.Lexeme, 64)
		return &ast.NumberLiteral{Token: tok, Value: v}
	case token.TEXT:
		p.advance()
		return &ast.TextLiteral{Token: tok, Value: tok.Lexeme}
	case token.TRUE:
		p.advance()
		return &ast.TruthLiteral{Token: tok, Value: true}
	case token.FALSE:
		p.advance()
		return &ast.TruthLiteral{Token: tok, Value: false}
	case token.NOTHING:
		p.advance()
		return &ast.NothingLiteral{Token: tok}
	case token.BANG, token.MINUS:
		p.advance()
		right := p.parseExpression(precPrefix)
		return &ast.PrefixExpression{Token: tok, Operator: tok.Lexeme, Right: right}
	case token.LPAREN:
		p.advance()
		expr := p.parseExpression(precLowest)
		p.expect(token.RPAREN)
		return expr
	case token.LBRACKET:
		return p.parseListLiteral()
	case token.LBRACE:
		return p.parseMapLiteral()
	case token.SHOULD:
		return p.parseIfExpression()
	case token.MATCH:
		return p.parseMatchExpression()
	case token.CHANT:
		return p.parseFunctionLiteral()
	case token.IDENT:
		return p.parseIdentOrShapeLiteral()
	default:
		p.errorf(tok, "unexpected token %s (%q) in expression", tok.Type, tok.Lexeme)
		p.advance()
		return &ast.NothingLiteral{Token: tok}
	}
}

func (p *Parser) parseIdentOrShapeLiteral() ast.Expression {
	tok := p.advance()
	ident := &ast.Identifier{Token: tok, Value: tok.Lexeme}
	if p.curIs(token.LBRACE) && startsUpper(tok.Lexeme) {
		return p.parseShapeLiteral(ident)
	}
	if p.curIs(token.LT) {
		if typeArgs, ok := p.tryParseGenericCallTypeArgs(); ok {
			return p.parseCallExpression(ident, typeArgs)
		}
	}
	var expr ast.Expression = ident
	if p.curIs(token.DOT) && p.peek().Type == token.DOT {
		// handled generically by infix '..' in range parsing below
	}
	return expr
}

func startsUpper(s string) bool {
	return len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z'
}

// tryParseGenericCallTypeArgs speculatively parses `<T, U>` as explicit
// call type arguments, backtracking if what follows isn't `(`.
func (p *Parser) tryParseGenericCallTypeArgs() ([]ast.TypeAnnotation, bool) {
	saved := p.pos
	savedErrs := len(p.Errors)
	p.advance() // consume '<'
	var args []ast.TypeAnnotation
	for !p.curIs(token.GT) && !p.curIs(token.EOF) {
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		args = append(args, p.parseTypeAnnotation())
	}
	if !p.curIs(token.GT) {
		p.pos = saved
		p.Errors = p.Errors[:savedErrs]
		return nil, false
	}
	p.advance() // consume '>'
	if !p.curIs(token.LPAREN) {
		p.pos = saved
		p.Errors = p.Errors[:savedErrs]
		return nil, false
	}
	return args, true
}

func (p *Parser) parseShapeLiteral(name *ast.Identifier) ast.Expression {
	tok := p.advance() // '{'
	sl := &ast.ShapeLiteral{Token: tok, Name: name}
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		fieldTok, _ := p.expect(token.IDENT)
		p.expect(token.COLON)
		val := p.parseExpression(precLowest)
		sl.Entries = append(sl.Entries, ast.MapEntry{
			Key:   &ast.Identifier{Token: fieldTok, Value: fieldTok.Lexeme},
			Value: val,
		})
	}
	p.expect(token.RBRACE)
	return sl
}

func (p *Parser) parseListLiteral() ast.Expression {
	tok := p.advance() // '['
	ll := &ast.ListLiteral{Token: tok}
	for !p.curIs(token.RBRACKET) && !p.curIs(token.EOF) {
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		ll.Elements = append(ll.Elements, p.parseExpression(precLowest))
	}
	p.expect(token.RBRACKET)
	return ll
}

func (p *Parser) parseMapLiteral() ast.Expression {
	tok := p.advance() // '{'
	ml := &ast.MapLiteral{Token: tok}
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		key := p.parseExpression(precLowest)
		p.expect(token.COLON)
		val := p.parseExpression(precLowest)
		ml.Entries = append(ml.Entries, ast.MapEntry{Key: key, Value: val})
	}
	p.expect(token.RBRACE)
	return ml
}

func (p *Parser) parseIfExpression() ast.Expression {
	tok := p.advance() // 'should'
	ie := &ast.IfExpression{Token: tok}
	ie.Condition = p.parseExpression(precLowest)
	p.advanceIfThen()
	ie.Consequence = p.parseBlockUntil(token.OTHERWISE, token.END)
	if p.curIs(token.OTHERWISE) {
		p.advance()
		ie.Alternative = p.parseBlockUntil(token.END)
	}
	p.expect(token.END)
	return ie
}

func (p *Parser) parseMatchExpression() ast.Expression {
	tok := p.advance() // 'match'
	me := &ast.MatchExpression{Token: tok}
	me.Subject = p.parseExpression(precLowest)
	if p.curIs(token.IDENT) && p.cur().Lexeme == "with" {
		p.advance()
	}
	for p.curIs(token.WHEN) {
		p.advance()
		pat := p.parsePattern()
		p.advanceIfThen()
		body := p.parseBlockUntil(token.WHEN, token.OTHERWISE, token.END)
		me.Arms = append(me.Arms, &ast.MatchArm{Pattern: pat, Body: body})
	}
	if p.curIs(token.OTHERWISE) {
		p.advance()
		p.advanceIfThen()
		body := p.parseBlockUntil(token.END)
		me.Arms = append(me.Arms, &ast.MatchArm{IsOtherwise: true, Body: body})
	}
	p.expect(token.END)
	return me
}

func (p *Parser) parsePattern() ast.Pattern {
	tok := p.cur()
	switch tok.Type {
	case token.IDENT:
		if tok.Lexeme == "_" {
			p.advance()
			return &ast.WildcardPattern{Token: tok}
		}
		p.advance()
		if p.curIs(token.LPAREN) && startsUpper(tok.Lexeme) {
			p.advance()
			vp := &ast.VariantPattern{Token: tok, Constructor: tok.Lexeme}
			for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
				if p.curIs(token.COMMA) {
					p.advance()
					continue
				}
				vp.Fields = append(vp.Fields, p.parsePattern())
			}
			p.expect(token.RPAREN)
			return vp
		}
		if startsUpper(tok.Lexeme) {
			return &ast.VariantPattern{Token: tok, Constructor: tok.Lexeme}
		}
		return &ast.IdentifierPattern{Token: tok, Name: tok.Lexeme}
	case token.NUMBER, token.TEXT, token.TRUE, token.FALSE:
		val := p.parsePrefix()
		return &ast.LiteralPattern{Token: tok, Value: val}
	default:
		p.errorf(tok, "unexpected token %s in pattern", tok.Type)
		p.advance()
		return &ast.WildcardPattern{Token: tok}
	}
}

func (p *Parser) parseFunctionLiteral() ast.Expression {
	tok := p.advance() // 'chant'
	fl := &ast.FunctionLiteral{Token: tok}
	p.expect(token.LPAREN)
	fl.Params = p.parseParamList()
	p.expect(token.RPAREN)
	if p.curIs(token.ARROW) {
		p.advance()
		fl.ReturnType = p.parseTypeAnnotation()
	}
	p.advanceIfThen()
	fl.Body = p.parseBlockUntil(token.END)
	p.expect(token.END)
	return fl
}

func (p *Parser) parseCallExpression(callee ast.Expression, typeArgs []ast.TypeAnnotation) ast.Expression {
	tok := p.advance() // '('
	ce := &ast.CallExpression{Token: tok, Callee: callee, TypeArgs: typeArgs}
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		ce.Arguments = append(ce.Arguments, p.parseExpression(precLowest))
	}
	p.expect(token.RPAREN)
	return ce
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	tok := p.advance() // '['
	// Range literal: a[..] syntax not used; ranges are `start .. end` at
	// expression level via the '..' lexeme, tokenized as two DOTs.
	idx := p.parseExpression(precLowest)
	ie := &ast.IndexExpression{Token: tok, Left: left, Index: idx}
	p.expect(token.RBRACKET)
	return ie
}

func (p *Parser) parseFieldAccess(left ast.Expression) ast.Expression {
	tok := p.advance() // '.'
	if p.curIs(token.DOT) {
		// '..' range operator
		p.advance()
		end := p.parseExpression(precSum)
		return &ast.RangeLiteral{Token: tok, Start: left, End: end}
	}
	fieldTok, _ := p.expect(token.IDENT)
	return &ast.FieldAccessExpression{Token: tok, Left: left, Field: fieldTok.Lexeme}
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	tok := p.advance()
	prec := precedences[tok.Type]
	right := p.parseExpression(prec)
	return &ast.InfixExpression{Token: tok, Left: left, Operator: tok.Lexeme, Right: right}
}
