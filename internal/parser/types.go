package parser

import (
	"github.com/langweave/glyph/internal/ast"
	"github.com/langweave/glyph/internal/token"
)

// parseTypeAnnotation implements the annotation grammar from spec §4.1:
// Named, Generic-name, Parametrized{name,args}, List(inner), Map, Function,
// Optional.
func (p *Parser) parseTypeAnnotation() ast.TypeAnnotation {
	var base ast.TypeAnnotation
	switch p.cur().Type {
	case token.LBRACKET:
		tok := p.advance()
		inner := p.parseTypeAnnotation()
		p.expect(token.RBRACKET)
		base = &ast.ListType{Token: tok, Inner: inner}
	case token.LBRACE:
		tok := p.advance()
		key := p.parseTypeAnnotation()
		p.expect(token.COLON)
		val := p.parseTypeAnnotation()
		p.expect(token.RBRACE)
		base = &ast.MapType{Token: tok, Key: key, Value: val}
	case token.LPAREN:
		tok := p.advance()
		ft := &ast.FunctionType{Token: tok}
		for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
			if p.curIs(token.COMMA) {
				p.advance()
				continue
			}
			ft.Params = append(ft.Params, p.parseTypeAnnotation())
		}
		p.expect(token.RPAREN)
		p.expect(token.ARROW)
		ft.Return = p.parseTypeAnnotation()
		base = ft
	case token.IDENT:
		tok := p.advance()
		if p.curIs(token.LT) {
			p.advance()
			pt := &ast.ParametrizedType{Token: tok, Name: tok.Lexeme}
			for !p.curIs(token.GT) && !p.curIs(token.EOF) {
				if p.curIs(token.COMMA) {
					p.advance()
					continue
				}
				pt.Args = append(pt.Args, p.parseTypeAnnotation())
			}
			p.expect(token.GT)
			base = pt
		} else {
			base = &ast.NamedType{Token: tok, Name: tok.Lexeme}
		}
	default:
		tok := p.cur()
		p.errorf(tok, "expected a type annotation, got %s", tok.Type)
		p.advance()
		base = &ast.NamedType{Token: tok, Name: "Unknown"}
	}

	if p.curIs(token.QUESTION) {
		tok := p.advance()
		base = &ast.OptionalType{Token: tok, Inner: base}
	}
	return base
}
