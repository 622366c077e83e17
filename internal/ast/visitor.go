package ast

// Visitor implements double dispatch over every node kind, mirroring the
// teacher's Accept(Visitor)/Visit* pattern so analyzer, compiler and
// evaluator each provide a single, exhaustive switch.
type Visitor interface {
	VisitProgram(p *Program)

	VisitWildcardPattern(w *WildcardPattern)
	VisitIdentifierPattern(i *IdentifierPattern)
	VisitLiteralPattern(l *LiteralPattern)
	VisitVariantPattern(vp *VariantPattern)

	VisitConstantDeclaration(cd *ConstantDeclaration)
	VisitMutableDeclaration(md *MutableDeclaration)
	VisitAssignStatement(as *AssignStatement)
	VisitFunctionDeclaration(fd *FunctionDeclaration)
	VisitShapeDeclaration(sd *ShapeDeclaration)
	VisitVariantDeclaration(vd *VariantDeclaration)
	VisitAspectDeclaration(ad *AspectDeclaration)
	VisitEmbodyDeclaration(ed *EmbodyDeclaration)

	VisitBlockStatement(bs *BlockStatement)
	VisitExpressionStatement(es *ExpressionStatement)
	VisitYieldStatement(ys *YieldStatement)
	VisitWhilstStatement(ws *WhilstStatement)
	VisitForStatement(fs *ForStatement)
	VisitSkipStatement(s *SkipStatement)
	VisitStopStatement(s *StopStatement)

	VisitIdentifier(i *Identifier)
	VisitNumberLiteral(n *NumberLiteral)
	VisitTextLiteral(t *TextLiteral)
	VisitTruthLiteral(b *TruthLiteral)
	VisitNothingLiteral(n *NothingLiteral)
	VisitListLiteral(l *ListLiteral)
	VisitMapLiteral(m *MapLiteral)
	VisitRangeLiteral(r *RangeLiteral)
	VisitPrefixExpression(p *PrefixExpression)
	VisitInfixExpression(i *InfixExpression)
	VisitIfExpression(ie *IfExpression)
	VisitMatchExpression(me *MatchExpression)
	VisitCallExpression(ce *CallExpression)
	VisitIndexExpression(ie *IndexExpression)
	VisitFieldAccessExpression(fa *FieldAccessExpression)
	VisitShapeLiteral(sl *ShapeLiteral)
	VisitFunctionLiteral(fl *FunctionLiteral)
	VisitTryExpression(te *TryExpression)

	VisitNamedType(n *NamedType)
	VisitParametrizedType(p *ParametrizedType)
	VisitListType(l *ListType)
	VisitMapType(m *MapType)
	VisitFunctionType(f *FunctionType)
	VisitOptionalType(o *OptionalType)
}

// BaseVisitor can be embedded to satisfy Visitor while overriding only the
// methods a particular walker cares about (e.g. a node counter).
type BaseVisitor struct{}

func (BaseVisitor) VisitProgram(p *Program)                             {}
func (BaseVisitor) VisitWildcardPattern(w *WildcardPattern)              {}
func (BaseVisitor) VisitIdentifierPattern(i *IdentifierPattern)          {}
func (BaseVisitor) VisitLiteralPattern(l *LiteralPattern)                {}
func (BaseVisitor) VisitVariantPattern(vp *VariantPattern)               {}
func (BaseVisitor) VisitConstantDeclaration(cd *ConstantDeclaration)     {}
func (BaseVisitor) VisitMutableDeclaration(md *MutableDeclaration)       {}
func (BaseVisitor) VisitAssignStatement(as *AssignStatement)             {}
func (BaseVisitor) VisitFunctionDeclaration(fd *FunctionDeclaration)     {}
func (BaseVisitor) VisitShapeDeclaration(sd *ShapeDeclaration)           {}
func (BaseVisitor) VisitVariantDeclaration(vd *VariantDeclaration)       {}
func (BaseVisitor) VisitAspectDeclaration(ad *AspectDeclaration)         {}
func (BaseVisitor) VisitEmbodyDeclaration(ed *EmbodyDeclaration)         {}
func (BaseVisitor) VisitBlockStatement(bs *BlockStatement)               {}
func (BaseVisitor) VisitExpressionStatement(es *ExpressionStatement)     {}
func (BaseVisitor) VisitYieldStatement(ys *YieldStatement)               {}
func (BaseVisitor) VisitWhilstStatement(ws *WhilstStatement)             {}
func (BaseVisitor) VisitForStatement(fs *ForStatement)                   {}
func (BaseVisitor) VisitSkipStatement(s *SkipStatement)                  {}
func (BaseVisitor) VisitStopStatement(s *StopStatement)                  {}
func (BaseVisitor) VisitIdentifier(i *Identifier)                        {}
func (BaseVisitor) VisitNumberLiteral(n *NumberLiteral)                  {}
func (BaseVisitor) VisitTextLiteral(t *TextLiteral)                      {}
func (BaseVisitor) VisitTruthLiteral(b *TruthLiteral)                    {}
func (BaseVisitor) VisitNothingLiteral(n *NothingLiteral)                {}
func (BaseVisitor) VisitListLiteral(l *ListLiteral)                      {}
func (BaseVisitor) VisitMapLiteral(m *MapLiteral)                        {}
func (BaseVisitor) VisitRangeLiteral(r *RangeLiteral)                    {}
func (BaseVisitor) VisitPrefixExpression(p *PrefixExpression)            {}
func (BaseVisitor) VisitInfixExpression(i *InfixExpression)              {}
func (BaseVisitor) VisitIfExpression(ie *IfExpression)                  {}
func (BaseVisitor) VisitMatchExpression(me *MatchExpression)             {}
func (BaseVisitor) VisitCallExpression(ce *CallExpression)               {}
func (BaseVisitor) VisitIndexExpression(ie *IndexExpression)             {}
func (BaseVisitor) VisitFieldAccessExpression(fa *FieldAccessExpression) {}
func (BaseVisitor) VisitShapeLiteral(sl *ShapeLiteral)                   {}
func (BaseVisitor) VisitFunctionLiteral(fl *FunctionLiteral)             {}
func (BaseVisitor) VisitTryExpression(te *TryExpression)                 {}
func (BaseVisitor) VisitNamedType(n *NamedType)                         {}
func (BaseVisitor) VisitParametrizedType(p *ParametrizedType)            {}
func (BaseVisitor) VisitListType(l *ListType)                           {}
func (BaseVisitor) VisitMapType(m *MapType)                             {}
func (BaseVisitor) VisitFunctionType(f *FunctionType)                   {}
func (BaseVisitor) VisitOptionalType(o *OptionalType)                   {}
