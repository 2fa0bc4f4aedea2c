// pkg/sql/parser/parser.go
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"csvql/pkg/sql/lexer"
)

// Parser is a recursive descent SQL parser
type Parser struct {
	lexer *lexer.Lexer
	cur   lexer.Token
	peek  lexer.Token
}

// New creates a new Parser for the given SQL input
func New(input string) *Parser {
	p := &Parser{lexer: lexer.New(input)}
	// Read two tokens to initialize cur and peek
	p.nextToken()
	p.nextToken()
	return p
}

// nextToken advances to the next token
func (p *Parser) nextToken() {
	p.cur = p.peek
	p.peek = p.lexer.NextToken()
}

// peekIs returns true if the peek token has the given type
func (p *Parser) peekIs(t lexer.TokenType) bool {
	return p.peek.Type == t
}

// expectPeek advances when the peek token has the given type
func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if !p.peekIs(t) {
		return false
	}
	p.nextToken()
	return true
}

// Parse parses the input and returns a Statement
func (p *Parser) Parse() (Statement, error) {
	var stmt Statement
	var err error

	switch p.cur.Type {
	case lexer.SELECT:
		stmt, err = p.parseSelect()
	case lexer.INSERT:
		stmt, err = p.parseInsert()
	case lexer.UPDATE:
		stmt, err = p.parseUpdate()
	case lexer.DELETE:
		stmt, err = p.parseDelete()
	default:
		return nil, fmt.Errorf("unexpected token at start of statement: %s", p.cur.Literal)
	}
	if err != nil {
		return nil, err
	}

	if err := p.expectEnd(); err != nil {
		return nil, err
	}
	return stmt, nil
}

// expectEnd accepts an optional trailing semicolon and requires EOF after it
func (p *Parser) expectEnd() error {
	if p.peekIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	if !p.peekIs(lexer.EOF) {
		return fmt.Errorf("unexpected token after statement: %s", p.peek.Literal)
	}
	return nil
}

// parseSelect parses:
//
//	SELECT fields FROM table [JOIN t2 (ON cond | USING (col))]
//	    [WHERE cond] [ORDER BY field asc|desc] [LIMIT n]
func (p *Parser) parseSelect() (*SelectStmt, error) {
	stmt := &SelectStmt{}

	fields, err := p.parseSelectFields()
	if err != nil {
		return nil, err
	}
	stmt.Fields = fields

	// FROM table
	if !p.expectPeek(lexer.FROM) {
		return nil, fmt.Errorf("expected FROM, got %s", p.peek.Literal)
	}
	if !p.expectPeek(lexer.IDENT) {
		return nil, fmt.Errorf("expected table name after FROM, got %s", p.peek.Literal)
	}
	stmt.Table = strings.ToLower(p.cur.Literal)

	// Optional JOIN
	if p.peekIs(lexer.JOIN) {
		p.nextToken() // JOIN
		join, err := p.parseJoin(stmt.Table)
		if err != nil {
			return nil, err
		}
		stmt.Join = join
	}

	// Optional WHERE
	if p.peekIs(lexer.WHERE) {
		p.nextToken() // WHERE
		p.nextToken() // move to condition start
		cond, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		stmt.Where = cond
	}

	// Optional ORDER BY, direction required
	if p.peekIs(lexer.ORDER) {
		p.nextToken() // ORDER
		if !p.expectPeek(lexer.BY) {
			return nil, fmt.Errorf("expected BY after ORDER, got %s", p.peek.Literal)
		}
		if !p.expectPeek(lexer.IDENT) {
			return nil, fmt.Errorf("expected column name after ORDER BY, got %s", p.peek.Literal)
		}
		field, err := p.parseQualifiedName()
		if err != nil {
			return nil, err
		}
		orderBy := &OrderBy{Field: field}
		switch {
		case p.peekIs(lexer.ASC):
			p.nextToken()
		case p.peekIs(lexer.DESC):
			p.nextToken()
			orderBy.Desc = true
		default:
			return nil, fmt.Errorf("expected ASC or DESC in ORDER BY, got %s", p.peek.Literal)
		}
		stmt.OrderBy = orderBy
	}

	// Optional LIMIT; an integer literal, possibly signed. The validator
	// rejects negative limits.
	if p.peekIs(lexer.LIMIT) {
		p.nextToken() // LIMIT
		negative := false
		if p.peekIs(lexer.MINUS) {
			p.nextToken()
			negative = true
		}
		if !p.expectPeek(lexer.INT) {
			return nil, fmt.Errorf("expected integer after LIMIT, got %s", p.peek.Literal)
		}
		n, err := strconv.Atoi(p.cur.Literal)
		if err != nil {
			return nil, fmt.Errorf("invalid limit: %s", p.cur.Literal)
		}
		if negative {
			n = -n
		}
		stmt.Limit = &n
	}

	return stmt, nil
}

// parseSelectFields parses "*" or a comma-separated list of (possibly
// qualified) column names. The current token is SELECT on entry.
func (p *Parser) parseSelectFields() ([]string, error) {
	if p.peekIs(lexer.STAR) {
		p.nextToken()
		return []string{"*"}, nil
	}

	var fields []string
	for {
		if !p.expectPeek(lexer.IDENT) {
			return nil, fmt.Errorf("expected column name, got %s", p.peek.Literal)
		}
		name, err := p.parseQualifiedName()
		if err != nil {
			return nil, err
		}
		fields = append(fields, name)

		if p.peekIs(lexer.COMMA) {
			p.nextToken() // consume ,
		} else {
			break
		}
	}
	return fields, nil
}

// parseJoin parses: table (ON cond | USING (col)). The current token is JOIN
// on entry. USING (c) desugars to the equality t1.c = t2.c.
func (p *Parser) parseJoin(leftTable string) (*JoinClause, error) {
	if !p.expectPeek(lexer.IDENT) {
		return nil, fmt.Errorf("expected table name after JOIN, got %s", p.peek.Literal)
	}
	join := &JoinClause{Table: strings.ToLower(p.cur.Literal)}

	switch {
	case p.peekIs(lexer.ON):
		p.nextToken() // ON
		p.nextToken() // move to condition start
		cond, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		join.On = cond
	case p.peekIs(lexer.USING):
		p.nextToken() // USING
		if !p.expectPeek(lexer.LPAREN) {
			return nil, fmt.Errorf("expected '(' after USING, got %s", p.peek.Literal)
		}
		if !p.expectPeek(lexer.IDENT) {
			return nil, fmt.Errorf("expected column name in USING, got %s", p.peek.Literal)
		}
		col := strings.ToLower(p.cur.Literal)
		if !p.expectPeek(lexer.RPAREN) {
			return nil, fmt.Errorf("expected ')', got %s", p.peek.Literal)
		}
		join.On = &Comparison{
			Left:  Operand{Text: leftTable + "." + col},
			Op:    Eq,
			Right: Operand{Text: join.Table + "." + col},
		}
	default:
		return nil, fmt.Errorf("expected ON or USING after join table, got %s", p.peek.Literal)
	}

	return join, nil
}

// parseCondition parses a predicate: one comparison, optionally joined to a
// second by AND or OR. More than two comparisons is an error.
func (p *Parser) parseCondition() (Condition, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}

	if !p.peekIs(lexer.AND) && !p.peekIs(lexer.OR) {
		return left, nil
	}

	p.nextToken()
	op := And
	if p.cur.Type == lexer.OR {
		op = Or
	}

	p.nextToken()
	right, err := p.parseComparison()
	if err != nil {
		return nil, err
	}

	if p.peekIs(lexer.AND) || p.peekIs(lexer.OR) {
		return nil, fmt.Errorf("only two conditions are supported in a predicate")
	}

	return &Logical{Op: op, Left: left, Right: right}, nil
}

// parseComparison parses: operand op operand. The current token is the start
// of the left operand on entry.
func (p *Parser) parseComparison() (*Comparison, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	p.nextToken()
	var op CompareOp
	switch p.cur.Type {
	case lexer.EQ:
		op = Eq
	case lexer.NEQ:
		op = Ne
	case lexer.LT:
		op = Lt
	case lexer.LTE:
		op = Le
	case lexer.GT:
		op = Gt
	case lexer.GTE:
		op = Ge
	default:
		return nil, fmt.Errorf("expected comparison operator, got %s", p.cur.Literal)
	}

	p.nextToken()
	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	return &Comparison{Left: left, Op: op, Right: right}, nil
}

// parseOperand parses one side of a comparison or one VALUES entry: a
// (possibly qualified) identifier, a quoted string, or a numeric literal.
func (p *Parser) parseOperand() (Operand, error) {
	switch p.cur.Type {
	case lexer.IDENT:
		name, err := p.parseQualifiedName()
		if err != nil {
			return Operand{}, err
		}
		return Operand{Text: name}, nil
	case lexer.STRING:
		return Operand{Text: p.cur.Literal, Quoted: true}, nil
	case lexer.INT, lexer.FLOAT:
		return Operand{Text: p.cur.Literal}, nil
	case lexer.MINUS:
		if !p.peekIs(lexer.INT) && !p.peekIs(lexer.FLOAT) {
			return Operand{}, fmt.Errorf("expected number after '-', got %s", p.peek.Literal)
		}
		p.nextToken()
		return Operand{Text: "-" + p.cur.Literal}, nil
	case lexer.ILLEGAL:
		return Operand{}, fmt.Errorf("%s", p.cur.Literal)
	default:
		return Operand{}, fmt.Errorf("unexpected token in expression: %s", p.cur.Literal)
	}
}

// parseQualifiedName reads the current IDENT, consuming a following
// ".column" if present. Identifiers are lowercased.
func (p *Parser) parseQualifiedName() (string, error) {
	name := strings.ToLower(p.cur.Literal)
	if p.peekIs(lexer.DOT) {
		p.nextToken() // .
		if !p.expectPeek(lexer.IDENT) {
			return "", fmt.Errorf("expected column name after '.', got %s", p.peek.Literal)
		}
		name = name + "." + strings.ToLower(p.cur.Literal)
	}
	return name, nil
}

// parseInsert parses: INSERT INTO table (fields) VALUES (values)
func (p *Parser) parseInsert() (*InsertStmt, error) {
	stmt := &InsertStmt{}

	if !p.expectPeek(lexer.INTO) {
		return nil, fmt.Errorf("expected INTO, got %s", p.peek.Literal)
	}
	if !p.expectPeek(lexer.IDENT) {
		return nil, fmt.Errorf("expected table name, got %s", p.peek.Literal)
	}
	stmt.Table = strings.ToLower(p.cur.Literal)

	// (fields)
	if !p.expectPeek(lexer.LPAREN) {
		return nil, fmt.Errorf("expected '(', got %s", p.peek.Literal)
	}
	fields, err := p.parseIdentList()
	if err != nil {
		return nil, err
	}
	stmt.Fields = fields
	if !p.expectPeek(lexer.RPAREN) {
		return nil, fmt.Errorf("expected ')', got %s", p.peek.Literal)
	}

	// VALUES (values)
	if !p.expectPeek(lexer.VALUES) {
		return nil, fmt.Errorf("expected VALUES, got %s", p.peek.Literal)
	}
	if !p.expectPeek(lexer.LPAREN) {
		return nil, fmt.Errorf("expected '(', got %s", p.peek.Literal)
	}
	values, err := p.parseOperandList()
	if err != nil {
		return nil, err
	}
	stmt.Values = values
	if !p.expectPeek(lexer.RPAREN) {
		return nil, fmt.Errorf("expected ')', got %s", p.peek.Literal)
	}

	return stmt, nil
}

// parseIdentList parses: ident [, ident ...]
func (p *Parser) parseIdentList() ([]string, error) {
	var idents []string
	for {
		if !p.expectPeek(lexer.IDENT) {
			return nil, fmt.Errorf("expected column name, got %s", p.peek.Literal)
		}
		idents = append(idents, strings.ToLower(p.cur.Literal))

		if p.peekIs(lexer.COMMA) {
			p.nextToken() // consume ,
		} else {
			break
		}
	}
	return idents, nil
}

// parseOperandList parses: operand [, operand ...]
func (p *Parser) parseOperandList() ([]Operand, error) {
	var operands []Operand
	for {
		p.nextToken()
		op, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		operands = append(operands, op)

		if p.peekIs(lexer.COMMA) {
			p.nextToken() // consume ,
		} else {
			break
		}
	}
	return operands, nil
}

// parseUpdate parses: UPDATE table SET col=val, ... [WHERE cond]
func (p *Parser) parseUpdate() (*UpdateStmt, error) {
	stmt := &UpdateStmt{}

	if !p.expectPeek(lexer.IDENT) {
		return nil, fmt.Errorf("expected table name after UPDATE, got %s", p.peek.Literal)
	}
	stmt.Table = strings.ToLower(p.cur.Literal)

	if !p.expectPeek(lexer.SET) {
		return nil, fmt.Errorf("expected SET, got %s", p.peek.Literal)
	}

	for {
		if !p.expectPeek(lexer.IDENT) {
			return nil, fmt.Errorf("expected column name, got %s", p.peek.Literal)
		}
		column := strings.ToLower(p.cur.Literal)

		if !p.expectPeek(lexer.EQ) {
			return nil, fmt.Errorf("expected '=' after column name, got %s", p.peek.Literal)
		}

		p.nextToken()
		value, err := p.parseOperand()
		if err != nil {
			return nil, err
		}

		stmt.Assignments = append(stmt.Assignments, Assignment{Column: column, Value: value})

		if !p.peekIs(lexer.COMMA) {
			break
		}
		p.nextToken() // consume comma
	}

	if p.peekIs(lexer.WHERE) {
		p.nextToken() // WHERE
		p.nextToken() // move to condition start
		cond, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		stmt.Where = cond
	}

	return stmt, nil
}

// parseDelete parses: DELETE FROM table [WHERE cond]
func (p *Parser) parseDelete() (*DeleteStmt, error) {
	stmt := &DeleteStmt{}

	if !p.expectPeek(lexer.FROM) {
		return nil, fmt.Errorf("expected FROM after DELETE, got %s", p.peek.Literal)
	}
	if !p.expectPeek(lexer.IDENT) {
		return nil, fmt.Errorf("expected table name after FROM, got %s", p.peek.Literal)
	}
	stmt.Table = strings.ToLower(p.cur.Literal)

	if p.peekIs(lexer.WHERE) {
		p.nextToken() // WHERE
		p.nextToken() // move to condition start
		cond, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		stmt.Where = cond
	}

	return stmt, nil
}
