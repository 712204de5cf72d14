package pdfmodel

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// Parser walks a PDF file's byte stream and resolves the indirect object
// graph reachable from the trailer: header, xref chain, trailer, catalog,
// and any object fetched on demand via Resolve.
type Parser struct {
	reader   io.ReadSeeker
	lexer    *Lexer
	version  string
	xref     *XRefTable
	trailer  *Dict
	catalog  *Dict
	cache    map[ObjectID]Object
	fileSize int64
	mu       sync.Mutex // guards cache, reader and lexer during Resolve
}

func NewParser(reader io.ReadSeeker) *Parser {
	return &Parser{
		reader: reader,
		cache:  make(map[ObjectID]Object),
	}
}

// Parse reads the header, xref chain, trailer and catalog, in that order.
func (p *Parser) Parse() error {
	size, err := p.reader.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("pdfmodel: determine file size: %w", err)
	}
	p.fileSize = size

	if _, err := p.reader.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("pdfmodel: seek to start: %w", err)
	}

	if err := p.parseHeader(); err != nil {
		return fmt.Errorf("pdfmodel: header: %w", err)
	}
	if err := p.parseXRef(); err != nil {
		return fmt.Errorf("pdfmodel: xref: %w", err)
	}
	if err := p.loadCatalog(); err != nil {
		return fmt.Errorf("pdfmodel: catalog: %w", err)
	}
	return nil
}

func (p *Parser) parseHeader() error {
	scanner := bufio.NewScanner(p.reader)
	if !scanner.Scan() {
		return NewParseError("failed to read PDF header", 0)
	}
	line := scanner.Text()
	if !strings.HasPrefix(line, headerPattern) {
		return NewParseError("invalid PDF header", 0)
	}
	p.version = strings.TrimPrefix(line, headerPattern)
	if p.version == "" {
		p.version = defaultVersion
	}
	return nil
}

func (p *Parser) parseXRef() error {
	offset, err := p.findStartXRef()
	if err != nil {
		return err
	}
	p.xref = NewXRefTable(p.reader)
	if err := p.xref.Parse(offset); err != nil {
		return err
	}
	p.trailer = trailerToDict(p.xref.Trailer())
	return nil
}

// trailerToDict re-expresses the structural Trailer as a Dict so downstream
// code has one uniform way to read Root/Info/Encrypt.
func trailerToDict(t *Trailer) *Dict {
	d := NewDict()
	if t == nil {
		return d
	}
	if t.Root != nil {
		d.Set("Root", t.Root)
	}
	if t.Info != nil {
		d.Set("Info", t.Info)
	}
	if t.Encrypt != nil {
		d.Set("Encrypt", t.Encrypt)
	}
	d.Set("Size", &Number{Value: int64(t.Size)})
	return d
}

func (p *Parser) findStartXRef() (int64, error) {
	readSize := int64(2048)
	if readSize > p.fileSize {
		readSize = p.fileSize
	}
	startPos := p.fileSize - readSize

	if _, err := p.reader.Seek(startPos, io.SeekStart); err != nil {
		return 0, fmt.Errorf("seek to tail: %w", err)
	}
	data := make([]byte, readSize)
	if _, err := io.ReadFull(p.reader, data); err != nil {
		return 0, fmt.Errorf("read tail: %w", err)
	}

	content := string(data)
	idx := strings.LastIndex(content, kwStartXRef)
	if idx == -1 {
		return 0, NewParseError("startxref keyword not found", p.fileSize)
	}

	after := content[idx+len(kwStartXRef):]
	fields := strings.Fields(after)
	if len(fields) == 0 {
		return 0, NewParseError("missing offset after startxref", p.fileSize)
	}
	offset, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, NewParseError("invalid startxref offset", p.fileSize)
	}
	return offset, nil
}

func (p *Parser) loadCatalog() error {
	if p.trailer == nil {
		return NewParseError("trailer not parsed", 0)
	}
	rootObj := p.trailer.Get("Root")
	ref, ok := rootObj.(*IndirectRef)
	if !ok {
		return NewParseError("trailer Root must be an indirect reference", 0)
	}
	catalogObj, err := p.Resolve(ref)
	if err != nil {
		return fmt.Errorf("resolve catalog: %w", err)
	}
	catalog, ok := catalogObj.(*Dict)
	if !ok {
		return NewParseError("catalog is not a dictionary", 0)
	}
	p.catalog = catalog
	return nil
}

// Resolve dereferences obj if it is an indirect reference, otherwise
// returns it unchanged. Resolved objects are cached by ObjectID. Safe for
// concurrent use.
func (p *Parser) Resolve(obj Object) (Object, error) {
	ref, ok := obj.(*IndirectRef)
	if !ok {
		return obj, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if cached, ok := p.cache[ref.ObjectID]; ok {
		return cached, nil
	}

	entry := p.xref.Latest(int(ref.ObjectID.Number))
	if entry == nil || entry.Type != EntryInUse {
		p.cache[ref.ObjectID] = &Null{}
		return &Null{}, nil
	}

	if _, err := p.reader.Seek(entry.Offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to object %s: %w", ref.ObjectID, err)
	}
	p.lexer = NewLexer(p.reader)

	indirect, err := p.parseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("parse object %s: %w", ref.ObjectID, err)
	}
	p.cache[ref.ObjectID] = indirect.Object
	return indirect.Object, nil
}

func (p *Parser) parseIndirectObject() (*IndirectObject, error) {
	numTok, err := p.lexer.NextToken()
	if err != nil || numTok.Type != TokenNumber {
		return nil, NewParseError("expected object number", numTok.Pos)
	}
	objNum, err := strconv.ParseInt(numTok.Value, 10, 64)
	if err != nil {
		return nil, NewParseError("invalid object number", numTok.Pos)
	}

	genTok, err := p.lexer.NextToken()
	if err != nil || genTok.Type != TokenNumber {
		return nil, NewParseError("expected generation number", genTok.Pos)
	}
	generation, err := strconv.ParseInt(genTok.Value, 10, 64)
	if err != nil {
		return nil, NewParseError("invalid generation number", genTok.Pos)
	}

	objTok, err := p.lexer.NextToken()
	if err != nil || objTok.Type != TokenObjStart {
		return nil, NewParseError("expected 'obj' keyword", objTok.Pos)
	}

	obj, err := p.parseObject()
	if err != nil {
		return nil, fmt.Errorf("object body: %w", err)
	}

	endTok, err := p.lexer.NextToken()
	if err != nil || endTok.Type != TokenObjEnd {
		return nil, NewParseError("expected 'endobj' keyword", endTok.Pos)
	}

	return &IndirectObject{ID: ObjectID{Number: objNum, Generation: generation}, Object: obj}, nil
}

func (p *Parser) parseObject() (Object, error) {
	tok, err := p.lexer.NextToken()
	if err != nil {
		return nil, err
	}
	return p.objectFromToken(tok)
}

func (p *Parser) objectFromToken(tok Token) (Object, error) {
	switch tok.Type {
	case TokenKeyword:
		switch tok.Value {
		case "null":
			return &Null{}, nil
		case "true":
			return &Bool{Value: true}, nil
		case "false":
			return &Bool{Value: false}, nil
		default:
			return &Keyword{Value: tok.Value}, nil
		}
	case TokenNumber:
		return p.parseNumberOrRef(tok)
	case TokenString:
		return &String{Value: tok.Value}, nil
	case TokenHexString:
		return &String{Value: tok.Value, IsHex: true}, nil
	case TokenName:
		return &Name{Value: tok.Value}, nil
	case TokenArrayStart:
		return p.parseArray()
	case TokenDictStart:
		return p.parseDictionary()
	default:
		return nil, NewParseError(fmt.Sprintf("unexpected token type: %s", tok.Type), tok.Pos)
	}
}

func parseNumberLiteral(tok Token) (Object, error) {
	if strings.Contains(tok.Value, ".") {
		val, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, NewParseError("invalid real number", tok.Pos)
		}
		return &Number{Value: val}, nil
	}
	val, err := strconv.ParseInt(tok.Value, 10, 64)
	if err != nil {
		return nil, NewParseError("invalid integer", tok.Pos)
	}
	return &Number{Value: val}, nil
}

// parseNumberOrRef disambiguates "12" from "12 0 R" by lookahead: a number
// followed by a number followed by the keyword R is an indirect reference.
func (p *Parser) parseNumberOrRef(numTok Token) (Object, error) {
	num, err := parseNumberLiteral(numTok)
	if err != nil {
		return nil, err
	}

	pos, _ := p.reader.Seek(0, io.SeekCurrent)

	tok2, err := p.lexer.NextToken()
	if err != nil {
		return num, nil
	}
	if tok2.Type == TokenNumber {
		tok3, err := p.lexer.NextToken()
		if err == nil && tok3.Type == TokenIndirectRef {
			objNum := num.(*Number).Int()
			generation, _ := strconv.ParseInt(tok2.Value, 10, 64)
			return &IndirectRef{ObjectID: ObjectID{Number: objNum, Generation: generation}}, nil
		}
	}

	p.reader.Seek(pos, io.SeekStart)
	p.lexer = NewLexer(p.reader)
	return num, nil
}

func (p *Parser) parseArray() (Object, error) {
	arr := &Array{}
	for {
		tok, err := p.lexer.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == TokenArrayEnd {
			break
		}
		obj, err := p.objectFromTokenNoLookahead(tok)
		if err != nil {
			return nil, err
		}
		arr.Add(obj)
	}
	return arr, nil
}

// objectFromTokenNoLookahead converts a token already read by the array
// loop into an object. A number token still goes through parseNumberOrRef's
// lookahead, so "n g R" inside an array yields an IndirectRef.
func (p *Parser) objectFromTokenNoLookahead(tok Token) (Object, error) {
	if tok.Type == TokenNumber {
		return p.parseNumberOrRef(tok)
	}
	return p.objectFromToken(tok)
}

func (p *Parser) parseDictionary() (Object, error) {
	dict := NewDict()
	for {
		tok, err := p.lexer.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == TokenDictEnd {
			break
		}
		if tok.Type != TokenName {
			return nil, NewParseError("expected name for dictionary key", tok.Pos)
		}
		key := tok.Value

		value, err := p.parseObject()
		if err != nil {
			return nil, fmt.Errorf("dictionary value for key %s: %w", key, err)
		}
		dict.Set(key, value)
	}
	return p.checkForStream(dict)
}

func (p *Parser) checkForStream(dict *Dict) (Object, error) {
	currentPos, _ := p.reader.Seek(0, io.SeekCurrent)

	tok, err := p.lexer.NextToken()
	if err != nil || tok.Type != TokenStreamStart {
		p.reader.Seek(currentPos, io.SeekStart)
		p.lexer = NewLexer(p.reader)
		return dict, nil
	}

	length := dict.GetInt("Length")
	if length <= 0 {
		return nil, NewParseError("stream missing or invalid Length", tok.Pos)
	}

	bufReader := bufio.NewReader(p.reader)
	for {
		ch, err := bufReader.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("read after stream keyword: %w", err)
		}
		if ch == '\n' {
			break
		}
		if ch == '\r' {
			if next, err := bufReader.ReadByte(); err == nil && next != '\n' {
				bufReader.UnreadByte()
			}
			break
		}
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(bufReader, data); err != nil {
		return nil, fmt.Errorf("read stream data: %w", err)
	}

	p.lexer = NewLexer(bufReader)
	endTok, err := p.lexer.NextToken()
	if err != nil || endTok.Type != TokenStreamEnd {
		return nil, NewParseError("expected 'endstream'", endTok.Pos)
	}

	return &Stream{Dict: dict, Data: data, Length: length}, nil
}

func (p *Parser) Version() string   { return p.version }
func (p *Parser) Catalog() *Dict    { return p.catalog }
func (p *Parser) Trailer() *Dict    { return p.trailer }
func (p *Parser) XRef() *XRefTable  { return p.xref }
