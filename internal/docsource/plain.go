package docsource

import "context"

// PlainReader reads a file verbatim as UTF-8 text
type PlainReader struct{}

func (p *PlainReader) Extract(_ context.Context, path string) (string, error) {
	return readFile(path)
}
