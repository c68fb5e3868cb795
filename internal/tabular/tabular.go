// Package tabular implements the compact block notation used to exchange
// structured records with the language model. A block declares its record
// count and field list, followed by indented comma-separated rows:
//
//	requirements[2]{id,name,priority}:
//	  REQ-1,User login,high
//	  REQ-2,"Session timeout, configurable",medium
//
// Values containing the delimiter or quote character are quoted with
// quote-doubling. Unquoted scalars coerce to int, float or bool on decode;
// quoted values always stay strings, which is what makes the round trip
// exact for numeric-looking text.
package tabular

// Record holds one row's values keyed by field name
type Record map[string]any

// Block is one named record set
type Block struct {
	Name   string
	Fields []string
	Rows   []Record
}

// Document is the decoded form of a tabular payload. Decoding is lenient:
// anything malformed is skipped and described in Warnings rather than
// failing the whole payload.
type Document struct {
	Blocks   []Block
	Warnings []string
}

// Block returns the named block, or nil
func (d *Document) Block(name string) *Block {
	for i := range d.Blocks {
		if d.Blocks[i].Name == name {
			return &d.Blocks[i]
		}
	}
	return nil
}
