package tabular

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	blocks := []Block{
		{
			Name:   "requirements",
			Fields: []string{"id", "name", "description", "priority", "weight", "active"},
			Rows: []Record{
				{"id": "REQ-1", "name": "User login", "description": "Users authenticate with email, password", "priority": "high", "weight": 3, "active": true},
				{"id": "REQ-2", "name": `The "fast" path`, "description": "Response within 2s", "priority": "medium", "weight": 1.5, "active": false},
				{"id": "REQ-3", "name": "Numeric-looking name", "description": "42", "priority": "", "weight": 0, "active": true},
			},
		},
		{
			Name:   "roles",
			Fields: []string{"name", "description"},
			Rows: []Record{
				{"name": "Admin", "description": "Manages users, roles, and permissions"},
				{"name": "Guest", "description": ""},
			},
		},
	}

	doc := Decode(Encode(blocks))
	require.Empty(t, doc.Warnings)
	require.Len(t, doc.Blocks, 2)
	assert.Equal(t, blocks[0].Rows, doc.Blocks[0].Rows)
	assert.Equal(t, blocks[1].Rows, doc.Blocks[1].Rows)
	assert.Equal(t, blocks[0].Fields, doc.Blocks[0].Fields)
}

func TestRoundTrip_AwkwardValues(t *testing.T) {
	rows := []Record{
		{"v": `comma, quote " and
newline`},
		{"v": "  padded  "},
		{"v": "true"},
		{"v": "3.14"},
		{"v": "007"},
		{"v": ""},
	}
	blocks := []Block{{Name: "vals", Fields: []string{"v"}, Rows: rows}}

	doc := Decode(Encode(blocks))
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, rows, doc.Blocks[0].Rows)
}

func TestDecode_Coercion(t *testing.T) {
	doc := Decode("items[1]{count,score,flag,label}:\n  42,9.5,true,backlog\n")
	require.Len(t, doc.Blocks, 1)
	require.Len(t, doc.Blocks[0].Rows, 1)
	row := doc.Blocks[0].Rows[0]
	assert.Equal(t, 42, row["count"])
	assert.Equal(t, 9.5, row["score"])
	assert.Equal(t, true, row["flag"])
	assert.Equal(t, "backlog", row["label"])
}

func TestDecode_QuotedValuesStayStrings(t *testing.T) {
	doc := Decode("items[1]{a,b}:\n  \"42\",\"true\"\n")
	row := doc.Blocks[0].Rows[0]
	assert.Equal(t, "42", row["a"])
	assert.Equal(t, "true", row["b"])
}

func TestDecode_LenientOnChatter(t *testing.T) {
	text := "Here is the extraction you asked for:\n\n" +
		"requirements[2]{id,name}:\n" +
		"  REQ-1,Login\n" +
		"  REQ-2,Logout\n" +
		"Let me know if you need anything else!\n"

	doc := Decode(text)
	blk := doc.Block("requirements")
	require.NotNil(t, blk)
	assert.Len(t, blk.Rows, 2)
	assert.NotEmpty(t, doc.Warnings)
}

func TestDecode_ArityMismatch(t *testing.T) {
	doc := Decode("requirements[1]{id,name,priority}:\n  REQ-1,Login\n")
	blk := doc.Block("requirements")
	require.NotNil(t, blk)
	require.Len(t, blk.Rows, 1)
	assert.Equal(t, "REQ-1", blk.Rows[0]["id"])
	assert.Equal(t, "Login", blk.Rows[0]["name"])
	assert.Equal(t, "", blk.Rows[0]["priority"])
	assert.NotEmpty(t, doc.Warnings)
}

func TestDecode_DeclaredCountMismatchWarns(t *testing.T) {
	doc := Decode("requirements[5]{id}:\n  REQ-1\n")
	require.Len(t, doc.Blocks, 1)
	assert.Len(t, doc.Blocks[0].Rows, 1)
	require.NotEmpty(t, doc.Warnings)
	assert.Contains(t, doc.Warnings[0], "declared 5 rows")
}

func TestDecode_GarbageYieldsEmptyDocument(t *testing.T) {
	doc := Decode("I could not find any requirements in this text, sorry.")
	assert.Empty(t, doc.Blocks)
	assert.NotEmpty(t, doc.Warnings)
}

func TestDecode_MultipleBlocks(t *testing.T) {
	text := strings.Join([]string{
		"requirements[1]{id,name}:",
		"  REQ-1,Login",
		"relationships[1]{source,target,type}:",
		"  REQ-1,REQ-2,DEPENDS_ON",
		"",
	}, "\n")
	doc := Decode(text)
	require.Len(t, doc.Blocks, 2)
	assert.Equal(t, "requirements", doc.Blocks[0].Name)
	assert.Equal(t, "relationships", doc.Blocks[1].Name)
	assert.Equal(t, "DEPENDS_ON", doc.Blocks[1].Rows[0]["type"])
}

func TestEncode_NeedsQuoting(t *testing.T) {
	assert.False(t, needsQuoting("plain text"))
	assert.False(t, needsQuoting(""))
	assert.True(t, needsQuoting("a,b"))
	assert.True(t, needsQuoting(`say "hi"`))
	assert.True(t, needsQuoting(" padded"))
	assert.True(t, needsQuoting("42"))
	assert.True(t, needsQuoting("1.5"))
	assert.True(t, needsQuoting("false"))
}
