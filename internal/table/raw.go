package table

// Raw is the decoded-but-untyped form of a resource: a header and rows of
// string fields. Decoders guarantee every row has exactly len(Header) fields.
type Raw struct {
	Header []string
	Rows   [][]string
}
