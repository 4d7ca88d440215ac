package permission

//go:generate go run github.com/dmarkham/enumer -type NodeKind -trimprefix Kind -transform lower -json -text -yaml -output kind.gen.go

// NodeKind is the level of a node in the hierarchy.
type NodeKind int

const (
	KindDatabase NodeKind = iota
	KindTable
	KindField
)
