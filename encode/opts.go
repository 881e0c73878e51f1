package encode

type EncodeOption func(*EncState)

// EncodeColors colors the output with c.
func EncodeColors(c *Colors) EncodeOption {
	return func(es *EncState) { es.Color = c.Color }
}

// Indent sets the number of spaces per level, 2 by default.
func Indent(n int) EncodeOption {
	return func(es *EncState) { es.indent = n }
}

// MaxDepth elides containers nested deeper than n levels. Zero, the
// default, prints everything.
func MaxDepth(n int) EncodeOption {
	return func(es *EncState) { es.maxDepth = n }
}

// BlockElems limits how many block elements are printed, 8 by default.
// A negative n prints all of them.
func BlockElems(n int) EncodeOption {
	return func(es *EncState) { es.blockElems = n }
}
