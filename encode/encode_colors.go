package encode

import (
	"strings"

	"github.com/fatih/color"
)

// Type classifies what is being printed for coloring.
type Type int

const (
	EmptyType Type = iota
	BoolType
	NumberType
	StringType
	VectorType
	BlockType
	ReferenceType
	ObjectType
	ArrayType
	ExtensionType
)

func Types() []Type {
	return []Type{EmptyType, BoolType, NumberType, StringType, VectorType,
		BlockType, ReferenceType, ObjectType, ArrayType, ExtensionType}
}

type Colorable struct {
	Type Type
	Attr ColorAttr
}

type ColorAttr int

const (
	TagColor ColorAttr = iota
	FieldColor
	ValueColor
	SepColor
	InsertColor
	DeleteColor
)

type Colors struct {
	Default func(string, ...any) string
	Map     map[Colorable]func(string, ...any) string
}

func NewColors() *Colors {
	colors := &Colors{
		Default: colorDefault,
		Map:     map[Colorable]func(string, ...any) string{},
	}
	for _, t := range Types() {
		able := Colorable{Type: t, Attr: TagColor}
		colors.Map[able] = color.RGB(74, 92, 138).SprintfFunc()
		able.Attr = SepColor
		colors.Map[able] = color.RGB(255, 0, 196).SprintfFunc()
		able.Attr = InsertColor
		colors.Map[able] = color.GreenString
		able.Attr = DeleteColor
		colors.Map[able] = color.RedString
	}
	able := Colorable{Attr: ValueColor}

	able.Type = NumberType
	colors.Map[able] = color.RGB(128, 216, 236).SprintfFunc()
	able.Type = VectorType
	colors.Map[able] = color.RGB(128, 216, 236).SprintfFunc()

	able.Type = EmptyType
	colors.Map[able] = color.RGB(168, 0, 196).SprintfFunc()

	able.Type = BoolType
	colors.Map[able] = color.CyanString

	able.Type = ReferenceType
	colors.Map[able] = color.RGB(196, 168, 128).SprintfFunc()

	able.Type = BlockType
	colors.Map[able] = color.RGB(96, 96, 96).SprintfFunc()

	able.Type = ObjectType
	able.Attr = FieldColor
	colors.Map[able] = color.RGB(128, 168, 196).SprintfFunc()

	able.Type = ArrayType
	able.Attr = SepColor
	colors.Map[able] = color.RGB(196, 128, 128).SprintfFunc()

	able.Type = StringType
	able.Attr = ValueColor
	colors.Map[able] = color.RGB(8, 196, 16).SprintfFunc()
	for k, f := range colors.Map {
		colors.Map[k] = func(v string, _ ...any) string {
			return f(strings.ReplaceAll(v, "%", "%%"))
		}
	}
	return colors
}

func colorDefault(v string, _ ...any) string { return v }

func (c *Colors) Color(t Type, a ColorAttr, s string) string {
	return c.Get(t, a)(s)
}

func (c *Colors) Get(t Type, a ColorAttr) func(string, ...any) string {
	f := c.Map[Colorable{Type: t, Attr: a}]
	if f == nil {
		return c.Default
	}
	return f
}
