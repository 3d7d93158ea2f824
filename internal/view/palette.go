package view

// HighlightPalette 是标记色的固定调色板，写入与渲染共用同一份
// 26 色，互相易区分且对深浅背景都友好
var HighlightPalette = []string{
	"#2563EB", "#1D4ED8", "#0EA5E9", "#06B6D4", "#14B8A6", "#22C55E", "#16A34A",
	"#84CC16", "#EAB308", "#F59E0B", "#F97316", "#EF4444", "#DC2626", "#FB7185",
	"#A855F7", "#7C3AED", "#6366F1", "#4F46E5", "#0F766E", "#15803D", "#3F6212",
	"#92400E", "#7F1D1D", "#6B7280", "#111827", "#9333EA",
}

var paletteSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(HighlightPalette))
	for _, color := range HighlightPalette {
		set[color] = struct{}{}
	}
	return set
}()

// ValidColor 判断颜色是否可写入：空串表示清除，其余必须是调色板成员
func ValidColor(color string) bool {
	if color == "" {
		return true
	}
	_, ok := paletteSet[color]
	return ok
}
