package layout

const ptToMM = 25.4 / 72

const (
	// BodySize is the default paragraph font size in points.
	BodySize = 10.5
	// SmallSize is used for score rows and footers.
	SmallSize = 9.5

	KeyValueHeight = 7.0
	IndentStep     = 6.0
	BulletWidth    = 4.5
	RemarkIndent   = 4.0
	ParagraphGap   = 2.5
	ListGap        = 1.0
	ImageGap       = 4.0

	bullet = "•"
)

var (
	colorPrimary = Color{30, 58, 95}
	colorText    = Color{44, 62, 80}
	colorMuted   = Color{127, 140, 141}
	colorRule    = Color{220, 220, 220}
	colorAccent  = Color{52, 152, 219}
)

type headingStyle struct {
	size    float64
	advance float64
	color   Color
}

var headingStyles = [...]headingStyle{
	{size: 18, advance: 11, color: colorPrimary},
	{size: 14, advance: 9, color: colorPrimary},
	{size: 12, advance: 7.5, color: colorText},
	{size: BodySize, advance: 6.5, color: colorText},
}

func headingFor(level int) headingStyle {
	switch {
	case level < 1:
		level = 1
	case level > len(headingStyles):
		level = len(headingStyles)
	}
	return headingStyles[level-1]
}

// LineHeight is the advance of one wrapped line at size points.
func LineHeight(size float64) float64 {
	return size * ptToMM * 1.4
}
